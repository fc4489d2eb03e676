package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hospitalops/cftflow/internal/domain/request"
)

// SeedDemoRequests loads the demonstration ledger used on development
// instances, so the three portals have data on first start. Codes are drawn
// from the sequence counter like real submissions.
func SeedDemoRequests(ctx context.Context, repo request.Repository) error {
	for _, r := range demoRequests() {
		seq, err := repo.NextSequence(ctx, r.SubmittedAt.Year())
		if err != nil {
			return fmt.Errorf("seeding demo ledger: %w", err)
		}
		r.Code = request.FormatCode(r.SubmittedAt.Year(), seq)
		if err := repo.Insert(ctx, r); err != nil {
			return fmt.Errorf("seeding demo ledger: %w", err)
		}
	}
	return nil
}

func demoRequests() []*request.Request {
	day := func(d int) time.Time { return time.Date(2025, time.January, d, 10, 0, 0, 0, time.Local) }

	return []*request.Request{
		{
			ID:            uuid.New(),
			Type:          request.TypeOnLabel,
			Objective:     request.ObjectiveNewTherapy,
			Status:        request.StatusSubmitted,
			SubmittedAt:   day(20),
			LastUpdatedAt: day(20),
			Submitter: request.Submitter{
				Name: "Dr. António Silva", Phone: "912 000 001", ServiceID: "oncologia",
			},
			Clinical: &request.ClinicalPayload{
				Patient:          request.Patient{Number: "118234"},
				WeightKg:         75,
				ECOG:             "1",
				Indication:       "Carcinoma pulmonar de não pequenas células (CPNPC) - Estadio IV",
				ProposedTherapy:  "Pembrolizumab 200mg",
				TreatmentLine:    "1ª linha",
				ClinicalSummary:  "Doente com CPNPC estadio IV, PD-L1 ≥50%, sem mutações EGFR/ALK. Indicação aprovada em 1ª linha. Performance status adequado (ECOG 1).",
				DirectorApproved: true,
				Drugs: []request.DrugLine{{
					ID: "1", DrugID: "pembrolizumab", DrugName: "Pembrolizumab",
					Dose: "200mg", Frequency: "q3w", CostBorne: true,
				}},
			},
			TreatmentMonths: 12,
			History: []request.HistoryEntry{
				{At: day(20), Status: request.StatusSubmitted, Note: "Pedido submetido pelo serviço de Oncologia"},
			},
		},
		{
			ID:            uuid.New(),
			Type:          request.TypeOffLabel,
			Objective:     request.ObjectiveNewTherapy,
			Status:        request.StatusInTriage,
			SubmittedAt:   day(18),
			LastUpdatedAt: day(22),
			Submitter: request.Submitter{
				Name: "Dra. Maria Costa", Phone: "912 000 002", ServiceID: "hematologia",
			},
			Clinical: &request.ClinicalPayload{
				Patient:          request.Patient{Number: "204551"},
				WeightKg:         68,
				ECOG:             "0",
				Indication:       "Linfoma Não-Hodgkin Folicular - Recidiva",
				ProposedTherapy:  "Rituximab 375mg/m²",
				TreatmentLine:    "Manutenção",
				ClinicalSummary:  "Recidiva após 18 meses de remissão completa. Manutenção com Rituximab demonstrou benefício em estudos fase III.",
				DirectorApproved: true,
				Drugs: []request.DrugLine{{
					ID: "1", DrugID: "rituximab", DrugName: "Rituximab",
					Dose: "375mg/m²", Frequency: "q4w x 8", CostBorne: true,
				}},
				EvidenceAttached:  "prima-phase3.pdf",
				EvidenceRationale: "Benefício de sobrevivência livre de progressão demonstrado em ensaio fase III.",
			},
			TreatmentMonths: 8,
			History: []request.HistoryEntry{
				{At: day(18), Status: request.StatusSubmitted, Note: "Pedido submetido"},
				{At: day(22), Status: request.StatusInTriage, Note: "Triagem iniciada pela farmácia"},
			},
		},
		{
			ID:            uuid.New(),
			Type:          request.TypeProtocol,
			Status:        request.StatusScheduled,
			SubmittedAt:   day(15),
			LastUpdatedAt: day(25),
			Submitter: request.Submitter{
				Name: "Dr. Pedro Santos", Phone: "912 000 003", ServiceID: "oncologia",
			},
			Protocol: &request.ProtocolPayload{
				Name:             "Protocolo CLEOPATRA — cancro da mama HER2+ metastático, 1ª linha",
				DraftAttached:    "protocolo-cleopatra-v2.pdf",
				DirectorApproved: true,
			},
			MeetingID: "cft-1",
			History: []request.HistoryEntry{
				{At: day(15), Status: request.StatusSubmitted, Note: "Pedido submetido"},
				{At: day(17), Status: request.StatusInTriage, Note: "Triagem iniciada"},
				{At: day(25), Status: request.StatusScheduled, Note: "Agendado para reunião CFT de 2026-02-03"},
			},
		},
		{
			ID:            uuid.New(),
			Type:          request.TypeOnLabel,
			Objective:     request.ObjectiveNewTherapy,
			Status:        request.StatusApproved,
			SubmittedAt:   day(5),
			LastUpdatedAt: day(20),
			Submitter: request.Submitter{
				Name: "Dra. Ana Ferreira", Phone: "912 000 004", ServiceID: "dermatologia",
			},
			Clinical: &request.ClinicalPayload{
				Patient:          request.Patient{Number: "309812"},
				WeightKg:         65,
				ECOG:             "1",
				Indication:       "Melanoma maligno metastático - BRAF wild-type",
				ProposedTherapy:  "Nivolumab 240mg",
				TreatmentLine:    "1ª linha",
				ClinicalSummary:  "Melanoma metastático irressecável, 1ª linha. Sem mutação BRAF. Indicação aprovada.",
				DirectorApproved: true,
				Drugs: []request.DrugLine{{
					ID: "1", DrugID: "nivolumab", DrugName: "Nivolumab",
					Dose: "240mg", Frequency: "q2w", CostBorne: true,
				}},
			},
			TreatmentMonths:    24,
			Impact:             &request.FinancialImpact{MonthlyCost: 4360, TotalCost: 104640, CostToYearEnd: 50680},
			PharmacyAssessment: "Indicação aprovada, dose dentro do RCM. Sem alternativa em formulário.",
			MeetingID:          "cft-1",
			Verdict:            request.VerdictFavorable,
			Rationale:          "Parecer favorável da CFT. Aprovado pelo CA.",
			History: []request.HistoryEntry{
				{At: day(5), Status: request.StatusSubmitted, Note: "Pedido submetido"},
				{At: day(8), Status: request.StatusInTriage, Note: "Triagem iniciada"},
				{At: day(10), Status: request.StatusScheduled, Note: "Agendado para CFT"},
				{At: day(20), Status: request.StatusApproved, Note: "Parecer favorável da CFT. Aprovado pelo CA."},
			},
		},
		{
			ID:            uuid.New(),
			Type:          request.TypeOnLabel,
			Objective:     request.ObjectiveNewTherapy,
			Status:        request.StatusPendingInfo,
			SubmittedAt:   day(22),
			LastUpdatedAt: day(26),
			Submitter: request.Submitter{
				Name: "Dr. Carlos Mendes", Phone: "912 000 005", ServiceID: "gastroenterologia",
			},
			Clinical: &request.ClinicalPayload{
				Patient:          request.Patient{Number: "412003"},
				WeightKg:         72,
				ECOG:             "2",
				Indication:       "Carcinoma colorrectal metastático - RAS wild-type",
				ProposedTherapy:  "Cetuximab 500mg/m²",
				TreatmentLine:    "2ª linha",
				ClinicalSummary:  "CCR metastático RAS wt, 2ª linha após progressão com FOLFOX.",
				DirectorApproved: true,
				Drugs: []request.DrugLine{{
					ID: "1", DrugID: "cetuximab", DrugName: "Cetuximab",
					Dose: "500mg/m²", Frequency: "q2w", CostBorne: true,
				}},
			},
			TreatmentMonths: 6,
			History: []request.HistoryEntry{
				{At: day(22), Status: request.StatusSubmitted, Note: "Pedido submetido"},
				{At: day(24), Status: request.StatusInTriage, Note: "Triagem iniciada"},
				{At: day(26), Status: request.StatusPendingInfo, Note: "Solicitada confirmação do status RAS por laboratório externo"},
			},
		},
	}
}
