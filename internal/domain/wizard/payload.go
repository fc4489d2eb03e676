package wizard

import (
	"strconv"
	"strings"

	"github.com/hospitalops/cftflow/internal/domain/request"
)

// ToRequestPayload maps a completed wizard state onto the shared record
// shape. Fields outside the resolved destination are left at their zero
// value so the record stays uniform across variants. The state itself must
// already have passed ValidateAll; an undetermined destination is the only
// error here.
func ToRequestPayload(s *State) (*request.Submission, error) {
	dest := Resolve(s)
	if dest == DestUndetermined {
		return nil, invalid("form not determined", "complete the previous steps first")
	}

	sub := &request.Submission{
		PriorRequestID: s.PriorRequestID,
		Submitter: request.Submitter{
			Name:          s.Identification.FullName,
			Phone:         s.Identification.Phone,
			ServiceID:     s.Identification.ServiceID,
			DirectorEmail: directorEmail(s, dest),
		},
	}

	switch dest {
	case DestOnLabel:
		sub.Type = request.TypeOnLabel
		sub.Objective = request.ObjectiveNewTherapy
		sub.Clinical = clinicalPayload(s)
	case DestOffLabel:
		sub.Type = request.TypeOffLabel
		sub.Objective = request.ObjectiveNewTherapy
		sub.Clinical = clinicalPayload(s)
	case DestReevaluation:
		// Re-evaluations and appeals always concern an existing casuistic
		// therapy, so they land in the on-label bucket and are told apart
		// by the objective and prior-request reference.
		sub.Type = request.TypeOnLabel
		sub.Objective = request.ObjectiveReevaluation
		sub.Clinical = clinicalPayload(s)
		sub.Reevaluation = &request.ReevaluationPayload{
			ClinicalOutcome: s.Reevaluation.ClinicalOutcome,
			Assessment:      s.Reevaluation.Assessment,
			RenewalDecision: s.Reevaluation.RenewalDecision,
		}
	case DestAppeal:
		sub.Type = request.TypeOnLabel
		sub.Objective = request.ObjectiveAppeal
		sub.Clinical = clinicalPayload(s)
		sub.Appeal = &request.AppealPayload{Rationale: s.Appeal.Rationale}
	case DestFormulary:
		sub.Type = request.TypeFormulary
		sub.Formulary = &request.FormularyPayload{
			ActiveSubstance:    s.Formulary.ActiveSubstance,
			Brand:              s.Formulary.Brand,
			Dosage:             s.Formulary.Dosage,
			PharmaceuticalForm: s.Formulary.PharmaceuticalForm,
			Route:              s.Formulary.Route,
			Indications:        s.Formulary.Indications,
			IndicationsInSmPC:  s.Formulary.IndicationsInSmPC,
			CurrentTherapy:     s.Formulary.CurrentTherapy,
			UsageCriteria:      s.Formulary.UsageCriteria,
			ProtocolReference:  s.Formulary.ProtocolReference,
			PosologyDuration:   s.Formulary.PosologyDuration,
			AnnualTreatments:   s.Formulary.AnnualTreatments,
			Justification:      s.Formulary.Justification,
			ReferencesAttached: s.Formulary.ReferencesPDF,
			DirectorApproved:   s.Formulary.DirectorApproved == "sim",
		}
	case DestProtocol:
		sub.Type = request.TypeProtocol
		sub.Protocol = &request.ProtocolPayload{
			Name:             s.Protocol.Name,
			DraftAttached:    s.Protocol.DraftFile,
			DirectorApproved: s.Protocol.DirectorApproved == "sim",
		}
	}

	return sub, nil
}

func clinicalPayload(s *State) *request.ClinicalPayload {
	drugs := make([]request.DrugLine, 0, len(s.Clinical.Drugs))
	for _, line := range s.Clinical.Drugs {
		if line.DrugID == "" && strings.TrimSpace(line.ManualName) == "" {
			continue
		}
		drugs = append(drugs, line)
	}

	return &request.ClinicalPayload{
		Patient: request.Patient{
			Number:    s.Patient.Number,
			External:  s.Patient.External,
			Name:      s.Patient.ManualName,
			SNS:       s.Patient.ManualSNS,
			BirthDate: s.Patient.ManualBirthDate,
		},
		WeightKg:          parseFloat(s.Clinical.Weight),
		HeightCm:          parseFloat(s.Clinical.Height),
		ECOG:              s.Clinical.ECOG,
		Indication:        s.Clinical.Indication,
		ProposedTherapy:   proposedTherapy(drugs),
		TreatmentLine:     s.Clinical.TreatmentLine,
		PriorTherapy:      s.Clinical.PriorTherapy,
		ClinicalSummary:   s.Clinical.Summary,
		DirectorApproved:  s.Clinical.DirectorApproved == "sim",
		Drugs:             drugs,
		EvidenceAttached:  s.Clinical.EvidencePDF,
		EvidenceRationale: s.Clinical.EvidenceRationale,
	}
}

// proposedTherapy summarizes the drug lines into the record's free-text
// therapy description.
func proposedTherapy(drugs []request.DrugLine) string {
	names := make([]string, 0, len(drugs))
	for _, d := range drugs {
		name := d.DrugName
		if d.Manual || name == "" {
			name = d.ManualName
		}
		if name == "" {
			name = d.DrugID
		}
		if d.Dose != "" {
			name += " " + d.Dose
		}
		names = append(names, name)
	}
	return strings.Join(names, " + ")
}

func directorEmail(s *State, dest Destination) string {
	switch dest {
	case DestFormulary:
		return s.Formulary.DirectorEmail
	case DestProtocol:
		return s.Protocol.DirectorEmail
	default:
		return s.Clinical.DirectorEmail
	}
}

func parseFloat(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(v, ",", ".")), 64)
	if err != nil {
		return 0
	}
	return f
}
