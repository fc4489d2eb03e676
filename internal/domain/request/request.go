package request

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RequestType classifies what the committee is being asked to decide on.
type RequestType string

const (
	TypeOnLabel   RequestType = "casuistico-on"
	TypeOffLabel  RequestType = "casuistico-off"
	TypeFormulary RequestType = "formulario"
	TypeProtocol  RequestType = "protocolo"
)

func (t RequestType) IsValid() bool {
	switch t {
	case TypeOnLabel, TypeOffLabel, TypeFormulary, TypeProtocol:
		return true
	}
	return false
}

// IsCasuistic reports whether the type concerns a single identified patient
// (as opposed to a documental process).
func (t RequestType) IsCasuistic() bool {
	return t == TypeOnLabel || t == TypeOffLabel
}

// Objective records why the clinical track was entered. Documental requests
// carry no objective.
type Objective string

const (
	ObjectiveNone         Objective = ""
	ObjectiveNewTherapy   Objective = "nova-terapeutica"
	ObjectiveReevaluation Objective = "reavaliacao"
	ObjectiveAppeal       Objective = "recurso"
)

// State transition possibilities:
//
//	submetido → em-triagem → {agenda-cft, pendente-info, encaminhado-dc}
//	{submetido, em-triagem, pendente-info, encaminhado-dc, agenda-cft} → agenda-cft
//	agenda-cft → {aprovado, rejeitado, agenda-cft (deferred)}
type Status string

const (
	StatusSubmitted   Status = "submetido"
	StatusInTriage    Status = "em-triagem"
	StatusScheduled   Status = "agenda-cft"
	StatusPendingInfo Status = "pendente-info"
	StatusForwardedDC Status = "encaminhado-dc"
	StatusApproved    Status = "aprovado"
	StatusRejected    Status = "rejeitado"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusSubmitted, StatusInTriage, StatusScheduled, StatusPendingInfo,
		StatusForwardedDC, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further committee action is defined on the
// state. An appeal of a rejection is a new request, never a mutation.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Verdict is the committee's deliberation outcome.
type Verdict string

const (
	VerdictFavorable   Verdict = "favoravel"
	VerdictUnfavorable Verdict = "desfavoravel"
	VerdictDeferred    Verdict = "adiado"
)

func (v Verdict) IsValid() bool {
	switch v {
	case VerdictFavorable, VerdictUnfavorable, VerdictDeferred:
		return true
	}
	return false
}

// StatusAfter maps a verdict to the resulting request state. A deferred
// request stays on the agenda for a future slot.
func (v Verdict) StatusAfter() Status {
	switch v {
	case VerdictFavorable:
		return StatusApproved
	case VerdictUnfavorable:
		return StatusRejected
	default:
		return StatusScheduled
	}
}

// HistoryEntry is one step of the audit trail. Entries are append-only and
// never reordered or edited after the fact.
type HistoryEntry struct {
	At     time.Time `json:"data"`
	Status Status    `json:"estado"`
	Note   string    `json:"observacao,omitempty"`
}

// Submitter identifies the clinician filing the request.
type Submitter struct {
	Name          string `json:"nomeCompleto"`
	Phone         string `json:"telemovel"`
	ServiceID     string `json:"servicoId"`
	DirectorEmail string `json:"emailDiretor"`
}

// Patient references either a registry-validated inpatient (Number) or an
// external patient identified manually.
type Patient struct {
	Number    string `json:"ndDoente,omitempty"`
	External  bool   `json:"externo,omitempty"`
	Name      string `json:"nomeManual,omitempty"`
	SNS       string `json:"snsManual,omitempty"`
	BirthDate string `json:"dataNascManual,omitempty"`
}

// DrugLine is one proposed therapy line, either a catalog selection or a
// manually named medicine.
type DrugLine struct {
	ID         string `json:"id"`
	DrugID     string `json:"medicamentoId,omitempty"`
	DrugName   string `json:"medicamentoNome,omitempty"`
	Manual     bool   `json:"modoManual,omitempty"`
	ManualName string `json:"nomeManual,omitempty"`
	ManualForm string `json:"formaManual,omitempty"`
	Dose       string `json:"dose,omitempty"`
	Frequency  string `json:"frequencia,omitempty"`
	CostBorne  bool   `json:"contabilizarCusto"`
}

// ClinicalPayload is the casuistic variant (on-label, off-label, and the
// clinical parts of re-evaluations and appeals).
type ClinicalPayload struct {
	Patient           Patient    `json:"doente"`
	WeightKg          float64    `json:"peso"`
	HeightCm          float64    `json:"altura,omitempty"`
	ECOG              string     `json:"ecog"`
	Indication        string     `json:"indicacaoTerapeutica"`
	ProposedTherapy   string     `json:"terapeuticaProposta"`
	TreatmentLine     string     `json:"linhaTratamento,omitempty"`
	PriorTherapy      string     `json:"historiaTerapeuticaPrevia,omitempty"`
	ClinicalSummary   string     `json:"resumoClinico"`
	DirectorApproved  bool       `json:"aprovadoDiretor"`
	Drugs             []DrugLine `json:"farmacos"`
	EvidenceAttached  string     `json:"bibliografiaPDF,omitempty"`
	EvidenceRationale string     `json:"justificacaoEvidencia,omitempty"`
}

// ReevaluationPayload supplements a clinical payload when the objective is a
// re-evaluation of an ongoing therapy.
type ReevaluationPayload struct {
	ClinicalOutcome string `json:"resultadoClinico"`
	Assessment      string `json:"observacoesMedico"`
	RenewalDecision string `json:"decisaoRenovacao"`
}

// AppealPayload supplements a clinical payload when appealing a refusal.
type AppealPayload struct {
	Rationale string `json:"fundamentacao"`
}

// FormularyPayload is the documental variant proposing a new formulary drug.
type FormularyPayload struct {
	ActiveSubstance    string `json:"substanciaAtiva"`
	Brand              string `json:"marcaComercial,omitempty"`
	Dosage             string `json:"dosagem,omitempty"`
	PharmaceuticalForm string `json:"formaFarmaceutica,omitempty"`
	Route              string `json:"viaAdministracao,omitempty"`
	Indications        string `json:"indicacoesTerapeuticas"`
	IndicationsInSmPC  string `json:"indicacoesConstamRCM,omitempty"`
	CurrentTherapy     string `json:"terapeuticaAtual,omitempty"`
	UsageCriteria      string `json:"criteriosUtilizacao,omitempty"`
	ProtocolReference  string `json:"protocoloIdentificacao,omitempty"`
	PosologyDuration   string `json:"posologiaDuracao,omitempty"`
	AnnualTreatments   string `json:"previsaoTratamentosAnuais,omitempty"`
	Justification      string `json:"justificacaoIntroducao"`
	ReferencesAttached string `json:"referenciasPDF"`
	DirectorApproved   bool   `json:"aprovadoDiretor"`
}

// ProtocolPayload is the documental variant submitting a clinical protocol
// or guidance document.
type ProtocolPayload struct {
	Name             string `json:"nomeProtocolo"`
	DraftAttached    string `json:"ficheiroDraft"`
	DirectorApproved bool   `json:"aprovadoDiretor"`
}

// FinancialImpact is derived by the triage role from the catalog price and
// the expected treatment duration.
type FinancialImpact struct {
	MonthlyCost   float64 `json:"custoMensal"`
	TotalCost     float64 `json:"custoTotal"`
	CostToYearEnd float64 `json:"custoAteAno"`
}

// Request is one entry of the committee ledger. The variant payloads form a
// tagged union keyed by Type: exactly one of Clinical/Formulary/Protocol is
// set, with Reevaluation/Appeal only ever accompanying Clinical.
type Request struct {
	ID   uuid.UUID   `json:"id"`
	Code string      `json:"codigo"`
	Type RequestType `json:"tipo"`

	Objective      Objective `json:"objetivo,omitempty"`
	PriorRequestID string    `json:"pedidoAnteriorId,omitempty"`

	Status        Status    `json:"estado"`
	SubmittedAt   time.Time `json:"dataSubmissao"`
	LastUpdatedAt time.Time `json:"dataUltimaAtualizacao"`

	Submitter Submitter `json:"medico"`

	Clinical     *ClinicalPayload     `json:"clinico,omitempty"`
	Reevaluation *ReevaluationPayload `json:"reavaliacao,omitempty"`
	Appeal       *AppealPayload       `json:"recurso,omitempty"`
	Formulary    *FormularyPayload    `json:"introducaoFH,omitempty"`
	Protocol     *ProtocolPayload     `json:"protocoloNOC,omitempty"`

	Impact             *FinancialImpact `json:"impacto,omitempty"`
	PharmacyAssessment string           `json:"parecerFarmacia,omitempty"`
	TreatmentMonths    int              `json:"duracaoMeses,omitempty"`

	MeetingID string  `json:"reuniaoCFTId,omitempty"`
	Verdict   Verdict `json:"decisaoCFT,omitempty"`
	Rationale string  `json:"fundamentacaoCFT,omitempty"`

	History []HistoryEntry `json:"historico"`
}

// CanTransitionTo enforces the lifecycle state machine. Scheduling is
// allowed from every pre-deliberation state, including the agenda itself so
// a deferred request can be moved to a future slot.
func (r *Request) CanTransitionTo(next Status) bool {
	allowed := map[Status][]Status{
		StatusSubmitted:   {StatusInTriage, StatusScheduled},
		StatusInTriage:    {StatusPendingInfo, StatusForwardedDC, StatusScheduled},
		StatusPendingInfo: {StatusScheduled},
		StatusForwardedDC: {StatusScheduled},
		StatusScheduled:   {StatusApproved, StatusRejected, StatusScheduled},
		StatusApproved:    {},
		StatusRejected:    {},
	}

	for _, s := range allowed[r.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// Transition moves the request into the next state, appending exactly one
// history entry and bumping the update timestamp.
func (r *Request) Transition(next Status, note string) error {
	if !r.CanTransitionTo(next) {
		return ErrInvalidStatusTransition
	}
	now := time.Now()
	r.Status = next
	r.LastUpdatedAt = now
	r.History = append(r.History, HistoryEntry{At: now, Status: next, Note: note})
	return nil
}

// ValidateShape checks the variant-payload invariants of a record: the
// payload present must match the declared type, and every record must carry
// a non-empty history whose last entry matches the current status.
func (r *Request) ValidateShape() error {
	if !r.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRequestType, r.Type)
	}

	switch {
	case r.Type.IsCasuistic():
		if r.Clinical == nil {
			return fmt.Errorf("%w: casuistic request without clinical payload", ErrInconsistentPayload)
		}
		if r.Formulary != nil || r.Protocol != nil {
			return fmt.Errorf("%w: casuistic request carrying documental payload", ErrInconsistentPayload)
		}
		if r.Objective != ObjectiveReevaluation && r.Reevaluation != nil {
			return fmt.Errorf("%w: re-evaluation payload without matching objective", ErrInconsistentPayload)
		}
		if r.Objective != ObjectiveAppeal && r.Appeal != nil {
			return fmt.Errorf("%w: appeal payload without matching objective", ErrInconsistentPayload)
		}
	case r.Type == TypeFormulary:
		if r.Formulary == nil || r.Clinical != nil || r.Protocol != nil {
			return fmt.Errorf("%w: formulary request payload mismatch", ErrInconsistentPayload)
		}
	case r.Type == TypeProtocol:
		if r.Protocol == nil || r.Clinical != nil || r.Formulary != nil {
			return fmt.Errorf("%w: protocol request payload mismatch", ErrInconsistentPayload)
		}
	}

	if len(r.History) == 0 {
		return fmt.Errorf("%w: empty history", ErrInconsistentPayload)
	}
	if last := r.History[len(r.History)-1]; last.Status != r.Status {
		return fmt.Errorf("%w: history tail %q does not match status %q", ErrInconsistentPayload, last.Status, r.Status)
	}
	return nil
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing the ledger's own history slice to mutation.
func (r *Request) Clone() *Request {
	cp := *r
	cp.History = append([]HistoryEntry(nil), r.History...)
	if r.Clinical != nil {
		c := *r.Clinical
		c.Drugs = append([]DrugLine(nil), r.Clinical.Drugs...)
		cp.Clinical = &c
	}
	if r.Reevaluation != nil {
		v := *r.Reevaluation
		cp.Reevaluation = &v
	}
	if r.Appeal != nil {
		v := *r.Appeal
		cp.Appeal = &v
	}
	if r.Formulary != nil {
		v := *r.Formulary
		cp.Formulary = &v
	}
	if r.Protocol != nil {
		v := *r.Protocol
		cp.Protocol = &v
	}
	if r.Impact != nil {
		v := *r.Impact
		cp.Impact = &v
	}
	return &cp
}

// FormatCode renders the human-readable ledger code for a given year and
// per-year sequence number, e.g. CFT-2026-0007.
func FormatCode(year, seq int) string {
	return fmt.Sprintf("CFT-%d-%04d", year, seq)
}
