// Package wizard models the multi-step submission flow: the transient draft
// state a clinician builds up, the branching decision tree that routes it to
// one of six form variants, the per-step gating rules, and the mapping of a
// completed state onto the shared request-record shape.
package wizard

import (
	"strings"

	"github.com/hospitalops/cftflow/internal/domain/request"
)

type PatientLinkage string

const (
	LinkageUnset PatientLinkage = ""
	LinkageYes   PatientLinkage = "sim"
	LinkageNo    PatientLinkage = "nao"
)

type Objective string

const (
	ObjectiveUnset        Objective = ""
	ObjectiveReevaluation Objective = "reavaliacao"
	ObjectiveAppeal       Objective = "recurso"
	ObjectiveNewTherapy   Objective = "nova-terapeutica"
)

type Classification string

const (
	ClassificationUnset    Classification = ""
	ClassificationOnLabel  Classification = "casuistico-on"
	ClassificationOffLabel Classification = "casuistico-off"
	ClassificationExternal Classification = "doente-externo"
)

type DocumentalType string

const (
	DocumentalUnset     DocumentalType = ""
	DocumentalFormulary DocumentalType = "introducao-fh"
	DocumentalProtocol  DocumentalType = "protocolo-noc"
)

type Profile string

const (
	ProfileDoctor       Profile = "medico"
	ProfilePharmacy     Profile = "farmacia"
	ProfileSecretariat  Profile = "secretariado"
	ProfileNutritionist Profile = "nutricionista"
)

// Identification carries the submitter data pre-filled from the stub user
// profile; only the phone number is typed in by hand.
type Identification struct {
	FullName  string  `json:"nomeCompleto"`
	ServiceID string  `json:"servico"`
	Email     string  `json:"emailInstitucional"`
	Phone     string  `json:"telemovel"`
	Profile   Profile `json:"perfil"`
}

// PatientRef is the step-1 patient linkage block. A registry patient is
// validated by number lookup; an external patient is identified manually and
// accepted in lieu of lookup.
type PatientRef struct {
	Number          string `json:"ndDoente"`
	Validated       bool   `json:"validado"`
	External        bool   `json:"doenteExterno"`
	ManualName      string `json:"nomeManual"`
	ManualSNS       string `json:"snsManual"`
	ManualBirthDate string `json:"dataNascManual"`
}

// ClinicalForm holds the on-label / off-label / appeal step-3 fields. Values
// stay as entered; parsing happens when the state is mapped to a record.
type ClinicalForm struct {
	Weight            string             `json:"peso"`
	Height            string             `json:"altura"`
	ECOG              string             `json:"ecog"`
	Indication        string             `json:"indicacaoTerapeutica"`
	Drugs             []request.DrugLine `json:"farmacos"`
	TreatmentLine     string             `json:"linhaTratamento"`
	PriorTherapy      string             `json:"historiaTerapeuticaPrevia"`
	Summary           string             `json:"resumoClinico"`
	DirectorApproved  string             `json:"aprovadoDiretor"`
	DirectorEmail     string             `json:"emailDiretor"`
	EvidencePDF       string             `json:"bibliografiaPDF"`
	EvidenceRationale string             `json:"justificacaoEvidencia"`
}

type ReevaluationForm struct {
	ClinicalOutcome string `json:"resultadoClinico"`
	Assessment      string `json:"observacoesMedico"`
	RenewalDecision string `json:"decisaoRenovacao"`
}

type AppealForm struct {
	Rationale string `json:"fundamentacao"`
}

type FormularyForm struct {
	ActiveSubstance    string `json:"substanciaAtiva"`
	Brand              string `json:"marcaComercial"`
	Dosage             string `json:"dosagem"`
	PharmaceuticalForm string `json:"formaFarmaceutica"`
	Route              string `json:"viaAdministracao"`
	Indications        string `json:"indicacoesTerapeuticas"`
	IndicationsInSmPC  string `json:"indicacoesConstamRCM"`
	CurrentTherapy     string `json:"terapeuticaAtual"`
	UsageCriteria      string `json:"criteriosUtilizacao"`
	ProtocolReference  string `json:"protocoloIdentificacao"`
	PosologyDuration   string `json:"posologiaDuracao"`
	AnnualTreatments   string `json:"previsaoTratamentosAnuais"`
	Justification      string `json:"justificacaoIntroducao"`
	ReferencesPDF      string `json:"referenciasPDF"`
	DirectorApproved   string `json:"aprovadoDiretor"`
	DirectorEmail      string `json:"emailDiretor"`
}

type ProtocolForm struct {
	Name             string `json:"nomeProtocolo"`
	DirectorApproved string `json:"aprovadoDiretor"`
	DirectorEmail    string `json:"emailDiretor"`
	DraftFile        string `json:"ficheiroDraft"`
}

// State is the transient draft of one in-progress submission. It is owned by
// a single session, serialized as-is into the draft store, and discarded
// once converted into a ledger record.
type State struct {
	Identification Identification `json:"identificacao"`
	PatientLinkage PatientLinkage `json:"vinculoDoente"`
	Patient        PatientRef     `json:"doente"`

	DocumentalType DocumentalType `json:"tipoSemDoente"`
	Objective      Objective      `json:"objetivoSubmissao"`
	Classification Classification `json:"classificacaoNova"`
	PriorRequestID string         `json:"pedidoAnteriorId"`

	Clinical     ClinicalForm     `json:"clinico"`
	Reevaluation ReevaluationForm `json:"reavaliacao"`
	Appeal       AppealForm       `json:"recurso"`
	Formulary    FormularyForm    `json:"introducaoFH"`
	Protocol     ProtocolForm     `json:"protocoloNOC"`
}

// NewState returns an empty draft seeded with the stub user profile. Real
// identity comes from institutional SSO, which is out of scope here.
func NewState() *State {
	return &State{
		Identification: Identification{
			FullName:  "Dr. António Silva",
			ServiceID: "oncologia",
			Email:     "antonio.silva@ulssjoao.min-saude.pt",
			Profile:   ProfileDoctor,
		},
		Clinical: ClinicalForm{
			Drugs: []request.DrugLine{{ID: "1", CostBorne: true}},
		},
	}
}

// SetPatientLinkage switches between the clinical and documental tracks.
// Every downstream choice is reset so stale cross-branch data can never leak
// into the wrong variant payload.
func (s *State) SetPatientLinkage(v PatientLinkage) {
	s.PatientLinkage = v
	s.DocumentalType = DocumentalUnset
	s.Objective = ObjectiveUnset
	s.Classification = ClassificationUnset
	s.PriorRequestID = ""
	s.Patient = PatientRef{}
}

// SetObjective picks the submission objective on the clinical track and
// resets the choices that depend on it. A new therapy for an external
// patient is classified immediately; every other path starts unclassified.
func (s *State) SetObjective(v Objective) {
	s.Objective = v
	if v == ObjectiveNewTherapy && s.Patient.External {
		s.Classification = ClassificationExternal
	} else {
		s.Classification = ClassificationUnset
	}
	s.PriorRequestID = ""
}

// SetPatientNumber records the registry number and runs the mocked registry
// lookup: any number of four or more digits validates.
func (s *State) SetPatientNumber(nd string) {
	nd = digitsOnly(nd)
	s.Patient.Number = nd
	s.Patient.Validated = len(nd) >= 4
}

// SetExternalPatient toggles the manual-identity path, which bypasses the
// registry lookup entirely.
func (s *State) SetExternalPatient(on bool) {
	s.Patient.External = on
	if on {
		s.Patient.Validated = true
		s.Patient.Number = ""
	} else {
		s.Patient.Validated = false
	}
}

func digitsOnly(v string) string {
	var b strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
