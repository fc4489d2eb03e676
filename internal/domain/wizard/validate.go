package wizard

import "strings"

// ValidationError names the unmet gating condition for a step. It carries a
// short title and a human-readable reason, ready for the notification sink.
type ValidationError struct {
	Title  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Title + ": " + e.Reason
}

func invalid(title, reason string) error {
	return &ValidationError{Title: title, Reason: reason}
}

const (
	StepIdentification = 1
	StepObjective      = 2
	StepForm           = 3
)

// ValidateStep checks whether the wizard may advance past the given step.
// It never mutates the state; a nil return means the gate is open.
func ValidateStep(step int, s *State) error {
	switch step {
	case StepIdentification:
		return validateIdentification(s)
	case StepObjective:
		return validateObjective(s)
	case StepForm:
		return validateForm(s)
	default:
		return invalid("invalid step", "the wizard has three steps")
	}
}

// ValidateAll gates a full submission: every step must pass in order.
func ValidateAll(s *State) error {
	for _, step := range []int{StepIdentification, StepObjective, StepForm} {
		if err := ValidateStep(step, s); err != nil {
			return err
		}
	}
	return nil
}

func validateIdentification(s *State) error {
	if strings.TrimSpace(s.Identification.Phone) == "" {
		return invalid("identification incomplete", "a contact phone number is required")
	}
	if s.PatientLinkage == LinkageUnset {
		return invalid("patient linkage missing", "indicate whether the request concerns an identified patient")
	}
	if s.PatientLinkage == LinkageYes {
		if s.Patient.External {
			if s.Patient.ManualName == "" || s.Patient.ManualSNS == "" || s.Patient.ManualBirthDate == "" {
				return invalid("external patient incomplete", "name, SNS number and birth date are required for an external patient")
			}
			return nil
		}
		if !s.Patient.Validated {
			return invalid("patient not validated", "the patient number must pass registry validation")
		}
	}
	return nil
}

func validateObjective(s *State) error {
	dest := Resolve(s)
	if dest == DestUndetermined {
		return invalid("objective incomplete", "the choices made so far do not determine a form")
	}
	switch s.Objective {
	case ObjectiveReevaluation, ObjectiveAppeal:
		if s.PriorRequestID == "" {
			return invalid("prior request missing", "select the request being re-evaluated or appealed")
		}
	case ObjectiveNewTherapy:
		if s.Classification == ClassificationUnset {
			return invalid("classification missing", "classify the new therapy before continuing")
		}
	}
	return nil
}

func validateForm(s *State) error {
	switch Resolve(s) {
	case DestOnLabel:
		return validateClinical(s, false)
	case DestOffLabel:
		return validateClinical(s, true)
	case DestAppeal:
		if err := validateClinical(s, false); err != nil {
			return err
		}
		if strings.TrimSpace(s.Appeal.Rationale) == "" {
			return invalid("appeal incomplete", "the appeal rationale is required")
		}
		return nil
	case DestReevaluation:
		return validateReevaluation(s)
	case DestFormulary:
		return validateFormulary(s)
	case DestProtocol:
		return validateProtocol(s)
	default:
		return invalid("form not determined", "complete the previous steps first")
	}
}

func validateClinical(s *State, offLabel bool) error {
	c := &s.Clinical
	switch {
	case c.Weight == "":
		return invalid("clinical information incomplete", "the patient weight is required")
	case c.ECOG == "":
		return invalid("clinical information incomplete", "the ECOG performance status is required")
	case strings.TrimSpace(c.Indication) == "":
		return invalid("clinical information incomplete", "the therapeutic indication is required")
	case strings.TrimSpace(c.Summary) == "":
		return invalid("clinical information incomplete", "the clinical summary is required")
	}
	if !hasDrugLine(s) {
		return invalid("clinical information incomplete", "at least one medicine must be selected or named")
	}
	if offLabel && c.EvidencePDF == "" {
		return invalid("evidence missing", "off-label use requires an attached evidence bibliography")
	}
	return nil
}

func hasDrugLine(s *State) bool {
	for _, line := range s.Clinical.Drugs {
		if line.DrugID != "" || strings.TrimSpace(line.ManualName) != "" {
			return true
		}
	}
	return false
}

func validateReevaluation(s *State) error {
	r := &s.Reevaluation
	switch {
	case r.ClinicalOutcome == "":
		return invalid("re-evaluation incomplete", "classify the clinical outcome")
	case strings.TrimSpace(r.Assessment) == "":
		return invalid("re-evaluation incomplete", "the clinical assessment is required")
	case r.RenewalDecision == "":
		return invalid("re-evaluation incomplete", "propose a renewal decision")
	}
	return nil
}

func validateFormulary(s *State) error {
	f := &s.Formulary
	switch {
	case strings.TrimSpace(f.ActiveSubstance) == "":
		return invalid("formulary proposal incomplete", "the active substance is required")
	case strings.TrimSpace(f.Indications) == "":
		return invalid("formulary proposal incomplete", "the therapeutic indications are required")
	case strings.TrimSpace(f.Justification) == "":
		return invalid("formulary proposal incomplete", "the introduction justification is required")
	case f.ReferencesPDF == "":
		return invalid("formulary proposal incomplete", "an attached bibliography is required")
	}
	return nil
}

func validateProtocol(s *State) error {
	p := &s.Protocol
	switch {
	case strings.TrimSpace(p.Name) == "":
		return invalid("protocol incomplete", "identify the protocol or guidance document")
	case p.DraftFile == "":
		return invalid("protocol incomplete", "attach the draft document")
	}
	return nil
}
