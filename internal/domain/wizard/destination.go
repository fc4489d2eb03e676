package wizard

// Destination is the form variant the wizard routes to. The empty value
// means the choices made so far do not determine a variant yet.
type Destination string

const (
	DestUndetermined Destination = ""
	DestOnLabel      Destination = "on-label"
	DestOffLabel     Destination = "off-label"
	DestReevaluation Destination = "reavaliacao"
	DestAppeal       Destination = "recurso"
	DestFormulary    Destination = "introducao-fh"
	DestProtocol     Destination = "protocolo-noc"
)

// Resolve walks the branching decision tree from the user's choices to a
// submission destination. It is a pure function of the state: the documental
// track depends only on the documental type, the clinical track on objective
// and classification; any unresolved branch yields DestUndetermined.
func Resolve(s *State) Destination {
	switch s.PatientLinkage {
	case LinkageNo:
		switch s.DocumentalType {
		case DocumentalFormulary:
			return DestFormulary
		case DocumentalProtocol:
			return DestProtocol
		}
		return DestUndetermined

	case LinkageYes:
		switch s.Objective {
		case ObjectiveReevaluation:
			return DestReevaluation
		case ObjectiveAppeal:
			return DestAppeal
		case ObjectiveNewTherapy:
			switch s.Classification {
			case ClassificationOnLabel, ClassificationExternal:
				return DestOnLabel
			case ClassificationOffLabel:
				return DestOffLabel
			}
		}
	}
	return DestUndetermined
}

// StepLabels returns the ordered step titles for a destination. The first
// two steps are shared; the third names the variant form, with a generic
// placeholder while the destination is still open.
func StepLabels(dest Destination) []string {
	base := []string{"Identificação", "Objetivo"}
	switch dest {
	case DestOnLabel:
		return append(base, "Informação Clínica")
	case DestOffLabel:
		return append(base, "Informação Clínica Off-label")
	case DestReevaluation:
		return append(base, "Reavaliação")
	case DestAppeal:
		return append(base, "Recurso")
	case DestFormulary:
		return append(base, "Novo Medicamento")
	case DestProtocol:
		return append(base, "Protocolo/NOC")
	default:
		return append(base, "Formulário")
	}
}
