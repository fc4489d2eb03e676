package request

// Submission is the record-shaped partial produced by the wizard. The store
// completes it with identity, code, timestamps, and the creation history
// entry.
type Submission struct {
	Type           RequestType
	Objective      Objective
	PriorRequestID string
	Submitter      Submitter

	Clinical     *ClinicalPayload
	Reevaluation *ReevaluationPayload
	Appeal       *AppealPayload
	Formulary    *FormularyPayload
	Protocol     *ProtocolPayload

	// TreatmentMonths feeds the triage-side financial impact derivation.
	TreatmentMonths int
}
