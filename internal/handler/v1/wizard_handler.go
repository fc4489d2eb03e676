package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hospitalops/cftflow/internal/domain/wizard"
	"github.com/hospitalops/cftflow/internal/service"
	"github.com/hospitalops/cftflow/pkg/metrics"
)

// WizardHandler is the submitter portal: it drives the multi-step wizard,
// the local draft, and the final submission.
type WizardHandler struct {
	submissions *service.SubmissionService
	metrics     *metrics.Collector
}

func NewWizardHandler(submissions *service.SubmissionService, col *metrics.Collector) *WizardHandler {
	return &WizardHandler{submissions: submissions, metrics: col}
}

type resolveResponse struct {
	Destination wizard.Destination `json:"destino"`
	StepLabels  []string           `json:"etapas"`
}

// Resolve reports the destination and step labels for the given state.
func (h *WizardHandler) Resolve(c *gin.Context) {
	var state wizard.State
	if !bindJSON(c, &state) {
		return
	}
	dest := wizard.Resolve(&state)
	respondOK(c, resolveResponse{Destination: dest, StepLabels: wizard.StepLabels(dest)})
}

type validateResponse struct {
	OK     bool   `json:"ok"`
	Title  string `json:"titulo,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ValidateStep checks the gate for one step without mutating anything.
// Gating failures are a normal outcome, reported in the body, not as an
// HTTP error.
func (h *WizardHandler) ValidateStep(c *gin.Context) {
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid step")
		return
	}

	var state wizard.State
	if !bindJSON(c, &state) {
		return
	}

	if err := wizard.ValidateStep(step, &state); err != nil {
		var verr *wizard.ValidationError
		if errors.As(err, &verr) {
			respondOK(c, validateResponse{OK: false, Title: verr.Title, Reason: verr.Reason})
			return
		}
		respondServiceError(c, err)
		return
	}
	respondOK(c, validateResponse{OK: true})
}

type stateChange struct {
	State wizard.State `json:"state"`
	Value string       `json:"value"`
}

type stateResponse struct {
	State       wizard.State       `json:"state"`
	Destination wizard.Destination `json:"destino"`
	StepLabels  []string           `json:"etapas"`
}

func (h *WizardHandler) respondState(c *gin.Context, state *wizard.State) {
	dest := wizard.Resolve(state)
	respondOK(c, stateResponse{State: *state, Destination: dest, StepLabels: wizard.StepLabels(dest)})
}

// SetLinkage applies the patient-linkage choice, resetting everything
// downstream of it.
func (h *WizardHandler) SetLinkage(c *gin.Context) {
	var req stateChange
	if !bindJSON(c, &req) {
		return
	}
	req.State.SetPatientLinkage(wizard.PatientLinkage(req.Value))
	h.respondState(c, &req.State)
}

// SetObjective applies the submission objective, resetting the dependent
// choices.
func (h *WizardHandler) SetObjective(c *gin.Context) {
	var req stateChange
	if !bindJSON(c, &req) {
		return
	}
	req.State.SetObjective(wizard.Objective(req.Value))
	h.respondState(c, &req.State)
}

// SetPatientNumber runs the mocked registry lookup on the typed number.
func (h *WizardHandler) SetPatientNumber(c *gin.Context) {
	var req stateChange
	if !bindJSON(c, &req) {
		return
	}
	req.State.SetPatientNumber(req.Value)
	h.respondState(c, &req.State)
}

// SetExternalPatient toggles the manual-identity path.
func (h *WizardHandler) SetExternalPatient(c *gin.Context) {
	var req struct {
		State wizard.State `json:"state"`
		Value bool         `json:"value"`
	}
	if !bindJSON(c, &req) {
		return
	}
	req.State.SetExternalPatient(req.Value)
	h.respondState(c, &req.State)
}

// SaveDraft snapshots the state; always accepted, the write is best-effort.
func (h *WizardHandler) SaveDraft(c *gin.Context) {
	var state wizard.State
	if !bindJSON(c, &state) {
		return
	}
	h.submissions.SaveDraft(&state)
	h.metrics.DraftSavesTotal.Inc()
	c.Status(http.StatusNoContent)
}

type draftResponse struct {
	State    wizard.State `json:"state"`
	Restored bool         `json:"restored"`
}

// LoadDraft returns the saved draft, or a fresh state when there is none.
func (h *WizardHandler) LoadDraft(c *gin.Context) {
	state, restored := h.submissions.LoadDraft()
	outcome := "miss"
	if restored {
		outcome = "hit"
	}
	h.metrics.DraftLoadsTotal.WithLabelValues(outcome).Inc()
	respondOK(c, draftResponse{State: *state, Restored: restored})
}

func (h *WizardHandler) DiscardDraft(c *gin.Context) {
	h.submissions.DiscardDraft()
	c.Status(http.StatusNoContent)
}

// Submit runs the full validation, appends the record to the ledger, and
// clears the draft.
func (h *WizardHandler) Submit(c *gin.Context) {
	var state wizard.State
	if !bindJSON(c, &state) {
		return
	}

	result, err := h.submissions.Submit(c.Request.Context(), &state)
	if err != nil {
		var verr *wizard.ValidationError
		if errors.As(err, &verr) {
			h.metrics.SubmissionsRejected.Inc()
		}
		respondServiceError(c, err)
		return
	}

	h.metrics.SubmissionsTotal.WithLabelValues(string(result.Request.Type)).Inc()
	respondCreated(c, result)
}
