package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hospitalops/cftflow/internal/domain/request"
	"github.com/hospitalops/cftflow/internal/service"
	"github.com/hospitalops/cftflow/pkg/metrics"
)

// RequestHandler serves the triage and committee portals: ledger reads,
// lifecycle transitions, financial impact, deliberation, and the dashboard
// statistics.
type RequestHandler struct {
	requests *service.RequestService
	metrics  *metrics.Collector
}

func NewRequestHandler(requests *service.RequestService, col *metrics.Collector) *RequestHandler {
	return &RequestHandler{requests: requests, metrics: col}
}

// List returns the ledger, optionally filtered by state. "todos" (or no
// filter) returns everything.
func (h *RequestHandler) List(c *gin.Context) {
	filter := c.Query("estado")
	if filter == "" || filter == "todos" {
		all, err := h.requests.List(c.Request.Context())
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, all)
		return
	}

	status := request.Status(filter)
	if !status.IsValid() {
		respondError(c, http.StatusBadRequest, "unknown estado filter: "+filter)
		return
	}
	list, err := h.requests.ListByStatus(c.Request.Context(), status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, list)
}

func (h *RequestHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	r, err := h.requests.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, r)
}

// ListByMeeting returns the agenda of one committee meeting.
func (h *RequestHandler) ListByMeeting(c *gin.Context) {
	list, err := h.requests.ListByMeeting(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, list)
}

// PriorChoices lists the requests selectable as the prior reference of a
// re-evaluation or appeal.
func (h *RequestHandler) PriorChoices(c *gin.Context) {
	list, err := h.requests.PriorRequestChoices(c.Request.Context(), request.Objective(c.Query("objetivo")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, list)
}

func (h *RequestHandler) BeginTriage(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	r, err := h.requests.BeginTriage(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.metrics.TransitionsTotal.WithLabelValues(string(r.Status)).Inc()
	respondOK(c, r)
}

type noteBody struct {
	Note string `json:"observacao"`
}

// bindOptionalNote reads the note body when one was sent; the note itself is
// optional, so an absent body is fine.
func bindOptionalNote(c *gin.Context) (noteBody, bool) {
	var body noteBody
	if c.Request.ContentLength == 0 {
		return body, true
	}
	return body, bindJSON(c, &body)
}

func (h *RequestHandler) RequestInfo(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	body, ok := bindOptionalNote(c)
	if !ok {
		return
	}
	r, err := h.requests.RequestInfo(c.Request.Context(), id, body.Note)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.metrics.TransitionsTotal.WithLabelValues(string(r.Status)).Inc()
	respondOK(c, r)
}

func (h *RequestHandler) Forward(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	body, ok := bindOptionalNote(c)
	if !ok {
		return
	}
	r, err := h.requests.ForwardToClinicalDirection(c.Request.Context(), id, body.Note)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.metrics.TransitionsTotal.WithLabelValues(string(r.Status)).Inc()
	respondOK(c, r)
}

func (h *RequestHandler) Schedule(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var body struct {
		MeetingID string `json:"reuniaoId" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}
	r, err := h.requests.Schedule(c.Request.Context(), id, body.MeetingID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.metrics.TransitionsTotal.WithLabelValues(string(r.Status)).Inc()
	respondOK(c, r)
}

func (h *RequestHandler) Deliberate(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Verdict   string `json:"decisao" binding:"required"`
		Rationale string `json:"fundamentacao"`
	}
	if !bindJSON(c, &body) {
		return
	}
	r, err := h.requests.Deliberate(c.Request.Context(), id, request.Verdict(body.Verdict), body.Rationale)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.metrics.DeliberationsTotal.WithLabelValues(body.Verdict).Inc()
	h.metrics.TransitionsTotal.WithLabelValues(string(r.Status)).Inc()
	respondOK(c, r)
}

func (h *RequestHandler) AttachImpact(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var body struct {
		DrugID     string `json:"farmacoId" binding:"required"`
		Months     int    `json:"duracaoMeses" binding:"required"`
		Assessment string `json:"parecerFarmacia"`
	}
	if !bindJSON(c, &body) {
		return
	}
	r, err := h.requests.AttachImpact(c.Request.Context(), id, body.DrugID, body.Months, body.Assessment)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, r)
}

func (h *RequestHandler) Stats(c *gin.Context) {
	stats, err := h.requests.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, stats)
}
