package v1

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hospitalops/cftflow/internal/catalog"
	"github.com/hospitalops/cftflow/internal/domain/request"
	"github.com/hospitalops/cftflow/internal/domain/wizard"
	"github.com/hospitalops/cftflow/internal/draft"
	"github.com/hospitalops/cftflow/internal/notify"
	"github.com/hospitalops/cftflow/internal/repository/memory"
	"github.com/hospitalops/cftflow/internal/service"
	"github.com/hospitalops/cftflow/pkg/metrics"
)

var (
	collectorOnce sync.Once
	collector     *metrics.Collector
)

// testCollector is shared because prometheus collectors register globally.
func testCollector() *metrics.Collector {
	collectorOnce.Do(func() {
		collector = metrics.NewCollector("cftflow_test")
	})
	return collector
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat, err := catalog.Load()
	require.NoError(t, err)

	drafts, err := draft.Open(filepath.Join(t.TempDir(), "drafts.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { drafts.Close() })

	col := testCollector()
	requestSvc := service.NewRequestService(memory.NewRequestRepository(), cat, zap.NewNop())
	submissionSvc := service.NewSubmissionService(requestSvc, drafts, cat, notify.NopSink{}, zap.NewNop())

	return NewRouter(
		NewWizardHandler(submissionSvc, col),
		NewRequestHandler(requestSvc, col),
		NewCatalogHandler(cat),
		col,
		zap.NewNop(),
		"cftflow-test",
	)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func submittableState() *wizard.State {
	s := wizard.NewState()
	s.Identification.Phone = "912345678"
	s.SetPatientLinkage(wizard.LinkageYes)
	s.SetPatientNumber("123456")
	s.SetObjective(wizard.ObjectiveNewTherapy)
	s.Classification = wizard.ClassificationOnLabel
	s.Clinical.Weight = "72"
	s.Clinical.ECOG = "1"
	s.Clinical.Indication = "Melanoma metastático"
	s.Clinical.Summary = "Primeira linha."
	s.Clinical.Drugs = []request.DrugLine{{ID: "1", DrugID: "pembrolizumab", DrugName: "Pembrolizumab", CostBorne: true}}
	return s
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWizardResolveEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/wizard/resolve", submittableState())
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Destination string   `json:"destino"`
		StepLabels  []string `json:"etapas"`
	}
	decodeData(t, rec, &got)
	assert.Equal(t, "on-label", got.Destination)
	require.Len(t, got.StepLabels, 3)
	assert.Equal(t, "Informação Clínica", got.StepLabels[2])
}

func TestWizardValidateStepEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/wizard/validate/1", wizard.NewState())
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		OK    bool   `json:"ok"`
		Title string `json:"titulo"`
	}
	decodeData(t, rec, &got)
	assert.False(t, got.OK)
	assert.Equal(t, "identification incomplete", got.Title)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/wizard/validate/1", submittableState())
	decodeData(t, rec, &got)
	assert.True(t, got.OK)
}

func TestSubmitAndWorkflowOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/requests", submittableState())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Request struct {
			ID     string `json:"id"`
			Code   string `json:"codigo"`
			Status string `json:"estado"`
		} `json:"pedido"`
		RequiresEthicsApproval bool `json:"requerCES"`
	}
	decodeData(t, rec, &created)
	assert.Regexp(t, `^CFT-\d{4}-\d{4}$`, created.Request.Code)
	assert.Equal(t, "submetido", created.Request.Status)
	assert.False(t, created.RequiresEthicsApproval)

	id := created.Request.ID

	rec = doJSON(t, router, http.MethodPost, "/api/v1/requests/"+id+"/triage", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/v1/requests/"+id+"/impact", map[string]any{
		"farmacoId":       "pembrolizumab",
		"duracaoMeses":    6,
		"parecerFarmacia": "Sem alternativa em formulário.",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/v1/requests/"+id+"/schedule", map[string]string{
		"reuniaoId": "cft-1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/v1/requests/"+id+"/deliberate", map[string]string{
		"decisao":       "favoravel",
		"fundamentacao": "Evidência robusta.",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var final request.Request
	rec = doJSON(t, router, http.MethodGet, "/api/v1/requests/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &final)
	assert.Equal(t, request.StatusApproved, final.Status)
	assert.Equal(t, request.VerdictFavorable, final.Verdict)
	assert.Len(t, final.History, 4)
	require.NotNil(t, final.Impact)
	assert.InDelta(t, 4250*1.33, final.Impact.MonthlyCost, 1e-9)
}

func TestSubmitRejectedByValidation(t *testing.T) {
	router := newTestRouter(t)

	state := submittableState()
	state.Clinical.Summary = ""
	rec := doJSON(t, router, http.MethodPost, "/api/v1/requests", state)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "clinical information incomplete")
}

func TestListFilterValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/requests?estado=todos", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/requests?estado=pendente", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUnknownRequest(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/requests/4f6c1c0a-0000-4000-8000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/requests/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidTransitionConflicts(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/requests", submittableState())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Request struct {
			ID string `json:"id"`
		} `json:"pedido"`
	}
	decodeData(t, rec, &created)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/requests/"+created.Request.ID+"/deliberate", map[string]string{
		"decisao": "favoravel",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// A deferred verdict must not slip past the agenda precondition just because
// its target state is reachable by scheduling.
func TestDeliberateDeferredWithoutAgendaConflicts(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/requests", submittableState())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Request struct {
			ID string `json:"id"`
		} `json:"pedido"`
	}
	decodeData(t, rec, &created)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/requests/"+created.Request.ID+"/deliberate", map[string]string{
		"decisao": "adiado",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// The triage note is optional: both endpoints accept an empty body.
func TestNoteEndpointsAcceptEmptyBody(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/requests", submittableState())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Request struct {
			ID string `json:"id"`
		} `json:"pedido"`
	}
	decodeData(t, rec, &created)
	id := created.Request.ID

	rec = doJSON(t, router, http.MethodPost, "/api/v1/requests/"+id+"/triage", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/requests/"+id+"/info", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated request.Request
	decodeData(t, rec, &updated)
	assert.Equal(t, request.StatusPendingInfo, updated.Status)
	assert.Equal(t, "Solicitada informação adicional ao médico", updated.History[len(updated.History)-1].Note)
}

func TestForwardWithNote(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/requests", submittableState())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Request struct {
			ID string `json:"id"`
		} `json:"pedido"`
	}
	decodeData(t, rec, &created)
	id := created.Request.ID

	rec = doJSON(t, router, http.MethodPost, "/api/v1/requests/"+id+"/triage", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/requests/"+id+"/forward", map[string]string{
		"observacao": "Fora do âmbito da CFT.",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated request.Request
	decodeData(t, rec, &updated)
	assert.Equal(t, request.StatusForwardedDC, updated.Status)
	assert.Equal(t, "Fora do âmbito da CFT.", updated.History[len(updated.History)-1].Note)
}

func TestScheduleUnknownMeetingOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/requests", submittableState())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Request struct {
			ID string `json:"id"`
		} `json:"pedido"`
	}
	decodeData(t, rec, &created)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/requests/"+created.Request.ID+"/schedule", map[string]string{
		"reuniaoId": "cft-99",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDraftEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/wizard/draft", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var draftResp struct {
		Restored bool `json:"restored"`
	}
	decodeData(t, rec, &draftResp)
	assert.False(t, draftResp.Restored)

	rec = doJSON(t, router, http.MethodPut, "/api/v1/wizard/draft", submittableState())
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/wizard/draft", nil)
	decodeData(t, rec, &draftResp)
	assert.True(t, draftResp.Restored)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/wizard/draft", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/wizard/draft", nil)
	decodeData(t, rec, &draftResp)
	assert.False(t, draftResp.Restored)
}

func TestCatalogEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{
		"/api/v1/catalog/farmacos",
		"/api/v1/catalog/servicos",
		"/api/v1/catalog/tipos-pedido",
		"/api/v1/catalog/reunioes",
	} {
		rec := doJSON(t, router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestStatsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats service.Stats
	decodeData(t, rec, &stats)
	assert.Zero(t, stats.Total)
}

func TestPriorChoicesEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/requests/prior-choices?objetivo=reavaliacao", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
