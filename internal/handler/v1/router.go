package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hospitalops/cftflow/pkg/metrics"
)

// NewRouter assembles the portal routes. The three portals share one engine;
// role separation is a front-end concern here (authentication is out of
// scope).
func NewRouter(
	wizardH *WizardHandler,
	requestH *RequestHandler,
	catalogH *CatalogHandler,
	col *metrics.Collector,
	log *zap.Logger,
	serviceName string,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log), Metrics(col), Tracing(serviceName))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := r.Group("/api/v1")

	// Submitter portal
	wiz := api.Group("/wizard")
	wiz.POST("/resolve", wizardH.Resolve)
	wiz.POST("/validate/:step", wizardH.ValidateStep)
	wiz.POST("/linkage", wizardH.SetLinkage)
	wiz.POST("/objective", wizardH.SetObjective)
	wiz.POST("/patient-number", wizardH.SetPatientNumber)
	wiz.POST("/external-patient", wizardH.SetExternalPatient)
	wiz.PUT("/draft", wizardH.SaveDraft)
	wiz.GET("/draft", wizardH.LoadDraft)
	wiz.DELETE("/draft", wizardH.DiscardDraft)

	// Ledger: submission plus the triage and committee portals
	reqs := api.Group("/requests")
	reqs.POST("", wizardH.Submit)
	reqs.GET("", requestH.List)
	reqs.GET("/prior-choices", requestH.PriorChoices)
	reqs.GET("/:id", requestH.Get)
	reqs.POST("/:id/triage", requestH.BeginTriage)
	reqs.POST("/:id/info", requestH.RequestInfo)
	reqs.POST("/:id/forward", requestH.Forward)
	reqs.POST("/:id/schedule", requestH.Schedule)
	reqs.POST("/:id/deliberate", requestH.Deliberate)
	reqs.POST("/:id/impact", requestH.AttachImpact)

	api.GET("/meetings/:id/requests", requestH.ListByMeeting)
	api.GET("/stats", requestH.Stats)

	cat := api.Group("/catalog")
	cat.GET("/farmacos", catalogH.Drugs)
	cat.GET("/servicos", catalogH.Services)
	cat.GET("/tipos-pedido", catalogH.RequestTypes)
	cat.GET("/reunioes", catalogH.Meetings)

	return r
}
