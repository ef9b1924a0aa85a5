package router

import (
	"github.com/hoa/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// BillingRoutes registers the billing domain endpoints
type BillingRoutes struct {
	periodHandler         *handler.BillingPeriodHandler
	accrualHandler        *handler.AccrualHandler
	paymentHandler        *handler.PaymentHandler
	reconciliationHandler *handler.ReconciliationHandler
	planHandler           *handler.RepaymentPlanHandler
	tariffHandler         *handler.TariffHandler
}

// NewBillingRoutes creates the billing route registrar
func NewBillingRoutes(
	periodHandler *handler.BillingPeriodHandler,
	accrualHandler *handler.AccrualHandler,
	paymentHandler *handler.PaymentHandler,
	reconciliationHandler *handler.ReconciliationHandler,
	planHandler *handler.RepaymentPlanHandler,
	tariffHandler *handler.TariffHandler,
) *BillingRoutes {
	return &BillingRoutes{
		periodHandler:         periodHandler,
		accrualHandler:        accrualHandler,
		paymentHandler:        paymentHandler,
		reconciliationHandler: reconciliationHandler,
		planHandler:           planHandler,
		tariffHandler:         tariffHandler,
	}
}

// RegisterRoutes registers all billing endpoints
func (br *BillingRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	billing := rg.Group("/billing")

	periods := billing.Group("/periods")
	{
		periods.POST("", br.periodHandler.Create)
		periods.GET("", br.periodHandler.List)
		periods.GET("/:id", br.periodHandler.Get)
		periods.POST("/:id/lock", br.periodHandler.Lock)
		periods.POST("/:id/unlock", br.periodHandler.Unlock)

		periods.POST("/:id/accruals/generate", br.accrualHandler.Generate)
		periods.GET("/:id/accruals", br.accrualHandler.List)
		periods.PUT("/:id/accruals/electric", br.accrualHandler.UpsertElectric)

		periods.GET("/:id/reconciliation", br.reconciliationHandler.ForPeriod)
	}

	payments := billing.Group("/payments")
	{
		payments.POST("/import", br.paymentHandler.Import)
	}

	plots := billing.Group("/plots")
	{
		plots.GET("/:id/statement", br.reconciliationHandler.ForPlot)
		plots.PUT("/:id/repayment-plan", br.planHandler.Upsert)
		plots.GET("/:id/repayment-plans", br.planHandler.ListByPlot)
	}

	plans := billing.Group("/repayment-plans")
	{
		plans.GET("", br.planHandler.List)
		plans.GET("/:id", br.planHandler.Get)
	}

	tariffs := billing.Group("/tariffs")
	{
		tariffs.POST("", br.tariffHandler.Create)
		tariffs.GET("", br.tariffHandler.List)
		tariffs.GET("/:id", br.tariffHandler.Get)
		tariffs.PATCH("/:id/status", br.tariffHandler.SetStatus)
		tariffs.POST("/:id/overrides", br.tariffHandler.CreateOverride)
		tariffs.GET("/:id/overrides", br.tariffHandler.ListOverrides)
	}

	billing.DELETE("/overrides/:id", br.tariffHandler.DeleteOverride)
}
