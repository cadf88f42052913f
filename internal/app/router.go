package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/usman-global/usman-books/internal/accounting"
	"github.com/usman-global/usman-books/internal/assets"
	"github.com/usman-global/usman-books/internal/inventory"
	"github.com/usman-global/usman-books/internal/masterdata"
	"github.com/usman-global/usman-books/internal/observability"
	"github.com/usman-global/usman-books/internal/planner"
	"github.com/usman-global/usman-books/internal/platform/httpx"
	reportinghttp "github.com/usman-global/usman-books/internal/reporting/http"
)

// StateVersioner reports the committed state version for health checks.
type StateVersioner interface {
	Version() int64
}

// Mounter attaches additional routes, e.g. the jobs health endpoint.
type Mounter interface {
	MountRoutes(r chi.Router)
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	State             StateVersioner
	AccountingHandler *accounting.Handler
	AssetsHandler     *assets.Handler
	InventoryHandler  *inventory.Handler
	PlannerHandler    *planner.Handler
	MasterDataHandler *masterdata.Handler
	ReportsHandler    *reportinghttp.Handler
	Extra             []Mounter
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{"status": "ok"}
		if params.State != nil {
			body["stateVersion"] = params.State.Version()
		}
		httpx.JSON(w, http.StatusOK, body)
	})

	if params.AccountingHandler != nil {
		params.AccountingHandler.MountRoutes(r)
	}
	if params.AssetsHandler != nil {
		params.AssetsHandler.MountRoutes(r)
	}
	if params.InventoryHandler != nil {
		params.InventoryHandler.MountRoutes(r)
	}
	if params.PlannerHandler != nil {
		params.PlannerHandler.MountRoutes(r)
	}
	if params.MasterDataHandler != nil {
		params.MasterDataHandler.MountRoutes(r)
	}
	if params.ReportsHandler != nil {
		params.ReportsHandler.MountRoutes(r)
	}
	for _, m := range params.Extra {
		if m != nil {
			m.MountRoutes(r)
		}
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	return r
}
