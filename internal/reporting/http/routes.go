package reportinghttp

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers report endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(20, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Route("/reports", func(rr chi.Router) {
		rr.Use(limitExports(limiter))
		rr.Get("/overview", h.handleOverview)
		rr.Get("/ledger", h.handleLedger)
		rr.Get("/cash-book", h.handleCashBook)
		rr.Get("/summary", h.handleSummary)
		rr.Get("/trial-balance", h.handleTrialBalance)
		rr.Get("/pl", h.handleProfitAndLoss)
		rr.Get("/bs", h.handleBalanceSheet)
		rr.Get("/stock", h.handleStock)
		rr.Get("/raw-material", h.handleRawMaterial)
		rr.Get("/packing", h.handlePacking)
		rr.Get("/production", h.handleProduction)
		rr.Get("/integrity", h.handleIntegrity)
	})
}

// limitExports rate limits CSV downloads only.
func limitExports(limiter func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := limiter(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request) (string, error) {
	if actor := strings.TrimSpace(r.Header.Get("X-Actor")); actor != "" {
		return "actor:" + actor, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
