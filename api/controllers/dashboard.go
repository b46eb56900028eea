package controllers

import (
	"net/http"

	"github.com/gegsoft/paytrack-backend/api/middleware"
	"github.com/gegsoft/paytrack-backend/api/responses"
	"github.com/gegsoft/paytrack-backend/internal/dashboard"
	"github.com/gegsoft/paytrack-backend/pkg/logger"
)

func DashboardSummary(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summary(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
