package controllers

import (
	"net/http"

	"github.com/gegsoft/paytrack-backend/api/middleware"
	"github.com/gegsoft/paytrack-backend/api/responses"
	"github.com/gegsoft/paytrack-backend/api/validators"
	"github.com/gegsoft/paytrack-backend/internal/activity"
	"github.com/gegsoft/paytrack-backend/pkg/logger"
	pkgpagination "github.com/gegsoft/paytrack-backend/pkg/pagination"
)

func ActivityList(svc activity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pkgpagination.DefaultLimit, 1, pkgpagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actorUserID, err := validators.ParseQueryUUID(r, "actor_user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := activity.ListParams{
			ActorUserID: actorUserID,
			TargetTable: r.URL.Query().Get("target_table"),
		}
		params.Limit = limit
		params.Cursor = r.URL.Query().Get("cursor")

		result, err := svc.ListActivity(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
