package controllers

import (
	"net/http"

	"github.com/VIERNES-8020/domino-backend/api/responses"
	"github.com/VIERNES-8020/domino-backend/api/validators"
	"github.com/VIERNES-8020/domino-backend/internal/closures"
	pkgerrors "github.com/VIERNES-8020/domino-backend/pkg/errors"
	"github.com/VIERNES-8020/domino-backend/pkg/logger"
)

func closureViewer(r *http.Request) (closures.Viewer, error) {
	userID, err := actorID(r)
	if err != nil {
		return closures.Viewer{}, err
	}
	return closures.Viewer{UserID: userID, Role: actorRole(r)}, nil
}

func closureListParams(r *http.Request) (closures.ListParams, error) {
	limit, err := queryLimit(r)
	if err != nil {
		return closures.ListParams{}, err
	}
	return closures.ListParams{
		Status: queryString(r, "status"),
		Limit:  limit,
		Cursor: queryString(r, "cursor"),
	}, nil
}

// ClosureSubmit registers a closed deal for admin review.
func ClosureSubmit(svc closures.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "closures service unavailable"))
			return
		}

		submitterID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req closures.SubmitClosureDTO
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Submit(r.Context(), submitterID, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

// ClosureGet returns one closure the viewer participates in.
func ClosureGet(svc closures.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "closures service unavailable"))
			return
		}

		viewer, err := closureViewer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		closureID, err := pathUUID(r, "closureId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Get(r.Context(), viewer, closureID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// ClosureList pages through closures scoped to the viewer.
func ClosureList(svc closures.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "closures service unavailable"))
			return
		}

		viewer, err := closureViewer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := closureListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.List(r.Context(), viewer, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// ClosureStats returns per-status counts and per-currency validated volume
// for the viewer's own closures; admin and accounting see the whole office.
func ClosureStats(svc closures.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "closures service unavailable"))
			return
		}

		viewer, err := closureViewer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Stats(r.Context(), viewer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}
