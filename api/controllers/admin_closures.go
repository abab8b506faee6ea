package controllers

import (
	"net/http"

	"github.com/VIERNES-8020/domino-backend/api/responses"
	"github.com/VIERNES-8020/domino-backend/api/validators"
	"github.com/VIERNES-8020/domino-backend/internal/closures"
	pkgerrors "github.com/VIERNES-8020/domino-backend/pkg/errors"
	"github.com/VIERNES-8020/domino-backend/pkg/logger"
)

// AdminClosureValidate approves a submitted closure. A later review of the
// same closure simply overwrites this one.
func AdminClosureValidate(svc closures.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "closures service unavailable"))
			return
		}

		adminID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		closureID, err := pathUUID(r, "closureId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Validate(r.Context(), adminID, closureID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// AdminClosureReject rejects a submitted closure with a required reason.
func AdminClosureReject(svc closures.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "closures service unavailable"))
			return
		}

		adminID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		closureID, err := pathUUID(r, "closureId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req closures.RejectClosureDTO
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Reject(r.Context(), adminID, closureID, req.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}
