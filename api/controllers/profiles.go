package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/VIERNES-8020/domino-backend/api/responses"
	"github.com/VIERNES-8020/domino-backend/api/validators"
	"github.com/VIERNES-8020/domino-backend/internal/users"
	pkgerrors "github.com/VIERNES-8020/domino-backend/pkg/errors"
	"github.com/VIERNES-8020/domino-backend/pkg/logger"
)

type updateProfileRequest struct {
	FirstName     *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=120"`
	LastName      *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=120"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Bio           *string `json:"bio,omitempty" validate:"omitempty,max=2000"`
	AvatarMediaID *string `json:"avatar_media_id,omitempty" validate:"omitempty,uuid"`
}

func (req updateProfileRequest) toDTO() (users.UpdateProfileDTO, error) {
	dto := users.UpdateProfileDTO{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Bio:       req.Bio,
	}
	if req.AvatarMediaID != nil {
		id, err := uuid.Parse(*req.AvatarMediaID)
		if err != nil {
			return dto, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid avatar_media_id")
		}
		dto.AvatarMediaID = &id
	}
	return dto, nil
}

// ProfileGet returns the authenticated user's own profile.
func ProfileGet(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.GetProfile(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// ProfileUpdate patches the authenticated user's own profile.
func ProfileUpdate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateProfileRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := req.toDTO()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.UpdateProfile(r.Context(), userID, dto)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}
