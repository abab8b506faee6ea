package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/VIERNES-8020/domino-backend/api/responses"
	"github.com/VIERNES-8020/domino-backend/api/validators"
	"github.com/VIERNES-8020/domino-backend/internal/properties"
	pkgerrors "github.com/VIERNES-8020/domino-backend/pkg/errors"
	"github.com/VIERNES-8020/domino-backend/pkg/logger"
	"github.com/VIERNES-8020/domino-backend/pkg/types"
)

type createPropertyRequest struct {
	Title         string      `json:"title" validate:"required,min=3,max=200"`
	Description   string      `json:"description" validate:"omitempty,max=8000"`
	PropertyType  string      `json:"property_type" validate:"required"`
	Price         float64     `json:"price" validate:"required,gt=0"`
	Currency      string      `json:"currency" validate:"omitempty"`
	Address       string      `json:"address" validate:"required,min=3,max=300"`
	City          string      `json:"city" validate:"required,min=2,max=120"`
	Zone          *string     `json:"zone,omitempty" validate:"omitempty,max=120"`
	Bedrooms      *int        `json:"bedrooms,omitempty" validate:"omitempty,gte=0"`
	Bathrooms     *int        `json:"bathrooms,omitempty" validate:"omitempty,gte=0"`
	AreaM2        *float64    `json:"area_m2,omitempty" validate:"omitempty,gt=0"`
	ImageMediaIDs []uuid.UUID `json:"image_media_ids,omitempty"`
	CoverImageID  *uuid.UUID  `json:"cover_image_id,omitempty"`
}

type updatePropertyRequest struct {
	Title         *string      `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description   *string      `json:"description,omitempty" validate:"omitempty,max=8000"`
	Status        *string      `json:"status,omitempty"`
	Price         *float64     `json:"price,omitempty" validate:"omitempty,gt=0"`
	Address       *string      `json:"address,omitempty" validate:"omitempty,min=3,max=300"`
	City          *string      `json:"city,omitempty" validate:"omitempty,min=2,max=120"`
	Zone          *string      `json:"zone,omitempty" validate:"omitempty,max=120"`
	Bedrooms      *int         `json:"bedrooms,omitempty" validate:"omitempty,gte=0"`
	Bathrooms     *int         `json:"bathrooms,omitempty" validate:"omitempty,gte=0"`
	AreaM2        *float64     `json:"area_m2,omitempty" validate:"omitempty,gt=0"`
	ImageMediaIDs *[]uuid.UUID `json:"image_media_ids,omitempty"`
	// Distinguishes "leave the cover alone" (absent) from "clear it" (null).
	CoverImageID types.NullableUUID `json:"cover_image_id,omitempty"`
}

func propertyViewer(r *http.Request) (properties.Viewer, error) {
	userID, err := actorID(r)
	if err != nil {
		return properties.Viewer{}, err
	}
	return properties.Viewer{UserID: userID, Role: actorRole(r)}, nil
}

func propertyListParams(r *http.Request) (properties.ListParams, error) {
	limit, err := queryLimit(r)
	if err != nil {
		return properties.ListParams{}, err
	}
	minPrice, err := queryFloat(r, "min_price")
	if err != nil {
		return properties.ListParams{}, err
	}
	maxPrice, err := queryFloat(r, "max_price")
	if err != nil {
		return properties.ListParams{}, err
	}
	return properties.ListParams{
		City:     queryString(r, "city"),
		Type:     queryString(r, "type"),
		Status:   queryString(r, "status"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Limit:    limit,
		Cursor:   queryString(r, "cursor"),
	}, nil
}

// PropertyCreate registers a new listing owned by the authenticated agent.
func PropertyCreate(svc properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "properties service unavailable"))
			return
		}

		agentID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createPropertyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Create(r.Context(), agentID, properties.CreatePropertyDTO{
			Title:         req.Title,
			Description:   req.Description,
			PropertyType:  req.PropertyType,
			Price:         req.Price,
			Currency:      req.Currency,
			Address:       req.Address,
			City:          req.City,
			Zone:          req.Zone,
			Bedrooms:      req.Bedrooms,
			Bathrooms:     req.Bathrooms,
			AreaM2:        req.AreaM2,
			ImageMediaIDs: req.ImageMediaIDs,
			CoverImageID:  req.CoverImageID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

// PropertyGet returns one listing visible to the viewer.
func PropertyGet(svc properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "properties service unavailable"))
			return
		}

		viewer, err := propertyViewer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		propertyID, err := pathUUID(r, "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Get(r.Context(), viewer, propertyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// PropertyList pages through the viewer's listings; admins see everything.
func PropertyList(svc properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "properties service unavailable"))
			return
		}

		viewer, err := propertyViewer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := propertyListParams(r)
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

// PropertyUpdate patches a listing the viewer owns.
func PropertyUpdate(svc properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "properties service unavailable"))
			return
		}

		viewer, err := propertyViewer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		propertyID, err := pathUUID(r, "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updatePropertyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Update(r.Context(), viewer, propertyID, properties.UpdatePropertyDTO{
			Title:         req.Title,
			Description:   req.Description,
			Status:        req.Status,
			Price:         req.Price,
			Address:       req.Address,
			City:          req.City,
			Zone:          req.Zone,
			Bedrooms:      req.Bedrooms,
			Bathrooms:     req.Bathrooms,
			AreaM2:        req.AreaM2,
			ImageMediaIDs: req.ImageMediaIDs,
			CoverImageID:  req.CoverImageID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// PropertyDelete removes a listing the viewer owns.
func PropertyDelete(svc properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "properties service unavailable"))
			return
		}

		viewer, err := propertyViewer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		propertyID, err := pathUUID(r, "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), viewer, propertyID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusNoContent, nil)
	}
}
