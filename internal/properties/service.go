package properties

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VIERNES-8020/domino-backend/pkg/db/models"
	dbtypes "github.com/VIERNES-8020/domino-backend/pkg/db/types"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
	pkgerrors "github.com/VIERNES-8020/domino-backend/pkg/errors"
	"github.com/VIERNES-8020/domino-backend/pkg/logger"
	"github.com/VIERNES-8020/domino-backend/pkg/pagination"
)

// Service defines agent listing CRUD plus the public catalog.
type Service interface {
	Create(ctx context.Context, agentID uuid.UUID, dto CreatePropertyDTO) (*PropertyDTO, error)
	Get(ctx context.Context, viewer Viewer, id uuid.UUID) (*PropertyDTO, error)
	List(ctx context.Context, viewer Viewer, params ListParams) (*ListResult, error)
	Update(ctx context.Context, viewer Viewer, id uuid.UUID, dto UpdatePropertyDTO) (*PropertyDTO, error)
	Delete(ctx context.Context, viewer Viewer, id uuid.UUID) error
	PublicList(ctx context.Context, params ListParams) (*ListResult, error)
	PublicGet(ctx context.Context, id uuid.UUID) (*PropertyDTO, error)
}

// Viewer identifies the requesting actor for row scoping.
type Viewer struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

func (v Viewer) seesAll() bool {
	return v.Role.IsAdmin()
}

type imageVerifier interface {
	FilterOwned(ctx context.Context, ownerID uuid.UUID, kind enums.MediaKind, ids []uuid.UUID) ([]uuid.UUID, error)
}

type service struct {
	repo   Repository
	images imageVerifier
	logg   *logger.Logger
}

// NewService wires the properties service.
func NewService(repo Repository, images imageVerifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "properties repository required")
	}
	if images == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "image verifier required")
	}
	return &service{repo: repo, images: images, logg: logg}, nil
}

// ListParams configures listing filters and pagination.
type ListParams struct {
	City     string
	Type     string
	Status   string
	MinPrice *float64
	MaxPrice *float64
	Limit    int
	Cursor   string
}

// ListResult is one page of listings plus the next-page cursor.
type ListResult struct {
	Items      []PropertyDTO `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

func (s *service) Create(ctx context.Context, agentID uuid.UUID, dto CreatePropertyDTO) (*PropertyDTO, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	if strings.TrimSpace(dto.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if strings.TrimSpace(dto.City) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "city required")
	}
	if dto.Price <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	propertyType, err := enums.ParsePropertyType(dto.PropertyType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid property_type")
	}
	currency := enums.CurrencyUSD
	if dto.Currency != "" {
		currency, err = enums.ParseCurrency(dto.Currency)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
		}
	}

	// Unverifiable image attachments are dropped, not fatal. The listing is
	// still worth saving without its photos; closures are the opposite case.
	images := s.verifiedImages(ctx, agentID, dto.ImageMediaIDs)

	property := dto.toModel(newListingCode(), agentID, propertyType, currency, images)
	if err := s.repo.Create(ctx, property); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create property")
	}
	return s.Get(ctx, Viewer{UserID: agentID, Role: enums.UserRoleAgent}, property.ID)
}

func (s *service) Get(ctx context.Context, viewer Viewer, id uuid.UUID) (*PropertyDTO, error) {
	property, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.seesAll() && property.AgentID != viewer.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
	}
	return FromModel(property), nil
}

func (s *service) List(ctx context.Context, viewer Viewer, params ListParams) (*ListResult, error) {
	query, err := buildListParams(params)
	if err != nil {
		return nil, err
	}
	if !viewer.seesAll() {
		query.AgentID = viewer.UserID
	}
	return s.list(ctx, query)
}

func (s *service) Update(ctx context.Context, viewer Viewer, id uuid.UUID, dto UpdatePropertyDTO) (*PropertyDTO, error) {
	property, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.seesAll() && property.AgentID != viewer.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
	}

	updates := map[string]any{}
	if dto.Title != nil {
		if strings.TrimSpace(*dto.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
		}
		updates["title"] = *dto.Title
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.Status != nil {
		status, err := enums.ParsePropertyStatus(*dto.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
		}
		updates["status"] = status
	}
	if dto.Price != nil {
		if *dto.Price <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		updates["price"] = *dto.Price
	}
	if dto.Address != nil {
		updates["address"] = *dto.Address
	}
	if dto.City != nil {
		if strings.TrimSpace(*dto.City) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "city required")
		}
		updates["city"] = *dto.City
	}
	if dto.Zone != nil {
		updates["zone"] = dto.Zone
	}
	if dto.Bedrooms != nil {
		updates["bedrooms"] = dto.Bedrooms
	}
	if dto.Bathrooms != nil {
		updates["bathrooms"] = dto.Bathrooms
	}
	if dto.AreaM2 != nil {
		updates["area_m2"] = dto.AreaM2
	}
	if dto.ImageMediaIDs != nil {
		images := s.verifiedImages(ctx, property.AgentID, *dto.ImageMediaIDs)
		updates["image_media_ids"] = dbtypes.UUIDArray(images)
	}
	if dto.CoverImageID.Valid {
		updates["cover_image_id"] = dto.CoverImageID.Value
	}

	if len(updates) > 0 {
		if _, err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update property")
		}
	}
	property, err = s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(property), nil
}

func (s *service) Delete(ctx context.Context, viewer Viewer, id uuid.UUID) error {
	property, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !viewer.seesAll() && property.AgentID != viewer.UserID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
	}

	if _, err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete property")
	}
	return nil
}

func (s *service) PublicList(ctx context.Context, params ListParams) (*ListResult, error) {
	query, err := buildListParams(params)
	if err != nil {
		return nil, err
	}
	query.Status = enums.PropertyStatusAvailable
	return s.list(ctx, query)
}

func (s *service) PublicGet(ctx context.Context, id uuid.UUID) (*PropertyDTO, error) {
	property, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if property.Status != enums.PropertyStatusAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
	}
	return FromModel(property), nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property id required")
	}
	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load property")
	}
	return property, nil
}

func (s *service) list(ctx context.Context, query listPropertiesParams) (*ListResult, error) {
	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list properties")
	}

	result := &ListResult{Items: make([]PropertyDTO, 0, len(rows))}
	for i := range rows {
		result.Items = append(result.Items, *FromModel(&rows[i]))
	}
	if next != nil {
		result.NextCursor = next.Encode()
	}
	return result, nil
}

func (s *service) verifiedImages(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return []uuid.UUID{}
	}
	verified, err := s.images.FilterOwned(ctx, ownerID, enums.MediaKindPropertyImage, ids)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "owner_id", ownerID.String()), "image verification failed, saving listing without images")
		}
		return []uuid.UUID{}
	}
	if len(verified) < len(ids) && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"owner_id": ownerID.String(),
			"supplied": len(ids),
			"verified": len(verified),
		}), "dropped unverified listing images")
	}
	return verified
}

func buildListParams(params ListParams) (listPropertiesParams, error) {
	query := listPropertiesParams{
		City:     strings.TrimSpace(params.City),
		MinPrice: params.MinPrice,
		MaxPrice: params.MaxPrice,
		Limit:    params.Limit,
	}

	if params.Type != "" {
		propertyType, err := enums.ParsePropertyType(params.Type)
		if err != nil {
			return listPropertiesParams{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid property_type filter")
		}
		query.Type = propertyType
	}
	if params.Status != "" {
		status, err := enums.ParsePropertyStatus(params.Status)
		if err != nil {
			return listPropertiesParams{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		query.Status = status
	}
	if params.Cursor != "" {
		cursor, err := pagination.Parse(params.Cursor)
		if err != nil {
			return listPropertiesParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}
	return query, nil
}

// newListingCode mints the short human reference printed on flyers and used
// over the phone.
func newListingCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "DOM-" + raw[:8]
}
