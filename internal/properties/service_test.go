package properties

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VIERNES-8020/domino-backend/pkg/db/models"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
	pkgerrors "github.com/VIERNES-8020/domino-backend/pkg/errors"
	"github.com/VIERNES-8020/domino-backend/pkg/pagination"
	"github.com/VIERNES-8020/domino-backend/pkg/types"
)

type fakePropertyRepo struct {
	rows     map[uuid.UUID]*models.Property
	lastList listPropertiesParams
}

func newFakePropertyRepo() *fakePropertyRepo {
	return &fakePropertyRepo{rows: map[uuid.UUID]*models.Property{}}
}

func (f *fakePropertyRepo) Create(_ context.Context, property *models.Property) error {
	if property.ID == uuid.Nil {
		property.ID = uuid.New()
	}
	property.CreatedAt = time.Now().UTC()
	f.rows[property.ID] = property
	return nil
}

func (f *fakePropertyRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	property, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return property, nil
}

func (f *fakePropertyRepo) List(_ context.Context, params listPropertiesParams) ([]models.Property, *pagination.Cursor, error) {
	f.lastList = params
	var out []models.Property
	for _, row := range f.rows {
		if params.AgentID != uuid.Nil && row.AgentID != params.AgentID {
			continue
		}
		if params.Status != "" && row.Status != params.Status {
			continue
		}
		out = append(out, *row)
	}
	return out, nil, nil
}

func (f *fakePropertyRepo) Update(_ context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	property, ok := f.rows[id]
	if !ok {
		return 0, nil
	}
	if title, ok := updates["title"].(string); ok {
		property.Title = title
	}
	if status, ok := updates["status"].(enums.PropertyStatus); ok {
		property.Status = status
	}
	if price, ok := updates["price"].(float64); ok {
		property.Price = price
	}
	if cover, ok := updates["cover_image_id"]; ok {
		property.CoverImageID, _ = cover.(*uuid.UUID)
	}
	return 1, nil
}

func (f *fakePropertyRepo) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	if _, ok := f.rows[id]; !ok {
		return 0, nil
	}
	delete(f.rows, id)
	return 1, nil
}

type fakeImageVerifier struct {
	owned map[uuid.UUID]bool
	calls int
}

func (f *fakeImageVerifier) FilterOwned(_ context.Context, _ uuid.UUID, _ enums.MediaKind, ids []uuid.UUID) ([]uuid.UUID, error) {
	f.calls++
	var verified []uuid.UUID
	for _, id := range ids {
		if f.owned[id] {
			verified = append(verified, id)
		}
	}
	return verified, nil
}

func newTestService(t *testing.T, repo *fakePropertyRepo, images *fakeImageVerifier) Service {
	t.Helper()
	if images == nil {
		images = &fakeImageVerifier{owned: map[uuid.UUID]bool{}}
	}
	svc, err := NewService(repo, images, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func validCreate() CreatePropertyDTO {
	return CreatePropertyDTO{
		Title:        "Casa en Equipetrol",
		PropertyType: "house",
		Price:        250000,
		Currency:     "USD",
		City:         "Santa Cruz",
	}
}

func TestCreateProperty(t *testing.T) {
	repo := newFakePropertyRepo()
	svc := newTestService(t, repo, nil)
	agentID := uuid.New()

	dto, err := svc.Create(context.Background(), agentID, validCreate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.AgentID != agentID {
		t.Fatalf("agent not set: %s", dto.AgentID)
	}
	if dto.Status != enums.PropertyStatusAvailable {
		t.Fatalf("new listings start available, got %q", dto.Status)
	}
	if !strings.HasPrefix(dto.Code, "DOM-") || len(dto.Code) != 12 {
		t.Fatalf("unexpected listing code %q", dto.Code)
	}
}

func TestCreatePropertyDropsUnverifiedImages(t *testing.T) {
	repo := newFakePropertyRepo()
	owned := uuid.New()
	stranger := uuid.New()
	images := &fakeImageVerifier{owned: map[uuid.UUID]bool{owned: true}}
	svc := newTestService(t, repo, images)

	create := validCreate()
	create.ImageMediaIDs = []uuid.UUID{owned, stranger}

	dto, err := svc.Create(context.Background(), uuid.New(), create)
	if err != nil {
		t.Fatalf("create should tolerate bad images: %v", err)
	}
	if len(dto.ImageMediaIDs) != 1 || dto.ImageMediaIDs[0] != owned {
		t.Fatalf("expected only the owned image, got %v", dto.ImageMediaIDs)
	}
}

func TestCreatePropertyValidation(t *testing.T) {
	svc := newTestService(t, newFakePropertyRepo(), nil)
	agentID := uuid.New()

	cases := []struct {
		name   string
		mutate func(*CreatePropertyDTO)
	}{
		{"missing title", func(d *CreatePropertyDTO) { d.Title = " " }},
		{"missing city", func(d *CreatePropertyDTO) { d.City = "" }},
		{"zero price", func(d *CreatePropertyDTO) { d.Price = 0 }},
		{"bad type", func(d *CreatePropertyDTO) { d.PropertyType = "castle" }},
		{"bad currency", func(d *CreatePropertyDTO) { d.Currency = "EUR" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dto := validCreate()
			tc.mutate(&dto)
			_, err := svc.Create(context.Background(), agentID, dto)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGetScopesToOwner(t *testing.T) {
	repo := newFakePropertyRepo()
	svc := newTestService(t, repo, nil)
	owner := uuid.New()

	created, err := svc.Create(context.Background(), owner, validCreate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(context.Background(), Viewer{UserID: owner, Role: enums.UserRoleAgent}, created.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}

	_, err = svc.Get(context.Background(), Viewer{UserID: uuid.New(), Role: enums.UserRoleAgent}, created.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("foreign agent should see not found, got %v", err)
	}

	if _, err := svc.Get(context.Background(), Viewer{UserID: uuid.New(), Role: enums.UserRoleAdmin}, created.ID); err != nil {
		t.Fatalf("admin get: %v", err)
	}
}

func TestListScopesByRole(t *testing.T) {
	repo := newFakePropertyRepo()
	svc := newTestService(t, repo, nil)
	agent := uuid.New()

	if _, err := svc.List(context.Background(), Viewer{UserID: agent, Role: enums.UserRoleAgent}, ListParams{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.lastList.AgentID != agent {
		t.Fatal("agent listing must be scoped to the agent")
	}

	if _, err := svc.List(context.Background(), Viewer{UserID: agent, Role: enums.UserRoleSuperAdmin}, ListParams{}); err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if repo.lastList.AgentID != uuid.Nil {
		t.Fatal("admin listing must not be agent scoped")
	}
}

func TestUpdateProperty(t *testing.T) {
	repo := newFakePropertyRepo()
	svc := newTestService(t, repo, nil)
	owner := uuid.New()

	created, _ := svc.Create(context.Background(), owner, validCreate())

	status := "sold"
	price := 240000.0
	dto, err := svc.Update(context.Background(), Viewer{UserID: owner, Role: enums.UserRoleAgent}, created.ID, UpdatePropertyDTO{
		Status: &status,
		Price:  &price,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.Status != enums.PropertyStatusSold {
		t.Fatalf("status not applied: %q", dto.Status)
	}
	if dto.Price != price {
		t.Fatalf("price not applied: %v", dto.Price)
	}

	bad := "demolished"
	if _, err := svc.Update(context.Background(), Viewer{UserID: owner, Role: enums.UserRoleAgent}, created.ID, UpdatePropertyDTO{Status: &bad}); err == nil {
		t.Fatal("invalid status should be rejected")
	}
}

func TestUpdatePropertyCoverImage(t *testing.T) {
	repo := newFakePropertyRepo()
	svc := newTestService(t, repo, nil)
	owner := uuid.New()
	viewer := Viewer{UserID: owner, Role: enums.UserRoleAgent}

	created, _ := svc.Create(context.Background(), owner, validCreate())

	cover := uuid.New()
	dto, err := svc.Update(context.Background(), viewer, created.ID, UpdatePropertyDTO{
		CoverImageID: types.NullableUUID{Valid: true, Value: &cover},
	})
	if err != nil {
		t.Fatalf("set cover: %v", err)
	}
	if dto.CoverImageID == nil || *dto.CoverImageID != cover {
		t.Fatalf("cover not applied: %v", dto.CoverImageID)
	}

	// Omitting the field must leave the cover alone.
	price := 310000.0
	dto, err = svc.Update(context.Background(), viewer, created.ID, UpdatePropertyDTO{Price: &price})
	if err != nil {
		t.Fatalf("update without cover: %v", err)
	}
	if dto.CoverImageID == nil || *dto.CoverImageID != cover {
		t.Fatalf("absent field must not touch the cover, got %v", dto.CoverImageID)
	}

	// An explicit null clears it.
	dto, err = svc.Update(context.Background(), viewer, created.ID, UpdatePropertyDTO{
		CoverImageID: types.NullableUUID{Valid: true},
	})
	if err != nil {
		t.Fatalf("clear cover: %v", err)
	}
	if dto.CoverImageID != nil {
		t.Fatalf("cover should be cleared, got %v", dto.CoverImageID)
	}
}

func TestPublicListingsOnlyAvailable(t *testing.T) {
	repo := newFakePropertyRepo()
	svc := newTestService(t, repo, nil)
	owner := uuid.New()

	created, _ := svc.Create(context.Background(), owner, validCreate())

	if _, err := svc.PublicList(context.Background(), ListParams{}); err != nil {
		t.Fatalf("public list: %v", err)
	}
	if repo.lastList.Status != enums.PropertyStatusAvailable {
		t.Fatal("public listing must filter to available")
	}

	if _, err := svc.PublicGet(context.Background(), created.ID); err != nil {
		t.Fatalf("public get available: %v", err)
	}

	status := "sold"
	if _, err := svc.Update(context.Background(), Viewer{UserID: owner, Role: enums.UserRoleAgent}, created.ID, UpdatePropertyDTO{Status: &status}); err != nil {
		t.Fatalf("update: %v", err)
	}
	_, err := svc.PublicGet(context.Background(), created.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("sold listing must be hidden from the public, got %v", err)
	}
}

func TestDeleteProperty(t *testing.T) {
	repo := newFakePropertyRepo()
	svc := newTestService(t, repo, nil)
	owner := uuid.New()

	created, _ := svc.Create(context.Background(), owner, validCreate())

	if err := svc.Delete(context.Background(), Viewer{UserID: uuid.New(), Role: enums.UserRoleAgent}, created.ID); err == nil {
		t.Fatal("foreign agent must not delete")
	}
	if err := svc.Delete(context.Background(), Viewer{UserID: owner, Role: enums.UserRoleAgent}, created.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if len(repo.rows) != 0 {
		t.Fatal("row should be gone")
	}
}
