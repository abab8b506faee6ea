package closures

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/VIERNES-8020/domino-backend/pkg/db/models"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
)

func setupClosuresTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL DEFAULT '',
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  phone TEXT,
  role TEXT NOT NULL,
  avatar_media_id TEXT,
  bio TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	properties := `
CREATE TABLE IF NOT EXISTS properties (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL,
  agent_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  property_type TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'available',
  price REAL NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  address TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL,
  zone TEXT,
  bedrooms INTEGER,
  bathrooms INTEGER,
  area_m2 REAL,
  image_media_ids TEXT,
  cover_image_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	saleClosures := `
CREATE TABLE IF NOT EXISTS sale_closures (
  id TEXT PRIMARY KEY,
  property_id TEXT NOT NULL,
  agent_captador_id TEXT NOT NULL,
  agent_vendedor_id TEXT NOT NULL,
  transaction_type TEXT NOT NULL,
  published_price REAL NOT NULL,
  closure_price REAL NOT NULL,
  currency TEXT NOT NULL,
  office_pct REAL NOT NULL,
  captador_pct REAL NOT NULL,
  vendedor_pct REAL NOT NULL,
  office_amount REAL NOT NULL,
  captador_amount REAL NOT NULL,
  vendedor_amount REAL NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  validated_by TEXT,
  validated_at DATETIME,
  rejection_reason TEXT,
  contract_media_id TEXT NOT NULL,
  voucher_media_ids TEXT,
  notes TEXT,
  closure_date DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	require.NoError(t, db.Exec(properties).Error)
	require.NoError(t, db.Exec(saleClosures).Error)
	// The shared-cache DSN keeps rows alive across tests in this package.
	require.NoError(t, db.Exec(`DELETE FROM sale_closures`).Error)
	require.NoError(t, db.Exec(`DELETE FROM properties`).Error)
	require.NoError(t, db.Exec(`DELETE FROM users`).Error)
	return db
}

func newAgent(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	user := &models.User{
		ID:        uuid.New(),
		Email:     name + "@dominoinmobiliaria.com",
		FirstName: name,
		LastName:  "Agent",
		Role:      enums.UserRoleAgent,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newListing(t *testing.T, db *gorm.DB, agent *models.User) *models.Property {
	t.Helper()

	property := &models.Property{
		ID:           uuid.New(),
		Code:         "DI-" + uuid.NewString()[:8],
		AgentID:      agent.ID,
		Title:        "Casa en Equipetrol",
		PropertyType: enums.PropertyTypeHouse,
		Status:       enums.PropertyStatusAvailable,
		Price:        185000,
		Currency:     enums.CurrencyUSD,
		City:         "Santa Cruz",
	}
	require.NoError(t, db.Create(property).Error)
	return property
}

func createClosure(t *testing.T, db *gorm.DB, property *models.Property, captador, vendedor *models.User, created time.Time) *models.SaleClosure {
	t.Helper()

	closure := &models.SaleClosure{
		ID:              uuid.New(),
		PropertyID:      property.ID,
		AgentCaptadorID: captador.ID,
		AgentVendedorID: vendedor.ID,
		TransactionType: enums.TransactionTypeSale,
		PublishedPrice:  185000,
		ClosurePrice:    180000,
		Currency:        enums.CurrencyUSD,
		OfficePct:       50,
		CaptadorPct:     25,
		VendedorPct:     25,
		OfficeAmount:    90000,
		CaptadorAmount:  45000,
		VendedorAmount:  45000,
		Status:          enums.ClosureStatusPending,
		ContractMediaID: uuid.New(),
		ClosureDate:     created,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	require.NoError(t, db.Create(closure).Error)
	return closure
}

func TestRepositoryList_viewerScoping(t *testing.T) {
	db := setupClosuresTestDB(t)
	repo := NewRepository(db)

	captador := newAgent(t, db, "maria.rojas")
	vendedor := newAgent(t, db, "jorge.paz")
	outsider := newAgent(t, db, "lucia.vaca")
	listing := newListing(t, db, captador)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mine := createClosure(t, db, listing, captador, vendedor, base)
	createClosure(t, db, listing, outsider, outsider, base.Add(time.Hour))

	rows, cursor, err := repo.List(context.Background(), listClosuresParams{ViewerID: captador.ID})
	require.NoError(t, err)
	assert.Nil(t, cursor)
	require.Len(t, rows, 1)
	assert.Equal(t, mine.ID, rows[0].ID)

	// The vendedor side of the split sees the same closure.
	rows, _, err = repo.List(context.Background(), listClosuresParams{ViewerID: vendedor.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, mine.ID, rows[0].ID)

	// Admin listing: no viewer restriction.
	rows, _, err = repo.List(context.Background(), listClosuresParams{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRepositoryList_pagination(t *testing.T) {
	db := setupClosuresTestDB(t)
	repo := NewRepository(db)

	captador := newAgent(t, db, "maria.rojas")
	vendedor := newAgent(t, db, "jorge.paz")
	listing := newListing(t, db, captador)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		createClosure(t, db, listing, captador, vendedor, base.Add(time.Duration(i)*time.Hour))
	}

	first, cursor, err := repo.List(context.Background(), listClosuresParams{Limit: 2})
	require.NoError(t, err)
	require.NotNil(t, cursor)
	require.Len(t, first, 2)
	// Newest first.
	assert.True(t, first[0].CreatedAt.After(first[1].CreatedAt))

	second, cursor, err := repo.List(context.Background(), listClosuresParams{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	assert.Nil(t, cursor)
	require.Len(t, second, 1)
	assert.True(t, first[1].CreatedAt.After(second[0].CreatedAt))
}

func TestRepositoryUpdateReviewTx_lastWriteWins(t *testing.T) {
	db := setupClosuresTestDB(t)
	repo := NewRepository(db)

	captador := newAgent(t, db, "maria.rojas")
	vendedor := newAgent(t, db, "jorge.paz")
	admin := newAgent(t, db, "admin")
	listing := newListing(t, db, captador)
	closure := createClosure(t, db, listing, captador, vendedor, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Transaction(context.Background(), func(tx *gorm.DB) error {
		affected, err := repo.UpdateReviewTx(tx, closure.ID, map[string]any{
			"status":           enums.ClosureStatusValidated,
			"validated_by":     admin.ID,
			"validated_at":     now,
			"rejection_reason": nil,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 1, affected)
		return nil
	}))

	// A second review overwrites the first; there is no status guard.
	reason := "falta el comprobante del anticipo"
	require.NoError(t, repo.Transaction(context.Background(), func(tx *gorm.DB) error {
		_, err := repo.UpdateReviewTx(tx, closure.ID, map[string]any{
			"status":           enums.ClosureStatusRejected,
			"validated_by":     admin.ID,
			"validated_at":     now.Add(time.Minute),
			"rejection_reason": reason,
		})
		return err
	}))

	got, err := repo.FindByID(context.Background(), closure.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ClosureStatusRejected, got.Status)
	require.NotNil(t, got.RejectionReason)
	assert.Equal(t, reason, *got.RejectionReason)
	require.NotNil(t, got.Validator)
	assert.Equal(t, admin.ID, got.Validator.ID)
}
