package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VIERNES-8020/domino-backend/internal/users"
	pkgauth "github.com/VIERNES-8020/domino-backend/pkg/auth"
	"github.com/VIERNES-8020/domino-backend/pkg/auth/session"
	"github.com/VIERNES-8020/domino-backend/pkg/config"
	"github.com/VIERNES-8020/domino-backend/pkg/db/models"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
	pkgerrors "github.com/VIERNES-8020/domino-backend/pkg/errors"
	"github.com/VIERNES-8020/domino-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{Secret: "test-secret", Issuer: "domino-test", ExpirationMinutes: 30}

type fakeUserRepo struct {
	byEmail    map[string]*models.User
	created    []users.CreateUserDTO
	createErr  error
	lastLogins map[uuid.UUID]time.Time
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail:    map[string]*models.User{},
		lastLogins: map[uuid.UUID]time.Time{},
	}
}

func (f *fakeUserRepo) Create(_ context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, exists := f.byEmail[dto.Email]; exists {
		return nil, errors.New(`duplicate key value violates unique constraint "ux_users_email"`)
	}
	f.created = append(f.created, dto)
	user := dto.ToModel()
	user.ID = uuid.New()
	f.byEmail[dto.Email] = user
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	f.lastLogins[id] = at
	return nil
}

type fakeSessionManager struct {
	generated []string
	revoked   []string
	rotateErr error
}

func (f *fakeSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	f.generated = append(f.generated, accessID)
	return "refresh-" + accessID, nil
}

func (f *fakeSessionManager) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	if f.rotateErr != nil {
		return "", "", f.rotateErr
	}
	if provided != "refresh-"+oldAccessID {
		return "", "", session.ErrInvalidRefreshToken
	}
	newID := session.NewAccessID()
	return newID, "refresh-" + newID, nil
}

func (f *fakeSessionManager) Revoke(_ context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	return nil
}

func newTestService(t *testing.T, repo *fakeUserRepo, sess *fakeSessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sess,
		JWTConfig:      testJWTConfig,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedActiveUser(t *testing.T, repo *fakeUserRepo, email, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Carla",
		LastName:     "Suarez",
		Role:         enums.UserRoleAgent,
		IsActive:     true,
	}
	repo.byEmail[email] = user
	return user
}

func TestRegisterCreatesAgentSession(t *testing.T) {
	repo := newFakeUserRepo()
	sess := &fakeSessionManager{}
	svc := newTestService(t, repo, sess)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "New.Agent@Domino.bo",
		Password:  "a-long-password",
		FirstName: "Nora",
		LastName:  "Paz",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 create, got %d", len(repo.created))
	}
	created := repo.created[0]
	if created.Email != "new.agent@domino.bo" {
		t.Fatalf("email not normalized: %q", created.Email)
	}
	if created.Role != enums.UserRoleAgent {
		t.Fatalf("new accounts must be agents, got %q", created.Role)
	}
	if created.PasswordHash == "a-long-password" {
		t.Fatal("password stored unhashed")
	}

	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.Role != enums.UserRoleAgent {
		t.Fatalf("unexpected claim role %q", claims.Role)
	}
	if len(sess.generated) != 1 || claims.ID != sess.generated[0] {
		t.Fatal("jti must match the generated session access id")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo, &fakeSessionManager{})

	req := RegisterRequest{Email: "dup@domino.bo", Password: "a-long-password", FirstName: "A", LastName: "B"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(context.Background(), req)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginSuccess(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedActiveUser(t, repo, "agent@domino.bo", "correct-horse-battery")
	sess := &fakeSessionManager{}
	svc := newTestService(t, repo, sess)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: " Agent@Domino.bo ", Password: "correct-horse-battery"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.User == nil || resp.User.ID != user.ID {
		t.Fatal("response should carry the authenticated user")
	}
	if _, ok := repo.lastLogins[user.ID]; !ok {
		t.Fatal("last login not recorded")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	seedActiveUser(t, repo, "agent@domino.bo", "correct-horse-battery")
	svc := newTestService(t, repo, &fakeSessionManager{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "agent@domino.bo", Password: "wrong"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownEmailIndistinguishable(t *testing.T) {
	repo := newFakeUserRepo()
	seedActiveUser(t, repo, "agent@domino.bo", "correct-horse-battery")
	svc := newTestService(t, repo, &fakeSessionManager{})

	_, errUnknown := svc.Login(context.Background(), LoginRequest{Email: "ghost@domino.bo", Password: "whatever"})
	_, errWrong := svc.Login(context.Background(), LoginRequest{Email: "agent@domino.bo", Password: "wrong"})

	if pkgerrors.As(errUnknown).Message() != pkgerrors.As(errWrong).Message() {
		t.Fatal("unknown email and wrong password must yield the same message")
	}
}

func TestLoginInactiveUser(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedActiveUser(t, repo, "agent@domino.bo", "correct-horse-battery")
	user.IsActive = false
	svc := newTestService(t, repo, &fakeSessionManager{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "agent@domino.bo", Password: "correct-horse-battery"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for inactive account, got %v", err)
	}
}

func TestRefreshRotatesPair(t *testing.T) {
	repo := newFakeUserRepo()
	seedActiveUser(t, repo, "agent@domino.bo", "correct-horse-battery")
	sess := &fakeSessionManager{}
	svc := newTestService(t, repo, sess)

	login, err := svc.Login(context.Background(), LoginRequest{Email: "agent@domino.bo", Password: "correct-horse-battery"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.AccessToken == login.AccessToken {
		t.Fatal("access token should rotate")
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatal("refresh token should rotate")
	}
}

func TestRefreshRejectsForeignToken(t *testing.T) {
	repo := newFakeUserRepo()
	seedActiveUser(t, repo, "agent@domino.bo", "correct-horse-battery")
	svc := newTestService(t, repo, &fakeSessionManager{})

	login, err := svc.Login(context.Background(), LoginRequest{Email: "agent@domino.bo", Password: "correct-horse-battery"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: "stolen-token",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	sess := &fakeSessionManager{}
	svc := newTestService(t, newFakeUserRepo(), sess)

	if err := svc.Logout(context.Background(), "access-123"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sess.revoked) != 1 || sess.revoked[0] != "access-123" {
		t.Fatalf("session not revoked: %v", sess.revoked)
	}

	if err := svc.Logout(context.Background(), " "); err == nil {
		t.Fatal("blank session id should error")
	}
}
