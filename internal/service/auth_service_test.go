package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/investleasing/leasing-portal-api/internal/models"
	appErrors "github.com/investleasing/leasing-portal-api/pkg/errors"
)

type stubAuthRepo struct {
	usersByEmail map[string]*models.User
	usersByID    map[string]*models.User
	usersByINN   map[string]*models.User
	tokens       map[string]*models.RefreshToken
	created      []*models.User
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{
		usersByEmail: map[string]*models.User{},
		usersByID:    map[string]*models.User{},
		usersByINN:   map[string]*models.User{},
		tokens:       map[string]*models.RefreshToken{},
	}
}

func (r *stubAuthRepo) add(user *models.User) {
	r.usersByEmail[user.Email] = user
	r.usersByID[user.ID] = user
	if user.INN != nil {
		r.usersByINN[*user.INN] = user
	}
}

func (r *stubAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := r.usersByEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (r *stubAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := r.usersByID[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (r *stubAuthRepo) FindByINN(ctx context.Context, inn string) (*models.User, error) {
	if u, ok := r.usersByINN[inn]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (r *stubAuthRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = "new-user"
	r.add(user)
	r.created = append(r.created, user)
	return nil
}

func (r *stubAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error { return nil }

func (r *stubAuthRepo) UpdatePassword(ctx context.Context, id, hash string, ts time.Time) error {
	if u, ok := r.usersByID[id]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (r *stubAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error { return nil }

func (r *stubAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	r.tokens[token.Token] = token
	return nil
}

func (r *stubAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := r.tokens[token]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (r *stubAuthRepo) RevokeRefreshToken(ctx context.Context, id string, at time.Time) error {
	for _, t := range r.tokens {
		if t.ID == id {
			t.Revoked = true
		}
	}
	return nil
}

type stubIdentityChecker struct {
	ok      bool
	message string
	err     error
	calls   int
}

func (s *stubIdentityChecker) CheckIdentity(ctx context.Context, email, inn string) (bool, string, error) {
	s.calls++
	return s.ok, s.message, s.err
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Minute,
		RefreshTokenExpiry: time.Hour,
		Issuer:             "leasing-portal",
	}
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegisterChecksRegistry(t *testing.T) {
	repo := newStubAuthRepo()
	checker := &stubIdentityChecker{ok: true}
	svc := NewAuthService(repo, checker, nil, nil, testAuthConfig())

	info, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "ivanov",
		Email:    "user@example.com",
		Password: "password123",
		INN:      "7701234567",
	})
	require.NoError(t, err)
	assert.Equal(t, "new-user", info.ID)
	assert.Equal(t, 1, checker.calls)
	require.Len(t, repo.created, 1)
	assert.True(t, repo.created[0].Active)
}

func TestRegisterRejectsRegistryMismatch(t *testing.T) {
	repo := newStubAuthRepo()
	checker := &stubIdentityChecker{ok: false, message: "email belongs to another tax id"}
	svc := NewAuthService(repo, checker, nil, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "ivanov",
		Email:    "user@example.com",
		Password: "password123",
		INN:      "7701234567",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, repo.created)
}

func TestRegisterProceedsWhenRegistryUnavailable(t *testing.T) {
	repo := newStubAuthRepo()
	checker := &stubIdentityChecker{err: errors.New("ftp down")}
	svc := NewAuthService(repo, checker, nil, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "ivanov",
		Email:    "user@example.com",
		Password: "password123",
		INN:      "7701234567",
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newStubAuthRepo()
	inn := "7701234567"
	repo.add(&models.User{ID: "u1", Email: "user@example.com", INN: &inn, Active: true})
	svc := NewAuthService(repo, &stubIdentityChecker{ok: true}, nil, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "ivanov",
		Email:    "user@example.com",
		Password: "password123",
		INN:      "7809876543",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestLoginAndValidateToken(t *testing.T) {
	repo := newStubAuthRepo()
	inn := "7701234567"
	repo.add(&models.User{ID: "u1", Username: "ivanov", Email: "user@example.com", PasswordHash: hashOf(t, "password123"), INN: &inn, Active: true})
	svc := NewAuthService(repo, nil, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "u1", resp.User.ID)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newStubAuthRepo()
	repo.add(&models.User{ID: "u1", Email: "user@example.com", PasswordHash: hashOf(t, "password123"), Active: true})
	svc := NewAuthService(repo, nil, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "wrong-password"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestRefreshTokenRotation(t *testing.T) {
	repo := newStubAuthRepo()
	repo.add(&models.User{ID: "u1", Email: "user@example.com", PasswordHash: hashOf(t, "password123"), Active: true})
	svc := NewAuthService(repo, nil, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The used token is revoked and cannot be replayed.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	repo := newStubAuthRepo()
	repo.add(&models.User{ID: "u1", Email: "user@example.com", PasswordHash: hashOf(t, "old-password"), Active: true})
	svc := NewAuthService(repo, nil, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "old-password", NewPassword: "new-password-1"})
	require.NoError(t, err)

	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.usersByID["u1"].PasswordHash), []byte("new-password-1")))
}
