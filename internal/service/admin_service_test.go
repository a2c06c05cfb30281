package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAdminStore struct {
	mock.Mock
}

func (m *mockAdminStore) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*model.Admin), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAdminStore) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	args := m.Called(ctx, email)
	if a := args.Get(0); a != nil {
		return a.(*model.Admin), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAdminStore) Create(ctx context.Context, a *model.Admin) error {
	return m.Called(ctx, a).Error(0)
}

func TestAdminService_Login(t *testing.T) {
	ctx := context.Background()
	auth := NewAuthService(testConfig(t))
	hash, err := auth.HashPassword("geheim123")
	require.NoError(t, err)

	store := &mockAdminStore{}
	store.On("GetByEmail", ctx, "beheer@hva.nl").Return(&model.Admin{
		ID: 3, Email: "beheer@hva.nl", PasswordHash: hash, Permissions: model.AllPermissions(),
	}, nil)

	svc := NewAdminService(store, auth)
	resp, err := svc.Login(ctx, model.AdminLoginRequest{Email: " Beheer@HvA.nl ", Password: "geheim123"})
	require.NoError(t, err)
	assert.Equal(t, model.AllPermissions(), resp.Permissions)

	claims, err := auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, 3, claims.UserID)
	assert.True(t, claims.HasPermission(string(model.PermissionConversionsImport)))
	assert.False(t, claims.HasPermission("students:write"))

	_, err = svc.Login(ctx, model.AdminLoginRequest{Email: "beheer@hva.nl", Password: "fout"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	store.AssertExpectations(t)
}

func TestAdminService_LoginUnknownEmail(t *testing.T) {
	ctx := context.Background()
	store := &mockAdminStore{}
	store.On("GetByEmail", ctx, "niemand@hva.nl").Return(nil, pgx.ErrNoRows)

	_, err := NewAdminService(store, NewAuthService(testConfig(t))).
		Login(ctx, model.AdminLoginRequest{Email: "niemand@hva.nl", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminService_Create(t *testing.T) {
	ctx := context.Background()
	auth := NewAuthService(testConfig(t))
	store := &mockAdminStore{}
	store.On("Create", ctx, mock.MatchedBy(func(a *model.Admin) bool {
		return a.Email == "nieuw@hva.nl" && auth.CheckPassword(a.PasswordHash, "wachtwoord") == nil
	})).Return(nil)

	err := NewAdminService(store, auth).Create(ctx, &model.Admin{Email: "Nieuw@HvA.nl"}, "wachtwoord")
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestAuthService_RejectsForeignToken(t *testing.T) {
	auth := NewAuthService(testConfig(t))
	token, err := auth.GenerateAdminToken(1, "a@b.nl", nil)
	require.NoError(t, err)

	other := testConfig(t)
	other.JWTSecret = "other"
	_, err = NewAuthService(other).ValidateToken(token)
	assert.Error(t, err)
}

func TestAuthService_RejectsForeignIssuer(t *testing.T) {
	cfg := testConfig(t)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: 1,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)

	_, err = NewAuthService(cfg).ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}
