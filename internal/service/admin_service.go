package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/bezem-backend/internal/model"
)

// AdminStore is the admin persistence used by AdminService.
type AdminStore interface {
	GetByID(ctx context.Context, id int) (*model.Admin, error)
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	Create(ctx context.Context, a *model.Admin) error
}

// AdminService handles admin business logic.
type AdminService struct {
	admins AdminStore
	auth   *AuthService
}

// NewAdminService creates a new AdminService.
func NewAdminService(admins AdminStore, auth *AuthService) *AdminService {
	return &AdminService{admins: admins, auth: auth}
}

// Login checks the credentials and issues a token carrying the admin's
// permissions.
func (s *AdminService) Login(ctx context.Context, req model.AdminLoginRequest) (*model.AdminLoginResponse, error) {
	admin, err := s.admins.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.auth.CheckPassword(admin.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	token, err := s.auth.GenerateAdminToken(admin.ID, admin.Email, admin.Permissions)
	if err != nil {
		return nil, err
	}
	return &model.AdminLoginResponse{Token: token, Admin: *admin, Permissions: admin.Permissions}, nil
}

// GetByID retrieves an admin by ID.
func (s *AdminService) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	return s.admins.GetByID(ctx, id)
}

// Create hashes the password and stores a new admin.
func (s *AdminService) Create(ctx context.Context, admin *model.Admin, password string) error {
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	admin.PasswordHash = hash
	return s.admins.Create(ctx, admin)
}
