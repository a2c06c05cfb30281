package router

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/bezem-backend/internal/config"
	"github.com/stemsi/bezem-backend/internal/handler"
	"github.com/stemsi/bezem-backend/internal/middleware"
	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stemsi/bezem-backend/internal/repository"
	"github.com/stemsi/bezem-backend/internal/service"
	"github.com/stemsi/bezem-backend/internal/sheet"
	"github.com/stemsi/bezem-backend/internal/sheet/sheettest"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "beheer@hva.nl"
	adminPassword = "geheim123"
)

type fakeAdmins struct {
	admins map[string]*model.Admin
}

func (f *fakeAdmins) GetByID(_ context.Context, id int) (*model.Admin, error) {
	for _, a := range f.admins {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAdmins) GetByEmail(_ context.Context, email string) (*model.Admin, error) {
	a, ok := f.admins[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return a, nil
}

func (f *fakeAdmins) Create(_ context.Context, a *model.Admin) error {
	a.ID = len(f.admins) + 1
	f.admins[a.Email] = a
	return nil
}

type testServer struct {
	t     *testing.T
	cfg   *config.Config
	auth  *service.AuthService
	store *repository.MemoryStore
	imp   *service.ImportService
	http  *testRouter
}

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	cfg := &config.Config{
		GinMode:           "test",
		JWTSecret:         "router-test-secret",
		JWTExpiry:         time.Hour,
		BcryptCost:        4,
		UploadDir:         t.TempDir(),
		MaxUploadBytes:    1 << 20,
		EnrollBaseURL:     "https://osiris.example.nl",
		ImportTitleMarker: "Bezem- en conversieregeling",
	}
	log := zerolog.Nop()

	auth := service.NewAuthService(cfg)
	admins := &fakeAdmins{admins: map[string]*model.Admin{}}
	adminService := service.NewAdminService(admins, auth)
	require.NoError(t, adminService.Create(context.Background(), &model.Admin{
		Email:       adminEmail,
		Name:        "Curriculumbeheer",
		Permissions: model.AllPermissions(),
	}, adminPassword))

	store := repository.NewMemoryStore()
	conversions := service.NewConversionService(store, nil, 0, log)
	uploads := service.NewUploadService(cfg)
	imports := service.NewImportService(cfg, store, uploads, nil, conversions, log)

	handlers := &Handlers{
		Auth:       handler.NewAuthHandler(adminService),
		Conversion: handler.NewConversionHandler(conversions, log),
		Import:     handler.NewImportHandler(imports, uploads, nil, log),
		WS:         handler.NewWSHandler(imports, nil, log, nil),
		System:     handler.NewSystemHandler(nil, nil, log),
	}

	return &testServer{
		t:     t,
		cfg:   cfg,
		auth:  auth,
		store: store,
		imp:   imports,
		http:  &testRouter{engine: SetupRouter(auth, handlers, cfg, limiter, log)},
	}
}

// seed imports the standard workbook straight into the store.
func (s *testServer) seed() {
	s.t.Helper()
	wb, err := sheet.DecodeWorkbook(bytes.NewReader(sheettest.Standard(s.t)))
	require.NoError(s.t, err)
	_, err = s.imp.Run(context.Background(), wb, service.RunOptions{Persist: true})
	require.NoError(s.t, err)
}

func (s *testServer) token(permissions ...model.Permission) string {
	s.t.Helper()
	codes := make([]string, len(permissions))
	for i, p := range permissions {
		codes[i] = string(p)
	}
	tok, err := s.auth.GenerateAdminToken(1, adminEmail, codes)
	require.NoError(s.t, err)
	return tok
}
