package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gegsoft/paytrack-backend/internal/access"
	"github.com/gegsoft/paytrack-backend/internal/activity"
	"github.com/gegsoft/paytrack-backend/internal/auth"
	"github.com/gegsoft/paytrack-backend/internal/contractors"
	"github.com/gegsoft/paytrack-backend/internal/contracts"
	"github.com/gegsoft/paytrack-backend/internal/dashboard"
	"github.com/gegsoft/paytrack-backend/internal/payments"
	"github.com/gegsoft/paytrack-backend/internal/projects"
	"github.com/gegsoft/paytrack-backend/internal/users"
	pkgauth "github.com/gegsoft/paytrack-backend/pkg/auth"
	"github.com/gegsoft/paytrack-backend/pkg/auth/session"
	"github.com/gegsoft/paytrack-backend/pkg/config"
	"github.com/gegsoft/paytrack-backend/pkg/enums"
	"github.com/gegsoft/paytrack-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

func (stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error) {
	return &auth.RefreshResponse{}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

type stubUsersService struct{}

func (stubUsersService) CreateUser(ctx context.Context, actor access.Actor, input users.CreateUserInput) (*users.CreateUserResult, error) {
	panic("unimplemented")
}

func (stubUsersService) GetUser(ctx context.Context, actor access.Actor, id uuid.UUID) (*users.UserDTO, error) {
	panic("unimplemented")
}

func (stubUsersService) ListUsers(ctx context.Context, actor access.Actor, params users.ListParams) (*users.ListResult, error) {
	return &users.ListResult{}, nil
}

func (stubUsersService) UpdateUser(ctx context.Context, actor access.Actor, id uuid.UUID, input users.UpdateUserInput) (*users.UserDTO, error) {
	panic("unimplemented")
}

func (stubUsersService) DeleteUser(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	panic("unimplemented")
}

type stubProjectsService struct{}

func (stubProjectsService) CreateProject(ctx context.Context, actor access.Actor, input projects.CreateProjectInput) (*projects.ListItem, error) {
	panic("unimplemented")
}

func (stubProjectsService) GetProject(ctx context.Context, actor access.Actor, id uuid.UUID) (*projects.ListItem, error) {
	panic("unimplemented")
}

func (stubProjectsService) ListProjects(ctx context.Context, actor access.Actor, params projects.ListParams) (*projects.ListResult, error) {
	return &projects.ListResult{}, nil
}

func (stubProjectsService) UpdateProject(ctx context.Context, actor access.Actor, id uuid.UUID, input projects.UpdateProjectInput) (*projects.ListItem, error) {
	panic("unimplemented")
}

func (stubProjectsService) DeleteProject(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	panic("unimplemented")
}

func (stubProjectsService) AssignUser(ctx context.Context, actor access.Actor, projectID, userID uuid.UUID) error {
	panic("unimplemented")
}

func (stubProjectsService) UnassignUser(ctx context.Context, actor access.Actor, projectID, userID uuid.UUID) error {
	panic("unimplemented")
}

func (stubProjectsService) AssignedUsers(ctx context.Context, actor access.Actor, projectID uuid.UUID) ([]uuid.UUID, error) {
	panic("unimplemented")
}

type stubContractorsService struct{}

func (stubContractorsService) CreateContractor(ctx context.Context, actor access.Actor, input contractors.CreateContractorInput) (*contractors.ListItem, error) {
	panic("unimplemented")
}

func (stubContractorsService) GetContractor(ctx context.Context, actor access.Actor, id uuid.UUID) (*contractors.ListItem, error) {
	panic("unimplemented")
}

func (stubContractorsService) ListContractors(ctx context.Context, actor access.Actor, params contractors.ListParams) (*contractors.ListResult, error) {
	return &contractors.ListResult{}, nil
}

func (stubContractorsService) UpdateContractor(ctx context.Context, actor access.Actor, id uuid.UUID, input contractors.UpdateContractorInput) (*contractors.ListItem, error) {
	panic("unimplemented")
}

func (stubContractorsService) DeleteContractor(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	panic("unimplemented")
}

type stubContractsService struct{}

func (stubContractsService) CreateContract(ctx context.Context, actor access.Actor, input contracts.CreateContractInput) (*contracts.ListItem, error) {
	panic("unimplemented")
}

func (stubContractsService) GetContract(ctx context.Context, actor access.Actor, id uuid.UUID) (*contracts.ListItem, error) {
	panic("unimplemented")
}

func (stubContractsService) ListContracts(ctx context.Context, actor access.Actor, params contracts.ListParams) (*contracts.ListResult, error) {
	return &contracts.ListResult{}, nil
}

func (stubContractsService) UpdateContract(ctx context.Context, actor access.Actor, id uuid.UUID, input contracts.UpdateContractInput) (*contracts.ListItem, error) {
	panic("unimplemented")
}

func (stubContractsService) DeleteContract(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	panic("unimplemented")
}

type stubPaymentsService struct {
	download func(ctx context.Context, actor access.Actor, attachmentID uuid.UUID) (*payments.AttachmentContent, error)
}

func (stubPaymentsService) CreatePaymentRequest(ctx context.Context, actor access.Actor, input payments.CreatePaymentRequestInput) (*payments.ListItem, error) {
	panic("unimplemented")
}

func (stubPaymentsService) GetPaymentRequest(ctx context.Context, actor access.Actor, id uuid.UUID) (*payments.ListItem, error) {
	panic("unimplemented")
}

func (stubPaymentsService) ListPaymentRequests(ctx context.Context, actor access.Actor, params payments.ListParams) (*payments.ListResult, error) {
	return &payments.ListResult{}, nil
}

func (stubPaymentsService) UpdatePaymentRequest(ctx context.Context, actor access.Actor, id uuid.UUID, input payments.UpdatePaymentRequestInput) (*payments.ListItem, error) {
	panic("unimplemented")
}

func (stubPaymentsService) DeletePaymentRequest(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	panic("unimplemented")
}

func (stubPaymentsService) Transition(ctx context.Context, actor access.Actor, id uuid.UUID, input payments.TransitionInput) (*payments.ListItem, error) {
	panic("unimplemented")
}

func (stubPaymentsService) AddAttachment(ctx context.Context, actor access.Actor, requestID uuid.UUID, input payments.AddAttachmentInput) (*payments.AttachmentItem, error) {
	panic("unimplemented")
}

func (stubPaymentsService) ListAttachments(ctx context.Context, actor access.Actor, requestID uuid.UUID) ([]payments.AttachmentItem, error) {
	return nil, nil
}

func (s stubPaymentsService) DownloadAttachment(ctx context.Context, actor access.Actor, attachmentID uuid.UUID) (*payments.AttachmentContent, error) {
	if s.download != nil {
		return s.download(ctx, actor, attachmentID)
	}
	panic("unimplemented")
}

func (stubPaymentsService) DeleteAttachment(ctx context.Context, actor access.Actor, attachmentID uuid.UUID) error {
	panic("unimplemented")
}

func (stubPaymentsService) Totals(ctx context.Context, actor access.Actor) ([]payments.StatusTotals, error) {
	return nil, nil
}

type stubActivityService struct{}

func (stubActivityService) Record(ctx context.Context, actor access.Actor, action enums.ActivityAction, targetTable string, targetID *uuid.UUID, details string) {
}

func (stubActivityService) ListActivity(ctx context.Context, actor access.Actor, params activity.ListParams) (*activity.ListResult, error) {
	return &activity.ListResult{}, nil
}

func (stubActivityService) RecentActivity(ctx context.Context, actor access.Actor, limit int) ([]activity.ListItem, error) {
	return nil, nil
}

type stubDashboardService struct{}

func (stubDashboardService) Summary(ctx context.Context, actor access.Actor) (*dashboard.Summary, error) {
	return &dashboard.Summary{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config, paymentsSvc payments.Service) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	if paymentsSvc == nil {
		paymentsSvc = stubPaymentsService{}
	}
	return NewRouter(Deps{
		Config:             cfg,
		Logger:             logg,
		DBPinger:           stubPinger{},
		RedisPinger:        stubPinger{},
		SessionChecker:     stubSessionChecker{},
		AuthService:        stubAuthService{},
		UsersService:       stubUsersService{},
		ProjectsService:    stubProjectsService{},
		ContractorsService: stubContractorsService{},
		ContractsService:   stubContractsService{},
		PaymentsService:    paymentsSvc,
		ActivityService:    stubActivityService{},
		DashboardService:   stubDashboardService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "router-test",
		Role:     role,
		JTI:      session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig(), nil)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live probe got %d", resp.Code)
	}
}

func TestProtectedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), nil)
	for _, path := range []string{
		"/api/v1/projects",
		"/api/v1/contractors",
		"/api/v1/contracts",
		"/api/v1/payment-requests",
		"/api/v1/users",
		"/api/v1/activity",
		"/api/v1/dashboard/summary",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 without token on %s got %d", path, resp.Code)
		}
	}
}

func TestProtectedGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil)
	for _, path := range []string{
		"/api/v1/projects",
		"/api/v1/payment-requests",
		"/api/v1/dashboard/summary",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleHQAdmin))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 on %s got %d", path, resp.Code)
		}
	}
}

func TestLoginRouteIsPublic(t *testing.T) {
	router := newTestRouter(testConfig(), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed login payload got %d", resp.Code)
	}
}

func TestLogoutRequiresJWT(t *testing.T) {
	router := newTestRouter(testConfig(), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for logout without token got %d", resp.Code)
	}
}

func TestAttachmentDownloadStreamsBlob(t *testing.T) {
	cfg := testConfig()
	svc := stubPaymentsService{
		download: func(ctx context.Context, actor access.Actor, attachmentID uuid.UUID) (*payments.AttachmentContent, error) {
			return &payments.AttachmentContent{
				FileName: "invoice.pdf",
				MimeType: "application/pdf",
				Data:     []byte("%PDF-1.4"),
			}, nil
		},
	}
	router := newTestRouter(cfg, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attachments/"+uuid.NewString()+"/download", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleHQAccountant))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for download got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("expected pdf content type got %q", got)
	}
	if got := resp.Header().Get("Content-Disposition"); !strings.Contains(got, "invoice.pdf") {
		t.Fatalf("expected filename in disposition got %q", got)
	}
	if resp.Body.String() != "%PDF-1.4" {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}
}

func TestMetricsEndpointIsExposed(t *testing.T) {
	router := newTestRouter(testConfig(), nil)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}
