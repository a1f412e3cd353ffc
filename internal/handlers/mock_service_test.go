package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"cyberkids_accounts/internal/metrics"
	"cyberkids_accounts/internal/models"
	"cyberkids_accounts/internal/service"
)

// ---- Service Mocks ----

type mockRegistration struct {
	account *models.Account
	err     error

	lastInput service.RegisterInput
	calls     int
}

func (m *mockRegistration) Register(ctx context.Context, in service.RegisterInput) (*models.Account, error) {
	m.calls++
	m.lastInput = in
	return m.account, m.err
}

type mockAuth struct {
	loginResult *models.LoginResult
	loginErr    error
	refreshTok  string
	refreshErr  error
	claims      *service.Claims
	parseErr    error

	lastIdentifier string
	lastPassword   string
	lastRefresh    string
	lastParseToken string
}

func (m *mockAuth) Login(ctx context.Context, identifier, password string) (*models.LoginResult, error) {
	m.lastIdentifier = identifier
	m.lastPassword = password
	return m.loginResult, m.loginErr
}

func (m *mockAuth) Refresh(ctx context.Context, refreshToken string) (string, error) {
	m.lastRefresh = refreshToken
	return m.refreshTok, m.refreshErr
}

func (m *mockAuth) ParseAccessToken(token string) (*service.Claims, error) {
	m.lastParseToken = token
	return m.claims, m.parseErr
}

type mockLinking struct {
	student    *models.StudentView
	studentErr error
	account    *models.Account
	accountErr error
	childName  string
	childErr   error
	children   []models.StudentView
	listErr    error

	lastChildInput service.CreateChildInput
	lastUsername   string
}

func (m *mockLinking) GetStudent(ctx context.Context, username string) (*models.StudentView, error) {
	m.lastUsername = username
	return m.student, m.studentErr
}

func (m *mockLinking) GetAccount(ctx context.Context, username string) (*models.Account, error) {
	m.lastUsername = username
	return m.account, m.accountErr
}

func (m *mockLinking) CreateChild(ctx context.Context, in service.CreateChildInput) (string, error) {
	m.lastChildInput = in
	return m.childName, m.childErr
}

func (m *mockLinking) ListChildren(ctx context.Context, parentUsername string) ([]models.StudentView, error) {
	m.lastUsername = parentUsername
	return m.children, m.listErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	return newTestRouterWithMetrics(s, nil)
}

func newTestRouterWithMetrics(s *service.Service, m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, m)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
