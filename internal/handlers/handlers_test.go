package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/services"
	"github.com/fyp-labs/adaptive-learning-platform/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// Stubs embed the service interface so unused methods need no body.

type stubAssessments struct {
	services.AssessmentService
	listed    []*models.Assessment
	getErr    error
	lastCalls []string
}

func (s *stubAssessments) List(ctx context.Context, identity services.Identity) ([]*models.Assessment, error) {
	s.lastCalls = append(s.lastCalls, "list")
	return s.listed, nil
}

func (s *stubAssessments) ListAll(ctx context.Context, identity services.Identity) ([]*models.Assessment, error) {
	s.lastCalls = append(s.lastCalls, "list-all")
	return s.listed, nil
}

func (s *stubAssessments) Get(ctx context.Context, id uint, identity services.Identity) (*models.Assessment, error) {
	s.lastCalls = append(s.lastCalls, "get")
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &models.Assessment{ID: id, Title: "Go basics"}, nil
}

func (s *stubAssessments) Create(ctx context.Context, req *models.AssessmentRequest, identity services.Identity) (*models.Assessment, error) {
	s.lastCalls = append(s.lastCalls, "create")
	return &models.Assessment{ID: 1, Title: req.Title, CreatedBy: identity.UserID}, nil
}

type stubAttempts struct {
	services.AttemptService
	submitErr error
	calls     []string
}

func (s *stubAttempts) Start(ctx context.Context, assessmentID uint, identity services.Identity) (*services.StartAttemptResponse, error) {
	s.calls = append(s.calls, "start")
	return &services.StartAttemptResponse{AttemptID: 7, StartedAt: time.Now(), Assessment: &models.Assessment{ID: assessmentID}}, nil
}

func (s *stubAttempts) Submit(ctx context.Context, assessmentID uint, req *models.SubmitAttemptRequest, identity services.Identity) (*services.SubmitAttemptResponse, error) {
	s.calls = append(s.calls, "submit")
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return &services.SubmitAttemptResponse{AttemptID: req.AttemptID, TotalScore: 50, TotalMarks: 100, Percentage: 50, Passed: true}, nil
}

func (s *stubAttempts) ListMine(ctx context.Context, identity services.Identity) ([]*models.Attempt, error) {
	s.calls = append(s.calls, "list-mine")
	return []*models.Attempt{}, nil
}

func (s *stubAttempts) Get(ctx context.Context, attemptID uint, identity services.Identity) (*models.Attempt, error) {
	s.calls = append(s.calls, "get")
	return &models.Attempt{ID: attemptID, UserID: identity.UserID}, nil
}

type stubStats struct {
	services.StatsService
}

func (s *stubStats) MyStats(ctx context.Context, identity services.Identity) (*services.UserStats, error) {
	return &services.UserStats{TotalAttempts: 3}, nil
}

type stubFiles struct {
	services.FileService
	req     *models.FileUploadRequest
	name    string
	content string
}

func (s *stubFiles) Upload(ctx context.Context, req *models.FileUploadRequest, originalName string, content io.Reader, identity services.Identity) (*models.File, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	s.req, s.name, s.content = req, originalName, string(data)
	return &models.File{ID: 1, OriginalName: originalName, TopicID: req.TopicID, UserID: identity.UserID}, nil
}

type stubManager struct {
	services.ServiceManager
	assessments *stubAssessments
	attempts    *stubAttempts
	stats       *stubStats
	files       *stubFiles
	healthErr   error
}

func (m *stubManager) Auth() services.AuthService             { return nil }
func (m *stubManager) Company() services.CompanyService       { return nil }
func (m *stubManager) Topic() services.TopicService           { return nil }
func (m *stubManager) File() services.FileService             { return m.files }
func (m *stubManager) Assessment() services.AssessmentService { return m.assessments }
func (m *stubManager) Attempt() services.AttemptService       { return m.attempts }
func (m *stubManager) Stats() services.StatsService           { return m.stats }
func (m *stubManager) Export() services.ExportService         { return nil }
func (m *stubManager) HealthCheck(ctx context.Context) error  { return m.healthErr }

type testServer struct {
	router  *gin.Engine
	manager *stubManager
	tokens  *services.TokenIssuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	tokens := services.NewTokenIssuer("test-secret", time.Hour)
	manager := &stubManager{
		assessments: &stubAssessments{},
		attempts:    &stubAttempts{},
		stats:       &stubStats{},
		files:       &stubFiles{},
	}

	router := gin.New()
	auth := NewAuthMiddleware(testLogger(), NewJWTVerifier(tokens))
	NewHandlerManager(manager, auth, testLogger()).SetupRoutes(router)

	return &testServer{router: router, manager: manager, tokens: tokens}
}

func (s *testServer) token(t *testing.T, id string, role models.UserRole) string {
	t.Helper()
	token, _, err := s.tokens.Issue(&models.User{ID: id, Email: id + "@example.com", Role: role})
	require.NoError(t, err)
	return token
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", services.ErrAssessmentNotFound, http.StatusNotFound, "not_found"},
		{"invalid credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized"},
		{"permission", services.NewPermissionError("u1", "attempt", 3, "read"), http.StatusForbidden, "forbidden"},
		{"validation", services.NewValidationError("title", "required", ""), http.StatusBadRequest, "validation_failed"},
		{"definition mismatch", services.ErrDefinitionMismatch, http.StatusUnprocessableEntity, "definition_mismatch"},
		{"already submitted", services.ErrAttemptAlreadySubmitted, http.StatusConflict, "invalid_state"},
		{"email taken", services.ErrEmailTaken, http.StatusConflict, "invalid_state"},
		{"storage", errors.Join(services.ErrStorage, errors.New("connection reset")), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/x", nil)

			h := NewBaseHandler(testLogger())
			h.handleServiceError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.code, resp.Error)
			assert.Equal(t, "/api/x", resp.Path)
		})
	}
}

func TestHandleServiceError_ValidationDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/assessments", nil)

	h := NewBaseHandler(testLogger())
	h.handleServiceError(c, services.NewValidationError("questions", "at least one question is required", 0))

	resp := decodeError(t, w)
	require.Len(t, resp.ValidationErrors, 1)
	assert.Equal(t, "questions", resp.ValidationErrors[0].Field)
	assert.Equal(t, "0", resp.ValidationErrors[0].Value)
	assert.Equal(t, "business_logic", resp.ValidationErrors[0].Code)
}

func TestHandleServiceError_InternalDetailsHidden(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/x", nil)

	h := NewBaseHandler(testLogger())
	h.handleServiceError(c, errors.New("pq: password authentication failed"))

	assert.NotContains(t, w.Body.String(), "password")
}

func TestRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	t.Run("missing header", func(t *testing.T) {
		w := srv.do(http.MethodGet, "/api/assessments", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := srv.do(http.MethodGet, "/api/assessments", "not-a-jwt", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid token", decodeError(t, w).Message)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := services.NewTokenIssuer("test-secret", -time.Minute)
		token, _, err := expired.Issue(&models.User{ID: "user-1", Role: models.RoleUser})
		require.NoError(t, err)

		w := srv.do(http.MethodGet, "/api/assessments", token, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Token expired", decodeError(t, w).Message)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := services.NewTokenIssuer("other-secret", time.Hour)
		token, _, err := other.Issue(&models.User{ID: "user-1", Role: models.RoleUser})
		require.NoError(t, err)

		w := srv.do(http.MethodGet, "/api/assessments", token, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w := srv.do(http.MethodGet, "/api/assessments", srv.token(t, "user-1", models.RoleUser), "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	_, ok = bearerToken("Basic abc")
	assert.False(t, ok)

	_, ok = bearerToken("Bearer ")
	assert.False(t, ok)
}

func TestAdminRoutes_RejectUsers(t *testing.T) {
	srv := newTestServer(t)
	userToken := srv.token(t, "user-1", models.RoleUser)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/assessments/admin/all"},
		{http.MethodPost, "/api/assessments"},
		{http.MethodPut, "/api/assessments/1"},
		{http.MethodDelete, "/api/assessments/1"},
		{http.MethodGet, "/api/assessments/1/stats"},
		{http.MethodGet, "/api/assessments/1/results/export"},
	} {
		w := srv.do(route.method, route.path, userToken, `{}`)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s", route.method, route.path)
	}
	assert.Empty(t, srv.manager.assessments.lastCalls)
}

func TestAdminRoutes_AllowAdmin(t *testing.T) {
	srv := newTestServer(t)
	adminToken := srv.token(t, "admin-1", models.RoleAdmin)

	w := srv.do(http.MethodGet, "/api/assessments/admin/all", adminToken, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = srv.do(http.MethodPost, "/api/assessments", adminToken, `{"title":"Go basics"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	var created models.Assessment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "admin-1", created.CreatedBy)
	assert.Equal(t, []string{"list-all", "create"}, srv.manager.assessments.lastCalls)
}

func TestAttemptRoutes_NotShadowedByAssessmentID(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, "user-1", models.RoleUser)

	w := srv.do(http.MethodGet, "/api/assessments/attempts/my-attempts", token, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = srv.do(http.MethodGet, "/api/assessments/attempts/my-stats", token, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `3`, string(mustField(t, w.Body.Bytes(), "total_attempts")))

	w = srv.do(http.MethodGet, "/api/assessments/attempts/9", token, "")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []string{"list-mine", "get"}, srv.manager.attempts.calls)
	assert.Empty(t, srv.manager.assessments.lastCalls)
}

func TestStartAndSubmit(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, "user-1", models.RoleUser)

	w := srv.do(http.MethodPost, "/api/assessments/4/start", token, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `7`, string(mustField(t, w.Body.Bytes(), "attempt_id")))

	w = srv.do(http.MethodPost, "/api/assessments/4/submit", token, `{"attempt_id":7,"answers":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `true`, string(mustField(t, w.Body.Bytes(), "passed")))

	srv.manager.attempts.submitErr = services.ErrAttemptAlreadySubmitted
	w = srv.do(http.MethodPost, "/api/assessments/4/submit", token, `{"attempt_id":7,"answers":[]}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSubmit_MalformedBody(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, "user-1", models.RoleUser)

	w := srv.do(http.MethodPost, "/api/assessments/4/submit", token, `{"attempt_id":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, srv.manager.attempts.calls)
}

func TestInvalidIDParam(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, "user-1", models.RoleUser)

	for _, path := range []string{"/api/assessments/abc", "/api/assessments/0", "/api/assessments/-3"} {
		w := srv.do(http.MethodGet, path, token, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestGetAssessment_NotFound(t *testing.T) {
	srv := newTestServer(t)
	srv.manager.assessments.getErr = services.ErrAssessmentNotFound

	w := srv.do(http.MethodGet, "/api/assessments/12", srv.token(t, "user-1", models.RoleUser), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Assessment not found", decodeError(t, w).Message)
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	srv.manager.healthErr = errors.New("database unreachable")
	w = srv.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUploadFile_Multipart(t *testing.T) {
	srv := newTestServer(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("topicId", "5"))
	require.NoError(t, form.WriteField("companyId", "2"))
	part, err := form.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("binary search trees"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+srv.token(t, "user-1", models.RoleUser))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	files := srv.manager.files
	require.NotNil(t, files.req)
	assert.Equal(t, uint(5), files.req.TopicID)
	require.NotNil(t, files.req.CompanyID)
	assert.Equal(t, uint(2), *files.req.CompanyID)
	assert.Equal(t, "notes.txt", files.name)
	assert.Equal(t, "binary search trees", files.content)
}

func TestUploadFile_MissingFile(t *testing.T) {
	srv := newTestServer(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("topicId", "5"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+srv.token(t, "user-1", models.RoleUser))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, srv.manager.files.req)
}

func mustField(t *testing.T, body []byte, field string) json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &fields))
	value, ok := fields[field]
	require.True(t, ok, "missing field %s", field)
	return value
}
