package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jonpan30062/newsaferoute/internal/config"
	"github.com/jonpan30062/newsaferoute/internal/logger"
	"github.com/jonpan30062/newsaferoute/internal/middleware"
)

const (
	testStaffID int64 = 7
	testUserID  int64 = 42
)

// testServer wires the real routes and middleware over mocked services.
type testServer struct {
	router     *gin.Engine
	alerts     *MockAlertService
	concerns   *MockConcernService
	approvals  *MockApprovalService
	buildings  *MockBuildingService
	staffToken string
	userToken  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &testServer{
		alerts:    new(MockAlertService),
		concerns:  new(MockConcernService),
		approvals: new(MockApprovalService),
		buildings: new(MockBuildingService),
	}

	auth := middleware.NewAuthenticator(config.AuthConfig{JWTSecret: "test-secret"})
	var err error
	s.staffToken, err = auth.Sign(middleware.Identity{UserID: testStaffID, Staff: true}, time.Hour)
	require.NoError(t, err)
	s.userToken, err = auth.Sign(middleware.Identity{UserID: testUserID}, time.Hour)
	require.NoError(t, err)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.New("test")))
	err = Routes{
		Health:    NewHealthHandler(stubPinger{}, nil, "test"),
		Alerts:    NewAlertHandler(s.alerts),
		Concerns:  NewConcernHandler(s.concerns),
		Buildings: NewBuildingHandler(s.buildings),
		Admin:     NewAdminHandler(s.concerns, s.approvals, s.alerts),
		Auth:      auth,
	}.Register(router)
	require.NoError(t, err)
	s.router = router

	t.Cleanup(func() {
		s.alerts.AssertExpectations(t)
		s.concerns.AssertExpectations(t)
		s.approvals.AssertExpectations(t)
		s.buildings.AssertExpectations(t)
	})
	return s
}

// do sends a request with an optional JSON body and bearer token.
func (s *testServer) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// errorBody is the decoded error envelope.
type errorBody struct {
	Error struct {
		Code      string                 `json:"code"`
		Message   string                 `json:"message"`
		Details   map[string]interface{} `json:"details"`
		RequestID string                 `json:"request_id"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func ptr[T any](v T) *T {
	return &v
}
