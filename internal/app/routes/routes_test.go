package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/yigit/orghub/internal/app/controllers"
	"github.com/yigit/orghub/internal/app/models"
	"github.com/yigit/orghub/internal/app/models/dto"
	"github.com/yigit/orghub/internal/app/repositories"
	"github.com/yigit/orghub/internal/app/services"
	"github.com/yigit/orghub/internal/middleware"
	"github.com/yigit/orghub/internal/pkg/auth"
	"github.com/yigit/orghub/internal/pkg/filestorage"
	"github.com/yigit/orghub/internal/pkg/metrics"
	"github.com/yigit/orghub/internal/pkg/websocket"
)

const testPassword = "changeme123"

const testData = `{
    "organizations": [
        {
            "id": 1,
            "name": "Computer Society",
            "brief": "Tech org",
            "description": "Objectives",
            "branches": [],
            "officers": [
                {"name": "Ruben, Stephen Joseph", "position": "President", "photo_path": "", "card_image_path": "", "start_date": "07/08/2025"}
            ],
            "officer_history": {},
            "members": [
                ["Dela Cruz, Juan", "Member", "Active", "2024-08-01", "m-1"],
                ["Lim, Carla", "Treasurer", "Active", "2024-08-02", "m-2"]
            ],
            "applicants": [
                ["Santos, Maria", "Member", "2025-01-05", "a-1"]
            ],
            "events": []
        }
    ]
}`

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router   *gin.Engine
	hub      *websocket.Hub
	dataPath string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	require.NoError(t, middleware.RegisterValidators())

	root := t.TempDir()
	dataPath := filepath.Join(root, "organizations_data.json")
	usersPath := filepath.Join(root, "users.yaml")
	require.NoError(t, os.WriteFile(dataPath, []byte(testData), 0o644))

	hash, err := auth.HashPasswordWithCost(testPassword, bcrypt.MinCost)
	require.NoError(t, err)
	users := struct {
		Users []models.User `yaml:"users"`
	}{Users: []models.User{
		{ID: "u-f", Username: "prof.reyes", Name: "Prof. Reyes", PasswordHash: hash, PrimaryRole: models.PrimaryRoleFaculty},
		{ID: "u-o", Username: "ruben.sj", Name: "Ruben, Stephen Joseph", PasswordHash: hash, PrimaryRole: models.PrimaryRoleStudent, Roles: []string{models.RoleOrgOfficer}},
		{ID: "u-s", Username: "new.student", Name: "New, Student", PasswordHash: hash, PrimaryRole: models.PrimaryRoleStudent},
	}}
	raw, err := yaml.Marshal(users)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(usersPath, raw, 0o600))

	storage, err := filestorage.NewLocalStorage("uploads", root)
	require.NoError(t, err)

	logger := zerolog.Nop()
	m := metrics.New()
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour, TokenIssuer: "orghub.test"})
	repos := repositories.NewFileRepositories(dataPath, usersPath)
	clock := func() time.Time { return time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC) }
	svc := services.NewServices(repos, jwtService, storage, clock, logger)

	hub := websocket.NewHub(logger)
	svc.SetNotifier(hub)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	router := gin.New()
	SetupRouter(router,
		controllers.NewAuthController(svc.AuthService, m, logger),
		controllers.NewOrganizationController(svc.OrganizationService, logger),
		controllers.NewMembershipController(svc.MembershipService, m, logger),
		controllers.NewFeedController(svc.OrganizationService, hub, logger),
		middleware.NewAuthMiddleware(jwtService),
		middleware.NewRateLimiter(600, 100, m),
		m,
	)
	return &testServer{router: router, hub: hub, dataPath: dataPath}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Username: username, Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data dto.TokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.AccessToken)
	return resp.Data.AccessToken
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	envelope := struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorCode {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/ping", "", nil).Code)

	rec := s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	rec = s.do(t, http.MethodGet, "/api/v1/organizations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	token := s.login(t, "ruben.sj")
	rec := s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me dto.UserResponse
	decodeData(t, rec, &me)
	assert.Equal(t, "Ruben, Stephen Joseph", me.Name)
	assert.Equal(t, string(models.ViewRoleOfficer), me.ViewRole)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Username: "ruben.sj", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, dto.ErrorCodeInvalidCredentials, errorCode(t, rec))

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Username: "ruben.sj"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrganizationEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "new.student")

	rec := s.do(t, http.MethodGet, "/api/v1/organizations?search=comp", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list dto.OrganizationListResponse
	decodeData(t, rec, &list)
	require.Len(t, list.Organizations, 1)
	assert.Equal(t, "Computer Society", list.Organizations[0].Name)

	rec = s.do(t, http.MethodGet, "/api/v1/organizations?kind=widgets", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/organizations/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail dto.OrganizationDetailResponse
	decodeData(t, rec, &detail)
	assert.Equal(t, 2, detail.MemberCount)
	assert.False(t, detail.Capabilities.CanManageMembers)
	assert.True(t, detail.Capabilities.CanApply)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/organizations/99", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/v1/organizations/abc", token, nil).Code)

	brief := "New brief"
	rec = s.do(t, http.MethodPut, "/api/v1/organizations/1", token, dto.UpdateOrganizationRequest{Brief: &brief})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	officerToken := s.login(t, "ruben.sj")
	rec = s.do(t, http.MethodPut, "/api/v1/organizations/1", officerToken, dto.UpdateOrganizationRequest{Brief: &brief})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	raw, err := os.ReadFile(s.dataPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"brief": "New brief"`)
}

func TestMemberRowActions(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "prof.reyes")

	rec := s.do(t, http.MethodGet, "/api/v1/organizations/1/members?search=lim", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var members dto.MemberListResponse
	decodeData(t, rec, &members)
	require.Len(t, members.Members, 1)
	assert.Equal(t, "m-2", members.Members[0].ID)

	rec = s.do(t, http.MethodPost, "/api/v1/organizations/1/member-rows/0/kick", token, dto.RowActionRequest{Search: "lim"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, dto.ErrorCodeConfirmationRequired, errorCode(t, rec))

	rec = s.do(t, http.MethodPost, "/api/v1/organizations/1/member-rows/0/kick", token, dto.RowActionRequest{Search: "lim", Confirm: true})
	require.Equal(t, http.StatusOK, rec.Code)
	var result dto.ActionResult
	decodeData(t, rec, &result)
	assert.True(t, result.Applied)
	require.NotNil(t, result.Member)
	assert.Equal(t, "Lim, Carla", result.Member.Name)

	// The same row is now gone from the filtered listing
	rec = s.do(t, http.MethodPost, "/api/v1/organizations/1/member-rows/0/kick", token, dto.RowActionRequest{Search: "lim", Confirm: true})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &result)
	assert.False(t, result.Applied)

	rec = s.do(t, http.MethodPatch, "/api/v1/organizations/1/member-rows/0", token, dto.EditMemberRowRequest{Position: "Secretary"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &result)
	assert.True(t, result.Applied)
	assert.Equal(t, "Secretary", result.Member.Position)

	rec = s.do(t, http.MethodPatch, "/api/v1/organizations/1/member-rows/0", token, dto.EditMemberRowRequest{Position: "Emperor"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMemberIDActions(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "prof.reyes")

	rec := s.do(t, http.MethodPatch, "/api/v1/organizations/1/members/m-1", token, dto.EditMemberRequest{Position: "Treasurer"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/organizations/1/members/m-1?confirm=true", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/organizations/1/members/m-1?confirm=true", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	studentToken := s.login(t, "new.student")
	rec = s.do(t, http.MethodDelete, "/api/v1/organizations/1/members/m-2?confirm=true", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestApplicantActions(t *testing.T) {
	s := newTestServer(t)
	officerToken := s.login(t, "ruben.sj")
	studentToken := s.login(t, "new.student")

	rec := s.do(t, http.MethodGet, "/api/v1/organizations/1/applicants", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/organizations/1/applications", studentToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/organizations/1/applications", studentToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/organizations/1/applicants?search=student", officerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var applicants dto.ApplicantListResponse
	decodeData(t, rec, &applicants)
	require.Len(t, applicants.Applicants, 1)
	assert.Equal(t, "2025-09-15", applicants.Applicants[0].AppliedDate)

	rec = s.do(t, http.MethodPost, "/api/v1/organizations/1/applicant-rows/0/accept", officerToken, dto.RowActionRequest{Search: "student", Confirm: true})
	require.Equal(t, http.StatusOK, rec.Code)
	var result dto.ActionResult
	decodeData(t, rec, &result)
	assert.True(t, result.Applied)
	require.NotNil(t, result.Member)
	assert.Equal(t, "New, Student", result.Member.Name)

	rec = s.do(t, http.MethodPost, "/api/v1/organizations/1/applicants/a-1/decline", officerToken, dto.ConfirmRequest{Confirm: true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/organizations/1/applicants/a-1/accept", officerToken, dto.ConfirmRequest{Confirm: true})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	raw, err := os.ReadFile(s.dataPath)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), "Santos, Maria"))
}

func TestOrganizationFeed(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "prof.reyes")

	srv := httptest.NewServer(s.router)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/organizations/"

	_, resp, err := gorillaws.DefaultDialer.Dial(wsURL+"1/feed", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = gorillaws.DefaultDialer.Dial(wsURL+"99/feed?token="+token, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL+"1/feed?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.hub.ClientsCount(1) == 1 }, 2*time.Second, 10*time.Millisecond)

	rec := s.do(t, http.MethodDelete, "/api/v1/organizations/1/members/m-2", token, dto.ConfirmRequest{Confirm: true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event websocket.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, websocket.EventTypeOrganizationChanged, event.Type)
	assert.Equal(t, int64(1), event.OrganizationID)
	assert.Equal(t, services.ActionKick, event.Action)
	assert.Equal(t, "u-f", event.Actor)
}
