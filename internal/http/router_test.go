package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smallbiznis/jobboard/internal/config"
	apphttp "github.com/smallbiznis/jobboard/internal/http"
	"github.com/smallbiznis/jobboard/internal/http/handler"
	httpmiddleware "github.com/smallbiznis/jobboard/internal/http/middleware"
	"github.com/smallbiznis/jobboard/internal/jwt"
	"github.com/smallbiznis/jobboard/internal/middleware"
	"github.com/smallbiznis/jobboard/internal/password"
	"github.com/smallbiznis/jobboard/internal/repository/memory"
	"github.com/smallbiznis/jobboard/internal/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	password.DefaultParams = password.Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}
	os.Exit(m.Run())
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
}

func testConfig() config.Config {
	return config.Config{
		Environment:          "test",
		APIPrefix:            "/api",
		ServiceName:          "jobboard-test",
		CORSAllowedOrigins:   []string{"http://localhost:3000", "*.vercel.app"},
		CORSAllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		CORSAllowedHeaders:   []string{"Authorization", "Content-Type"},
		CORSAllowCredentials: true,
	}
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memory.New()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	generator, err := jwt.NewGenerator("0123456789abcdef0123456789abcdef", "jobboard-test", time.Hour)
	require.NoError(t, err)
	logger := zap.NewNop()

	auth := service.NewAuthService(store.Users(), node, generator, logger)
	jobs := service.NewJobService(store.Jobs(), store.Users(), node, logger)
	applications := service.NewApplicationService(store.Applications(), store.Jobs(), node, logger)

	registry := prometheus.NewRegistry()
	router := apphttp.NewRouter(testConfig(), apphttp.Handlers{
		Auth:         handler.NewAuthHandler(auth),
		Jobs:         handler.NewJobHandler(jobs),
		Applications: handler.NewApplicationHandler(applications),
		Health:       handler.NewHealthHandler(nil, logger),
	}, httpmiddleware.NewAuth(auth), apphttp.Options{
		Logger:  logger,
		Metrics: middleware.NewMetrics(registry, registry),
	})
	return &testAPI{t: t, router: router}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, kind string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	body := decode(t, rec)
	require.Equal(t, kind, body["error"])
	require.NotEmpty(t, body["message"])
}

func (a *testAPI) register(email, role string) (token string, userID string) {
	a.t.Helper()
	payload := map[string]any{"name": "User " + email, "email": email, "password": "secret123", "role": role}
	if role == "employer" {
		payload["company"] = "Acme"
	}
	rec := a.do(http.MethodPost, "/api/auth/register", "", payload)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(a.t, rec)
	user := body["user"].(map[string]any)
	return body["token"].(string), user["id"].(string)
}

func jobPayload(title string) map[string]any {
	return map[string]any{
		"title":           title,
		"location":        "Remote",
		"jobType":         "Full-time",
		"salary":          "100k",
		"description":     "Build things",
		"requirements":    "Go",
		"experienceLevel": "Senior Level",
		"category":        "Engineering",
		"skills":          "Go, SQL , ,Postgres",
		"deadline":        "2030-01-31",
	}
}

func (a *testAPI) postJob(token, title string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/jobs", token, jobPayload(title))
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(a.t, rec)["job"].(map[string]any)["id"].(string)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode(t, rec)["status"])
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRegisterLoginMe(t *testing.T) {
	api := newTestAPI(t)
	token, userID := api.register("Seeker@Example.com", "jobseeker")

	rec := api.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode(t, rec)["user"].(map[string]any)
	require.Equal(t, userID, user["id"])
	require.Equal(t, "seeker@example.com", user["email"])
	require.NotContains(t, user, "password")

	rec = api.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "seeker@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, decode(t, rec)["token"])

	rec = api.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "seeker@example.com", "password": "wrong"})
	requireError(t, rec, http.StatusUnauthorized, "unauthenticated")

	rec = api.do(http.MethodPost, "/api/auth/register", "", map[string]any{"name": "Again", "email": "seeker@example.com", "password": "secret123", "role": "jobseeker"})
	requireError(t, rec, http.StatusBadRequest, "validation_error")
}

func TestRegisterValidation(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/api/auth/register", "", `{"name":`)
	requireError(t, rec, http.StatusBadRequest, "validation_error")

	rec = api.do(http.MethodPost, "/api/auth/register", "", map[string]any{"name": "Boss", "email": "boss@example.com", "password": "secret123", "role": "admin"})
	requireError(t, rec, http.StatusBadRequest, "validation_error")

	rec = api.do(http.MethodPost, "/api/auth/register", "", map[string]any{"name": "Boss", "email": "boss@example.com", "password": "secret123", "role": "employer"})
	requireError(t, rec, http.StatusBadRequest, "validation_error")
}

func TestAuthMiddleware(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/auth/me", "", nil)
	requireError(t, rec, http.StatusUnauthorized, "unauthenticated")

	rec = api.do(http.MethodGet, "/api/auth/me", "not-a-token", nil)
	requireError(t, rec, http.StatusUnauthorized, "invalid_token")

	rec = api.do(http.MethodPost, "/api/applications", "", map[string]any{"jobId": "1"})
	requireError(t, rec, http.StatusUnauthorized, "unauthenticated")
}

func TestJobLifecycle(t *testing.T) {
	api := newTestAPI(t)
	employer, employerID := api.register("boss@example.com", "employer")
	seeker, _ := api.register("seeker@example.com", "jobseeker")

	rec := api.do(http.MethodPost, "/api/jobs", seeker, jobPayload("Nope"))
	requireError(t, rec, http.StatusForbidden, "forbidden")

	jobID := api.postJob(employer, "Backend Engineer")

	rec = api.do(http.MethodGet, "/api/jobs/"+jobID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	job := decode(t, rec)["job"].(map[string]any)
	require.Equal(t, []any{"Go", "SQL", "Postgres"}, job["skills"])
	require.Equal(t, "Senior Level", job["experienceLevel"])
	require.Equal(t, "Acme", job["company"])
	require.Equal(t, "active", job["status"])
	poster := job["postedBy"].(map[string]any)
	require.Equal(t, employerID, poster["id"])
	require.Equal(t, "boss@example.com", poster["email"])

	rec = api.do(http.MethodGet, "/api/jobs?search=backend&experienceLevel=Senior", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	jobs := decode(t, rec)["jobs"].([]any)
	require.Len(t, jobs, 1)
	require.NotContains(t, jobs[0].(map[string]any)["postedBy"], "email")

	rec = api.do(http.MethodPut, "/api/jobs/"+jobID, employer, map[string]any{"skills": []string{"Rust"}, "deadline": nil, "salary": "120k"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	job = decode(t, rec)["job"].(map[string]any)
	require.Equal(t, []any{"Rust"}, job["skills"])
	require.Equal(t, "120k", job["salary"])
	require.Equal(t, "Backend Engineer", job["title"])
	require.NotContains(t, job, "deadline")

	rec = api.do(http.MethodPut, "/api/jobs/"+jobID, employer, map[string]any{"title": ""})
	requireError(t, rec, http.StatusBadRequest, "validation_error")

	rec = api.do(http.MethodPut, "/api/jobs/"+jobID, employer, map[string]any{"deadline": "tomorrow"})
	requireError(t, rec, http.StatusBadRequest, "validation_error")

	other, _ := api.register("rival@example.com", "employer")
	rec = api.do(http.MethodPut, "/api/jobs/"+jobID, other, map[string]any{"title": "Mine now"})
	requireError(t, rec, http.StatusForbidden, "forbidden")
	rec = api.do(http.MethodDelete, "/api/jobs/"+jobID, other, nil)
	requireError(t, rec, http.StatusForbidden, "forbidden")

	rec = api.do(http.MethodGet, "/api/jobs/my/posted", employer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode(t, rec)["jobs"], 1)

	rec = api.do(http.MethodGet, "/api/jobs/my/posted", seeker, nil)
	requireError(t, rec, http.StatusForbidden, "forbidden")

	rec = api.do(http.MethodDelete, "/api/jobs/"+jobID, employer, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/api/jobs/"+jobID, "", nil)
	requireError(t, rec, http.StatusNotFound, "not_found")
}

func TestJobNotFoundForMalformedID(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/api/jobs/not-a-number", "", nil)
	requireError(t, rec, http.StatusNotFound, "not_found")
}

func TestApplicationFlow(t *testing.T) {
	api := newTestAPI(t)
	employer, _ := api.register("boss@example.com", "employer")
	seeker, seekerID := api.register("seeker@example.com", "jobseeker")
	jobID := api.postJob(employer, "Backend Engineer")

	rec := api.do(http.MethodPost, "/api/applications", seeker, map[string]any{"jobId": jobID, "coverLetter": "Hire me"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	app := decode(t, rec)["application"].(map[string]any)
	appID := app["id"].(string)
	require.Equal(t, "pending", app["status"])
	require.Equal(t, seekerID, app["applicantId"])

	rec = api.do(http.MethodPost, "/api/applications", seeker, map[string]any{"jobId": jobID})
	requireError(t, rec, http.StatusBadRequest, "duplicate_application")

	rec = api.do(http.MethodGet, "/api/applications/my", seeker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode(t, rec)["applications"].([]any)
	require.Len(t, mine, 1)
	require.Equal(t, "Backend Engineer", mine[0].(map[string]any)["job"].(map[string]any)["title"])

	rec = api.do(http.MethodGet, "/api/applications/job/"+jobID, seeker, nil)
	requireError(t, rec, http.StatusForbidden, "forbidden")

	rec = api.do(http.MethodGet, "/api/applications/job/"+jobID, employer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	forJob := decode(t, rec)["applications"].([]any)
	require.Len(t, forJob, 1)
	require.Equal(t, "seeker@example.com", forJob[0].(map[string]any)["applicant"].(map[string]any)["email"])

	rec = api.do(http.MethodGet, "/api/jobs/"+jobID, "", nil)
	require.EqualValues(t, 1, decode(t, rec)["job"].(map[string]any)["applicantCount"])

	rec = api.do(http.MethodPut, "/api/applications/"+appID+"/status", seeker, map[string]any{"status": "accepted"})
	requireError(t, rec, http.StatusForbidden, "forbidden")

	rec = api.do(http.MethodPut, "/api/applications/"+appID+"/status", employer, map[string]any{"status": "hired"})
	requireError(t, rec, http.StatusBadRequest, "validation_error")

	rec = api.do(http.MethodPut, "/api/applications/"+appID+"/status", employer, map[string]any{"status": "shortlisted"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "shortlisted", decode(t, rec)["application"].(map[string]any)["status"])

	rec = api.do(http.MethodDelete, "/api/applications/"+appID, employer, nil)
	requireError(t, rec, http.StatusForbidden, "forbidden")

	rec = api.do(http.MethodDelete, "/api/applications/"+appID, seeker, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodDelete, "/api/applications/"+appID, seeker, nil)
	requireError(t, rec, http.StatusNotFound, "not_found")
}

func TestApplyToMissingJob(t *testing.T) {
	api := newTestAPI(t)
	seeker, _ := api.register("seeker@example.com", "jobseeker")

	rec := api.do(http.MethodPost, "/api/applications", seeker, map[string]any{"jobId": "12345"})
	requireError(t, rec, http.StatusNotFound, "not_found")

	rec = api.do(http.MethodPost, "/api/applications", seeker, map[string]any{})
	requireError(t, rec, http.StatusBadRequest, "validation_error")
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/api/nope", "", nil)
	requireError(t, rec, http.StatusNotFound, "not_found")
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/jobs", nil)
	req.Header.Set("Origin", "https://preview-123.vercel.app")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://preview-123.vercel.app", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/api/jobs", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.do(http.MethodGet, "/api/health", "", nil)

	rec := api.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `jobboard_api_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
}
