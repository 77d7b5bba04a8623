package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"examprep/internal/services"
	"examprep/internal/storage"
	"examprep/internal/testutils"
	"examprep/internal/version"
	"examprep/pkg/preptypes"
)

type testServer struct {
	handler http.Handler
	logs    *bytes.Buffer
	client  *testutils.ScriptedClient
	clock   *testutils.FixedClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	testutils.ResetTestCounters()

	storageService := services.NewStorageServiceWithStore(storage.NewMemoryStore())
	require.NoError(t, storageService.Initialize())

	cfg := services.AppConfig{
		Provider:             "gemini",
		FrameworkTemperature: 0.2,
		FollowUpTemperature:  0.5,
		HistoryLimit:         services.DefaultHistoryLimit,
		CodeTTL:              services.DefaultCodeTTL,
		Breaker:              services.BreakerConfig{FailureThreshold: 5, Timeout: time.Hour},
	}
	client := testutils.NewScriptedClient()
	generator := services.NewFrameworkServiceWithClient(client, "gemini-2.5-flash", cfg)
	clock := testutils.NewFixedClock()
	codes := testutils.SequenceCodes("123456", "654321", "111111")
	logs := &bytes.Buffer{}
	requestLogger := log.New(logs)
	requestLogger.SetLevel(log.DebugLevel)

	srv, err := New(Config{
		Namespaces: storageService,
		NewWorkspace: func(store preptypes.Storage) *services.Workspace {
			auth := services.NewAuthService(store, services.AuthOptions{
				HashCost:     bcrypt.MinCost,
				Now:          clock.Now,
				GenerateCode: codes,
			})
			return services.NewWorkspaceFrom(auth, services.NewHistoryService(store, cfg.HistoryLimit), generator)
		},
		CodeTTL:  cfg.CodeTTL,
		TestMode: true,
		Logger:   requestLogger,
	})
	require.NoError(t, err)
	return &testServer{handler: srv.Handler(), logs: logs, client: client, clock: clock}
}

// browser replays the client cookie like a user agent would.
type browser struct {
	t      *testing.T
	srv    *testServer
	cookie *http.Cookie
}

func (s *testServer) browser(t *testing.T) *browser {
	return &browser{t: t, srv: s}
}

func (b *browser) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	b.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(b.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	rec := httptest.NewRecorder()
	b.srv.handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == ClientCookie {
			b.cookie = c
		}
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func requireAPIError(t *testing.T, rec *httptest.ResponseRecorder, status int, code preptypes.ErrorKind) APIError {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	envelope := decode[ErrorEnvelope](t, rec)
	assert.Equal(t, string(code), envelope.Error.Code)
	assert.NotEmpty(t, envelope.Error.Message)
	return envelope.Error
}

func (b *browser) signUpAndConfirm(email, password string) {
	b.t.Helper()
	rec := b.do(http.MethodPost, "/api/auth/signup", credentialsRequest{Email: email, Password: password})
	require.Equal(b.t, http.StatusOK, rec.Code, rec.Body.String())
	code := decode[SignUpResponse](b.t, rec).VerificationCode

	rec = b.do(http.MethodPost, "/api/auth/confirm", confirmRequest{Email: email, Code: code})
	require.Equal(b.t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.browser(t).do(http.MethodGet, "/healthcheck", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, version.Version, rec.Header().Get(VersionHeader))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Empty(t, rec.Result().Cookies(), "health checks do not issue client ids")
	assert.JSONEq(t, `{"status":"ok","version":"`+version.Version+`"}`, rec.Body.String())
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set(RequestIDHeader, "9f3cbbd4-5a4e-4b8e-9d0c-0c3f7c3d5a11")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, "9f3cbbd4-5a4e-4b8e-9d0c-0c3f7c3d5a11", rec.Header().Get(RequestIDHeader))

	logs := srv.logs.String()
	assert.Contains(t, logs, "HTTP request")
	assert.Contains(t, logs, "/healthcheck")
	assert.Contains(t, logs, "9f3cbbd4-5a4e-4b8e-9d0c-0c3f7c3d5a11")
}

func TestAccountAndFrameworkFlow(t *testing.T) {
	srv := newTestServer(t)
	b := srv.browser(t)

	rec := b.do(http.MethodPost, "/api/auth/signup", credentialsRequest{Email: "aspirant@example.com", Password: "s3cret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	signUp := decode[SignUpResponse](t, rec)
	assert.Equal(t, SignUpResponse{Email: "aspirant@example.com", VerificationCode: "123456", ExpiresInSeconds: 600}, signUp)
	require.NotNil(t, b.cookie)
	assert.Equal(t, "00000001-0000-4000-8000-000000000001", b.cookie.Value)

	rec = b.do(http.MethodPost, "/api/auth/confirm", confirmRequest{Email: "aspirant@example.com", Code: "123456"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"user":{"email":"aspirant@example.com"}}`, rec.Body.String())

	rec = b.do(http.MethodGet, "/api/auth/me", nil)
	assert.JSONEq(t, `{"user":{"email":"aspirant@example.com"}}`, rec.Body.String())

	srv.client.Push(testutils.ScriptedReply{
		Text:    testutils.Fenced("json", testutils.FrameworkReply(t, "Uniform Civil Code")),
		Sources: []preptypes.Source{{URI: "https://pib.gov.in/ucc", Title: "PIB"}},
	})
	rec = b.do(http.MethodPost, "/api/framework", frameworkRequest{Topic: "  Uniform Civil Code "})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[preptypes.FrameworkResult](t, rec)
	assert.Equal(t, "Uniform Civil Code", result.Topic)
	require.NotNil(t, result.Data)
	assert.Equal(t, "Uniform Civil Code in brief.", result.Data.TopicBrief)
	assert.Equal(t, []preptypes.Source{{URI: "https://pib.gov.in/ucc", Title: "PIB"}}, result.Sources)

	rec = b.do(http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, HistoryResponse{Topics: []string{"Uniform Civil Code"}}, decode[HistoryResponse](t, rec))

	srv.client.Push(testutils.ScriptedReply{Text: "Goa already follows a common civil code."})
	rec = b.do(http.MethodPost, "/api/followup", followUpRequest{Topic: "Uniform Civil Code", Question: "Which state has one?"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	answer := decode[preptypes.FollowUpResult](t, rec)
	assert.Equal(t, "Goa already follows a common civil code.", answer.Answer)

	rec = b.do(http.MethodDelete, "/api/history", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = b.do(http.MethodGet, "/api/history", nil)
	assert.Equal(t, HistoryResponse{Topics: []string{}}, decode[HistoryResponse](t, rec))

	rec = b.do(http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = b.do(http.MethodGet, "/api/auth/me", nil)
	assert.JSONEq(t, `{"user":null}`, rec.Body.String())

	rec = b.do(http.MethodPost, "/api/auth/login", credentialsRequest{Email: "aspirant@example.com", Password: "s3cret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"user":{"email":"aspirant@example.com"}}`, rec.Body.String())
}

func TestClientsAreIsolated(t *testing.T) {
	srv := newTestServer(t)
	first := srv.browser(t)
	first.signUpAndConfirm("aspirant@example.com", "s3cret")

	second := srv.browser(t)
	rec := second.do(http.MethodGet, "/api/auth/me", nil)
	assert.JSONEq(t, `{"user":null}`, rec.Body.String())
	require.NotNil(t, second.cookie)
	assert.NotEqual(t, first.cookie.Value, second.cookie.Value)

	rec = second.do(http.MethodGet, "/api/history", nil)
	requireAPIError(t, rec, http.StatusUnauthorized, preptypes.ErrNotLoggedIn)

	// Accounts live in the client's namespace, so the second client can register the same email.
	rec = second.do(http.MethodPost, "/api/auth/signup", credentialsRequest{Email: "aspirant@example.com", Password: "other"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestInvalidClientCookieIsReplaced(t *testing.T) {
	srv := newTestServer(t)
	b := srv.browser(t)
	b.cookie = &http.Cookie{Name: ClientCookie, Value: "../../etc"}

	rec := b.do(http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, validClientID(b.cookie.Value))
}

func TestAuthErrors(t *testing.T) {
	srv := newTestServer(t)
	b := srv.browser(t)

	rec := b.do(http.MethodPost, "/api/auth/signup", nil)
	requireAPIError(t, rec, http.StatusBadRequest, preptypes.ErrInvalidInput)

	rec = b.do(http.MethodPost, "/api/auth/signup", credentialsRequest{Email: "", Password: ""})
	apiErr := requireAPIError(t, rec, http.StatusBadRequest, preptypes.ErrInvalidInput)
	assert.Equal(t, "Email is required.", apiErr.Message)

	rec = b.do(http.MethodPost, "/api/auth/confirm", confirmRequest{Email: "ghost@example.com", Code: "123456"})
	requireAPIError(t, rec, http.StatusNotFound, preptypes.ErrNoPendingVerification)

	b.signUpAndConfirm("aspirant@example.com", "s3cret")

	rec = b.do(http.MethodPost, "/api/auth/signup", credentialsRequest{Email: "aspirant@example.com", Password: "again"})
	requireAPIError(t, rec, http.StatusConflict, preptypes.ErrDuplicateAccount)

	rec = b.do(http.MethodPost, "/api/auth/login", credentialsRequest{Email: "aspirant@example.com", Password: "wrong"})
	requireAPIError(t, rec, http.StatusUnauthorized, preptypes.ErrInvalidCredentials)

	rec = b.do(http.MethodPost, "/api/auth/signup", credentialsRequest{Email: "late@example.com", Password: "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = b.do(http.MethodPost, "/api/auth/confirm", confirmRequest{Email: "late@example.com", Code: "000000"})
	requireAPIError(t, rec, http.StatusBadRequest, preptypes.ErrInvalidCode)

	srv.clock.Advance(services.DefaultCodeTTL + time.Millisecond)
	rec = b.do(http.MethodPost, "/api/auth/confirm", confirmRequest{Email: "late@example.com", Code: "654321"})
	requireAPIError(t, rec, http.StatusGone, preptypes.ErrCodeExpired)
}

func TestFrameworkErrors(t *testing.T) {
	srv := newTestServer(t)
	b := srv.browser(t)

	rec := b.do(http.MethodPost, "/api/framework", frameworkRequest{Topic: "Federalism"})
	apiErr := requireAPIError(t, rec, http.StatusUnauthorized, preptypes.ErrNotLoggedIn)
	assert.Equal(t, "Please log in to generate a framework.", apiErr.Message)
	assert.Zero(t, srv.client.CallCount())

	b.signUpAndConfirm("aspirant@example.com", "s3cret")

	srv.client.Push(testutils.ScriptedReply{Text: "I cannot help with that."})
	rec = b.do(http.MethodPost, "/api/framework", frameworkRequest{Topic: "Federalism"})
	requireAPIError(t, rec, http.StatusUnprocessableEntity, preptypes.ErrMalformedJSON)

	srv.client.Push(testutils.ScriptedReply{Text: testutils.FrameworkReply(t, "Federalism", "finalThoughts", "mainsQuestions")})
	rec = b.do(http.MethodPost, "/api/framework", frameworkRequest{Topic: "Federalism"})
	apiErr = requireAPIError(t, rec, http.StatusUnprocessableEntity, preptypes.ErrIncompleteSchema)
	assert.ElementsMatch(t, []string{"finalThoughts", "mainsQuestions"}, apiErr.MissingKeys)

	srv.client.Push(testutils.ScriptedReply{Err: &preptypes.ProviderError{Provider: "scripted", StatusCode: 500}})
	rec = b.do(http.MethodPost, "/api/framework", frameworkRequest{Topic: "Federalism"})
	requireAPIError(t, rec, http.StatusBadGateway, preptypes.ErrTransport)

	rec = b.do(http.MethodPost, "/api/framework", frameworkRequest{Topic: "   "})
	requireAPIError(t, rec, http.StatusBadRequest, preptypes.ErrInvalidInput)

	rec = b.do(http.MethodGet, "/api/history", nil)
	assert.Equal(t, HistoryResponse{Topics: []string{}}, decode[HistoryResponse](t, rec), "failed generations are not recorded")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind     preptypes.ErrorKind
		expected int
	}{
		{preptypes.ErrInvalidInput, http.StatusBadRequest},
		{preptypes.ErrInvalidCredentials, http.StatusUnauthorized},
		{preptypes.ErrDuplicateAccount, http.StatusConflict},
		{preptypes.ErrCodeExpired, http.StatusGone},
		{preptypes.ErrEmptyResponse, http.StatusUnprocessableEntity},
		{preptypes.ErrTransport, http.StatusBadGateway},
		{preptypes.ErrAuthConfiguration, http.StatusInternalServerError},
		{preptypes.ErrUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusFor(tt.kind))
		})
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestNewDefaultsToStyledLogger(t *testing.T) {
	storageService := services.NewStorageServiceWithStore(storage.NewMemoryStore())
	require.NoError(t, storageService.Initialize())

	srv, err := New(Config{
		Namespaces:   storageService,
		NewWorkspace: func(preptypes.Storage) *services.Workspace { return nil },
	})
	require.NoError(t, err)
	require.NotNil(t, srv.log)
	assert.Contains(t, srv.log.GetPrefix(), "HTTPServer")
}
