package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Miraines/MoonyAndStarry/board-service/internal/adapters/db/memory"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/adapters/db/postgres"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/adapters/transport/http/middleware"
	appjwt "github.com/Miraines/MoonyAndStarry/board-service/internal/app/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/app/auth/password"
	authsvc "github.com/Miraines/MoonyAndStarry/board-service/internal/app/auth/service"
	msgsvc "github.com/Miraines/MoonyAndStarry/board-service/internal/app/message/service"
	authmodel "github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/model"
	msgmodel "github.com/Miraines/MoonyAndStarry/board-service/internal/domain/message/model"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/infra/config"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/infra/metrics"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	engine *gin.Engine
	router *Router
	util   *appjwt.JwtUtilImpl
}

type serverOption func(*EngineDeps)

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&authmodel.User{}, &msgmodel.Message{}))

	util, err := appjwt.NewJWTUtil(&config.Config{
		JWTSecret:       "transport-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "sde-challenge",
		Audience:        "sde-challenge",
	})
	require.NoError(t, err)

	log := zap.NewNop()
	v := validator.New()
	auth := authsvc.New(postgres.NewPostgresUserRepo(db), memory.NewRefreshRegistry(), util,
		password.Bcrypt{Cost: bcrypt.MinCost}, v, log)
	messages := msgsvc.New(postgres.NewPostgresMessageRepo(db), v, log)

	deps := EngineDeps{
		Handler: NewHandler(auth, messages, "", false, log),
		Gate:    middleware.Authenticate(util, log),
		Health: map[string]HealthCheck{
			"postgres": func(ctx context.Context) error { return sqlDB.PingContext(ctx) },
		},
		Metrics: metrics.NewRegistry(),
		Log:     log,
	}
	for _, o := range opts {
		o(&deps)
	}

	engine, router := NewEngine(deps)
	return &testServer{engine: engine, router: router, util: util}
}

type call struct {
	method string
	path   string
	body   any
	bearer string
	cookie *http.Cookie
}

func (s *testServer) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if c.body != nil {
		if raw, ok := c.body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(c.body))
		}
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.1:4000"
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

type authBody struct {
	User         authmodel.PublicUser `json:"user"`
	RefreshToken string               `json:"refreshToken"`
}

func accessCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.AccessTokenCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", middleware.AccessTokenCookie)
	return nil
}

var ann = map[string]string{"email": "a@x.com", "password": "secret1", "name": "Ann"}

func (s *testServer) signUp(t *testing.T) (authBody, *http.Cookie) {
	t.Helper()
	w := s.do(t, call{method: "POST", path: "/auth/sign-up", body: ann})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[authBody](t, w), accessCookie(t, w)
}

func TestSignUp_CreatedThenConflict(t *testing.T) {
	s := newTestServer(t)

	body, cookie := s.signUp(t)
	require.Equal(t, "a@x.com", body.User.Email)
	require.Equal(t, "Ann", body.User.Name)
	require.NotEmpty(t, body.User.ID)
	require.NotEmpty(t, body.RefreshToken)

	require.NotEmpty(t, cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.InDelta(t, 3600, cookie.MaxAge, 2)
	require.False(t, cookie.Secure)

	w := s.do(t, call{method: "POST", path: "/auth/sign-up", body: ann})
	require.Equal(t, http.StatusConflict, w.Code)
	require.JSONEq(t, `{"error":"user with this email already exists"}`, w.Body.String())
}

func TestSignUp_BadInput(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, call{method: "POST", path: "/auth/sign-up", body: "{not json"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, call{method: "POST", path: "/auth/sign-up", body: map[string]string{"email": "a@x.com", "password": "123", "name": "Ann"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, decode[map[string]string](t, w)["error"], "invalid argument")
}

func TestSignUp_LongPassword(t *testing.T) {
	s := newTestServer(t)
	creds := map[string]string{"email": "long@x.com", "password": strings.Repeat("p", 80), "name": "Long"}

	w := s.do(t, call{method: "POST", path: "/auth/sign-up", body: creds})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	delete(creds, "name")
	w = s.do(t, call{method: "POST", path: "/auth/sign-in", body: creds})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestSignInAndMe(t *testing.T) {
	s := newTestServer(t)
	signed, _ := s.signUp(t)

	w := s.do(t, call{method: "POST", path: "/auth/sign-in", body: map[string]string{"email": "a@x.com", "password": "secret1"}})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[authBody](t, w)
	require.NotEmpty(t, body.RefreshToken)
	cookie := accessCookie(t, w)

	// bearer header
	w = s.do(t, call{method: "GET", path: "/auth/me", bearer: cookie.Value})
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]string](t, w)
	require.Equal(t, map[string]string{"_id": signed.User.ID, "email": "a@x.com", "name": "Ann"}, me)

	// cookie
	w = s.do(t, call{method: "GET", path: "/auth/me", cookie: cookie})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSignIn_SameErrorForUnknownAndWrongPassword(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t)

	unknown := s.do(t, call{method: "POST", path: "/auth/sign-in", body: map[string]string{"email": "no@x.com", "password": "secret1"}})
	wrong := s.do(t, call{method: "POST", path: "/auth/sign-in", body: map[string]string{"email": "a@x.com", "password": "secret2"}})

	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	require.Equal(t, http.StatusUnauthorized, wrong.Code)
	require.JSONEq(t, `{"error":"invalid credentials"}`, unknown.Body.String())
	require.Equal(t, unknown.Body.String(), wrong.Body.String())
}

func TestRefreshToken_Rotation(t *testing.T) {
	s := newTestServer(t)
	signed, _ := s.signUp(t)

	w := s.do(t, call{method: "POST", path: "/auth/refresh-token", body: map[string]string{"refreshToken": signed.RefreshToken}})
	require.Equal(t, http.StatusOK, w.Code)
	rotated := decode[map[string]string](t, w)["refreshToken"]
	require.NotEmpty(t, rotated)
	require.NotEqual(t, signed.RefreshToken, rotated)
	require.NotEmpty(t, accessCookie(t, w).Value)

	w = s.do(t, call{method: "POST", path: "/auth/refresh-token", body: map[string]string{"refreshToken": signed.RefreshToken}})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"error":"invalid refresh token"}`, w.Body.String())

	w = s.do(t, call{method: "POST", path: "/auth/refresh-token", body: map[string]string{}})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExpiredAccessTokenIsUnauthenticated(t *testing.T) {
	s := newTestServer(t)
	signed, _ := s.signUp(t)

	uid, err := uuid.Parse(signed.User.ID)
	require.NoError(t, err)
	stale, _, err := s.util.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).
		SignAccess(authmodel.User{ID: uid, Email: "a@x.com"})
	require.NoError(t, err)

	w := s.do(t, call{method: "GET", path: "/auth/me", bearer: stale})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"error":"unauthenticated"}`, w.Body.String())
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	signed, cookie := s.signUp(t)
	logout := call{method: "POST", path: "/auth/logout", cookie: cookie, body: map[string]string{"refreshToken": signed.RefreshToken}}

	w := s.do(t, logout)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Logged out successfully"}`, w.Body.String())
	cleared := accessCookie(t, w)
	require.Empty(t, cleared.Value)
	require.Negative(t, cleared.MaxAge)

	for i := 0; i < 2; i++ {
		w = s.do(t, logout)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.JSONEq(t, `{"error":"invalid refresh token"}`, w.Body.String())
	}

	w = s.do(t, call{method: "POST", path: "/auth/refresh-token", body: map[string]string{"refreshToken": signed.RefreshToken}})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, call{method: "POST", path: "/auth/logout", body: map[string]string{"refreshToken": signed.RefreshToken}})
	require.JSONEq(t, `{"error":"unauthenticated"}`, w.Body.String())
}

func TestRoutesAreProtectedByDefault(t *testing.T) {
	s := newTestServer(t)

	public := [][2]string{
		{"POST", "/auth/sign-up"}, {"POST", "/auth/sign-in"}, {"POST", "/auth/refresh-token"},
		{"GET", "/health"}, {"GET", "/metrics"},
	}
	protected := [][2]string{
		{"POST", "/auth/logout"}, {"GET", "/auth/me"}, {"GET", "/users"},
		{"GET", "/messages"}, {"GET", "/messages/:id"},
		{"POST", "/messages"}, {"PATCH", "/messages/:id"}, {"DELETE", "/messages/:id"},
	}
	for _, r := range public {
		a, ok := s.router.AuthTypeOf(r[0], r[1])
		require.True(t, ok, r)
		require.Equal(t, AuthNone, a, r)
	}
	for _, r := range protected {
		a, ok := s.router.AuthTypeOf(r[0], r[1])
		require.True(t, ok, r)
		require.Equal(t, AuthBearer, a, r)

		w := s.do(t, call{method: r[0], path: strings.Replace(r[1], ":id", uuid.NewString(), 1), body: "{}"})
		require.Equal(t, http.StatusUnauthorized, w.Code, r)
	}
}

func TestMessagesLifecycle(t *testing.T) {
	s := newTestServer(t)
	_, annCookie := s.signUp(t)

	w := s.do(t, call{method: "POST", path: "/auth/sign-up", body: map[string]string{"email": "b@x.com", "password": "secret1", "name": "Bob"}})
	require.Equal(t, http.StatusCreated, w.Code)
	bobCookie := accessCookie(t, w)

	var ids []string
	for i, tag := range []string{"idea", "question", "idea"} {
		w = s.do(t, call{method: "POST", path: "/messages", cookie: annCookie, body: map[string]string{"content": "post " + string(rune('a'+i)), "tag": tag}})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		v := decode[msgmodel.View](t, w)
		require.Equal(t, "Ann", v.Author.Name)
		ids = append(ids, v.ID)
		time.Sleep(2 * time.Millisecond)
	}

	w = s.do(t, call{method: "GET", path: "/messages?limit=2", cookie: bobCookie})
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[msgmodel.PageView](t, w)
	require.Len(t, page.Messages, 2)
	require.True(t, page.HasMore)
	require.Equal(t, ids[2], page.Messages[0].ID)
	require.NotNil(t, page.NextCursor)

	w = s.do(t, call{method: "GET", path: "/messages?limit=2&cursor=" + *page.NextCursor, cookie: bobCookie})
	page = decode[msgmodel.PageView](t, w)
	require.Len(t, page.Messages, 1)
	require.False(t, page.HasMore)
	require.Equal(t, ids[0], page.Messages[0].ID)

	w = s.do(t, call{method: "GET", path: "/messages?tag=idea", cookie: bobCookie})
	require.Len(t, decode[msgmodel.PageView](t, w).Messages, 2)

	w = s.do(t, call{method: "GET", path: "/messages?limit=500", cookie: bobCookie})
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, call{method: "GET", path: "/messages?limit=abc", cookie: bobCookie})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, call{method: "GET", path: "/messages/" + ids[1], cookie: bobCookie})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, call{method: "GET", path: "/messages/" + uuid.NewString(), cookie: bobCookie})
	require.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, call{method: "GET", path: "/messages/nope", cookie: bobCookie})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, call{method: "PATCH", path: "/messages/" + ids[1], cookie: bobCookie, body: map[string]string{"content": "hijack"}})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.JSONEq(t, `{"error":"you can only edit your own messages"}`, w.Body.String())

	w = s.do(t, call{method: "PATCH", path: "/messages/" + ids[1], cookie: annCookie, body: map[string]string{"content": "edited"}})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "edited", decode[msgmodel.View](t, w).Content)

	w = s.do(t, call{method: "DELETE", path: "/messages/" + ids[1], cookie: bobCookie})
	require.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, call{method: "DELETE", path: "/messages/" + ids[1], cookie: annCookie})
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Message deleted successfully"}`, w.Body.String())
	w = s.do(t, call{method: "DELETE", path: "/messages/" + ids[1], cookie: annCookie})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListUsers(t *testing.T) {
	s := newTestServer(t)
	ann, cookie := s.signUp(t)
	w := s.do(t, call{method: "POST", path: "/auth/sign-up", body: map[string]string{"email": "b@x.com", "password": "secret1", "name": "Bob"}})
	require.Equal(t, http.StatusCreated, w.Code)
	bob := decode[authBody](t, w)

	w = s.do(t, call{method: "GET", path: "/users"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, call{method: "GET", path: "/users", cookie: cookie})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "assword")
	users := decode[[]authmodel.PublicUser](t, w)
	require.Equal(t, []authmodel.PublicUser{ann.User, bob.User}, users)

	// the listed ids drive the author filter
	w = s.do(t, call{method: "POST", path: "/messages", cookie: cookie, body: map[string]string{"content": "hi"}})
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(t, call{method: "GET", path: "/messages?authorId=" + users[0].ID, cookie: cookie})
	require.Len(t, decode[msgmodel.PageView](t, w).Messages, 1)
	w = s.do(t, call{method: "GET", path: "/messages?authorId=" + users[1].ID, cookie: cookie})
	require.Empty(t, decode[msgmodel.PageView](t, w).Messages)
}

func TestSignInRateLimited(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := newTestServer(t, func(d *EngineDeps) {
		d.RateLimit = middleware.RateLimitPerIP(ctx, 1, 1, 100, time.Hour)
	})

	body := map[string]string{"email": "no@x.com", "password": "secret1"}
	require.Equal(t, http.StatusUnauthorized, s.do(t, call{method: "POST", path: "/auth/sign-in", body: body}).Code)
	require.Equal(t, http.StatusTooManyRequests, s.do(t, call{method: "POST", path: "/auth/sign-in", body: body}).Code)

	// other routes are not limited
	require.Equal(t, http.StatusOK, s.do(t, call{method: "GET", path: "/health"}).Code)
	require.Equal(t, http.StatusUnauthorized, s.do(t, call{method: "GET", path: "/messages"}).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, call{method: "GET", path: "/health"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"postgres":"up"`)

	w = s.do(t, call{method: "GET", path: "/metrics"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "http_requests_total")

	down := newTestServer(t, func(d *EngineDeps) {
		d.Health["redis"] = func(context.Context) error { return errors.New("connection refused") }
	})
	w = down.do(t, call{method: "GET", path: "/health"})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), `"redis":"down"`)
}
