package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"agroinnova-backend/internal/models"
	"agroinnova-backend/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type AuthMiddlewareTestSuite struct {
	suite.Suite
	auth   *services.AuthService
	router *gin.Engine
}

func (s *AuthMiddlewareTestSuite) SetupTest() {
	s.auth = services.NewAuthService("middleware-test-secret-0123456789", 3600, nil)
	mw := NewAuthMiddleware(s.auth)

	s.router = gin.New()
	s.router.GET("/me", mw.AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentUserID(c), "rol": c.GetString(UserRoleKey)})
	})
	s.router.GET("/admin", mw.AuthRequired(), mw.RequireRoles("admin", "supervisor"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	s.router.GET("/ws", mw.AuthRequired(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
}

func (s *AuthMiddlewareTestSuite) token(id int64, role models.UserRole) string {
	tok, err := s.auth.GenerateToken(&models.User{ID: id, Username: "u", Role: role})
	s.Require().NoError(err)
	return tok
}

func (s *AuthMiddlewareTestSuite) get(path, token string, extra map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range extra {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *AuthMiddlewareTestSuite) TestMissingAndInvalidToken() {
	w := s.get("/me", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Contains(w.Body.String(), "No se proporcionó token")

	w = s.get("/me", "not-a-jwt", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Contains(w.Body.String(), "Token inválido")

	other := services.NewAuthService("another-secret-0123456789012345", 3600, nil)
	forged, err := other.GenerateToken(&models.User{ID: 1, Role: models.UserRoleAdmin})
	s.Require().NoError(err)
	s.Equal(http.StatusUnauthorized, s.get("/me", forged, nil).Code)
}

func (s *AuthMiddlewareTestSuite) TestValidTokenSetsContext() {
	w := s.get("/me", s.token(42, models.UserRoleCampesino), nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"id":42,"rol":"campesino"}`, w.Body.String())
}

func (s *AuthMiddlewareTestSuite) TestRevokedTokens() {
	tok := s.token(7, models.UserRoleUser)
	s.Require().NoError(s.auth.BlacklistToken(context.Background(), tok))
	s.Equal(http.StatusUnauthorized, s.get("/me", tok, nil).Code)

	tok = s.token(8, models.UserRoleUser)
	s.Require().NoError(s.auth.RevokeUserSessions(context.Background(), 8))
	s.Equal(http.StatusUnauthorized, s.get("/me", tok, nil).Code)

	// a session opened right after the revocation is valid
	s.Equal(http.StatusOK, s.get("/me", s.token(8, models.UserRoleUser), nil).Code)
}

func (s *AuthMiddlewareTestSuite) TestRoles() {
	s.Equal(http.StatusForbidden, s.get("/admin", s.token(1, models.UserRoleUser), nil).Code)
	s.Equal(http.StatusOK, s.get("/admin", s.token(1, models.UserRoleSupervisor), nil).Code)
	s.Equal(http.StatusOK, s.get("/admin", s.token(1, models.UserRoleAdmin), nil).Code)
}

func (s *AuthMiddlewareTestSuite) TestWebsocketQueryToken() {
	tok := s.token(3, models.UserRoleUser)
	s.Equal(http.StatusUnauthorized, s.get("/ws?token="+tok, "", nil).Code)
	s.Equal(http.StatusOK, s.get("/ws?token="+tok, "", map[string]string{"Upgrade": "websocket"}).Code)
}

func TestAuthMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareTestSuite))
}

func limitedRouter(l Limiter) *gin.Engine {
	r := gin.New()
	r.Use(RateLimitMiddleware(l, "Demasiadas solicitudes", false, nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hit(r http.Handler) int {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w.Code
}

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(2, time.Hour)
	r := limitedRouter(l)

	assert.Equal(t, http.StatusOK, hit(r))
	assert.Equal(t, http.StatusOK, hit(r))
	assert.Equal(t, http.StatusTooManyRequests, hit(r))
	assert.Equal(t, 1, l.Len())

	now := time.Now()
	l.now = func() time.Time { return now.Add(4 * time.Hour) }
	assert.Equal(t, 1, l.Cleanup())
	assert.Equal(t, 0, l.Len())
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("backend down")
}

func TestRateLimitFailsOpen(t *testing.T) {
	assert.Equal(t, http.StatusOK, hit(limitedRouter(brokenLimiter{})))

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	assert.Equal(t, http.StatusOK, hit(limitedRouter(NewRedisRateLimiter(client, "auth", 1, time.Minute))))
}

func TestRateLimitDisabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(NewIPRateLimiter(1, time.Hour), "x", true, nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(r))
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(), CORS([]string{"http://localhost:4200/"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:4200")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:4200", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSAnyOriginWithoutCredentials(t *testing.T) {
	r := gin.New()
	r.Use(CORS(nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://cualquiera.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://cualquiera.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestFileUploadLimit(t *testing.T) {
	r := gin.New()
	r.Use(FileUploadSecurityMiddleware(16))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(make([]byte, 64)))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(make([]byte, 64)))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
