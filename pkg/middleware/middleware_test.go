package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tourbook/pkg/utils"
)

func newTestRouter(t *testing.T, tokens *utils.TokenIssuer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(TraceIDMiddleware(), RequestLogger(zap.NewNop()), CORSMiddleware())
	protected := r.Group("/", JWTAuthMiddleware(tokens))
	protected.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextAccountID)+"|"+c.GetString(ContextRole))
	})
	protected.GET("/providers-only", RoleMiddleware("provider"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func issue(t *testing.T, tokens *utils.TokenIssuer, purpose utils.TokenPurpose, role string) string {
	t.Helper()
	token, err := tokens.Issue(utils.Claims{
		Purpose:          purpose,
		Email:            "a@b.com",
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "account-1"},
	}, time.Minute)
	require.NoError(t, err)
	return token
}

func get(r *gin.Engine, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthMiddleware(t *testing.T) {
	tokens, err := utils.NewTokenIssuer("test-secret", "tourbook")
	require.NoError(t, err)
	r := newTestRouter(t, tokens)

	rec := get(r, "/whoami", issue(t, tokens, utils.PurposeAccess, "customer"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "account-1|customer", rec.Body.String())
	require.NotEmpty(t, rec.Header().Get(TraceIDHeader))

	require.Equal(t, http.StatusUnauthorized, get(r, "/whoami", "").Code)
	require.Equal(t, http.StatusUnauthorized, get(r, "/whoami", "garbage").Code)
	require.Equal(t, http.StatusUnauthorized, get(r, "/whoami", issue(t, tokens, utils.PurposeRefresh, "customer")).Code)
}

func TestRoleMiddleware(t *testing.T) {
	tokens, err := utils.NewTokenIssuer("test-secret", "tourbook")
	require.NoError(t, err)
	r := newTestRouter(t, tokens)

	require.Equal(t, http.StatusForbidden, get(r, "/providers-only", issue(t, tokens, utils.PurposeAccess, "customer")).Code)
	require.Equal(t, http.StatusOK, get(r, "/providers-only", issue(t, tokens, utils.PurposeAccess, "provider")).Code)
}

func TestTraceIDMiddlewareKeepsValidIncomingID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("trace_id")) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceIDHeader, "6f1c2f4e-8d53-4a55-9d3e-0b7f9b3f2a10")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, "6f1c2f4e-8d53-4a55-9d3e-0b7f9b3f2a10", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.NotEqual(t, "not-a-uuid", rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	tokens, err := utils.NewTokenIssuer("test-secret", "tourbook")
	require.NoError(t, err)
	r := newTestRouter(t, tokens)

	req := httptest.NewRequest(http.MethodOptions, "/whoami", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
