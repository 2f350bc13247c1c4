package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/socialflow-api/internal/models"
	appErrors "github.com/noah-isme/socialflow-api/pkg/errors"
)

type validatorStub struct {
	token string
}

func (v validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != v.token {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return &models.JWTClaims{UserID: 3}, nil
}

func newJWTRouter() (*gin.Engine, *int64) {
	gin.SetMode(gin.TestMode)
	var seen int64
	router := gin.New()
	router.Use(JWT(validatorStub{token: "good"}))
	router.GET("/", func(c *gin.Context) {
		claims := c.MustGet(ContextUserKey).(*models.JWTClaims)
		seen = claims.UserID
		c.Status(http.StatusOK)
	})
	return router, &seen
}

func TestJWTAcceptsBearerHeader(t *testing.T) {
	router, seen := newJWTRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), *seen)
}

func TestJWTAcceptsCookie(t *testing.T) {
	router, seen := newJWTRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "good"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), *seen)
}

func TestJWTRejects(t *testing.T) {
	router, seen := newJWTRouter()

	for name, header := range map[string]string{
		"missing":   "",
		"malformed": "Token good",
		"empty":     "Bearer ",
		"invalid":   "Bearer bad",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
	assert.Zero(t, *seen)
}
