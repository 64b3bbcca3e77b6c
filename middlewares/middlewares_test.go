package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gossipserver/auth"
	"gossipserver/models"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(zap.NewNop()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": GetUserID(c)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	token, userID, err := GenerateToken(context.Background(), auth.NewMemoryRegistry(), "ann", zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, uint(1), userID)

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{name: "bearer", header: "Bearer " + token, want: http.StatusOK},
		{name: "bare header", header: token, want: http.StatusOK},
		{name: "query", query: "?token=" + token, want: http.StatusOK},
		{name: "missing", want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", want: http.StatusUnauthorized},
	}
	r := newRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.JSONEq(t, `{"userId":1}`, w.Body.String())
				assert.Empty(t, w.Header().Get("Authorization"))
			}
		})
	}
}

func TestAuthMiddlewareRefreshesExpiringToken(t *testing.T) {
	claims := &models.MyClaims{
		UserID:         5,
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(10 * time.Minute).Unix()},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(auth.JwtKey)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	refreshed, err := auth.ParseToken(w.Header().Get("Authorization"))
	require.NoError(t, err)
	assert.Equal(t, uint(5), refreshed.UserID)
	assert.Greater(t, refreshed.ExpiresAt, claims.ExpiresAt)
}
