package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarium/internal/entities"
)

func protectedRouter(m *Middleware, roles ...entities.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	group := router.Group("/protected")
	group.Use(m.RequireAuth())
	if len(roles) > 0 {
		group.Use(m.RequireRole(roles...))
	}
	group.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": GetUserID(c),
			"email":   GetUserEmail(c),
			"role":    GetUserRole(c),
		})
	})
	return router
}

func doRequest(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	middleware := NewMiddleware(testSecret)
	router := protectedRouter(middleware)

	token, err := IssueToken(testUser(), testSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
		wantStatus    int
	}{
		{
			name:          "valid bearer token",
			authorization: "Bearer " + token,
			wantStatus:    http.StatusOK,
		},
		{
			name:          "missing header",
			authorization: "",
			wantStatus:    http.StatusUnauthorized,
		},
		{
			name:          "wrong scheme",
			authorization: "Basic " + token,
			wantStatus:    http.StatusUnauthorized,
		},
		{
			name:          "mangled token",
			authorization: "Bearer garbage",
			wantStatus:    http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.authorization)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRequireAuthExpiredToken(t *testing.T) {
	middleware := NewMiddleware(testSecret)
	router := protectedRouter(middleware)

	token, err := IssueToken(testUser(), testSecret, -time.Minute)
	require.NoError(t, err)

	w := doRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token expired")
}

func TestRequireAuthStoresClaims(t *testing.T) {
	middleware := NewMiddleware(testSecret)
	router := protectedRouter(middleware)

	token, err := IssueToken(testUser(), testSecret, time.Hour)
	require.NoError(t, err)

	w := doRequest(router, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":42`)
	assert.Contains(t, w.Body.String(), `"email":"reader@example.com"`)
}

func TestRequireRole(t *testing.T) {
	middleware := NewMiddleware(testSecret)
	router := protectedRouter(middleware, entities.UserRoleAdmin)

	member := testUser()
	memberToken, err := IssueToken(member, testSecret, time.Hour)
	require.NoError(t, err)

	admin := testUser()
	admin.Role = entities.UserRoleAdmin
	adminToken, err := IssueToken(admin, testSecret, time.Hour)
	require.NoError(t, err)

	t.Run("member is rejected", func(t *testing.T) {
		w := doRequest(router, "Bearer "+memberToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "admin access required")
	})

	t.Run("admin passes", func(t *testing.T) {
		w := doRequest(router, "Bearer "+adminToken)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
