package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/gym-schedule-api/internal/models"
	"github.com/noah-isme/gym-schedule-api/internal/service"
)

func newProtectedRouter(tokens TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/", JWT(tokens))
	api.GET("/trainers/:id/class-assignments", RequireRoles(models.RoleAdmin, SelfParam("id")), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	api.POST("/class-assignments", RequireRoles(models.RoleAdmin, models.RoleTrainer), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return router
}

func TestJWTAndRoles(t *testing.T) {
	tokens := service.NewTokenService(service.TokenConfig{Secret: "secret", Issuer: "gym-schedule-api", Expiry: time.Minute})
	router := newProtectedRouter(tokens)

	trainer, err := tokens.IssueToken("trainer-1", models.RoleTrainer, "Tess")
	assert.NoError(t, err)
	member, err := tokens.IssueToken("member-1", models.RoleMember, "Mo")
	assert.NoError(t, err)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"missing token", http.MethodPost, "/class-assignments", "", http.StatusUnauthorized},
		{"garbage token", http.MethodPost, "/class-assignments", "garbage", http.StatusUnauthorized},
		{"trainer writes", http.MethodPost, "/class-assignments", trainer, http.StatusCreated},
		{"member cannot write", http.MethodPost, "/class-assignments", member, http.StatusForbidden},
		{"trainer reads own", http.MethodGet, "/trainers/trainer-1/class-assignments", trainer, http.StatusOK},
		{"trainer reads other", http.MethodGet, "/trainers/trainer-2/class-assignments", trainer, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}
