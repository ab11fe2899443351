package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"watchtrade_backend/internal/middleware"
	"watchtrade_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

func protectedRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/secure")
	group.Use(middleware.AuthMiddleware())
	if len(roles) > 0 {
		group.Use(middleware.RoleAuthMiddleware(roles...))
	}
	group.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": c.GetString("userRole")})
	})
	return r
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	r := protectedRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	r := protectedRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure/ping", nil)
	req.Header.Set("Authorization", "Token abc123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	token, err := utils.GenerateAccessToken(1, "ops", "operator", nil)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	r := protectedRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
}

func TestRoleAuthMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		allowed  []string
		wantCode int
	}{
		{"director passes a director gate", "director", []string{"director"}, http.StatusOK},
		{"operator passes a staff gate", "operator", []string{"director", "operator"}, http.StatusOK},
		{"investor blocked from a staff gate", "investor", []string{"director", "operator"}, http.StatusForbidden},
		{"pending blocked everywhere", "pending", []string{"director", "operator", "investor"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := utils.GenerateAccessToken(1, "user", tt.role, nil)
			if err != nil {
				t.Fatalf("GenerateAccessToken: %v", err)
			}

			r := protectedRouter(tt.allowed...)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/secure/ping", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
		})
	}
}
