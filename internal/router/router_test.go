package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"watchtrade_backend/internal/router"
	"watchtrade_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// The routing tests only assert on requests the role middleware
// rejects, so no handler ever reaches the nil database handle.
func testEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	router.Setup(engine, nil)
	return engine
}

func investorToken(t *testing.T) string {
	t.Helper()
	partnerID := "11111111-1111-1111-1111-111111111111"
	token, err := utils.GenerateAccessToken(9, "investor", "investor", &partnerID)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	return token
}

func TestInvestorCannotReadPartnerLedgers(t *testing.T) {
	engine := testEngine()
	token := investorToken(t)

	paths := []string{
		"/api/v1/partners",
		"/api/v1/partners/11111111-1111-1111-1111-111111111111",
		"/api/v1/settlement",
		"/api/v1/reports/profit",
	}
	for _, path := range paths {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		engine.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("GET %s as investor: status = %d, want 403", path, w.Code)
		}
	}
}

func TestInvestorCannotWrite(t *testing.T) {
	engine := testEngine()
	token := investorToken(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("POST /api/v1/items as investor: status = %d, want 403", w.Code)
	}
}

func TestPendingUserBlockedFromLedger(t *testing.T) {
	engine := testEngine()
	token, err := utils.GenerateAccessToken(3, "newbie", "pending", nil)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("GET /api/v1/items as pending: status = %d, want 403", w.Code)
	}
}

func TestUserAdministrationIsDirectorOnly(t *testing.T) {
	engine := testEngine()
	token, err := utils.GenerateAccessToken(2, "ops", "operator", nil)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/5/role", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("PUT /api/v1/users/5/role as operator: status = %d, want 403", w.Code)
	}
}
