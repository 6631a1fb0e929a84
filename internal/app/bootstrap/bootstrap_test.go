package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/waffle/config"
	"github.com/melodica-app/melodica/internal/testutil"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestValidateConfig_RequiresPepper(t *testing.T) {
	coreCfg := &config.CoreConfig{}

	appCfg := AppConfig{
		MongoURI:   "mongodb://localhost:27017",
		CodePepper: "",
	}
	if err := ValidateConfig(coreCfg, appCfg, testLogger()); err == nil {
		t.Error("expected error for empty code_pepper")
	}

	appCfg.CodePepper = "some-secret"
	if err := ValidateConfig(coreCfg, appCfg, testLogger()); err != nil {
		t.Errorf("expected valid config to pass, got %v", err)
	}
}

func TestValidateConfig_RejectsBadMongoURI(t *testing.T) {
	coreCfg := &config.CoreConfig{}
	appCfg := AppConfig{
		MongoURI:   "not-a-mongo-uri",
		CodePepper: "some-secret",
	}
	if err := ValidateConfig(coreCfg, appCfg, testLogger()); err == nil {
		t.Error("expected error for malformed mongo URI")
	}
}

func TestBuildHandler_RoutesAndGates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	coreCfg := &config.CoreConfig{Env: "dev"}
	appCfg := AppConfig{
		MongoDatabase: db.Name(),
		SessionName:   "melodica-session",
		CodePepper:    "test-pepper",
	}
	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}

	handler, err := BuildHandler(coreCfg, appCfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler failed: %v", err)
	}

	// Health is public.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health: got %d, want %d", rec.Code, http.StatusOK)
	}

	// Userinfo answers signed-out callers instead of rejecting them.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/user", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /api/user: got %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"isAuthenticated":false`) {
		t.Errorf("GET /api/user body: %s", rec.Body.String())
	}

	// Credential endpoints sit behind the sign-in gate.
	for _, target := range []string{
		"/api/redeem-invite-code",
		"/api/redeem-teacher-serial",
		"/api/generate-invite-code",
		"/api/generate-teacher-serials",
	} {
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("POST", target, strings.NewReader(`{}`)))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("POST %s anonymous: got %d, want %d", target, rec.Code, http.StatusUnauthorized)
		}
	}
}
