package profile_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/melodica-app/melodica/internal/app/features/profile"
	userstore "github.com/melodica-app/melodica/internal/app/store/users"
	"github.com/melodica-app/melodica/internal/testutil"
	"go.uber.org/zap"
)

func TestServeProfile_Unauthenticated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := profile.NewHandler(db, zap.NewNop())

	req := httptest.NewRequest("GET", "/api/profile", nil)
	rec := httptest.NewRecorder()

	handler.ServeProfile(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestServeProfile_ReturnsOwnRecord(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := profile.NewHandler(db, zap.NewNop())
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fx.CreateUser(ctx, "Clara Schumann", "clara@example.com", "member")
	sessionUser := testutil.TestUser{ID: user.ID.Hex(), Role: "member"}

	req := testutil.WithUser(httptest.NewRequest("GET", "/api/profile", nil), sessionUser)
	rec := httptest.NewRecorder()

	handler.ServeProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d (body %s)", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["fullName"] != "Clara Schumann" {
		t.Errorf("fullName: got %v, want %q", resp["fullName"], "Clara Schumann")
	}
	if resp["email"] != "clara@example.com" {
		t.Errorf("email: got %v, want %q", resp["email"], "clara@example.com")
	}
}

func TestHandleUpdateProfile_SanitizesBio(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := profile.NewHandler(db, zap.NewNop())
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fx.CreateUser(ctx, "User", "user@example.com", "member")
	sessionUser := testutil.TestUser{ID: user.ID.Hex(), Role: "member"}

	body := `{"fullName": "Updated Name", "bio": "Piano teacher<script>alert(1)</script> since 2010"}`
	req := testutil.WithUser(httptest.NewRequest("PUT", "/api/profile", strings.NewReader(body)), sessionUser)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.HandleUpdateProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d (body %s)", http.StatusOK, rec.Code, rec.Body.String())
	}

	updated, err := userstore.New(db).GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.FullName != "Updated Name" {
		t.Errorf("full_name: got %q, want %q", updated.FullName, "Updated Name")
	}
	if strings.Contains(updated.Bio, "<script>") {
		t.Errorf("bio not sanitized: %q", updated.Bio)
	}
	if !strings.Contains(updated.Bio, "Piano teacher") {
		t.Errorf("bio text lost during sanitization: %q", updated.Bio)
	}
}

func TestHandleUpdateProfile_RejectsEmptyName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := profile.NewHandler(db, zap.NewNop())
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fx.CreateUser(ctx, "User", "user2@example.com", "member")
	sessionUser := testutil.TestUser{ID: user.ID.Hex(), Role: "member"}

	body := `{"fullName": "   ", "bio": ""}`
	req := testutil.WithUser(httptest.NewRequest("PUT", "/api/profile", strings.NewReader(body)), sessionUser)
	rec := httptest.NewRecorder()

	handler.HandleUpdateProfile(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
