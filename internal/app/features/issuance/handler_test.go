package issuance_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/melodica-app/melodica/internal/app/features/issuance"
	"github.com/melodica-app/melodica/internal/app/system/codes"
	"github.com/melodica-app/melodica/internal/domain/models"
	"github.com/melodica-app/melodica/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var hasher = codes.NewHasher("test-pepper")

func newTestHandler(t *testing.T) (*issuance.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return issuance.NewHandler(db, hasher, zap.NewNop()), testutil.NewFixtures(t, db)
}

func postJSON(target, body string, user *testutil.TestUser) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req = testutil.WithUser(req, *user)
	}
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response %q: %v", rec.Body.String(), err)
	}
	return body
}

/* ── generate-invite-code ────────────────────────────────────────────── */

func TestGenerateInvite_Unauthenticated(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeGenerateInvite(rec, postJSON("/api/generate-invite-code", `{}`, nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestGenerateInvite_StudentForbidden(t *testing.T) {
	h, _ := newTestHandler(t)

	visitor := testutil.VisitorUser()
	rec := httptest.NewRecorder()
	h.ServeGenerateInvite(rec, postJSON("/api/generate-invite-code", `{}`, &visitor))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestGenerateInvite_Defaults(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teacher := testutil.TeacherUser()
	rec := httptest.NewRecorder()
	h.ServeGenerateInvite(rec, postJSON("/api/generate-invite-code", `{}`, &teacher))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	body := decodeBody(t, rec)
	raw, _ := body["code"].(string)
	if !codes.ValidInviteFormat(raw) {
		t.Errorf("returned code %q does not match the invite format", raw)
	}
	if body["maxUses"] != nil {
		t.Errorf("maxUses: got %v, want null", body["maxUses"])
	}

	// Only the digest is persisted, owned by the caller, expiring ~30
	// days out.
	var inv models.InviteCode
	if err := fx.DB().Collection("invite_codes").FindOne(ctx, bson.M{"code_hash": hasher.Hash(raw)}).Decode(&inv); err != nil {
		t.Fatalf("invite lookup by digest failed: %v", err)
	}
	if inv.TeacherID.Hex() != teacher.ID {
		t.Errorf("teacher_id: got %s, want %s", inv.TeacherID.Hex(), teacher.ID)
	}
	if inv.Status != models.InviteActive || inv.UseCount != 0 {
		t.Errorf("fresh invite state: status=%q use_count=%d", inv.Status, inv.UseCount)
	}
	if inv.ExpiresAt == nil {
		t.Fatal("expires_at not set")
	}
	gotDays := time.Until(*inv.ExpiresAt).Hours() / 24
	if gotDays < 29 || gotDays > 31 {
		t.Errorf("expiry: got ~%.1f days out, want ~30", gotDays)
	}

	count, err := fx.DB().Collection("invite_codes").CountDocuments(ctx, bson.M{"code_hash": raw})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 0 {
		t.Error("raw code was persisted; only the digest may be stored")
	}
}

func TestGenerateInvite_CustomExpiryAndCap(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teacher := testutil.TeacherUser()
	rec := httptest.NewRecorder()
	h.ServeGenerateInvite(rec, postJSON("/api/generate-invite-code",
		`{"expiresInDays": 7, "maxUses": 5}`, &teacher))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["maxUses"] != float64(5) {
		t.Errorf("maxUses: got %v, want 5", body["maxUses"])
	}

	raw := body["code"].(string)
	var inv models.InviteCode
	if err := fx.DB().Collection("invite_codes").FindOne(ctx, bson.M{"code_hash": hasher.Hash(raw)}).Decode(&inv); err != nil {
		t.Fatalf("invite lookup failed: %v", err)
	}
	if inv.MaxUses == nil || *inv.MaxUses != 5 {
		t.Errorf("max_uses: got %v, want 5", inv.MaxUses)
	}
	gotDays := time.Until(*inv.ExpiresAt).Hours() / 24
	if gotDays < 6 || gotDays > 8 {
		t.Errorf("expiry: got ~%.1f days out, want ~7", gotDays)
	}
}

func TestGenerateInvite_RejectsBadValues(t *testing.T) {
	h, _ := newTestHandler(t)

	teacher := testutil.TeacherUser()
	for _, body := range []string{
		`{"expiresInDays": 0}`,
		`{"expiresInDays": -3}`,
		`{"expiresInDays": 9000}`,
		`{"maxUses": 0}`,
		`{"maxUses": -1}`,
		`not json`,
	} {
		rec := httptest.NewRecorder()
		h.ServeGenerateInvite(rec, postJSON("/api/generate-invite-code", body, &teacher))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status got %d, want %d", body, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestGenerateInvite_RevokeAll(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teacherID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()
	teacher := testutil.TestUser{ID: teacherID.Hex(), Role: "member", IsTeacher: true}

	for i := 0; i < 3; i++ {
		fx.CreateInvite(ctx, teacherID, hasher.Hash(fmt.Sprintf("STU-RV23%d", i+2)), nil, nil)
	}
	// A different teacher's invite must survive the caller's revocation.
	fx.CreateInvite(ctx, otherID, hasher.Hash("STU-RVXY23"), nil, nil)

	rec := httptest.NewRecorder()
	h.ServeGenerateInvite(rec, postJSON("/api/generate-invite-code", `{"revoke": true}`, &teacher))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Error("expected success=true")
	}

	remaining, err := fx.DB().Collection("invite_codes").CountDocuments(ctx,
		bson.M{"teacher_id": teacherID, "status": models.InviteActive})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if remaining != 0 {
		t.Errorf("caller still holds %d active invites, want 0", remaining)
	}

	otherActive, err := fx.DB().Collection("invite_codes").CountDocuments(ctx,
		bson.M{"teacher_id": otherID, "status": models.InviteActive})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if otherActive != 1 {
		t.Errorf("other teacher's active invites: got %d, want 1", otherActive)
	}

	// Revocation is idempotent: running it again against an already
	// revoked set is a no-op success, as after a crash mid-loop.
	rec = httptest.NewRecorder()
	h.ServeGenerateInvite(rec, postJSON("/api/generate-invite-code", `{"revoke": true}`, &teacher))
	if rec.Code != http.StatusOK {
		t.Errorf("repeat revoke status: got %d, want %d", rec.Code, http.StatusOK)
	}
}

/* ── generate-teacher-serials ────────────────────────────────────────── */

func TestGenerateSerials_Unauthenticated(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeGenerateSerials(rec, postJSON("/api/generate-teacher-serials", `{"count": 1}`, nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestGenerateSerials_TeacherForbidden(t *testing.T) {
	h, _ := newTestHandler(t)

	// Serial minting is admin-only; holding the teacher role is not enough.
	teacher := testutil.TeacherUser()
	rec := httptest.NewRecorder()
	h.ServeGenerateSerials(rec, postJSON("/api/generate-teacher-serials", `{"count": 1}`, &teacher))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestGenerateSerials_CountBounds(t *testing.T) {
	h, _ := newTestHandler(t)

	admin := testutil.AdminUser()
	for _, body := range []string{
		`{"count": 0}`,
		`{"count": -1}`,
		`{"count": 51}`,
		`{}`,
		`not json`,
	} {
		rec := httptest.NewRecorder()
		h.ServeGenerateSerials(rec, postJSON("/api/generate-teacher-serials", body, &admin))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status got %d, want %d", body, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestGenerateSerials_Batch(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := testutil.AdminUser()
	rec := httptest.NewRecorder()
	h.ServeGenerateSerials(rec, postJSON("/api/generate-teacher-serials", `{"count": 5}`, &admin))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["count"] != float64(5) {
		t.Errorf("count: got %v, want 5", body["count"])
	}
	rawsAny, ok := body["serials"].([]any)
	if !ok || len(rawsAny) != 5 {
		t.Fatalf("serials: got %v, want 5 raw codes", body["serials"])
	}

	seen := make(map[string]bool)
	var batchID string
	for _, rawAny := range rawsAny {
		raw := rawAny.(string)
		if !codes.ValidSerialFormat(raw) {
			t.Errorf("serial %q does not match the serial format", raw)
		}
		if seen[raw] {
			t.Errorf("serial %q returned twice in one batch", raw)
		}
		seen[raw] = true

		var serial models.ActivationSerial
		if err := fx.DB().Collection("activation_serials").FindOne(ctx, bson.M{"code_hash": hasher.Hash(raw)}).Decode(&serial); err != nil {
			t.Fatalf("serial lookup by digest failed: %v", err)
		}
		if serial.Status != models.SerialUnused {
			t.Errorf("status: got %q, want %q", serial.Status, models.SerialUnused)
		}
		if serial.IssuedBy.Hex() != admin.ID {
			t.Errorf("issued_by: got %s, want %s", serial.IssuedBy.Hex(), admin.ID)
		}
		if batchID == "" {
			batchID = serial.BatchID
		} else if serial.BatchID != batchID {
			t.Errorf("batch_id: got %q, want %q for every serial in the batch", serial.BatchID, batchID)
		}
	}
	if batchID == "" {
		t.Error("batch_id not set")
	}
}
