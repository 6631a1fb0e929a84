package codes_test

import (
	"strings"
	"testing"

	"github.com/melodica-app/melodica/internal/app/system/codes"
)

func TestNewInviteCode_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := codes.NewInviteCode()
		if !codes.ValidInviteFormat(code) {
			t.Fatalf("generated invite code %q does not match its own format", code)
		}
		if len(code) != len("STU-")+6 {
			t.Errorf("invite code length: got %d, want %d", len(code), len("STU-")+6)
		}
	}
}

func TestNewActivationSerial_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		serial := codes.NewActivationSerial()
		if !codes.ValidSerialFormat(serial) {
			t.Fatalf("generated serial %q does not match its own format", serial)
		}
		parts := strings.Split(serial, "-")
		if len(parts) != 4 {
			t.Fatalf("serial %q: got %d groups, want 4", serial, len(parts))
		}
		for _, g := range parts[1:] {
			if len(g) != 4 {
				t.Errorf("serial %q: group %q has length %d, want 4", serial, g, len(g))
			}
		}
	}
}

func TestGenerated_NoConfusableCharacters(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := codes.NewInviteCode() + codes.NewActivationSerial()
		for _, c := range "0O1I" {
			if strings.ContainsRune(code, c) {
				t.Fatalf("generated code %q contains confusable character %q", code, c)
			}
		}
	}
}

func TestNewInviteCode_Distinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code := codes.NewInviteCode()
		if seen[code] {
			t.Fatalf("duplicate invite code %q after %d draws", code, i)
		}
		seen[code] = true
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"stu-ab12cd", "STU-AB12CD"},
		{"  STU-AB12CD  ", "STU-AB12CD"},
		{"tch-ab12-cd34-ef56", "TCH-AB12-CD34-EF56"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := codes.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidInviteFormat(t *testing.T) {
	valid := []string{"STU-AB2345", "STU-ZZZZZZ", "STU-M4PZ7Q"}
	for _, code := range valid {
		if !codes.ValidInviteFormat(code) {
			t.Errorf("ValidInviteFormat(%q): got false, want true", code)
		}
	}

	invalid := []string{
		"STU-AB",            // too short
		"STU-AB12CD3",       // too long
		"TCH-AB12CD",        // wrong prefix
		"STU-AB12C0",        // excluded character 0
		"STU-AB12CI",        // excluded character I
		"stu-ab12cd",        // not normalized
		" STU-AB12CD",       // whitespace
		"STUAB12CD",         // missing dash
		"",                  //
	}
	for _, code := range invalid {
		if codes.ValidInviteFormat(code) {
			t.Errorf("ValidInviteFormat(%q): got true, want false", code)
		}
	}
}

func TestValidSerialFormat(t *testing.T) {
	valid := []string{"TCH-AB23-CD45-EF67", "TCH-ZZZZ-ZZZZ-ZZZZ"}
	for _, code := range valid {
		if !codes.ValidSerialFormat(code) {
			t.Errorf("ValidSerialFormat(%q): got false, want true", code)
		}
	}

	invalid := []string{
		"TCH-AB23CD45EF67",    // missing group separators
		"TCH-AB23-CD45",       // too few groups
		"TCH-AB23-CD45-EF6",   // short group
		"STU-AB23-CD45-EF67",  // wrong prefix
		"TCH-AB23-CD45-EF6O",  // excluded character O
		"tch-ab23-cd45-ef67",  // not normalized
		"",
	}
	for _, code := range invalid {
		if codes.ValidSerialFormat(code) {
			t.Errorf("ValidSerialFormat(%q): got true, want false", code)
		}
	}
}

func TestHasher_Deterministic(t *testing.T) {
	h := codes.NewHasher("test-pepper")
	a := h.Hash("STU-AB12CD")
	b := h.Hash("STU-AB12CD")
	if a != b {
		t.Errorf("same code hashed differently: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("digest length: got %d, want 64 hex chars", len(a))
	}
}

func TestHasher_NormalizesBeforeHashing(t *testing.T) {
	h := codes.NewHasher("test-pepper")
	upper := h.Hash("STU-AB12CD")
	lower := h.Hash("  stu-ab12cd ")
	if upper != lower {
		t.Error("expected case- and whitespace-insensitive hashing")
	}
}

func TestHasher_PepperChangesDigest(t *testing.T) {
	a := codes.NewHasher("pepper-a").Hash("STU-AB12CD")
	b := codes.NewHasher("pepper-b").Hash("STU-AB12CD")
	if a == b {
		t.Error("different peppers produced the same digest")
	}
}

func TestHasher_DigestNeverEqualsRawCode(t *testing.T) {
	h := codes.NewHasher("test-pepper")
	code := codes.NewInviteCode()
	if h.Hash(code) == code {
		t.Error("digest must not equal the raw code")
	}
}
