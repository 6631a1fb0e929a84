// Package codes generates and hashes the two families of human-typable
// credentials: student invite codes (STU-XXXXXX) and teacher activation
// serials (TCH-XXXX-XXXX-XXXX).
//
// Codes are drawn from a confusable-free alphabet so they survive being
// read over the phone or scribbled on a sticky note. Only SHA-256 digests
// of codes are ever persisted; the digest is salted with a single shared
// pepper supplied through configuration.
package codes

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// Alphabet excludes visually ambiguous characters (0/O, 1/I). Its length
// is 32, so indexing random bytes modulo the length introduces no bias.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	// InvitePrefix starts every student invite code.
	InvitePrefix = "STU-"
	// SerialPrefix starts every teacher activation serial.
	SerialPrefix = "TCH-"

	inviteBodyLen = 6
	serialGroups  = 3
	serialGroupLen = 4
)

var (
	inviteRe = regexp.MustCompile(`^STU-[` + Alphabet + `]{6}$`)
	serialRe = regexp.MustCompile(`^TCH-[` + Alphabet + `]{4}-[` + Alphabet + `]{4}-[` + Alphabet + `]{4}$`)
)

// NewInviteCode returns a fresh invite code, e.g. "STU-M4PZ7Q".
// Panics if the system's cryptographic random number generator fails.
func NewInviteCode() string {
	return InvitePrefix + randomChars(inviteBodyLen)
}

// NewActivationSerial returns a fresh activation serial,
// e.g. "TCH-M4PZ-7QRD-W2XK".
// Panics if the system's cryptographic random number generator fails.
func NewActivationSerial() string {
	groups := make([]string, serialGroups)
	for i := range groups {
		groups[i] = randomChars(serialGroupLen)
	}
	return SerialPrefix + strings.Join(groups, "-")
}

// Normalize prepares a user-submitted code for validation and hashing:
// surrounding whitespace is trimmed and the code is uppercased. Typos are
// caught only by hash miss at redemption; there is no checksum digit.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidInviteFormat reports whether a normalized code matches the exact
// invite format. Callers must reject invalid codes before any store access.
func ValidInviteFormat(code string) bool {
	return inviteRe.MatchString(code)
}

// ValidSerialFormat reports whether a normalized code matches the exact
// serial format, including grouping.
func ValidSerialFormat(code string) bool {
	return serialRe.MatchString(code)
}

// Hasher computes the storage digest of a raw code. The pepper is a
// process-wide secret, not a per-record salt: identical codes hash
// identically, which is what makes exact-match lookup possible. Rotating
// the pepper requires re-hashing every stored record.
type Hasher struct {
	pepper string
}

// NewHasher creates a Hasher with the given pepper. The pepper must come
// from configuration; an empty pepper is rejected at startup by config
// validation.
func NewHasher(pepper string) *Hasher {
	return &Hasher{pepper: pepper}
}

// Hash returns the hex-encoded SHA-256 digest of the normalized code plus
// the pepper. Deterministic and side-effect-free.
func (h *Hasher) Hash(raw string) string {
	sum := sha256.Sum256([]byte(Normalize(raw) + h.pepper))
	return hex.EncodeToString(sum[:])
}

// randomChars draws n characters from Alphabet using crypto/rand.
func randomChars(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand.Read failed: " + err.Error())
	}
	for i := range b {
		b[i] = Alphabet[int(b[i])%len(Alphabet)]
	}
	return string(b)
}
