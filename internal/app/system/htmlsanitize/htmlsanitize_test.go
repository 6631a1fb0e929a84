package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/melodica-app/melodica/internal/app/system/htmlsanitize"
)

func TestSanitize_Empty(t *testing.T) {
	if got := htmlsanitize.Sanitize(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestSanitize_PlainText(t *testing.T) {
	if got := htmlsanitize.Sanitize("Piano lessons, Tuesdays."); got != "Piano lessons, Tuesdays." {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestSanitize_SafeHTML(t *testing.T) {
	input := "<p><strong>Jazz</strong> and <em>classical</em></p>"
	if got := htmlsanitize.Sanitize(input); got != input {
		t.Errorf("expected safe HTML preserved, got %q", got)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	input := "<p>Hello</p><script>alert('xss')</script>"
	if got := htmlsanitize.Sanitize(input); got != "<p>Hello</p>" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestSanitize_RemovesJavascriptHref(t *testing.T) {
	input := `<a href="javascript:alert('xss')">Click</a>`
	if got := htmlsanitize.Sanitize(input); got == input {
		t.Error("expected javascript: href to be removed")
	}
}

func TestStripTags(t *testing.T) {
	if got := htmlsanitize.StripTags("<b>Ada</b> Lovelace"); got != "Ada Lovelace" {
		t.Errorf("expected all tags stripped, got %q", got)
	}
	if got := htmlsanitize.StripTags("plain"); got != "plain" {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
	if got := htmlsanitize.StripTags("<script>x</script>"); strings.Contains(got, "script") {
		t.Errorf("expected script removed, got %q", got)
	}
}
