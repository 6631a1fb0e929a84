// Package htmlsanitize wraps bluemonday policies for user-generated
// content. Teacher bios may carry limited rich text; display names carry
// none.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// Sanitize cleans user-generated HTML, keeping common formatting
// (paragraphs, emphasis, lists, tables, safe links) and stripping scripts,
// event handlers, and javascript: URLs.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}

// StripTags removes all HTML, leaving plain text. Used for fields that
// must never carry markup, like display names.
func StripTags(s string) string {
	return strict.Sanitize(s)
}
