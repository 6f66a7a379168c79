// Package pageutil holds the small helpers around a page capture: URL
// recognition, file naming for saved screenshots and cookie injection.
package pageutil

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf16"
)

var (
	urlPattern      = regexp.MustCompile(`^[a-zA-Z0-9]+://.*$`)
	fileNameIllegal = regexp.MustCompile(`[^0-9A-Za-z.\-]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// IsURL reports whether s looks like "scheme://...". The single dash, which
// stands for "the page already open", also counts.
func IsURL(s string) bool {
	return s == "-" || urlPattern.MatchString(s)
}

// ConvertToFileName lower-cases name, replaces every character outside
// [0-9A-Za-z.-] with a space and collapses whitespace runs into one dash.
func ConvertToFileName(name string) string {
	name = fileNameIllegal.ReplaceAllString(strings.ToLower(name), " ")
	return whitespaceRun.ReplaceAllString(name, "-")
}

// CookieScript returns the script that sets cookie through document.cookie.
// cookie is in "name=value; attr=..." form.
func CookieScript(cookie string) string {
	return fmt.Sprintf(`document.cookie="%s";`, EscapeJS(cookie))
}

// EscapeJS escapes s for use inside a double-quoted JavaScript string.
// Non-ASCII characters become \uXXXX escapes of their UTF-16 units.
func EscapeJS(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			switch {
			case r < 0x20 || (r >= 0x7f && r <= 0xffff):
				fmt.Fprintf(&b, `\u%04X`, r)
			case r > 0xffff:
				hi, lo := utf16.EncodeRune(r)
				fmt.Fprintf(&b, `\u%04X\u%04X`, hi, lo)
			default:
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
