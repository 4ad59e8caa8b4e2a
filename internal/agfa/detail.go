package agfa

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mmcdole/pdiview/internal/domain"
	"golang.org/x/net/html"
)

// DetailPagePath returns the bundle-relative path of a series detail page
func DetailPagePath(htmlFile string) string {
	return "IHE_PDI/" + htmlFile
}

// ParseDetailTitle extracts the authoritative SerNr and title from a series
// detail page whose <title> reads "<digits> <text>".
func ParseDetailTitle(content []byte) (serNr, title string, err error) {
	raw, ok := documentTitle(content)
	raw = strings.TrimSpace(raw)
	if !ok {
		return "", "", fmt.Errorf("detail page has no title: %w", domain.ErrPatternMismatch)
	}

	digits := leadingDigits(raw)
	rest := raw[len(digits):]
	trimmed := strings.TrimLeft(rest, " \t\r\n\u00a0")
	if digits == "" || len(trimmed) == len(rest) {
		return "", "", fmt.Errorf("detail title %q: %w", raw, domain.ErrPatternMismatch)
	}

	title = normSpace(trimmed)
	if title == "" {
		return "", "", fmt.Errorf("detail title %q: %w", raw, domain.ErrPatternMismatch)
	}
	return digits, title, nil
}

// documentTitle returns the raw text of the first <title> element
func documentTitle(content []byte) (string, bool) {
	z := html.NewTokenizer(bytes.NewReader(content))
	inTitle := false
	var text strings.Builder

	for {
		switch z.Next() {
		case html.ErrorToken:
			if inTitle {
				return text.String(), true
			}
			return "", false

		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == "title" {
				inTitle = true
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if inTitle && string(name) == "title" {
				return text.String(), true
			}

		case html.TextToken:
			if inTitle {
				text.Write(z.Text())
			}
		}
	}
}
