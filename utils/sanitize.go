package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var plainText = bluemonday.StrictPolicy()

// SanitizeText strips every HTML tag from visitor-supplied text and trims it.
// Entities produced by the policy are decoded again so stored text stays readable.
func SanitizeText(input string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(input)))
}
