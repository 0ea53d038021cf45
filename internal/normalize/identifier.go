package normalize

import (
	"regexp"
	"strings"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
)

var (
	// ISBN-13: 13 digits starting with the reserved 978/979 bookland prefix.
	isbn13Pattern = regexp.MustCompile(`^(978|979)\d{10}$`)
	// ISBN-10: 9 digits plus a digit or X checksum.
	isbn10Pattern = regexp.MustCompile(`^\d{9}[\dXx]$`)
	// ASIN: 10 uppercase alphanumerics.
	asinPattern = regexp.MustCompile(`^[A-Z0-9]{10}$`)
)

// IdentifierType classifies a raw catalog identifier as ASIN- or ISBN-like.
//
// This is a heuristic classifier, not a validator: it always returns a value
// and deliberately accepts false positives for ambiguous 10-character values
// instead of rejecting them. Downstream behavior depends on the current bias,
// so do not tighten these rules.
func IdentifierType(value string) domain.IdentifierType {
	if value == "" {
		return domain.IdentifierASIN
	}

	clean := strings.ReplaceAll(value, "-", "")

	if isbn13Pattern.MatchString(clean) {
		return domain.IdentifierISBN
	}
	if isbn10Pattern.MatchString(clean) {
		return domain.IdentifierISBN
	}

	if asinPattern.MatchString(value) || strings.HasPrefix(value, "B0") {
		return domain.IdentifierASIN
	}

	// Default to ASIN for Amazon-like identifiers.
	return domain.IdentifierASIN
}
