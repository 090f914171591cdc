package parse

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	spaceRe = regexp.MustCompile(`\s+`)
	identRe = regexp.MustCompile(`^[A-Z0-9][A-Z0-9 -]*$`)
)

// normalize trims, collapses inner whitespace and upper-cases a raw scanned
// identifier. Gate scanners and manual input both feed through here so the
// stored form is the canonical one.
func normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.ToUpper(s)
}

// PlateNumber returns the canonical form of a scanned plate number.
func PlateNumber(raw string) (string, error) {
	s := normalize(raw)
	if s == "" {
		return "", fmt.Errorf("plate number is empty")
	}
	if !identRe.MatchString(s) {
		return "", fmt.Errorf("invalid plate number: %q", raw)
	}
	return s, nil
}

// LicenseNumber returns the canonical form of a scanned license number.
func LicenseNumber(raw string) (string, error) {
	s := normalize(raw)
	if s == "" {
		return "", fmt.Errorf("license number is empty")
	}
	if !identRe.MatchString(s) {
		return "", fmt.Errorf("invalid license number: %q", raw)
	}
	return s, nil
}
