// Package refid parses and formats correspondence reference numbers.
//
// The canonical form of a reference number is a positive integer scoped to a
// document type. Incoming values are accepted only as strings of decimal
// digits and are normalized to their integer value at the boundary, so that
// look-alike inputs such as "007" and "7" name the same number everywhere
// downstream.
package refid

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"docregistry/internal/model"
)

// ErrInvalidFormat is returned when an input is not a string of decimal
// digits denoting a positive integer.
var ErrInvalidFormat = errors.New("reference id must be a positive decimal number")

var digits = regexp.MustCompile(`^\d+$`)

// Parse validates and normalizes a reference number supplied by a caller.
// Leading zeros are accepted and stripped by normalization; zero itself is
// rejected since sequences start at 1.
func Parse(s string) (int64, error) {
	if !digits.MatchString(s) {
		return 0, ErrInvalidFormat
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 1 {
		return 0, ErrInvalidFormat
	}
	return n, nil
}

// Canonical renders a reference number in its canonical wire form, a bare
// decimal string.
func Canonical(n int64) string {
	return strconv.FormatInt(n, 10)
}

// Display renders a reference number with its type prefix and zero padding
// for human-facing views, e.g. Display(inbound, 7) == "IN-007". Numbers wider
// than three digits are not truncated.
func Display(t model.DocumentType, n int64) string {
	prefix := "IN"
	if t == model.DocumentTypeOutbound {
		prefix = "OUT"
	}
	return fmt.Sprintf("%s-%03d", prefix, n)
}
