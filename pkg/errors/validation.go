package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxNewickBytes bounds the size of a single Newick input accepted by the
// HTTP API.
const MaxNewickBytes = 1 << 20

// ValidateTaxonLabel validates a leaf label read from a Newick string.
//
// The validation rules:
//   - No empty labels
//   - No control characters
//   - No Newick metacharacters ( ) , : ; [ ]
//   - No '#', which extended Newick reserves for reticulation labels
func ValidateTaxonLabel(label string) error {
	if label == "" {
		return New(ErrCodeInvalidNewick, "leaf without a label")
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNewick, "label %q contains control characters", label)
		}
	}

	if i := strings.IndexAny(label, "(),:;[]#"); i >= 0 {
		return New(ErrCodeInvalidNewick, "label %q contains reserved character %q", label, label[i])
	}

	return nil
}

// ValidateNewick performs cheap checks on raw Newick text before it is
// handed to the parser.
func ValidateNewick(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return New(ErrCodeInvalidNewick, "empty tree")
	}
	if len(s) > MaxNewickBytes {
		return New(ErrCodeInvalidNewick, "tree too large (max %d bytes)", MaxNewickBytes)
	}
	if !strings.HasSuffix(s, ";") {
		return New(ErrCodeInvalidNewick, "tree must end with ';'")
	}

	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return New(ErrCodeInvalidNewick, "unbalanced parentheses")
			}
		}
	}
	if depth != 0 {
		return New(ErrCodeInvalidNewick, "unbalanced parentheses")
	}
	return nil
}

var resultIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidateResultID validates the identifier of a stored result.
func ValidateResultID(id string) error {
	if !resultIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid result id: %q", id)
	}
	return nil
}
