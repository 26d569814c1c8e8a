package symgen

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

const previewLength = 100

// MergeConflict is returned when two values can't be merged. Enclosing
// layers wrap it with their own context, so the error text reads as a path
// from the table down to the conflicting value; use errors.As to get at it.
type MergeConflict struct {
	Msg string
}

func newConflict(format string, args ...any) *MergeConflict {
	return &MergeConflict{Msg: fmt.Sprintf(format, args...)}
}

func (e *MergeConflict) Error() string {
	return "merge conflict: " + e.Msg
}

// MissingBlockError is returned when a symbol names a block that does not
// exist in the table.
type MissingBlockError struct {
	Name string
}

func (e *MissingBlockError) Error() string {
	return fmt.Sprintf("block %q not found", e.Name)
}

// BlockInferenceError is returned when the owning block of a symbol can't
// be determined unambiguously from its address.
type BlockInferenceError struct {
	Symbol  string
	Matches []string
}

func (e *BlockInferenceError) Error() string {
	if len(e.Matches) == 0 {
		return fmt.Sprintf("could not infer block for symbol %q", e.Symbol)
	}
	return fmt.Sprintf("could not infer block for symbol %q: multiple blocks match: %s",
		e.Symbol, strings.Join(e.Matches, ", "))
}

func IsMergeConflict(err error) bool {
	var c *MergeConflict
	return errors.As(err, &c)
}

// preview shortens text for error messages without splitting a multi-byte
// character.
func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewLength {
		return s
	}
	n := 0
	for i := range s {
		if n == previewLength-3 {
			return s[:i] + "..."
		}
		n++
	}
	return s
}

func descriptionConflict(a, b string) error {
	return newConflict("conflicting descriptions %q and %q", preview(a), preview(b))
}
