package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorStack renders the chain of err, outermost first, one cause per line.
func ErrorStack(err error) string {
	var lines []string

	for err != nil {
		lines = append(lines, fmt.Sprintf("%T: %s", err, err.Error()))
		err = errors.Unwrap(err)
	}

	return strings.Join(lines, "\n")
}
