package errs

import (
	"errors"
	"fmt"
	"strings"

	cr "github.com/cockroachdb/errors"
)

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

func New(msg string) error {
	return cr.New(msg)
}

// Mark attaches a sentinel to err. The mark answers the standard
// errors.Is while Unwrap keeps the cause chain reachable, so errors.As
// still finds typed errors underneath.
func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return &marked{cause: err, mark: markErr}
}

type marked struct {
	cause error
	mark  error
}

func (m *marked) Error() string {
	return m.cause.Error()
}

func (m *marked) Unwrap() error {
	return m.cause
}

func (m *marked) Is(target error) bool {
	return errors.Is(m.mark, target)
}

// Format forwards verbose formatting to the cause so the wrapped stack
// trace survives marking.
func (m *marked) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%+v", m.cause)
		return
	}
	fmt.Fprint(s, m.Error())
}

func ExtractStackLines(err error, maxLines int) []string {
	if err == nil {
		return nil
	}
	s := fmt.Sprintf("%+v", err)
	lines := strings.Split(s, "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}
