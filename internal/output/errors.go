package output

import (
	"errors"

	"examprep/pkg/preptypes"
)

// ErrorText returns the sentence to show for err.
// Domain errors show their user message; anything else (flag parsing, config) shows as is.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	var pe *preptypes.PrepError
	if errors.As(err, &pe) {
		return pe.Error()
	}
	return err.Error()
}

// ErrorCode returns the machine-readable kind of err.
func ErrorCode(err error) string {
	return string(preptypes.KindOf(err))
}
