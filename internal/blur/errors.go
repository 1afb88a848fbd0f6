package blur

import (
	"errors"
	"fmt"
)

// ErrPrimitiveUnavailable is returned when the primitive blur cannot be opened
// or fails while processing. It is the only failure the engine reports; a
// failed call never yields a partially blurred image.
var ErrPrimitiveUnavailable = errors.New("blur: primitive unavailable")

var errSessionClosed = errors.New("session already closed")

// unavailable wraps err so that errors.Is(err, ErrPrimitiveUnavailable) holds.
func unavailable(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, ErrPrimitiveUnavailable) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrPrimitiveUnavailable, err)
}
