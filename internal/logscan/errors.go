package logscan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

// ErrInvalidStep is returned when the initial window width is below one block.
var ErrInvalidStep = errors.New("initial step must be at least 1")

// tooLargeMarkers are the substrings providers use to reject an eth_getLogs
// request whose result set exceeds their cap. Rate limit and quota errors
// ("rate limit exceeded", "daily request limit exceeded") must not match.
var tooLargeMarkers = []string{
	"more than 10000 results",
	"query returned more than",
	"too many results",
	"block range is too large",
	"log response size exceeded",
}

// IsResultSetTooLarge reports whether err is a provider's "result set too
// large" rejection. It inspects the error chain, including rpc.DataError
// payloads, so wrapped errors still classify.
func IsResultSetTooLarge(err error) bool {
	if err == nil {
		return false
	}
	if containsMarker(err.Error()) {
		return true
	}
	var de rpc.DataError
	if errors.As(err, &de) {
		if s, ok := de.ErrorData().(string); ok && containsMarker(s) {
			return true
		}
	}
	return false
}

func containsMarker(msg string) bool {
	msg = strings.ToLower(msg)
	for _, m := range tooLargeMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// WindowError reports the window that could not be fetched when the fetcher
// runs in fail-fast mode.
type WindowError struct {
	From, To  uint64
	Exhausted bool // a single-block window was still too large
	Err       error
}

func (e *WindowError) Error() string {
	if e.Exhausted {
		return fmt.Sprintf("blocks %d-%d: result set too large at minimum window: %v", e.From, e.To, e.Err)
	}
	return fmt.Sprintf("blocks %d-%d: %v", e.From, e.To, e.Err)
}

func (e *WindowError) Unwrap() error { return e.Err }
