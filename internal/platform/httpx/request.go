package httpx

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ActorHeader names the operator performing a request.
const ActorHeader = "X-Actor"

// Actor returns the request operator, or "system" when none is given.
func Actor(r *http.Request) string {
	if actor := strings.TrimSpace(r.Header.Get(ActorHeader)); actor != "" {
		return actor
	}
	return "system"
}

// ParseDay parses a YYYY-MM-DD value. Empty values yield the zero time.
func ParseDay(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrValidation, field)
	}
	return t, nil
}
