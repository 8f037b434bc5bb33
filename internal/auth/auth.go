package auth

import (
	"net/http"
	"strings"
)

// UserIDHeader carries the caller identity resolved by the fronting gateway's
// authorizer. The API trusts it only because the gateway strips any
// client-supplied value before forwarding.
const UserIDHeader = "X-User-Id"

// UserID extracts the authenticated caller identity from a request.
// The second return value is false when no identity is present.
func UserID(r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if id == "" {
		return "", false
	}
	return id, true
}
