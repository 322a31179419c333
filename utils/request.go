package utils

import (
	"net/http"
	"slices"

	"aquiguaira/globals"
)

func GetUserIDFromRequest(r *http.Request) string {
	ctx := r.Context()
	requestingUserID, ok := ctx.Value(globals.UserIDKey).(string)
	if !ok || requestingUserID == "" {
		return ""
	}
	return requestingUserID
}

// HasAdminRole reports whether an authenticated admin token came with the request.
func HasAdminRole(r *http.Request) bool {
	roles, _ := r.Context().Value(globals.RoleKey).([]string)
	return slices.Contains(roles, "admin")
}

// IsAdminView is the visibility switch for directory reads: the admin=true
// flag only counts when it comes with an admin token.
func IsAdminView(r *http.Request) bool {
	return IsTrue(r, "admin") && HasAdminRole(r)
}

// RequestID returns the id the logging middleware attached, or "-".
func RequestID(r *http.Request) string {
	if id, ok := r.Context().Value(globals.RequestIDKey).(string); ok && id != "" {
		return id
	}
	return "-"
}
