package utils

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
)

// ParseLimit reads a positive integer query parameter, falling back to def.
func ParseLimit(r *http.Request, key string, def int64) int64 {
	n, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// ParsePagination returns page (1-based) and limit.
func ParsePagination(r *http.Request, defLimit int64) (page, limit int64) {
	page = ParseLimit(r, "page", 1)
	limit = ParseLimit(r, "limit", defLimit)
	return page, limit
}

var ErrPageOutOfRange = errors.New("page out of range")

// Skip turns a 1-based page into a document offset. Offsets that would
// overflow int64 are rejected.
func Skip(page, limit int64) (int64, error) {
	if page < 1 || limit < 1 || page-1 > math.MaxInt64/limit {
		return 0, ErrPageOutOfRange
	}
	return (page - 1) * limit, nil
}

// IsTrue reports whether a query flag is the literal "true".
func IsTrue(r *http.Request, key string) bool {
	return strings.EqualFold(r.URL.Query().Get(key), "true")
}

// UserKey picks the identity used by per-user collections: a registered
// user_id wins over an anonymous user_identifier.
func UserKey(userID, userIdentifier string) (field, value string, ok bool) {
	switch {
	case userID != "":
		return "user_id", userID, true
	case userIdentifier != "":
		return "user_identifier", userIdentifier, true
	}
	return "", "", false
}
