package utils

import (
	"encoding/json"
	"log"
	"net/http"
	"runtime/debug"

	"aquiguaira/globals"
)

// RespondWithError writes {"message": msg}, the shape the frontend reads.
func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, map[string]string{"message": msg})
}

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// RespondWithServerError is the catch-all 500 used at every handler boundary.
// The stack is only exposed in development.
func RespondWithServerError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("❌ %s %s [%s]: %v", r.Method, r.URL.Path, RequestID(r), err)
	resp := M{
		"status":  "error",
		"message": err.Error(),
	}
	if globals.IsDevelopment() {
		resp["stack"] = string(debug.Stack())
	}
	RespondWithJSON(w, http.StatusInternalServerError, resp)
}

type M map[string]interface{}
