package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// sendError answers with {"error": message} for JSON clients and plain
// text otherwise. asJSON forces the JSON form.
func sendError(w http.ResponseWriter, r *http.Request, message string, status int, asJSON bool) {
	if asJSON || wantsJSON(r) {
		sendJSON(w, status, map[string]string{"error": message})
		return
	}
	http.Error(w, message, status)
}
