package api

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"deal-search/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// writeJSONError writes a JSON error body and logs the underlying error.
func writeJSONError(w http.ResponseWriter, log *utils.Logger, status int, msg string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
		log.Error("%s: %v", msg, err)
	} else {
		log.Warn("%s", msg)
	}
	writeJSON(w, log, status, map[string]string{"error": msg, "details": details})
}

// writeJSON writes v with the given status and logs encoding failures.
func writeJSON(w http.ResponseWriter, log *utils.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write JSON response: %v", err)
	}
}
