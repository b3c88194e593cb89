package api

import (
	"encoding/json"
	"net/http"
)

// WriteJSON encodes data as JSON with the given status code. A status code
// of 0 defaults to 200.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	if statusCode == 0 {
		statusCode = http.StatusOK
	}

	body, err := json.Marshal(data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, err = w.Write(body)
	return err
}

// WriteError writes a JSON error body with the given status code.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	_ = WriteJSON(w, statusCode, map[string]string{"error": message})
}
