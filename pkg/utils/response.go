package utils

import (
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// MaxJSONBodySize caps JSON request bodies.
const MaxJSONBodySize = 1 << 20

// DecodeJSON reads a JSON request body of at most MaxJSONBodySize bytes into dst. A larger
// body fails with *http.MaxBytesError.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxJSONBodySize))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
