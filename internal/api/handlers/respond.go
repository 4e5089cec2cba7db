package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeList wraps list results in the {success, count, <key>} envelope the
// dashboard consumes. count reflects the returned slice, not the table.
func writeList(w http.ResponseWriter, key string, count int, data interface{}) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   count,
		key:       data,
	})
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent or malformed, and clamping the result to [1, max].
func queryInt(r *http.Request, name string, def, max int) int {
	v := r.URL.Query().Get(name)
	n, err := strconv.Atoi(v)
	if v == "" || err != nil || n <= 0 {
		n = def
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}
