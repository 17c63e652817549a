package stub

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// errorBody mirrors the backend's error shapes: a plain string under "error",
// or a "message" field for gateway-level auth failures.
type errorBody struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"encoding response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if !s.opts.Compress || !acceptsBrotli(r) {
		w.WriteHeader(status)
		_, _ = w.Write(body)
		return
	}

	w.Header().Set("Content-Encoding", "br")
	w.Header().Add("Vary", "Accept-Encoding")
	w.WriteHeader(status)
	bw := brotli.NewWriter(w)
	_, _ = bw.Write(body)
	_ = bw.Close()
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, body errorBody) {
	s.writeJSON(w, r, status, body)
}

func acceptsBrotli(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		enc, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if enc == "br" {
			return true
		}
	}
	return false
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(v)
}
