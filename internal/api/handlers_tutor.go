package api

import (
	"encoding/json"
	"net/http"
)

const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

type jargonRequest struct {
	Term string `json:"term"`
}

func (s *Server) handleJargon(w http.ResponseWriter, r *http.Request) {
	var req jargonRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := s.pipeline.ExplainJargon(r.Context(), req.Term)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := textResponse("explanation", out)
	resp["term"] = req.Term
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTutor(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := s.pipeline.Tutor(r.Context(), req.Question)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, textResponse("answer", out))
}
