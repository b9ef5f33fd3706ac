package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/danielpatrickdp/trustlens/internal/content"
	"github.com/danielpatrickdp/trustlens/internal/model"
	"github.com/danielpatrickdp/trustlens/internal/store"
)

// #region payloads

type predictRequest struct {
	Text string `json:"text"`
}

type predictResponse struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons"`
}

type healthResponse struct {
	Status    string           `json:"status"`
	Models    []content.Domain `json:"models"`
	Missing   []content.Domain `json:"missing,omitempty"`
	FactCheck []string         `json:"fact_check_providers"`
	Store     string           `json:"store,omitempty"`
}

// #endregion payloads

// #region handlers

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "TrustLens API is running"})
}

// handleHealth reports "ok" when every domain has a classifier and the
// prediction store answers, "degraded" otherwise. It always answers 200 so
// partial service stays up.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	loaded := s.engine.Available()
	have := make(map[content.Domain]bool, len(loaded))
	for _, d := range loaded {
		have[d] = true
	}
	resp := healthResponse{Status: "ok", Models: loaded, FactCheck: s.engine.FactCheckProviders()}
	if resp.Models == nil {
		resp.Models = []content.Domain{}
	}
	if resp.FactCheck == nil {
		resp.FactCheck = []string{}
	}
	for _, d := range content.Domains() {
		if !have[d] {
			resp.Missing = append(resp.Missing, d)
			resp.Status = "degraded"
		}
	}
	if s.history != nil {
		resp.Store = "ok"
		if err := s.history.Ping(r.Context()); err != nil {
			s.logger.Warn("store unreachable", "error", err)
			resp.Store = "unreachable"
			resp.Status = "degraded"
		}
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	domain, err := content.ParseDomain(mux.Vars(r)["domain"])
	if err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}

	var req predictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		respondWithError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sub, err := content.NewSubmission(domain, req.Text)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.engine.Evaluate(r.Context(), sub)
	switch {
	case errors.Is(err, model.ErrUnavailable):
		respondWithError(w, http.StatusServiceUnavailable, string(domain)+" model is not available")
		return
	case err != nil:
		s.logger.Error("evaluate failed", "domain", domain, "error", err)
		respondWithError(w, http.StatusInternalServerError, "evaluation failed")
		return
	}

	reasons := res.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	respondWithJSON(w, http.StatusOK, predictResponse{
		ID:         res.ID,
		Label:      res.Label,
		Confidence: res.Confidence,
		Reasons:    reasons,
	})
}

func (s *Server) handleGetPrediction(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		respondWithError(w, http.StatusNotFound, "prediction history is disabled")
		return
	}
	p, err := s.history.Get(r.Context(), mux.Vars(r)["id"])
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		s.logger.Error("load prediction", "error", err)
		respondWithError(w, http.StatusInternalServerError, "history lookup failed")
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		respondWithError(w, http.StatusNotFound, "prediction history is disabled")
		return
	}
	q := r.URL.Query()
	var domain content.Domain
	if v := q.Get("domain"); v != "" {
		d, err := content.ParseDomain(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		domain = d
	}
	limit := 20
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			respondWithError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}
	list, err := s.history.Recent(r.Context(), domain, limit)
	if err != nil {
		s.logger.Error("list predictions", "error", err)
		respondWithError(w, http.StatusInternalServerError, "history lookup failed")
		return
	}
	if list == nil {
		list = []store.Prediction{}
	}
	respondWithJSON(w, http.StatusOK, list)
}

// #endregion handlers

// #region respond

// respondWithError sends a JSON error response.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON sends a JSON response.
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// #endregion respond
