package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/code-merge/accompany/domains/onboarding/be/forms"
)

type nextResponse struct {
	Next string `json:"next"`
}

type fieldErrorsResponse struct {
	Errors forms.Errors `json:"errors"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// status line is already out, nothing left to do but log
		h.loggerFrom(r.Context()).Error("encode response", zap.Error(err))
	}
}

// respondNext acknowledges a clean submission with the path of the next step.
func (h *Handler) respondNext(w http.ResponseWriter, r *http.Request, path string) {
	h.respondJSON(w, r, http.StatusOK, nextResponse{Next: path})
}

// respondFieldErrors rejects a submission whose fields did not validate.
func (h *Handler) respondFieldErrors(w http.ResponseWriter, r *http.Request, errs forms.Errors) {
	h.respondJSON(w, r, http.StatusUnprocessableEntity, fieldErrorsResponse{Errors: errs})
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.respondJSON(w, r, status, errorResponse{Error: msg})
}

// decodeJSON parses the request body into dst and answers the request itself
// when the body is malformed.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.loggerFrom(r.Context()).Warn("decode request body", zap.Error(err))
		h.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// orEmpty keeps error maps from rendering as JSON null.
func orEmpty(errs forms.Errors) forms.Errors {
	if errs == nil {
		return forms.Errors{}
	}
	return errs
}
