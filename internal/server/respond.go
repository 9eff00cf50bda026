package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/legadomuebles/legado/internal/controller"
	"github.com/legadomuebles/legado/internal/loop"
	"github.com/legadomuebles/legado/internal/uistate"
)

var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error()}
	status := statusFor(err)

	var qe *controller.QuoteError
	if errors.As(err, &qe) {
		body.Error = controller.ErrInvalidQuote.Error()
		body.Fields = qe.Fields
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		body.Error = "internal server error"
	}
	s.writeJSON(w, status, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, controller.ErrUnknownProduct):
		return http.StatusNotFound
	case errors.Is(err, controller.ErrUnknownCategory),
		errors.Is(err, controller.ErrInvalidSort),
		errors.Is(err, controller.ErrInvalidQuote),
		errors.Is(err, uistate.ErrUnknownKey),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, controller.ErrFavoritesFull):
		return http.StatusConflict
	case errors.Is(err, loop.ErrStopped),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// run executes fn on the loop and writes its result as JSON.
func (s *Server) run(w http.ResponseWriter, r *http.Request, fn func() (any, error)) {
	var (
		result any
		fnErr  error
	)
	if err := s.cfg.Loop.Do(r.Context(), func() { result, fnErr = fn() }); err != nil {
		s.writeError(w, err)
		return
	}
	if fnErr != nil {
		s.writeError(w, fnErr)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// decodeBody reads a JSON request body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func productID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: product id %q", errBadRequest, raw)
	}
	return id, nil
}
