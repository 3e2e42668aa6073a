package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/matzehuels/pipelinecheck/pkg/buildinfo"
	perrors "github.com/matzehuels/pipelinecheck/pkg/errors"
	"github.com/matzehuels/pipelinecheck/pkg/pipeline"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"Ping": "Pong"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	diagnostics := false
	if q := r.URL.Query().Get("diagnostics"); q != "" {
		v, err := strconv.ParseBool(q)
		if err != nil {
			s.fail(w, r, perrors.New(perrors.ErrCodeInvalidInput, "diagnostics must be a boolean, got %q", q))
			return
		}
		diagnostics = v
	}

	body := r.Body
	if s.cfg.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	p, err := pipeline.Decode(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = perrors.New(perrors.ErrCodePayloadTooLarge, "request body exceeds %d bytes", tooLarge.Limit)
		}
		s.fail(w, r, err)
		return
	}

	res, err := s.runner.Check(r.Context(), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	v := res.Verdict
	if !diagnostics {
		v = v.Summary()
	}
	writeJSON(w, http.StatusOK, v)
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable
	}
	switch perrors.GetCode(err) {
	case perrors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case perrors.ErrCodeInvalidPipeline:
		return http.StatusUnprocessableEntity
	case perrors.ErrCodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	code := string(perrors.GetCode(err))
	msg := perrors.UserMessage(err)

	switch {
	case status == http.StatusServiceUnavailable:
		code, msg = "UNAVAILABLE", "request canceled or timed out"
	case code == "":
		code, msg = string(perrors.ErrCodeInternal), "internal error"
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("check failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Debug("rejected request", "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, code, msg)
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
