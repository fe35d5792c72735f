// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ManuGH/stbbridge/internal/backend"
	"github.com/ManuGH/stbbridge/internal/capacity"
	"github.com/ManuGH/stbbridge/internal/entries"
	xglog "github.com/ManuGH/stbbridge/internal/log"
	"github.com/ManuGH/stbbridge/internal/player"
	"github.com/ManuGH/stbbridge/internal/recordings"
	"github.com/ManuGH/stbbridge/internal/setup"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

var errBadRequest = errors.New("invalid request body")

type mapping struct {
	target error
	status int
	code   string
}

// Order matters: domain errors wrap backend sentinels, so they come first.
var errorMappings = []mapping{
	{errBadRequest, http.StatusBadRequest, "invalid_request"},
	{player.ErrUnknownPlayer, http.StatusNotFound, "unknown_player"},
	{player.ErrInvalidMediaIdentifier, http.StatusBadRequest, "invalid_media_identifier"},
	{player.ErrUnsupportedMediaType, http.StatusBadRequest, "unsupported_media_type"},
	{player.ErrUnknownSource, http.StatusBadRequest, "unknown_source"},
	{player.ErrUnknownContentType, http.StatusBadRequest, "unknown_content_type"},
	{player.ErrMissingRemoteKey, http.StatusBadRequest, "missing_remote_key"},
	{player.ErrUnknownCommand, http.StatusNotFound, "unknown_command"},
	{player.ErrUnknownService, http.StatusNotFound, "unknown_service"},
	{capacity.ErrNotSupported, http.StatusNotFound, "not_supported"},
	{entries.ErrNotFound, http.StatusNotFound, "not_found"},
	{setup.ErrInvalidInput, http.StatusBadRequest, setup.CodeInvalidInput},
	{setup.ErrInvalidAuth, http.StatusUnauthorized, setup.CodeInvalidAuth},
	{setup.ErrCannotConnect, http.StatusBadGateway, setup.CodeCannotConnect},
	{entries.ErrAlreadyConfigured, http.StatusConflict, setup.CodeAlreadyConfigured},
	{setup.ErrUnknown, http.StatusInternalServerError, setup.CodeUnknown},
	{recordings.ErrFetchFailed, http.StatusBadGateway, "fetch_failed"},
	{backend.ErrNotFound, http.StatusNotFound, "backend_not_found"},
	{backend.ErrTimeout, http.StatusGatewayTimeout, "backend_timeout"},
	{backend.ErrUnauthorized, http.StatusBadGateway, "backend_unauthorized"},
	{backend.ErrRejected, http.StatusBadGateway, "backend_rejected"},
	{backend.ErrUnavailable, http.StatusBadGateway, "backend_unavailable"},
	{backend.ErrUpstream, http.StatusBadGateway, "backend_error"},
	{backend.ErrBadResponse, http.StatusBadGateway, "backend_bad_response"},
}

// classify maps an error to its HTTP status and code.
func classify(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, errorBody{
		Error:     msg,
		Code:      code,
		RequestID: xglog.RequestIDFromContext(r.Context()),
	})
}

// writeError maps err and logs server side failures.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger := xglog.WithContext(r.Context(), s.logger)
		logger.Error().Err(err).
			Str(xglog.FieldEvent, "api.request_failed").
			Str(xglog.FieldPath, r.URL.Path).
			Str("code", code).
			Int("status", status).
			Msg("request failed")
	}
	writeJSONError(w, r, status, code, err.Error())
}

// decodeJSON reads a bounded JSON body. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}
