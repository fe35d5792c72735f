// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/ManuGH/stbbridge/internal/capacity"
	"github.com/ManuGH/stbbridge/internal/entries"
	xglog "github.com/ManuGH/stbbridge/internal/log"
	"github.com/ManuGH/stbbridge/internal/player"
	"github.com/ManuGH/stbbridge/internal/setup"
	"github.com/go-chi/chi/v5"
)

var errSetupDisabled = errors.New("config flow is not enabled")

type playerCtxKey struct{}

// withPlayer resolves {id} and stores the player in the request context.
func (s *Server) withPlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		p, err := s.deps.Players.Get(id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ctx := xglog.ContextWithBoxID(r.Context(), id)
		ctx = context.WithValue(ctx, playerCtxKey{}, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func playerFrom(r *http.Request) *player.Player {
	p, _ := r.Context().Value(playerCtxKey{}).(*player.Player)
	return p
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	players := s.deps.Players.List()
	out := make([]player.Status, 0, len(players))
	for _, p := range players {
		st, err := p.Status(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		out = append(out, st)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	st, err := playerFrom(r).Status(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	node, err := playerFrom(r).Browse(r.Context(), q.Get("type"), q.Get("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

type sourceRequest struct {
	Source string `json:"source"`
}

func (s *Server) handleSelectSource(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := playerFrom(r).SelectSource(r.Context(), req.Source); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type playMediaRequest struct {
	MediaType string `json:"media_type"`
	MediaID   string `json:"media_id"`
}

func (s *Server) handlePlayMedia(w http.ResponseWriter, r *http.Request) {
	var req playMediaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := playerFrom(r).PlayMedia(r.Context(), req.MediaType, req.MediaID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if err := playerFrom(r).Command(r.Context(), chi.URLParam(r, "command")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlayerService(w http.ResponseWriter, r *http.Request) {
	var call player.ServiceCall
	if err := decodeJSON(w, r, &call); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := playerFrom(r).CallService(r.Context(), chi.URLParam(r, "service"), call); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type serviceRequest struct {
	BoxIDs    []string `json:"box_ids,omitempty"`
	RemoteKey string   `json:"remote_key,omitempty"`
}

// handleService dispatches a service to several boxes, or all of them.
func (s *Server) handleService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	call := player.ServiceCall{RemoteKey: req.RemoteKey}
	if err := s.deps.Players.CallService(r.Context(), req.BoxIDs, chi.URLParam(r, "service"), call); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCapacity(w http.ResponseWriter, r *http.Request) {
	if s.deps.Capacity == nil {
		s.writeError(w, r, capacity.ErrNotSupported)
		return
	}
	reading, err := s.deps.Capacity.Read(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	if s.deps.Setup == nil {
		writeJSONError(w, r, http.StatusNotFound, "not_supported", errSetupDisabled.Error())
		return
	}
	var in setup.Input
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	entry, err := s.deps.Setup.Submit(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	if s.deps.Entries == nil {
		writeJSON(w, http.StatusOK, []entries.Entry{})
		return
	}
	list, err := s.deps.Entries.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
