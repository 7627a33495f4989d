package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"incomebook/internal/core"
	"incomebook/internal/log"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, strict bool, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		// Dates are validated while decoding; keep those as validation errors.
		if errors.Is(err, core.ErrInvalidDate) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return badRequest(errors.New("request body is empty"))
		}
		return badRequest(fmt.Errorf("invalid request body: %w", err))
	}
	return nil
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.GetAll(r.Context())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	if entries == nil {
		entries = []core.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var in core.EntryInput
	if err := decodeJSON(w, r, false, &in); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	e, err := s.store.Add(r.Context(), in)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	w.Header().Set("Location", "/api/entries/"+e.ID)
	writeJSON(w, http.StatusCreated, e)
}

// handleUpdateEntry rejects unknown fields, which includes the derived tax
// withheld and net amount.
func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var patch core.EntryPatch
	if err := decodeJSON(w, r, true, &patch); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	e, err := s.store.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	removed, err := s.store.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	if !removed {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "entry not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
