// ABOUTME: CRUD passthrough handlers for notes and password-vault records
// ABOUTME: One generic handler pair serves both record stores

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dropnest/dropnest/internal/auth"
	"github.com/dropnest/dropnest/internal/records"
)

// decodeFields reads a flat JSON object from the request body. Reserved keys
// are managed by the store, so they are stripped here.
func decodeFields(r *http.Request) (map[string]any, error) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return nil, errors.New("invalid JSON body")
	}
	delete(fields, "id")
	delete(fields, "created_at")
	delete(fields, "updated_at")
	return fields, nil
}

// recordCollectionHandler serves GET (list) and POST (create) for a record
// store. The authenticated identity is the partition key.
func (s *Server) recordCollectionHandler(store *records.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := auth.MustFromContext(r.Context())

		switch r.Method {
		case http.MethodGet:
			recs, err := store.List(sess.Identity)
			if err != nil {
				s.logger.Error("listing records", "error", err)
				s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			s.sendJSON(w, http.StatusOK, recs)

		case http.MethodPost:
			fields, err := decodeFields(r)
			if err != nil {
				s.sendJSONError(w, http.StatusBadRequest, err.Error())
				return
			}
			rec, err := store.Create(sess.Identity, fields)
			if err != nil {
				s.logger.Error("creating record", "error", err)
				s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			s.sendJSON(w, http.StatusCreated, rec)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// recordItemHandler serves PUT (update) and DELETE for a single record
// addressed as prefix{id}.
func (s *Server) recordItemHandler(store *records.Store, prefix string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := auth.MustFromContext(r.Context())

		id := strings.TrimPrefix(r.URL.Path, prefix)
		if id == "" || strings.Contains(id, "/") {
			s.sendJSONError(w, http.StatusBadRequest, "invalid record id")
			return
		}

		switch r.Method {
		case http.MethodPut:
			fields, err := decodeFields(r)
			if err != nil {
				s.sendJSONError(w, http.StatusBadRequest, err.Error())
				return
			}
			rec, err := store.Update(sess.Identity, id, fields)
			if errors.Is(err, records.ErrNotFound) {
				s.sendJSONError(w, http.StatusNotFound, "record not found")
				return
			}
			if err != nil {
				s.logger.Error("updating record", "id", id, "error", err)
				s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			s.sendJSON(w, http.StatusOK, rec)

		case http.MethodDelete:
			err := store.Delete(sess.Identity, id)
			if errors.Is(err, records.ErrNotFound) {
				s.sendJSONError(w, http.StatusNotFound, "record not found")
				return
			}
			if err != nil {
				s.logger.Error("deleting record", "id", id, "error", err)
				s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			s.sendJSON(w, http.StatusOK, map[string]string{"message": "deleted"})

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}
