// ABOUTME: File access surface handlers: upload, list, download, inline preview
// ABOUTME: Streams against the shared upload directory behind the auth gateway

package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dropnest/dropnest/internal/storage"
)

// maxUploadMemory bounds how much of a multipart upload is buffered in
// memory before spilling to disk.
const maxUploadMemory = 32 << 20 // 32 MiB

// handleUpload handles POST /upload requests: one multipart file per
// request, persisted under its original base name. An existing file of the
// same name is silently overwritten.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	name, err := s.files.Save(header.Filename, file)
	if errors.Is(err, storage.ErrInvalidName) {
		s.sendJSONError(w, http.StatusBadRequest, "invalid file name")
		return
	}
	if err != nil {
		s.logger.Error("saving upload", "name", header.Filename, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.logger.Info("file uploaded", "name", name, "size", header.Size)
	s.sendJSON(w, http.StatusOK, map[string]string{
		"message":  "upload successful",
		"filename": name,
	})
}

// listFilesResponse is the JSON response for GET /files. The image/document
// split is a presentation convenience over the same unpartitioned listing.
type listFilesResponse struct {
	Files     []string `json:"files"`
	Images    []string `json:"images"`
	Documents []string `json:"documents"`
}

// handleListFiles handles GET /files requests.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	names, err := s.files.List()
	if err != nil {
		s.logger.Error("listing files", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	images, documents := storage.Partition(names)
	s.sendJSON(w, http.StatusOK, listFilesResponse{
		Files:     names,
		Images:    images,
		Documents: documents,
	})
}

// handleDownload handles GET /download/{filename} requests, streaming the
// file as an attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/download/")
	s.serveFile(w, name, func(w http.ResponseWriter, name string) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	})
}

// handleImage handles GET /images/{filename} requests, streaming the file
// inline with a content type inferred from its extension so it can be used
// directly as an image source.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/images/")
	s.serveFile(w, name, func(w http.ResponseWriter, name string) {
		contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
	})
}

// serveFile streams a named file from the shared directory, delegating
// response headers to setHeaders.
func (s *Server) serveFile(w http.ResponseWriter, name string, setHeaders func(http.ResponseWriter, string)) {
	if name == "" {
		s.sendJSONError(w, http.StatusBadRequest, "file name is required")
		return
	}

	f, size, err := s.files.Open(name)
	if errors.Is(err, storage.ErrNotFound) {
		s.sendJSONError(w, http.StatusNotFound, "file not found")
		return
	}
	if errors.Is(err, storage.ErrInvalidName) {
		s.sendJSONError(w, http.StatusBadRequest, "invalid file name")
		return
	}
	if err != nil {
		s.logger.Error("opening file", "name", name, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer f.Close()

	setHeaders(w, filepath.Base(name))
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))

	if _, err := io.Copy(w, f); err != nil {
		// Headers are gone; all we can do is log.
		s.logger.Error("streaming file", "name", name, "error", err)
	}
}
