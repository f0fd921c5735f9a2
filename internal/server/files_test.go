// ABOUTME: Tests for the file access surface endpoints
// ABOUTME: Covers upload/download round trips, overwrites, listing, and previews

package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uploadRequest builds an authenticated multipart upload request.
func uploadRequest(t *testing.T, filename, content, token string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadDownload_RoundTrip(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))
	token := login(t, srv)

	rec := do(t, srv, uploadRequest(t, "report.txt", "quarterly numbers", token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "report.txt", decodeBody(t, rec)["filename"])

	rec = do(t, srv, jsonRequest(t, http.MethodGet, "/download/report.txt", "", token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "quarterly numbers", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "17", rec.Header().Get("Content-Length"))
}

func TestUpload_OverwritesSameName(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))
	token := login(t, srv)

	rec := do(t, srv, uploadRequest(t, "note.txt", "first", token))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, srv, uploadRequest(t, "note.txt", "second version", token))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, jsonRequest(t, http.MethodGet, "/download/note.txt", "", token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "second version", rec.Body.String())
}

func TestUpload_NoFileField(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))
	token := login(t, srv)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("unrelated", "value"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := do(t, srv, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_NotMultipart(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))
	token := login(t, srv)

	rec := do(t, srv, jsonRequest(t, http.MethodPost, "/upload", `{"file":"x"}`, token))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListFiles_Partition(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))
	token := login(t, srv)

	for name, content := range map[string]string{
		"a.png": "png",
		"b.txt": "txt",
		"c.JPG": "jpg",
	} {
		rec := do(t, srv, uploadRequest(t, name, content, token))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(t, srv, jsonRequest(t, http.MethodGet, "/files", "", token))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.ElementsMatch(t, []any{"a.png", "b.txt", "c.JPG"}, body["files"])
	assert.ElementsMatch(t, []any{"a.png", "c.JPG"}, body["images"])
	assert.ElementsMatch(t, []any{"b.txt"}, body["documents"])
}

func TestDownload_NotFound(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))
	token := login(t, srv)

	rec := do(t, srv, jsonRequest(t, http.MethodGet, "/download/missing.bin", "", token))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImage_InlineWithQueryToken(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))
	token := login(t, srv)

	rec := do(t, srv, uploadRequest(t, "photo.png", "fake png bytes", token))
	require.Equal(t, http.StatusOK, rec.Code)

	// No Authorization header, token via query parameter only.
	req := httptest.NewRequest(http.MethodGet, "/images/photo.png?token="+token, nil)
	rec = do(t, srv, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "fake png bytes", rec.Body.String())
}

func TestDownload_QueryToken(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))
	token := login(t, srv)

	rec := do(t, srv, uploadRequest(t, "doc.pdf", "pdf bytes", token))
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/download/doc.pdf?token="+token, nil)
	rec = do(t, srv, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pdf bytes", rec.Body.String())
}

func TestListFiles_QueryTokenRejected(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))
	token := login(t, srv)

	// Only the streaming routes accept query tokens.
	req := httptest.NewRequest(http.MethodGet, "/files?token="+token, nil)
	rec := do(t, srv, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
