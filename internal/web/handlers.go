package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/JonMunkholm/csvpreview/internal/core"
)

// multipartMemory is how much of a multipart form is held in memory
// before parts spill to temporary files.
const multipartMemory = 32 << 20

// Item listing bounds for handleListItems.
const (
	defaultItemLimit = 100
	maxItemLimit     = 1000
)

var (
	errInvalidForm  = errors.New("invalid multipart form")
	errInvalidParam = errors.New("invalid query parameter")
)

// upload is the CSV payload of a request.
type upload struct {
	body io.ReadCloser
	name string
	size int64
}

// openUpload returns the CSV carried by r. Multipart requests use the
// "file" part; any other content type is read from the raw body, named by
// the "name" query parameter.
func (s *Server) openUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if r.ContentLength == 0 {
			return nil, errNoFile
		}
		return &upload{
			body: r.Body,
			name: r.URL.Query().Get("name"),
			size: max(r.ContentLength, 0),
		}, nil
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errInvalidForm, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	return &upload{body: file, name: header.Filename, size: header.Size}, nil
}

// previewParams reads the previewRows and collectSamples query parameters.
func previewParams(r *http.Request) (core.PreviewParams, error) {
	var p core.PreviewParams
	q := r.URL.Query()

	if v := q.Get("previewRows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, fmt.Errorf("%w: previewRows must be a positive integer", errInvalidParam)
		}
		p.PreviewRows = n
	}

	if v := q.Get("collectSamples"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return p, fmt.Errorf("%w: collectSamples must be true or false", errInvalidParam)
		}
		p.CollectSamples = &b
	}

	return p, nil
}

// formValue reads a multipart field or query parameter. Raw-body requests
// only consult the query so the body is never parsed as a form.
func formValue(r *http.Request, key string) string {
	if r.MultipartForm != nil {
		return r.FormValue(key)
	}
	return r.URL.Query().Get(key)
}

// importMapping reads the column mapping from the "mapping" JSON field, or
// from the comma-separated input, expectedOutput and metadata fields.
func importMapping(r *http.Request) (core.ImportMapping, error) {
	var m core.ImportMapping

	if raw := formValue(r, "mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return m, fmt.Errorf("%w: mapping: %v", errInvalidParam, err)
		}
		return m, nil
	}

	m.Input = splitList(formValue(r, "input"))
	m.ExpectedOutput = splitList(formValue(r, "expectedOutput"))
	m.Metadata = splitList(formValue(r, "metadata"))
	return m, nil
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// StatusResponse reports server capacity.
type StatusResponse struct {
	Limiter   core.LimiterStatus `json:"limiter"`
	CanImport bool               `json:"canImport"`
}

// handleStatus returns the ingestion limiter state.
// Used for monitoring and to check if the server can accept more uploads.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, StatusResponse{
		Limiter:   s.service.LimiterStatus(),
		CanImport: s.service.CanImport(),
	})
}

// handlePreview builds a bounded preview from the head of the uploaded file.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	params, err := previewParams(r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	up, err := s.openUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	defer up.body.Close()

	result, err := s.service.Preview(r.Context(), up.name, up.body, params)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	writeJSON(w, result)
}

// handlePreviewFull runs a full pass over the uploaded file.
func (s *Server) handlePreviewFull(w http.ResponseWriter, r *http.Request) {
	params, err := previewParams(r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	up, err := s.openUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	defer up.body.Close()

	result, err := s.service.Analyze(r.Context(), up.name, up.body, params)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	writeJSON(w, result)
}

// handleImport streams the uploaded file into the dataset named in the path.
// Memory usage is O(batch size) regardless of file size.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	datasetID := chi.URLParam(r, "datasetID")

	up, err := s.openUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	defer up.body.Close()

	mapping, err := importMapping(r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.Import(ctx, core.ImportRequest{
		DatasetID: datasetID,
		FileName:  up.name,
		Mapping:   mapping,
		Reader:    up.body,
		Size:      up.size,
	})
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	writeJSONStatus(w, http.StatusCreated, result)
}

// ItemsResponse is one page of a dataset's items.
type ItemsResponse struct {
	DatasetID string             `json:"datasetId"`
	Total     int64              `json:"total"`
	Items     []core.DatasetItem `json:"items"`
}

// handleListItems returns the first items of a dataset in source row order.
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	if s.items == nil {
		s.respondError(w, r, core.ErrNoItemStore, 0)
		return
	}

	datasetID := chi.URLParam(r, "datasetID")
	limit := min(parseIntParam(r, "limit", defaultItemLimit), maxItemLimit)

	total, err := s.items.CountItems(r.Context(), datasetID)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	items, err := s.items.ListItems(r.Context(), datasetID, limit)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	writeJSON(w, ItemsResponse{DatasetID: datasetID, Total: total, Items: items})
}
