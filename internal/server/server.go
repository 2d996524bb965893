// Package server exposes the admin-facing HTTP boundary: template
// generation from uploaded images, plain image uploads, blob serving and
// artwork listing.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/paintbn/paintbn"
	"github.com/paintbn/paintbn/internal/imaging"
	"github.com/paintbn/paintbn/internal/store"
	"github.com/paintbn/paintbn/internal/template"
)

// Upload size limits.
const (
	MaxGenerateBytes = 10 << 20 // template generation input
	MaxUploadBytes   = 5 << 20  // plain image upload
)

// Requested palette sizes must fall in this range before per-difficulty
// clamping.
const (
	MinColorCount = 5
	MaxColorCount = 30
)

// ValidationError is a 400-class input error. Surfaced immediately, never
// retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Server wires the HTTP handlers to the stores.
type Server struct {
	kv    *store.KV
	blobs *store.BlobStore
}

// New creates a Server over the given stores.
func New(kv *store.KV, blobs *store.BlobStore) *Server {
	return &Server{kv: kv, blobs: blobs}
}

// Router builds the chi router with logging and panic recovery.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/api/templates/generate", s.handleGenerate)
	r.Post("/api/uploads", s.handleUpload)
	r.Get("/api/artworks", s.handleListArtworks)
	r.Get("/api/artworks/{id}", s.handleGetArtwork)
	r.Get("/blobs/{bucket}/*", s.handleBlob)
	return r
}

// generateResponse is the admin-facing generation result shape.
type generateResponse struct {
	Width        int                     `json:"width"`
	Height       int                     `json:"height"`
	ColorCount   int                     `json:"colorCount"`
	Colors       []paintbn.ColorSummary  `json:"colors"`
	RegionCount  int                     `json:"regionCount"`
	PreviewImage string                  `json:"previewImage,omitempty"`
	TemplateID   string                  `json:"templateId,omitempty"`
	TemplateData *template.Data          `json:"templateData,omitempty"`
	ColorPalette []template.PaletteColor `json:"colorPalette,omitempty"`
	TemplateURL  string                  `json:"templateUrl,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	img, verr := readImageForm(r, MaxGenerateBytes)
	if verr != nil {
		writeError(w, verr)
		return
	}

	opts := paintbn.DefaultOptions()
	opts.Title = r.FormValue("title")

	if v := r.FormValue("difficulty"); v != "" {
		d, err := template.ParseDifficulty(v)
		if err != nil {
			writeError(w, &ValidationError{Field: "difficulty", Reason: err.Error()})
			return
		}
		opts.Difficulty = d
	}
	if v := r.FormValue("colorCount"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < MinColorCount || n > MaxColorCount {
			writeError(w, &ValidationError{
				Field:  "colorCount",
				Reason: fmt.Sprintf("must be an integer in [%d, %d]", MinColorCount, MaxColorCount),
			})
			return
		}
		opts.ColorCount = n
	}
	if v := r.FormValue("smoothing"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			writeError(w, &ValidationError{Field: "smoothing", Reason: "must be a number in [0, 1]"})
			return
		}
		opts.Smoothing = f
	}

	result, err := paintbn.Generate(img, opts)
	if err != nil {
		if errors.Is(err, paintbn.ErrColorExtraction) {
			writeError(w, &ValidationError{Field: "image", Reason: "no colors could be extracted"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	resp := generateResponse{
		Width:        result.Width,
		Height:       result.Height,
		ColorCount:   result.ColorCount,
		Colors:       result.Colors,
		RegionCount:  result.RegionCount,
		PreviewImage: result.PreviewImage,
	}
	if result.Template != nil {
		resp.TemplateID = result.Template.ID
		resp.TemplateData = &result.Template.Data
		resp.ColorPalette = result.Template.ColorPalette

		// Persist the template definition as a blob so the player app
		// can fetch it.
		data, err := json.Marshal(result.Template)
		if err == nil {
			if up, err := s.blobs.Upload("templates", result.Template.ID+".json", data, "application/json"); err == nil {
				resp.TemplateURL = up.PublicURL
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	data, contentType, verr := readFileForm(r, MaxUploadBytes)
	if verr != nil {
		writeError(w, verr)
		return
	}
	ext := extensionFor(contentType)
	path := uuid.NewString() + ext
	up, err := s.blobs.Upload("uploads", path, data, contentType)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, up)
}

func (s *Server) handleListArtworks(w http.ResponseWriter, r *http.Request) {
	var out []store.Artwork
	if templateID := r.URL.Query().Get("templateId"); templateID != "" {
		arts, err := s.kv.ArtworksByTemplate(templateID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		out = arts
	} else {
		err := s.kv.GetAll(store.Artworks, func(_ string, data []byte) error {
			var a store.Artwork
			if err := json.Unmarshal(data, &a); err != nil {
				return err
			}
			out = append(out, a)
			return nil
		})
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetArtwork(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, ok, err := s.kv.ArtworkByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "artwork not found"})
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleBlob(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	path := chi.URLParam(r, "*")
	data, contentType, err := s.blobs.Open(bucket, path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// readImageForm pulls the "image" file out of a multipart form and decodes
// it.
func readImageForm(r *http.Request, maxBytes int64) (image.Image, *ValidationError) {
	data, contentType, verr := readFileForm(r, maxBytes)
	if verr != nil {
		return nil, verr
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, &ValidationError{Field: "image", Reason: fmt.Sprintf("content type %q is not an image", contentType)}
	}
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, &ValidationError{Field: "image", Reason: "file is not a decodable image"}
	}
	return img, nil
}

func readFileForm(r *http.Request, maxBytes int64) ([]byte, string, *ValidationError) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, "", &ValidationError{Field: "image", Reason: fmt.Sprintf("file missing or larger than %d bytes", maxBytes)}
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, "", &ValidationError{Field: "image", Reason: "multipart field \"image\" is required"}
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", &ValidationError{Field: "image", Reason: "could not read uploaded file"}
	}
	contentType := header.Header.Get("Content-Type")
	return data, contentType, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

func writeError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
