package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/icgdb/icgdb-server/internal/errors"
	"github.com/icgdb/icgdb-server/internal/http/response"
	"github.com/icgdb/icgdb-server/internal/media/images"
)

// pictureField is the multipart form field holding the upload.
const pictureField = "picture"

// registerPictureRoutes registers the multipart upload and the public file
// route. Both are raw chi handlers; huma is not a fit for streaming bodies.
func (s *Server) registerPictureRoutes() {
	s.router.With(RateLimitMiddleware(s.uploadRateLimiter, s.logger)).
		Post("/api/v1/games/{name}/picture", s.handleUploadPicture)
	s.router.Get("/pictures/{file}", s.handleServePicture)
}

func (s *Server) handleUploadPicture(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	// Multipart framing adds a little over the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+64<<10)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.HandleError(w, domainerrors.Validationf("Picture must be at most %d KiB.", s.maxUpload>>10), s.logger)
			return
		}
		response.BadRequest(w, "Expected a multipart form with a \"picture\" file.", s.logger)
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp files only

	file, header, err := r.FormFile(pictureField)
	if err != nil {
		response.BadRequest(w, "Missing \"picture\" file.", s.logger)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxUpload+1))
	if err != nil {
		response.BadRequest(w, "Could not read upload.", s.logger)
		return
	}

	g, err := s.services.Games.SetPicture(r.Context(), actingEmail(r.Context()), name, header.Filename, data)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	s.logger.Info("picture uploaded", "game", g.Name, "file", g.PictureRef, "bytes", len(data))
	response.Success(w, mapGameResponse(g), s.logger)
}

func (s *Server) handleServePicture(w http.ResponseWriter, r *http.Request) {
	if s.pictures == nil {
		response.NotFound(w, "Picture not found.", s.logger)
		return
	}

	file := chi.URLParam(r, "file")
	data, err := s.pictures.Get(file)
	if err != nil {
		if errors.Is(err, images.ErrNotFound) || errors.Is(err, images.ErrBadName) {
			response.NotFound(w, "Picture not found.", s.logger)
			return
		}
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, file, time.Time{}, bytes.NewReader(data))
}
