package handlers

import (
	"io"
	"net/http"

	"github.com/petfm/server/pkg"
	"github.com/petfm/server/services"
)

// coverMaxSize caps cover uploads at 10 MB.
const coverMaxSize = 10 << 20

// CoverHandler serves the cover endpoints.
type CoverHandler struct {
	coverService services.CoverService
}

func NewCoverHandler(coverService services.CoverService) *CoverHandler {
	return &CoverHandler{coverService: coverService}
}

// Upload godoc
// POST /api/albums/{id}/covers
// Multipart form with a "file" field.
func (h *CoverHandler) Upload(w http.ResponseWriter, r *http.Request) {
	albumID := r.PathValue("id")

	if err := r.ParseMultipartForm(coverMaxSize); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")

	cover, err := h.coverService.Upload(r.Context(), albumID, header.Filename, contentType, file)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, cover)
}

// List godoc
// GET /api/albums/{id}/covers
func (h *CoverHandler) List(w http.ResponseWriter, r *http.Request) {
	albumID := r.PathValue("id")

	covers, err := h.coverService.ListByAlbum(r.Context(), albumID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, covers)
}

// GetURL godoc
// GET /api/covers/{id}/url
// Returns a presigned download URL for the cover image.
func (h *CoverHandler) GetURL(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	url, err := h.coverService.GetURL(r.Context(), id)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"url": url})
}

// Download godoc
// GET /api/covers/{id}/download
// Streams the image bytes for clients that cannot use presigned URLs.
func (h *CoverHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	body, err := h.coverService.Open(r.Context(), id)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, body); err != nil {
		// Headers are already out, nothing left to do but log upstream.
		return
	}
}

// Delete godoc
// DELETE /api/covers/{id}
func (h *CoverHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.coverService.Delete(r.Context(), id); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "cover deleted"})
}
