package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/petfm/server/models"
	"github.com/petfm/server/pkg"
	"github.com/petfm/server/services"
)

// AlbumHandler serves the album endpoints.
type AlbumHandler struct {
	albumService services.AlbumService
}

func NewAlbumHandler(albumService services.AlbumService) *AlbumHandler {
	return &AlbumHandler{albumService: albumService}
}

// Create godoc
// POST /api/albums
func (h *AlbumHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAlbumRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	album, err := h.albumService.Create(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, album)
}

// List godoc
// GET /api/albums?page=0&size=20
func (h *AlbumHandler) List(w http.ResponseWriter, r *http.Request) {
	pageReq := parsePageRequest(r)

	page, err := h.albumService.GetPage(r.Context(), pageReq)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, page)
}

// Get godoc
// GET /api/albums/{id}
// Returns the album with its covers, presigned URLs included.
func (h *AlbumHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	detail, err := h.albumService.GetDetail(r.Context(), id)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, detail)
}

// Update godoc
// PATCH /api/albums/{id}
// Nil body fields are left unchanged.
func (h *AlbumHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req models.UpdateAlbumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	album, err := h.albumService.Update(r.Context(), id, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, album)
}

// Delete godoc
// DELETE /api/albums/{id}
func (h *AlbumHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.albumService.Delete(r.Context(), id); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "album deleted"})
}
