package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/petfm/server/models"
	"github.com/petfm/server/pkg"
	"github.com/petfm/server/services"
)

// ArtistHandler serves the artist endpoints.
type ArtistHandler struct {
	artistService services.ArtistService
}

func NewArtistHandler(artistService services.ArtistService) *ArtistHandler {
	return &ArtistHandler{artistService: artistService}
}

// Create godoc
// POST /api/artists
func (h *ArtistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateArtistRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	artist, err := h.artistService.Create(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, artist)
}

// List godoc
// GET /api/artists?page=0&size=20&name=filter
func (h *ArtistHandler) List(w http.ResponseWriter, r *http.Request) {
	pageReq := parsePageRequest(r)
	nameFilter := r.URL.Query().Get("name")

	page, err := h.artistService.GetPage(r.Context(), pageReq, nameFilter)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, page)
}

// Get godoc
// GET /api/artists/{id}
// Returns the artist with its albums and their covers.
func (h *ArtistHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	detail, err := h.artistService.GetDetail(r.Context(), id)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, detail)
}

// Update godoc
// PUT /api/artists/{id}
func (h *ArtistHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req models.CreateArtistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	artist, err := h.artistService.Update(r.Context(), id, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, artist)
}

// Delete godoc
// DELETE /api/artists/{id}
func (h *ArtistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.artistService.Delete(r.Context(), id); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "artist deleted"})
}
