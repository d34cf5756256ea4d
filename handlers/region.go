package handlers

import (
	"net/http"

	"github.com/petfm/server/pkg"
	"github.com/petfm/server/services"
)

// RegionHandler serves the region endpoints. Regions are read-only over
// HTTP, writes happen through the periodic sync.
type RegionHandler struct {
	regionService services.RegionService
}

func NewRegionHandler(regionService services.RegionService) *RegionHandler {
	return &RegionHandler{regionService: regionService}
}

// List godoc
// GET /api/regions?active=true
func (h *RegionHandler) List(w http.ResponseWriter, r *http.Request) {
	var err error
	var regions any

	if r.URL.Query().Get("active") == "true" {
		regions, err = h.regionService.GetAllActive(r.Context())
	} else {
		regions, err = h.regionService.GetAll(r.Context())
	}
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, regions)
}

// Get godoc
// GET /api/regions/{id}
func (h *RegionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	region, err := h.regionService.GetByID(r.Context(), id)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, region)
}
