package handler

import (
	"net/http"
	"strconv"

	"spotmate/internal/middleware"
	"spotmate/internal/service"
	"spotmate/pkg/geo"

	"github.com/gin-gonic/gin"
)

type NearbyHandler struct {
	nearby *service.NearbyService
}

func NewNearbyHandler(nearby *service.NearbyService) *NearbyHandler {
	return &NearbyHandler{nearby: nearby}
}

// List handles GET /nearby?lat=..&lng=..: a one-shot nearby match query from
// the caller's current coordinate.
func (h *NearbyHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng query params required"})
		return
	}
	coord := geo.Coordinate{Lat: lat, Lng: lng}
	if !coord.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid coordinates"})
		return
	}

	users, err := h.nearby.Query(userID, coord)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to find nearby users"})
		return
	}
	if users == nil {
		users = []service.NearbyUser{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}
