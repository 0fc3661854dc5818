package server

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/facilite-dev/facilite/internal/geo"
	"github.com/facilite-dev/facilite/internal/models"
)

// NearbyPlace is a hotel or restaurant annotated with its distance from the
// requested position
type NearbyPlace struct {
	Type       string   `json:"type"` // hotel or restaurant
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	Rating     float64  `json:"rating"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	DistanceKm float64  `json:"distance_km"`
}

// @Summary Nearby places
// @Description List hotels and restaurants within a radius of a position, closest first
// @Tags nearby
// @Produce json
// @Param latitude query number true "Latitude"
// @Param longitude query number true "Longitude"
// @Param radius_km query number false "Radius in kilometers (default 5)"
// @Param type query string false "Filter: hotel or restaurant"
// @Success 200 {array} NearbyPlace
// @Failure 400 {object} map[string]interface{}
// @Router /nearby [get]
func (s *Server) nearbyPlaces(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("latitude"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("longitude"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude are required"})
		return
	}

	radiusKm := 5.0
	if raw := c.Query("radius_km"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid radius"})
			return
		}
		radiusKm = parsed
	}

	placeType := c.Query("type")
	if placeType != "" && placeType != "hotel" && placeType != "restaurant" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be hotel or restaurant"})
		return
	}

	places := []NearbyPlace{}

	if placeType == "" || placeType == "hotel" {
		var hotels []models.Hotel
		err := s.db.Where("latitude IS NOT NULL AND longitude IS NOT NULL").Find(&hotels).Error
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to list hotels")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		for _, h := range hotels {
			d := geo.DistanceKm(lat, lon, *h.Latitude, *h.Longitude)
			if d <= radiusKm {
				places = append(places, NearbyPlace{
					Type: "hotel", ID: h.ID, Name: h.Name, Address: h.Address,
					Rating: h.Rating, Latitude: h.Latitude, Longitude: h.Longitude,
					DistanceKm: d,
				})
			}
		}
	}

	if placeType == "" || placeType == "restaurant" {
		var restaurants []models.Restaurant
		err := s.db.Where("latitude IS NOT NULL AND longitude IS NOT NULL").Find(&restaurants).Error
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to list restaurants")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		for _, r := range restaurants {
			d := geo.DistanceKm(lat, lon, *r.Latitude, *r.Longitude)
			if d <= radiusKm {
				places = append(places, NearbyPlace{
					Type: "restaurant", ID: r.ID, Name: r.Name, Address: r.Address,
					Rating: r.Rating, Latitude: r.Latitude, Longitude: r.Longitude,
					DistanceKm: d,
				})
			}
		}
	}

	sort.Slice(places, func(i, j int) bool { return places[i].DistanceKm < places[j].DistanceKm })

	c.JSON(http.StatusOK, places)
}

// @Summary Distance between two points
// @Description Great-circle distance in kilometers between point A and point B
// @Tags nearby
// @Produce json
// @Param lat1 query number true "Latitude of point A"
// @Param lon1 query number true "Longitude of point A"
// @Param lat2 query number true "Latitude of point B"
// @Param lon2 query number true "Longitude of point B"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /location/distance [get]
func (s *Server) locationDistance(c *gin.Context) {
	lat1, err1 := strconv.ParseFloat(c.Query("lat1"), 64)
	lon1, err2 := strconv.ParseFloat(c.Query("lon1"), 64)
	lat2, err3 := strconv.ParseFloat(c.Query("lat2"), 64)
	lon2, err4 := strconv.ParseFloat(c.Query("lon2"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat1, lon1, lat2 and lon2 are required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"point_a":     gin.H{"latitude": lat1, "longitude": lon1},
		"point_b":     gin.H{"latitude": lat2, "longitude": lon2},
		"distance_km": geo.DistanceKm(lat1, lon1, lat2, lon2),
	})
}
