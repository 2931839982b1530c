package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	startedAt  time.Time
	mapsApiKey string
}

func NewHealthHandler(mapsApiKey string) *HealthHandler {
	return &HealthHandler{
		startedAt:  time.Now(),
		mapsApiKey: mapsApiKey,
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.startedAt).String(),
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// GetClientConfig hands back the settings a frontend needs at boot.
func (h *HealthHandler) GetClientConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"maps_api_key": h.mapsApiKey,
	})
}
