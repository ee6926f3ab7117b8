package controllers

import (
	"net/http"

	"outfitapi/services"

	"github.com/labstack/echo/v4"
)

// InternalController exposes cache and performance operations for the
// operational tooling. All routes sit behind RootMiddleware.
type InternalController struct {
	Engine *services.OutfitEngine
}

func (controller *InternalController) InternalRoutes(g *echo.Group) {
	g.GET("/cache/stats", controller.CacheStats)
	g.POST("/cache/invalidate", controller.InvalidateCache)
	g.GET("/performance", controller.PerformanceReport)
	g.POST("/performance/reset", controller.ResetPerformance)
}

func (controller *InternalController) CacheStats(c echo.Context) error {
	return c.JSON(http.StatusOK, controller.Engine.Cache.Stats())
}

func (controller *InternalController) InvalidateCache(c echo.Context) error {
	if err := controller.Engine.Cache.Invalidate(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to invalidate cache"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "invalidated"})
}

func (controller *InternalController) PerformanceReport(c echo.Context) error {
	return c.JSON(http.StatusOK, controller.Engine.Monitor.Snapshot())
}

func (controller *InternalController) ResetPerformance(c echo.Context) error {
	controller.Engine.Monitor.Reset()
	return c.JSON(http.StatusOK, map[string]string{"status": "reset"})
}
