package router

import (
	"github.com/labstack/echo/v4"

	"dealsplit/internal/adapter/api/handler"
	"dealsplit/internal/adapter/api/middleware"
)

func SetupRequestRouter(e *echo.Echo, requestHandler *handler.RequestHandler, authMiddleware *middleware.AuthMiddleware) {
	// Requests are public to browse, authenticated to create or change.
	e.GET("/v1/requests", requestHandler.ListRequests)
	e.GET("/v1/requests/:id", requestHandler.GetRequest)
	e.GET("/v1/categories", requestHandler.ListCategories)

	requestGroup := e.Group("/v1/requests")
	requestGroup.Use(authMiddleware.Authenticate)

	requestGroup.POST("", requestHandler.CreateRequest)
	requestGroup.PUT("/:id/status", requestHandler.UpdateRequestStatus)
}
