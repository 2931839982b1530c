package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"dealsplit/internal/usecase"
	"dealsplit/pkg/response"
	"dealsplit/pkg/utils"
)

type RequestHandler struct {
	requestUseCase *usecase.RequestUseCase
}

func NewRequestHandler(requestUseCase *usecase.RequestUseCase) *RequestHandler {
	return &RequestHandler{
		requestUseCase: requestUseCase,
	}
}

type updateRequestStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open matched completed cancelled"`
}

func (h *RequestHandler) CreateRequest(c echo.Context) error {
	var req usecase.CreateRequestInput
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	request, err := h.requestUseCase.Create(c.Request().Context(), userID, req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, request)
}

func (h *RequestHandler) GetRequest(c echo.Context) error {
	request, err := h.requestUseCase.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, request)
}

func (h *RequestHandler) ListRequests(c echo.Context) error {
	page, pageSize, _ := utils.ParsePagination(c.QueryParam("page"), c.QueryParam("pageSize"))

	input := usecase.ListRequestsInput{
		CategoryID: c.QueryParam("category_id"),
		Status:     c.QueryParam("status"),
		UserID:     c.QueryParam("user_id"),
		Page:       page,
		PageSize:   pageSize,
	}

	if radiusStr := c.QueryParam("radius_km"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err == nil && radius > 0 {
			lat, latErr := strconv.ParseFloat(c.QueryParam("lat"), 64)
			lng, lngErr := strconv.ParseFloat(c.QueryParam("lng"), 64)
			if latErr == nil && lngErr == nil {
				input.Lat = lat
				input.Lng = lng
				input.RadiusKm = radius
			}
		}
	}

	requests, total, err := h.requestUseCase.List(c.Request().Context(), input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, requests, total, page, pageSize)
}

func (h *RequestHandler) UpdateRequestStatus(c echo.Context) error {
	var req updateRequestStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	request, err := h.requestUseCase.UpdateStatus(c.Request().Context(), userID, c.Param("id"), req.Status)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, request)
}

func (h *RequestHandler) ListCategories(c echo.Context) error {
	categories, err := h.requestUseCase.ListCategories(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, categories)
}
