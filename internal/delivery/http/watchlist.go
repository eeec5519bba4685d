package http

import (
	"net/http"
	"strconv"

	"kronos-dashboard/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupWatchlist(base *echo.Group) {
	watchlistGroup := base.Group("/watchlist")
	watchlistGroup.GET("", h.listWatchlist)
	watchlistGroup.GET("/search", h.searchWatchlist)
	watchlistGroup.POST("", h.addWatchlist)
	watchlistGroup.DELETE("/:id", h.removeWatchlist)

	base.GET("/stocks/:symbol/history", h.stockHistory)
}

func (h *HttpAPIHandler) listWatchlist(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.service.WatchlistService.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse("failed to list watchlist"))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("", items))
}

func (h *HttpAPIHandler) searchWatchlist(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	items, err := h.service.WatchlistService.Search(ctx, dto.SearchWatchlistParam{
		Query: c.QueryParam("q"),
		Limit: limit,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse("failed to search watchlist"))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("", items))
}

func (h *HttpAPIHandler) addWatchlist(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.AddWatchlistRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}

	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	item, err := h.service.WatchlistService.Add(ctx, *req)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, dto.NewBaseResponse(http.StatusUnprocessableEntity, err.Error(), nil))
	}

	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "added to watchlist", item))
}

func (h *HttpAPIHandler) removeWatchlist(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid id"))
	}

	if err := h.service.WatchlistService.Remove(ctx, uint(id)); err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse("failed to remove watchlist item"))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("removed from watchlist", nil))
}

func (h *HttpAPIHandler) stockHistory(c echo.Context) error {
	ctx := c.Request().Context()

	data, err := h.service.WatchlistService.StockHistory(ctx, dto.GetStockDataParam{
		Symbol:   c.Param("symbol"),
		Range:    c.QueryParam("range"),
		Interval: c.QueryParam("interval"),
	})
	if err != nil {
		return c.JSON(http.StatusBadGateway, dto.NewBaseResponse(http.StatusBadGateway, err.Error(), nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("", data))
}
