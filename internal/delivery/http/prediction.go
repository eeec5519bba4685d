package http

import (
	"errors"
	"net/http"
	"strconv"

	"kronos-dashboard/internal/dto"
	"kronos-dashboard/internal/service"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupKronos(base *echo.Group) {
	kronosGroup := base.Group("/kronos")
	kronosGroup.POST("/predict", h.predict)
	kronosGroup.GET("/params", h.getParams)
	kronosGroup.PUT("/params", h.updateParams)
	kronosGroup.POST("/params/fetch", h.fetchWithParams)
	kronosGroup.GET("/predictions/latest", h.latestPrediction)
	kronosGroup.GET("/predictions/history", h.predictionHistory)
	kronosGroup.GET("/model-status", h.modelStatus)
	kronosGroup.GET("/available-models", h.availableModels)
	kronosGroup.POST("/load-model", h.loadModel)
	kronosGroup.POST("/summary", h.summary)
	kronosGroup.POST("/render", h.renderChart)
	kronosGroup.GET("/chart/:id", h.chartDocument)
}

// predict is the explicit fetch trigger. Mounting the dashboard never
// fetches; only this call does.
func (h *HttpAPIHandler) predict(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.PredictionRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}

	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	resp, err := h.service.PredictionService.Fetch(ctx, *req)
	if err != nil {
		// Transport failure; distinct from a success:false payload,
		// which flows through as 200 below.
		return c.JSON(http.StatusBadGateway, dto.NewBaseResponse(http.StatusBadGateway, err.Error(), nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse(resp.Message, resp))
}

func (h *HttpAPIHandler) getParams(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("", h.service.ParameterStore.Snapshot()))
}

// updateParams records parameter edits without fetching. Absent fields keep
// their current value.
func (h *HttpAPIHandler) updateParams(c echo.Context) error {
	var body struct {
		Ticker      *string  `json:"ticker"`
		ModelKey    *string  `json:"model_key"`
		Lookback    *int     `json:"lookback"`
		PredLen     *int     `json:"pred_len"`
		Temperature *float64 `json:"temperature"`
		TopP        *float64 `json:"top_p"`
		SampleCount *int     `json:"sample_count"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}

	store := h.service.ParameterStore
	if body.Ticker != nil {
		store.SetTicker(*body.Ticker)
	}
	if body.ModelKey != nil {
		store.SetModelKey(*body.ModelKey)
	}
	if body.Lookback != nil {
		store.SetLookback(*body.Lookback)
	}
	if body.PredLen != nil {
		store.SetPredLen(*body.PredLen)
	}
	if body.Temperature != nil {
		store.SetTemperature(*body.Temperature)
	}
	if body.TopP != nil {
		store.SetTopP(*body.TopP)
	}
	if body.SampleCount != nil {
		store.SetSampleCount(*body.SampleCount)
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("", store.Snapshot()))
}

// fetchWithParams runs one exchange with the stored parameter snapshot.
func (h *HttpAPIHandler) fetchWithParams(c echo.Context) error {
	ctx := c.Request().Context()

	resp, err := h.service.ParameterStore.TriggerFetch(ctx)
	if err != nil {
		return c.JSON(http.StatusBadGateway, dto.NewBaseResponse(http.StatusBadGateway, err.Error(), nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse(resp.Message, resp))
}

func (h *HttpAPIHandler) latestPrediction(c echo.Context) error {
	req, err := predictionRequestFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	resp, ok := h.service.PredictionService.Latest(req)
	if !ok {
		return c.JSON(http.StatusNotFound, dto.NewBaseResponse(http.StatusNotFound, "no prediction cached for the given parameters", nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse(resp.Message, resp))
}

func (h *HttpAPIHandler) predictionHistory(c echo.Context) error {
	ctx := c.Request().Context()

	ticker := c.QueryParam("ticker")
	if ticker == "" {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("ticker is required"))
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	histories, err := h.service.PredictionService.History(ctx, ticker, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse("failed to load prediction history"))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("", histories))
}

func (h *HttpAPIHandler) modelStatus(c echo.Context) error {
	ctx := c.Request().Context()

	status, err := h.service.PredictionService.ModelStatus(ctx, true)
	if err != nil {
		return c.JSON(http.StatusBadGateway, dto.NewBaseResponse(http.StatusBadGateway, err.Error(), nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse(status.Message, status))
}

func (h *HttpAPIHandler) availableModels(c echo.Context) error {
	ctx := c.Request().Context()

	models, err := h.service.PredictionService.AvailableModels(ctx)
	if err != nil {
		return c.JSON(http.StatusBadGateway, dto.NewBaseResponse(http.StatusBadGateway, err.Error(), nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("", models))
}

func (h *HttpAPIHandler) loadModel(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.LoadModelRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}

	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	msg, err := h.service.PredictionService.LoadModel(ctx, *req)
	if err != nil {
		return c.JSON(http.StatusBadGateway, dto.NewBaseResponse(http.StatusBadGateway, err.Error(), nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse(msg, nil))
}

func (h *HttpAPIHandler) summary(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.PredictionRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}

	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	summary, err := h.service.PredictionService.Summarize(ctx, *req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSummaryNotConfigured):
			return c.JSON(http.StatusNotImplemented, dto.NewBaseResponse(http.StatusNotImplemented, err.Error(), nil))
		case errors.Is(err, service.ErrNoPredictionCached):
			return c.JSON(http.StatusNotFound, dto.NewBaseResponse(http.StatusNotFound, err.Error(), nil))
		default:
			return c.JSON(http.StatusBadGateway, dto.NewBaseResponse(http.StatusBadGateway, err.Error(), nil))
		}
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("", map[string]string{"summary": summary}))
}

func (h *HttpAPIHandler) renderChart(c echo.Context) error {
	ctx := c.Request().Context()

	var body struct {
		dto.PredictionRequest
		Theme string `json:"theme"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}

	if err := h.validator.Struct(&body.PredictionRequest); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	result, err := h.service.ChartService.Render(ctx, body.PredictionRequest, body.Theme)
	if err != nil {
		if errors.Is(err, service.ErrNoPredictionCached) {
			return c.JSON(http.StatusNotFound, dto.NewBaseResponse(http.StatusNotFound, err.Error(), nil))
		}
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse("failed to render chart"))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("", result))
}

func (h *HttpAPIHandler) chartDocument(c echo.Context) error {
	html, err := h.service.ChartService.PlotHTML(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, dto.NewBaseResponse(http.StatusNotFound, "chart not found", nil))
	}

	return c.HTML(http.StatusOK, html)
}

func predictionRequestFromQuery(c echo.Context) (dto.PredictionRequest, error) {
	req := dto.PredictionRequest{Ticker: c.QueryParam("ticker")}
	if req.Ticker == "" {
		return req, errors.New("ticker is required")
	}

	req.Lookback, _ = strconv.Atoi(c.QueryParam("lookback"))
	req.PredLen, _ = strconv.Atoi(c.QueryParam("pred_len"))
	req.Temperature, _ = strconv.ParseFloat(c.QueryParam("temperature"), 64)
	req.TopP, _ = strconv.ParseFloat(c.QueryParam("top_p"), 64)
	req.SampleCount, _ = strconv.Atoi(c.QueryParam("sample_count"))
	return req, nil
}
