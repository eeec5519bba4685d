package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kronos-dashboard/config"
	"kronos-dashboard/internal/dto"
	"kronos-dashboard/pkg/logger"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// AIRepository turns a completed prediction into a short narrative summary
// using the Google Gemini API.
type AIRepository interface {
	SummarizePrediction(ctx context.Context, req dto.PredictionRequest, resp *dto.PredictionResponse) (string, error)
}

type geminiAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger) (AIRepository, error) {
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		genAiClient:    genAiClient,
	}, nil
}

func (r *geminiAIRepository) SummarizePrediction(ctx context.Context, req dto.PredictionRequest, resp *dto.PredictionResponse) (string, error) {
	if resp == nil || !resp.Success {
		return "", fmt.Errorf("no successful prediction to summarize")
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for gemini request limit: %w", err)
	}

	prompt := r.buildPrompt(req, resp)
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}

	result, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to send request to gemini", logger.ErrorField(err))
		return "", fmt.Errorf("failed to send request to gemini: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("invalid response from Gemini API: no content found")
	}

	return text, nil
}

func (r *geminiAIRepository) buildPrompt(req dto.PredictionRequest, resp *dto.PredictionResponse) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are a market analyst. Summarize the following price forecast for %s in at most 5 sentences.\n", req.Ticker)
	fmt.Fprintf(&sb, "Forecast horizon: %d steps, lookback window: %d steps.\n", req.PredLen, req.Lookback)

	if n := len(resp.PredictionResults); n > 0 {
		first := resp.PredictionResults[0]
		last := resp.PredictionResults[n-1]
		fmt.Fprintf(&sb, "Predicted close moves from %.2f (%s) to %.2f (%s).\n",
			first.Close, first.Timestamp, last.Close, last.Timestamp)
	}

	if resp.HasComparison && len(resp.ActualData) > 0 {
		n := len(resp.ActualData)
		fmt.Fprintf(&sb, "Actual close over the same span: %.2f to %.2f.\n",
			resp.ActualData[0].Close, resp.ActualData[n-1].Close)
	}

	sb.WriteString("Mention direction, rough magnitude and, if actuals are present, how close the forecast tracked them. Plain text only.")
	return sb.String()
}
