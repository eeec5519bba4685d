package chart

import (
	"fmt"

	"kronos-dashboard/internal/dto"
)

const (
	// ComparisonRowLimit caps the tabular fallback at the first N rows.
	ComparisonRowLimit = 20

	// ErrorPctNA marks a percentage error that cannot be computed, e.g.
	// when the actual close is zero.
	ErrorPctNA = "N/A"
)

// ComparisonRow is one line of the predicted-versus-actual table. The table
// is always derivable from the raw series, independent of whether the
// graphical chart rendered.
type ComparisonRow struct {
	Timestamp   string   `json:"timestamp"`
	Open        float64  `json:"open"`
	High        float64  `json:"high"`
	Low         float64  `json:"low"`
	Close       float64  `json:"close"`
	ActualClose *float64 `json:"actual_close,omitempty"`
	ErrorPct    string   `json:"error_pct,omitempty"`
}

// FormatPercentError renders the signed percentage error of a predicted
// close against the actual close, rounded to two decimals. A zero actual
// close yields the N/A placeholder instead of a non-finite number.
func FormatPercentError(predictedClose, actualClose float64) string {
	if actualClose == 0 {
		return ErrorPctNA
	}
	pct := (predictedClose - actualClose) / actualClose * 100
	return fmt.Sprintf("%+.2f%%", pct)
}

// BuildComparisonTable derives the tabular comparison from the response
// series. When limit is non-positive the default row cap applies.
func BuildComparisonTable(resp *dto.PredictionResponse, limit int) []ComparisonRow {
	if resp == nil {
		return nil
	}
	if limit <= 0 {
		limit = ComparisonRowLimit
	}

	rows := make([]ComparisonRow, 0, limit)
	for i, p := range resp.PredictionResults {
		if i >= limit {
			break
		}

		row := ComparisonRow{
			Timestamp: p.Timestamp,
			Open:      p.Open,
			High:      p.High,
			Low:       p.Low,
			Close:     p.Close,
		}

		if resp.HasComparison && i < len(resp.ActualData) {
			actual := resp.ActualData[i]
			row.ActualClose = &actual.Close
			row.ErrorPct = FormatPercentError(p.Close, actual.Close)
		}

		rows = append(rows, row)
	}

	return rows
}
