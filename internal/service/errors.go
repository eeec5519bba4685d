package service

import "errors"

var (
	ErrSummaryNotConfigured = errors.New("ai summary is not configured")
	ErrNoPredictionCached   = errors.New("no prediction cached for the given parameters")
	ErrNoChartAvailable     = errors.New("no chart available")
)
