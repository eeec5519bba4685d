package dto

type AddWatchlistRequest struct {
	Symbol   string `json:"symbol" validate:"required"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
}

type SearchWatchlistParam struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type WatchlistItemResponse struct {
	ID       uint   `json:"id"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
}
