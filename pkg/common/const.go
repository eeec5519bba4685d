package common

const (
	// Cache key formats. The prediction key carries the full parameter
	// tuple so that sampling parameters bust the cache too.
	KEY_PREDICTION   = "prediction:%s:%d:%d:%g:%g:%d"
	KEY_MODEL_STATUS = "kronos:model_status"
	KEY_MODEL_LIST   = "kronos:available_models"

	KEY_LOG_HOOK_SEND_ALERT = "send_alert"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)
