package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"kronos-dashboard/config"
	"kronos-dashboard/pkg/common"

	"go.uber.org/zap/zapcore"
)

// AlertCore forwards flagged error entries to a Telegram chat in addition
// to the wrapped core. Entries opt in with the send_alert field.
type AlertCore struct {
	cfg      *config.TelegramConfig
	core     zapcore.Core
	minLevel zapcore.Level
}

func NewAlertCore(cfg *config.TelegramConfig, core zapcore.Core, minLevel zapcore.Level) *AlertCore {
	return &AlertCore{cfg: cfg, core: core, minLevel: minLevel}
}

func (a *AlertCore) Enabled(lvl zapcore.Level) bool {
	return a.core.Enabled(lvl)
}

func (a *AlertCore) With(fields []zapcore.Field) zapcore.Core {
	return &AlertCore{
		cfg:      a.cfg,
		core:     a.core.With(fields),
		minLevel: a.minLevel,
	}
}

func (a *AlertCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if a.Enabled(entry.Level) {
		return a.core.Check(entry, checkedEntry).AddCore(entry, a)
	}
	return checkedEntry
}

func (a *AlertCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	shouldSend := false
	for _, f := range fields {
		if f.Key == common.KEY_LOG_HOOK_SEND_ALERT && f.Type == zapcore.BoolType && f.Integer == 1 {
			shouldSend = true
			break
		}
	}
	if entry.Level >= a.minLevel && shouldSend && a.cfg.BotToken != "" {
		go a.sendTelegramAlert(entry, fields) // async so logging never blocks
	}
	return a.core.Write(entry, fields)
}

func (a *AlertCore) Sync() error {
	return a.core.Sync()
}

func (a *AlertCore) sendTelegramAlert(entry zapcore.Entry, fields []zapcore.Field) {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}

	fieldStr := ""
	for k, v := range enc.Fields {
		fieldStr += fmt.Sprintf("• %s: %v\n", k, v)
	}

	timestamp := entry.Time.Format("2006-01-02 15:04:05")

	message := fmt.Sprintf(
		"🚨 *%s Alert*\n\n*Message:* %s\n\n*Fields:*\n%s\n*Time:* %s",
		entry.Level.CapitalString(),
		entry.Message,
		fieldStr,
		timestamp,
	)

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", a.cfg.BotToken)

	payload := map[string]interface{}{
		"chat_id":    a.cfg.ChatID,
		"text":       message,
		"parse_mode": "Markdown",
	}

	jsonBody, _ := json.Marshal(payload)
	http.Post(url, "application/json", bytes.NewBuffer(jsonBody))
}
