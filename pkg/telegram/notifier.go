package telegram

import (
	"context"
	"fmt"
	"time"

	"kronos-dashboard/config"
	"kronos-dashboard/pkg/logger"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

// Notifier pushes prediction outcomes to a configured Telegram chat.
// When no bot token is configured every method is a no-op.
type Notifier struct {
	cfg     *config.TelegramConfig
	log     *logger.Logger
	bot     *telebot.Bot
	limiter *rate.Limiter
}

func NewNotifier(cfg *config.TelegramConfig, log *logger.Logger) (*Notifier, error) {
	n := &Notifier{
		cfg:     cfg,
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(1), 5),
	}
	if cfg.BotToken == "" {
		return n, nil
	}

	bot, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.BotToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			log.Error("Telegram bot error", logger.ErrorField(err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	n.bot = bot
	return n, nil
}

func (n *Notifier) Enabled() bool {
	return n.bot != nil && n.cfg.ChatID != 0
}

// NotifyPrediction reports a completed prediction exchange. Business
// failures are reported with the service-provided message.
func (n *Notifier) NotifyPrediction(ctx context.Context, ticker string, success bool, message string) {
	if !n.Enabled() {
		return
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return
	}

	var text string
	if success {
		text = fmt.Sprintf("✅ Prediction completed for %s\n%s", ticker, message)
	} else {
		text = fmt.Sprintf("⚠️ Prediction failed for %s\n%s", ticker, message)
	}

	if _, err := n.bot.Send(&telebot.Chat{ID: n.cfg.ChatID}, text); err != nil {
		n.log.Warn("Failed to send telegram notification",
			logger.StringField("ticker", ticker),
			logger.ErrorField(err),
		)
	}
}
