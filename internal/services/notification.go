package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/medisight/medisight-go/internal/config"
	"github.com/medisight/medisight-go/internal/models"
)

// NotificationService pushes predictive alerts to the configured Telegram
// chat. A missing bot token disables sending without erroring, analytics
// notifications are never allowed to break the main operation.
type NotificationService struct {
	cfg    *config.Config
	bot    *bot.Bot
	logger *logrus.Logger
}

// NewNotificationService creates a new notification service. The Telegram bot
// is only initialized when a token is configured.
func NewNotificationService(cfg *config.Config, logger *logrus.Logger) *NotificationService {
	var telegramBot *bot.Bot
	if cfg.Telegram.BotToken != "" {
		telegramBot, _ = bot.New(cfg.Telegram.BotToken)
	}

	return &NotificationService{
		cfg:    cfg,
		bot:    telegramBot,
		logger: logger,
	}
}

// NotifyAlerts sends danger and warning alerts to the configured chat. Info
// alerts are dashboard-only noise and are not pushed.
func (ns *NotificationService) NotifyAlerts(ctx context.Context, alerts []models.PredictiveAlert) error {
	if ns.bot == nil || ns.cfg.Telegram.AlertChatID == "" {
		return nil
	}

	actionable := make([]models.PredictiveAlert, 0, len(alerts))
	for _, alert := range alerts {
		if alert.Level == "info" {
			continue
		}
		actionable = append(actionable, alert)
	}
	if len(actionable) == 0 {
		return nil
	}

	chatID, err := strconv.ParseInt(ns.cfg.Telegram.AlertChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid alert chat ID: %w", err)
	}

	message := formatAlertMessage(actionable)
	_, err = ns.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      message,
		ParseMode: tgmodels.ParseModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	ns.logger.WithField("alerts", len(actionable)).Info("Predictive alerts sent")
	return nil
}

func formatAlertMessage(alerts []models.PredictiveAlert) string {
	titler := cases.Title(language.English)

	var sb strings.Builder
	sb.WriteString("*Predictive Alerts*\n\n")
	for _, alert := range alerts {
		icon := "⚠️"
		if alert.Level == "danger" {
			icon = "🚨"
		}
		sb.WriteString(fmt.Sprintf("%s *%s*: %s\n", icon, titler.String(alert.Category), alert.Message))
		if alert.Estimate != nil && alert.Estimate.StockoutDate != nil {
			sb.WriteString(fmt.Sprintf("   Projected stockout: %s (confidence: %s)\n",
				alert.Estimate.StockoutDate.Format("2006-01-02"), alert.Estimate.Confidence))
		}
	}
	return sb.String()
}
