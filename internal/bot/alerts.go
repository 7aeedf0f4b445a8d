package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jobsonar/internal/logging"
	"jobsonar/pkg/models"
)

const (
	maxAlertReasons  = 3
	maxAlertWarnings = 2
)

// AlertSender formats and delivers match alerts to the owner
type AlertSender struct {
	api     *tgbotapi.BotAPI
	ownerID int64
	logger  logging.Logger
}

// NewAlertSender creates an alert sender bound to the owner's chat
func NewAlertSender(api *tgbotapi.BotAPI, ownerID int64) *AlertSender {
	return &AlertSender{
		api:     api,
		ownerID: ownerID,
		logger:  logging.GetGlobalLogger(),
	}
}

// SendJobAlert delivers a formatted match alert for a posting
func (a *AlertSender) SendJobAlert(ctx context.Context, posting *models.Posting, fields *models.JobFields, result models.MatchResult) error {
	msg := tgbotapi.NewMessage(a.ownerID, FormatAlert(posting, fields, result))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if _, err := a.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send alert: %w", err)
	}

	a.logger.Info("Alert sent", map[string]interface{}{
		"summary": fields.Summary(),
		"score":   result.Score,
	})
	return nil
}

// SendTestResult delivers a detailed score breakdown for a test run
func (a *AlertSender) SendTestResult(fields *models.JobFields, result models.MatchResult) error {
	msg := tgbotapi.NewMessage(a.ownerID, FormatTestResult(fields, result))
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := a.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send test result: %w", err)
	}
	return nil
}

// SendNotification delivers a plain text message to the owner
func (a *AlertSender) SendNotification(text string) error {
	msg := tgbotapi.NewMessage(a.ownerID, text)
	if _, err := a.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

// FormatAlert renders the alert message for a matched posting
func FormatAlert(posting *models.Posting, fields *models.JobFields, result models.MatchResult) string {
	var lines []string

	lines = append(lines,
		fmt.Sprintf("%s *Job Match (%d/100)*", scoreEmoji(result.Score), result.Score),
		"")

	title := fields.RoleTitle
	if title == "" {
		title = "Job Posting"
	}
	lines = append(lines, "📋 *"+title+"*")

	if fields.Company != "" {
		lines = append(lines, "🏢 "+fields.Company)
	}

	switch {
	case fields.IsRemote() && fields.Location != "":
		lines = append(lines, "📍 "+fields.Location+" (Remote)")
	case fields.IsRemote():
		lines = append(lines, "📍 Remote")
	case fields.Location != "":
		lines = append(lines, "📍 "+fields.Location)
	}

	if fields.Seniority != "" {
		lines = append(lines, "💼 "+fields.Seniority.Title()+" Level")
	}

	if fields.SalaryInfo != "" {
		lines = append(lines, "💰 "+fields.SalaryInfo)
	}

	lines = append(lines, "")

	// Reasons grouped by prefix so several skill lines collapse into one
	if len(result.MatchReasons) > 0 {
		lines = append(lines, "✅ *Why it matches:*")
		seen := make(map[string]bool)
		for _, reason := range result.MatchReasons {
			key := strings.ToLower(strings.SplitN(reason, ":", 2)[0])
			if seen[key] {
				continue
			}
			seen[key] = true
			lines = append(lines, "• "+reason)
			if len(seen) >= maxAlertReasons {
				break
			}
		}
		lines = append(lines, "")
	}

	if fields.ApplicationLink != "" {
		lines = append(lines, fmt.Sprintf("🔗 [Apply Here](%s)", fields.ApplicationLink))
	}
	lines = append(lines, fmt.Sprintf("📨 [View on Telegram](%s)", posting.MessageLink()))

	if len(result.FilterReasons) > 0 {
		lines = append(lines, "", "⚠️ *Notes:*")
		warnings := result.FilterReasons
		if len(warnings) > maxAlertWarnings {
			warnings = warnings[:maxAlertWarnings]
		}
		for _, reason := range warnings {
			lines = append(lines, "• "+reason)
		}
	}

	if posting.ChannelName != "" {
		lines = append(lines, "", "_From: "+posting.ChannelName+"_")
	}

	return strings.Join(lines, "\n")
}

// FormatTestResult renders the score breakdown shown after /test
func FormatTestResult(fields *models.JobFields, result models.MatchResult) string {
	lines := []string{
		"*Test Results:*",
		"",
		fmt.Sprintf("Score: %d/100", result.Score),
		fmt.Sprintf("Semantic Score: %.1f/60", result.SemanticScore),
		fmt.Sprintf("Keyword Score: %.1f/25", result.KeywordScore),
		"",
	}

	if len(result.MatchReasons) > 0 {
		lines = append(lines, "*Match Reasons:*")
		for _, reason := range result.MatchReasons {
			lines = append(lines, "• "+reason)
		}
		lines = append(lines, "")
	}

	if len(result.FilterReasons) > 0 {
		lines = append(lines, "*Penalties:*")
		for _, reason := range result.FilterReasons {
			lines = append(lines, "• "+reason)
		}
		lines = append(lines, "")
	}

	if fields.RoleTitle != "" {
		lines = append(lines, "*Detected Title:* "+fields.RoleTitle)
	}
	if fields.Company != "" {
		lines = append(lines, "*Detected Company:* "+fields.Company)
	}
	if fields.Seniority != "" {
		lines = append(lines, "*Detected Level:* "+string(fields.Seniority))
	}

	return strings.Join(lines, "\n")
}

func scoreEmoji(score int) string {
	switch {
	case score >= 90:
		return "🎯"
	case score >= 80:
		return "✨"
	case score >= 70:
		return "👍"
	case score >= 60:
		return "📋"
	default:
		return "📝"
	}
}
