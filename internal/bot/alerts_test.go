package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"jobsonar/pkg/models"
)

func samplePosting() *models.Posting {
	return &models.Posting{
		ChannelID:   "-1001234567",
		ChannelName: "Go Jobs",
		MessageID:   88,
	}
}

func sampleFields() *models.JobFields {
	remote := true
	return &models.JobFields{
		RoleTitle:       "Backend Engineer",
		Company:         "Acme",
		Location:        "Berlin",
		Remote:          &remote,
		Seniority:       models.SenioritySenior,
		SalaryInfo:      "$120k - $150k",
		ApplicationLink: "https://jobs.lever.co/acme/1",
	}
}

func TestFormatAlert(t *testing.T) {
	result := models.MatchResult{
		Score:         85,
		MatchReasons:  []string{"Skills match: go, postgresql", "Remote position", "Senior level match"},
		FilterReasons: []string{"Contains excluded keyword: crypto"},
	}

	alert := FormatAlert(samplePosting(), sampleFields(), result)

	assert.Contains(t, alert, "✨ *Job Match (85/100)*")
	assert.Contains(t, alert, "📋 *Backend Engineer*")
	assert.Contains(t, alert, "🏢 Acme")
	assert.Contains(t, alert, "📍 Berlin (Remote)")
	assert.Contains(t, alert, "💼 Senior Level")
	assert.Contains(t, alert, "💰 $120k - $150k")
	assert.Contains(t, alert, "• Skills match: go, postgresql")
	assert.Contains(t, alert, "[Apply Here](https://jobs.lever.co/acme/1)")
	assert.Contains(t, alert, "[View on Telegram](https://t.me/c/1234567/88)")
	assert.Contains(t, alert, "⚠️ *Notes:*")
	assert.Contains(t, alert, "_From: Go Jobs_")
}

func TestFormatAlertGroupsReasonsByPrefix(t *testing.T) {
	result := models.MatchResult{
		Score: 72,
		MatchReasons: []string{
			"Skills match: go",
			"Skills match: postgresql",
			"Remote position",
			"Senior level match",
			"Leadership keywords found",
		},
	}

	alert := FormatAlert(samplePosting(), sampleFields(), result)

	// Same prefix appears once, at most three groups in total
	assert.Equal(t, 1, strings.Count(alert, "Skills match"))
	assert.Contains(t, alert, "• Remote position")
	assert.Contains(t, alert, "• Senior level match")
	assert.NotContains(t, alert, "Leadership keywords found")
}

func TestFormatAlertMinimalFields(t *testing.T) {
	alert := FormatAlert(&models.Posting{ChannelID: "-100999", MessageID: 1},
		&models.JobFields{}, models.MatchResult{Score: 55})

	assert.Contains(t, alert, "📝 *Job Match (55/100)*")
	assert.Contains(t, alert, "📋 *Job Posting*")
	assert.NotContains(t, alert, "🏢")
	assert.NotContains(t, alert, "Apply Here")
	assert.NotContains(t, alert, "_From:")
}

func TestFormatAlertCapsWarnings(t *testing.T) {
	result := models.MatchResult{
		Score:         70,
		FilterReasons: []string{"note one", "note two", "note three"},
	}

	alert := FormatAlert(samplePosting(), sampleFields(), result)
	assert.Contains(t, alert, "note one")
	assert.Contains(t, alert, "note two")
	assert.NotContains(t, alert, "note three")
}

func TestFormatTestResult(t *testing.T) {
	result := models.MatchResult{
		Score:         64,
		SemanticScore: 41.2,
		KeywordScore:  14,
		MatchReasons:  []string{"Skills match: go"},
		FilterReasons: []string{"Location mismatch"},
	}

	report := FormatTestResult(sampleFields(), result)

	assert.Contains(t, report, "Score: 64/100")
	assert.Contains(t, report, "Semantic Score: 41.2/60")
	assert.Contains(t, report, "Keyword Score: 14.0/25")
	assert.Contains(t, report, "*Match Reasons:*")
	assert.Contains(t, report, "*Penalties:*")
	assert.Contains(t, report, "*Detected Title:* Backend Engineer")
	assert.Contains(t, report, "*Detected Company:* Acme")
	assert.Contains(t, report, "*Detected Level:* senior")
}

func TestScoreEmojiBands(t *testing.T) {
	assert.Equal(t, "🎯", scoreEmoji(95))
	assert.Equal(t, "✨", scoreEmoji(80))
	assert.Equal(t, "👍", scoreEmoji(74))
	assert.Equal(t, "📋", scoreEmoji(60))
	assert.Equal(t, "📝", scoreEmoji(10))
}
