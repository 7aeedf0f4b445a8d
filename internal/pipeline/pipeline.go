package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobsonar/internal/classify"
	"jobsonar/internal/config"
	"jobsonar/internal/dedup"
	"jobsonar/internal/logging"
	"jobsonar/internal/match"
	"jobsonar/internal/scraper"
	"jobsonar/pkg/models"
)

// jobURLPatterns are substrings that mark a link as a probable job
// posting. A short message carrying such a link is scraped before
// classification, and the link vouches for the posting even when the
// message itself has too few keywords.
var jobURLPatterns = []string{
	"job", "career", "position", "hiring", "apply", "vacancy",
	"gh_jid=", "lever.co", "greenhouse", "workable", "ashby",
	"breezy.hr", "recruitee", "smartrecruiters", "posting",
}

// Store is the persistence surface the pipeline needs beyond the dedup
// gate. Implemented by the sqlite store.
type Store interface {
	FilterSet(ctx context.Context) (models.FilterSet, error)
	AddMatchedJob(ctx context.Context, job *models.MatchedJob) error
}

// ProfileSource yields the owner's prepared matching profile. Returns
// (nil, nil) when no profile has been uploaded.
type ProfileSource interface {
	OwnerProfile(ctx context.Context) (*match.Profile, error)
}

// Alerter delivers match alerts. Implemented by the telegram bot.
type Alerter interface {
	SendJobAlert(ctx context.Context, posting *models.Posting, fields *models.JobFields, result models.MatchResult) error
}

// Options control a single pipeline run
type Options struct {
	// Test runs skip the dedup gate and never persist or alert
	Test bool

	// SkipScrape disables all page fetching for this run
	SkipScrape bool

	// Threshold overrides the stored alert threshold for this run
	Threshold *int
}

// SkipReason says why a run stopped before scoring
type SkipReason string

const (
	SkipNone      SkipReason = ""
	SkipDuplicate SkipReason = "duplicate"
	SkipNotJob    SkipReason = "not_a_job"
	SkipNoProfile SkipReason = "no_profile"
)

// Outcome is the result of one pipeline run
type Outcome struct {
	Skipped      SkipReason
	IsJob        bool
	KeywordCount int
	Fields       *models.JobFields
	Result       *models.MatchResult
	Threshold    int
	WouldAlert   bool
	Duration     time.Duration
}

// Pipeline runs a posting through dedup, classification, enrichment,
// matching and alerting
type Pipeline struct {
	cfg        *config.Config
	classifier *classify.Classifier
	matcher    *match.Matcher
	gate       *dedup.Gate
	store      Store
	scraper    scraper.Scraper
	profiles   ProfileSource
	alerter    Alerter
	logger     logging.Logger
}

// New creates a pipeline. alerter may be nil, in which case matches are
// persisted but not delivered.
func New(cfg *config.Config, classifier *classify.Classifier, matcher *match.Matcher, gate *dedup.Gate, store Store, scr scraper.Scraper, profiles ProfileSource, alerter Alerter) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		classifier: classifier,
		matcher:    matcher,
		gate:       gate,
		store:      store,
		scraper:    scr,
		profiles:   profiles,
		alerter:    alerter,
		logger:     logging.GetGlobalLogger(),
	}
}

// Process runs one posting through the pipeline and returns what
// happened. Errors from scraping never fail the run; errors from the
// store or the matcher do.
func (p *Pipeline) Process(ctx context.Context, posting *models.Posting, opts Options) (*Outcome, error) {
	start := time.Now()
	outcome := &Outcome{}
	defer func() { outcome.Duration = time.Since(start) }()

	if !opts.Test {
		duplicate, err := p.gate.IsDuplicate(ctx, posting)
		if err != nil {
			return nil, err
		}
		if duplicate {
			p.logger.Info("Skipping duplicate posting", map[string]interface{}{
				"channel_id": posting.ChannelID,
				"message_id": posting.MessageID,
			})
			outcome.Skipped = SkipDuplicate
			return outcome, nil
		}
	}

	// Short postings that are mostly a job link get scraped before
	// classification, so the page content is what gets classified
	textToClassify := posting.Text
	scrapedURL := ""
	detectedJobURL := ""

	if len(strings.TrimSpace(posting.Text)) < p.cfg.Pipeline.ShortPostLength {
		for _, link := range dedup.ExtractLinks(posting.Text) {
			if !looksLikeJobURL(link) {
				continue
			}
			detectedJobURL = link

			if opts.SkipScrape || p.scraper == nil {
				break
			}

			p.logger.Info("Short posting with job link, scraping first", map[string]interface{}{
				"url": link,
			})
			page, err := p.scraper.ScrapePage(ctx, link)
			if err != nil {
				p.logger.Warn("Failed to scrape job link", map[string]interface{}{
					"url":   link,
					"error": err.Error(),
				})
				break
			}
			if page.FullText != "" {
				textToClassify = page.FullText
				scrapedURL = link
			}
			break
		}
	}

	isJob, keywordCount := p.classifier.IsJobPosting(textToClassify)
	outcome.KeywordCount = keywordCount

	// A job-looking link vouches for the posting even when the text has
	// too few keywords
	if !isJob && detectedJobURL != "" {
		p.logger.Info("Job link overrides keyword check", map[string]interface{}{
			"url":      detectedJobURL,
			"keywords": keywordCount,
		})
		isJob = true
	}

	if !isJob {
		if !opts.Test {
			if err := p.gate.MarkProcessed(ctx, posting, false, nil); err != nil {
				return nil, err
			}
		}
		outcome.Skipped = SkipNotJob
		return outcome, nil
	}
	outcome.IsJob = true

	fields := p.classifier.Extract(textToClassify)
	if fields.ApplicationLink == "" {
		if scrapedURL != "" {
			fields.ApplicationLink = scrapedURL
		} else if detectedJobURL != "" {
			fields.ApplicationLink = detectedJobURL
		}
	}

	// Enrich from the application page unless it was already scraped
	if fields.ApplicationLink != "" && fields.ApplicationLink != scrapedURL &&
		!opts.SkipScrape && p.scraper != nil {
		page, err := p.scraper.ScrapePage(ctx, fields.ApplicationLink)
		if err != nil {
			p.logger.Warn("Failed to scrape application page", map[string]interface{}{
				"url":   fields.ApplicationLink,
				"error": err.Error(),
			})
		} else {
			fields.RawText = scraper.EnhanceText(textToClassify, page)
		}
	}
	outcome.Fields = &fields

	profile, err := p.profiles.OwnerProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		p.logger.Warn("No profile uploaded, skipping match", nil)
		if !opts.Test {
			zero := 0
			if err := p.gate.MarkProcessed(ctx, posting, true, &zero); err != nil {
				return nil, err
			}
		}
		outcome.Skipped = SkipNoProfile
		return outcome, nil
	}

	filters, err := p.store.FilterSet(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load filters: %w", err)
	}

	result, err := p.matcher.Match(ctx, &fields, filters, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to match posting: %w", err)
	}
	outcome.Result = &result

	if !opts.Test {
		score := result.Score
		if err := p.gate.MarkProcessed(ctx, posting, true, &score); err != nil {
			return nil, err
		}
	}

	threshold := filters.Threshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}
	outcome.Threshold = threshold
	outcome.WouldAlert = result.Score >= threshold

	p.logger.Info("Posting scored", map[string]interface{}{
		"channel_id": posting.ChannelID,
		"message_id": posting.MessageID,
		"score":      result.Score,
		"threshold":  threshold,
		"alert":      outcome.WouldAlert,
	})

	if outcome.WouldAlert && !opts.Test {
		if p.alerter != nil {
			if err := p.alerter.SendJobAlert(ctx, posting, &fields, result); err != nil {
				p.logger.Error("Failed to send alert", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}

		job := &models.MatchedJob{
			ChannelID: posting.ChannelID,
			MessageID: posting.MessageID,
			Fields:    fields,
			Result:    result,
		}
		if err := p.store.AddMatchedJob(ctx, job); err != nil {
			return outcome, fmt.Errorf("failed to persist matched job: %w", err)
		}
	}

	return outcome, nil
}

func looksLikeJobURL(link string) bool {
	lower := strings.ToLower(link)
	for _, pattern := range jobURLPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
