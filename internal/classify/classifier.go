package classify

import (
	"strings"

	"jobsonar/internal/logging"
	"jobsonar/pkg/models"
	"jobsonar/pkg/utils"
)

// DefaultMinKeywords is the vocabulary hit count below which text is
// never classified as a job posting
const DefaultMinKeywords = 2

// Classifier decides whether free text is a job posting and extracts
// structured fields from it. All decisions are deterministic pattern
// matching; the same text always yields the same result.
type Classifier struct {
	minKeywords int
	logger      logging.Logger
}

// NewClassifier creates a classifier. minKeywords <= 0 falls back to the
// default.
func NewClassifier(minKeywords int) *Classifier {
	if minKeywords <= 0 {
		minKeywords = DefaultMinKeywords
	}
	return &Classifier{
		minKeywords: minKeywords,
		logger:      logging.GetGlobalLogger(),
	}
}

// IsJobPosting reports whether the text reads like a job advertisement
// and how many distinct vocabulary entries it contains
func (c *Classifier) IsJobPosting(text string) (bool, int) {
	textLower := strings.ToLower(text)

	var matched []string
	for _, keyword := range jobKeywords {
		if strings.Contains(textLower, keyword) {
			matched = append(matched, keyword)
		}
	}

	isJob := len(matched) >= c.minKeywords

	if len(matched) > 0 {
		preview := matched
		if len(preview) > 5 {
			preview = preview[:5]
		}
		c.logger.Debug("Job keywords found", map[string]interface{}{
			"keywords": preview,
			"count":    len(matched),
			"is_job":   isJob,
		})
	}

	return isJob, len(matched)
}

// Extract pulls structured fields out of a job posting. Every field is
// best-effort; an empty field means no pattern matched, never an error.
func (c *Classifier) Extract(text string) models.JobFields {
	return models.JobFields{
		RoleTitle:       c.extractRoleTitle(text),
		Company:         c.extractCompany(text),
		Location:        c.extractLocation(text),
		Remote:          c.extractRemote(text),
		Seniority:       c.extractSeniority(text),
		SalaryInfo:      c.extractSalary(text),
		Requirements:    c.extractRequirements(text),
		ApplicationLink: c.extractApplicationLink(text),
		RawText:         text,
	}
}

func (c *Classifier) extractRoleTitle(text string) string {
	for _, pattern := range roleTitlePatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			title := strings.TrimSpace(match[1])
			title = spacePattern.ReplaceAllString(title, " ")
			if len(title) >= 3 && len(title) <= 80 {
				return title
			}
		}
	}
	return ""
}

func (c *Classifier) extractCompany(text string) string {
	for _, pattern := range companyPatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			company := strings.TrimSpace(match[1])
			company = spacePattern.ReplaceAllString(company, " ")
			if len(company) >= 2 && len(company) <= 50 {
				return company
			}
		}
	}

	// Fall back to the domain of the first URL
	if match := companyDomainPattern.FindStringSubmatch(text); match != nil {
		domain := match[1]
		lower := strings.ToLower(domain)
		for _, skip := range skipDomains {
			if lower == skip {
				return ""
			}
		}
		if len(domain) >= 2 {
			return strings.ToUpper(domain[:1]) + strings.ToLower(domain[1:])
		}
	}

	return ""
}

func (c *Classifier) extractLocation(text string) string {
	for _, pattern := range locationPatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			location := strings.TrimSpace(match[1])
			location = strings.TrimRight(location, ",.")
			if len(location) < 2 || len(location) > 40 {
				continue
			}
			lower := strings.ToLower(location)
			jargon := false
			for _, word := range locationSkipWords {
				if strings.Contains(lower, word) {
					jargon = true
					break
				}
			}
			if !jargon {
				return location
			}
		}
	}
	return ""
}

// extractRemote is tri-state: true on a remote indicator, false on an
// explicit on-site phrase, nil when the text says neither
func (c *Classifier) extractRemote(text string) *bool {
	textLower := strings.ToLower(text)

	for _, pattern := range remotePatterns {
		if pattern.MatchString(textLower) {
			remote := true
			return &remote
		}
	}

	if onsitePattern.MatchString(textLower) {
		remote := false
		return &remote
	}

	return nil
}

func (c *Classifier) extractSeniority(text string) models.Seniority {
	textLower := strings.ToLower(text)

	for _, sp := range seniorityPatterns {
		if sp.pattern.MatchString(textLower) {
			return sp.level
		}
	}
	return ""
}

func (c *Classifier) extractSalary(text string) string {
	for _, pattern := range salaryPatterns {
		if match := pattern.FindString(text); match != "" {
			return strings.TrimSpace(match)
		}
	}
	return ""
}

func (c *Classifier) extractRequirements(text string) string {
	for _, pattern := range requirementsPatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			return utils.Truncate(strings.TrimSpace(match[1]), 500)
		}
	}
	return ""
}

func (c *Classifier) extractApplicationLink(text string) string {
	urls := urlPattern.FindAllString(text, -1)

	for _, url := range urls {
		lower := strings.ToLower(url)
		for _, domain := range applicationDomains {
			if strings.Contains(lower, domain) {
				return url
			}
		}
	}

	if len(urls) > 0 {
		return urls[0]
	}

	if email := emailPattern.FindString(text); email != "" {
		return "mailto:" + email
	}

	return ""
}
