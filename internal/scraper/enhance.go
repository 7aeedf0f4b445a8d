package scraper

import (
	"jobsonar/pkg/models"
	"jobsonar/pkg/utils"
)

const (
	pageSeparator = "\n\n--- From Application Page ---\n"

	// Full text is only appended when it adds substantially more than
	// the posting already has
	maxAppendedFullText = 3000
	fullTextGainFactor  = 1.5
)

// EnhanceText combines a posting's text with content scraped from its
// application page. Returns the original text unchanged when the page
// adds nothing useful.
func EnhanceText(original string, page *models.ScrapedPage) string {
	if page == nil {
		return original
	}

	if page.Description != "" {
		return original + pageSeparator + page.Description
	}

	if page.FullText != "" && float64(len(page.FullText)) > float64(len(original))*fullTextGainFactor {
		appended := page.FullText
		if len(appended) > maxAppendedFullText {
			appended = utils.Truncate(appended, maxAppendedFullText)
		}
		return original + pageSeparator + appended
	}

	return original
}
