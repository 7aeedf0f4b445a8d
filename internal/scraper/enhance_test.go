package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"jobsonar/pkg/models"
)

func TestEnhanceTextNilPage(t *testing.T) {
	assert.Equal(t, "original", EnhanceText("original", nil))
}

func TestEnhanceTextPrefersDescription(t *testing.T) {
	page := &models.ScrapedPage{
		Description: "Full role description from the page",
		FullText:    "everything on the page",
	}

	combined := EnhanceText("short posting", page)
	assert.Contains(t, combined, "short posting")
	assert.Contains(t, combined, "--- From Application Page ---")
	assert.Contains(t, combined, "Full role description from the page")
	assert.NotContains(t, combined, "everything on the page")
}

func TestEnhanceTextFullTextNeedsGain(t *testing.T) {
	original := "a posting that already says quite a lot about the role"

	// Full text barely longer than the original adds nothing
	page := &models.ScrapedPage{FullText: original + " extra"}
	assert.Equal(t, original, EnhanceText(original, page))

	// Substantially longer full text gets appended
	page = &models.ScrapedPage{FullText: strings.Repeat("requirements and stack details ", 20)}
	combined := EnhanceText(original, page)
	assert.Contains(t, combined, "--- From Application Page ---")
}

func TestEnhanceTextCapsAppendedFullText(t *testing.T) {
	page := &models.ScrapedPage{FullText: strings.Repeat("x", 9000)}
	combined := EnhanceText("short", page)
	assert.Less(t, len(combined), 3200)
}
