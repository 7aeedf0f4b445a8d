package dedup

import (
	"net/url"
	"regexp"
	"strings"
)

// Domains operated by job platforms. A link to one of these is treated
// as an application link rather than an arbitrary reference.
var jobDomains = []string{
	"linkedin.com",
	"indeed.com",
	"glassdoor.com",
	"monster.com",
	"lever.co",
	"greenhouse.io",
	"workable.com",
	"breezy.hr",
	"recruitee.com",
	"smartrecruiters.com",
	"jobs.lever.co",
	"boards.greenhouse.io",
	"apply.workable.com",
}

var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"ref":          true,
	"source":       true,
	"fbclid":       true,
	"gclid":        true,
	"mc_cid":       true,
	"mc_eid":       true,
}

var linkPattern = regexp.MustCompile(`https?://[^\s<>\[\]()"']+`)

// ExtractLinks returns all URLs found in the text, in order
func ExtractLinks(text string) []string {
	return linkPattern.FindAllString(text, -1)
}

// ExtractJobLinks returns URLs pointing at known job platforms
func ExtractJobLinks(text string) []string {
	var jobLinks []string
	for _, link := range ExtractLinks(text) {
		if IsJobDomain(link) {
			jobLinks = append(jobLinks, link)
		}
	}
	return jobLinks
}

// IsJobDomain reports whether the URL belongs to a known job platform
func IsJobDomain(link string) bool {
	lower := strings.ToLower(link)
	for _, domain := range jobDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// NormalizeLink strips tracking parameters and the fragment from a URL
// so two shares of the same posting compare equal
func NormalizeLink(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return strings.TrimRight(link, "/")
	}

	query := parsed.Query()
	for key := range query {
		if trackingParams[strings.ToLower(key)] {
			query.Del(key)
		}
	}
	parsed.RawQuery = query.Encode()
	parsed.Fragment = ""

	return strings.TrimRight(parsed.String(), "/")
}

// SameJobLink reports whether two links point at the same job posting
func SameJobLink(a, b string) bool {
	return NormalizeLink(a) == NormalizeLink(b)
}
