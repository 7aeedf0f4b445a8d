package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Senior Go Developer at Acme. Salary 120000 USD. Apply: https://jobs.acme.com/123?utm_source=tg",
		"short",
		"",
		"https://jobs.acme.com/123?ref=channel",
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		assert.Equal(t, once, twice, "normalization should be idempotent for %q", input)
	}
}

func TestNormalizeStripsVolatileContent(t *testing.T) {
	a := "Senior Go Developer, salary 120000, contact hr@acme.com https://acme.com/jobs/1?utm_source=a"
	b := "SENIOR   GO DEVELOPER, salary 135000,\ncontact jobs@acme.com https://acme.com/jobs/2"

	assert.Equal(t, Normalize(a), Normalize(b))
	assert.Equal(t, Hash(a), Hash(b))
}

func TestNormalizeKeepsAlphanumericTokens(t *testing.T) {
	normalized := Normalize("We need a k8s engineer, 5 years with ec2 instances")
	assert.Contains(t, normalized, "k8s")
	assert.Contains(t, normalized, "ec2")
	assert.NotContains(t, normalized, "5")
}

func TestNormalizeURLOnlyMessage(t *testing.T) {
	a := "Check https://jobs.acme.com/backend-role?utm_source=telegram"
	b := "Look! https://jobs.acme.com/backend-role/"

	assert.Equal(t, "https://jobs.acme.com/backend-role", Normalize(a))
	assert.Equal(t, Normalize(a), Normalize(b))
}

func TestNormalizeLongTextWithURLIgnoresURL(t *testing.T) {
	base := "We are hiring a backend engineer to build our data platform in a small team"
	withURL := base + " https://acme.com/jobs/1"

	assert.Equal(t, Normalize(base), Normalize(withURL))
}

func TestHashIsHexSHA256(t *testing.T) {
	hash := Hash("any text")
	assert.Len(t, hash, 64)
	assert.Regexp(t, "^[0-9a-f]+$", hash)
}

func TestExtractJobLinks(t *testing.T) {
	text := "Apply at https://jobs.lever.co/acme/123 or read https://blog.acme.com/hiring"

	links := ExtractLinks(text)
	assert.Len(t, links, 2)

	jobLinks := ExtractJobLinks(text)
	assert.Equal(t, []string{"https://jobs.lever.co/acme/123"}, jobLinks)
}

func TestNormalizeLink(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "strips tracking params",
			url:  "https://acme.com/jobs/1?utm_source=tg&utm_medium=chat",
			want: "https://acme.com/jobs/1",
		},
		{
			name: "keeps meaningful params",
			url:  "https://acme.com/jobs?id=42&ref=tg",
			want: "https://acme.com/jobs?id=42",
		},
		{
			name: "trailing slash",
			url:  "https://acme.com/jobs/1/",
			want: "https://acme.com/jobs/1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLink(tt.url))
		})
	}
}

func TestSameJobLink(t *testing.T) {
	assert.True(t, SameJobLink(
		"https://jobs.lever.co/acme/123?utm_source=a",
		"https://jobs.lever.co/acme/123/",
	))
	assert.False(t, SameJobLink(
		"https://jobs.lever.co/acme/123",
		"https://jobs.lever.co/acme/124",
	))
}
