package match

import (
	"regexp"
	"sort"
	"strings"
)

// Skill catalog. Each pattern has exactly one capture group; the captured
// token, lowercased, is the canonical skill name.
var skillPatterns = []*regexp.Regexp{
	// Tech skills
	regexp.MustCompile(`\b(python|javascript|typescript|java|c\+\+|c#|ruby|go|golang|rust|php|swift|kotlin|scala|r)\b`),
	regexp.MustCompile(`\b(react|vue|angular|svelte|node\.?js|express|django|flask|fastapi|spring|rails|laravel|nextjs|nuxt)\b`),
	regexp.MustCompile(`\b(sql|mysql|postgresql|postgres|mongodb|redis|elasticsearch|dynamodb|cassandra|sqlite)\b`),
	regexp.MustCompile(`\b(aws|azure|gcp|docker|kubernetes|k8s|terraform|ansible|jenkins|gitlab|github|ci/cd)\b`),
	regexp.MustCompile(`\b(machine learning|ml|deep learning|tensorflow|pytorch|pandas|numpy|scikit-learn|data science|nlp|ai)\b`),
	regexp.MustCompile(`\b(git|linux|agile|scrum|rest|graphql|microservices|api|testing|tdd|devops)\b`),
	regexp.MustCompile(`\b(html|css|sass|webpack|babel|npm|yarn|gradle|maven|spark|kafka|rabbitmq)\b`),

	// Community / marketing / growth
	regexp.MustCompile(`\b(community|community[\s\-]+management|community[\s\-]+lead|moderation|moderator|support|ops|operations)\b`),
	regexp.MustCompile(`\b(ambassador|ambassadors|creator[\s\-]+program|creator[\s\-]+programs|ugc|content|content[\s\-]+strategy|ghostwriting|narrative|positioning|distribution)\b`),
	regexp.MustCompile(`\b(growth|retention|onboarding|engagement|referrals|gamification|loyalty)\b`),
	regexp.MustCompile(`\b(partnerships|partner[\s\-]+campaigns|ecosystem|collaborations|business[\s\-]+development|bd|networking)\b`),
	regexp.MustCompile(`\b(ama|amas|workshops|events|event[\s\-]+management)\b`),

	// Platforms
	regexp.MustCompile(`\b(discord|telegram|farcaster|twitter|x|notion|slack|asana)\b`),

	// Web3
	regexp.MustCompile(`\b(crypto|web3|defi|dao|token|tge|airdrop|layer\s?1|l1|ecosystem)\b`),
	regexp.MustCompile(`\b(kol|kols|influencer|influencers)\b`),
}

// ExtractSkills returns the set of catalog skills present in the text,
// lowercased. The ambiguous "x" token is normalized to "twitter".
func ExtractSkills(text string) map[string]struct{} {
	textLower := strings.ToLower(text)
	skills := make(map[string]struct{})

	for _, pattern := range skillPatterns {
		for _, match := range pattern.FindAllStringSubmatch(textLower, -1) {
			if skill := strings.TrimSpace(match[1]); skill != "" {
				skills[skill] = struct{}{}
			}
		}
	}

	if _, ok := skills["x"]; ok {
		delete(skills, "x")
		skills["twitter"] = struct{}{}
	}

	return skills
}

// SortedSkills returns the skills in deterministic order
func SortedSkills(skills map[string]struct{}) []string {
	sorted := make([]string, 0, len(skills))
	for skill := range skills {
		sorted = append(sorted, skill)
	}
	sort.Strings(sorted)
	return sorted
}

// intersectSkills returns the skills present in both sets
func intersectSkills(a, b map[string]struct{}) map[string]struct{} {
	matched := make(map[string]struct{})
	for skill := range a {
		if _, ok := b[skill]; ok {
			matched[skill] = struct{}{}
		}
	}
	return matched
}
