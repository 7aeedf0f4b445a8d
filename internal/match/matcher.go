package match

import (
	"context"
	"fmt"
	"strings"

	"jobsonar/internal/embeddings"
	"jobsonar/internal/logging"
	"jobsonar/pkg/models"
)

// Scoring weights. The total is semantic (0-60) + skill-keyword bonus +
// rule adjustments, clamped to 0-100.
const (
	maxSemanticScore = 60
	keywordBonus     = 7
	maxMatchedSkills = 8

	remoteMatchBonus        = 10
	seniorityMatchBonus     = 5
	excludedKeywordPenalty  = -10
	locationMismatchPenalty = -10

	// Posts under this length under-score semantically; their semantic
	// component gets a flat boost
	shortPostLength = 400
	shortPostBoost  = 1.15
)

// Profile is a candidate profile prepared for matching. Embedding and
// Skills are always derived from the same Text.
type Profile struct {
	Text      string
	Embedding []float64
	Skills    map[string]struct{}
}

// BuildProfile computes the embedding and skill set for a profile text
// in one step, so the three fields can never drift apart
func BuildProfile(ctx context.Context, provider embeddings.Provider, text string) (*Profile, error) {
	embedding, err := provider.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed profile: %w", err)
	}

	return &Profile{
		Text:      text,
		Embedding: embedding,
		Skills:    ExtractSkills(text),
	}, nil
}

// Matcher scores job postings against a profile
type Matcher struct {
	provider embeddings.Provider
	logger   logging.Logger
}

// NewMatcher creates a matcher backed by the given embedding provider
func NewMatcher(provider embeddings.Provider) *Matcher {
	return &Matcher{
		provider: provider,
		logger:   logging.GetGlobalLogger(),
	}
}

// Match scores a job posting against the profile. A nil profile scores
// zero with an explanatory reason and no error; an embedding failure is
// returned as an error so the caller can retry the posting later.
func (m *Matcher) Match(ctx context.Context, fields *models.JobFields, filters models.FilterSet, profile *Profile) (models.MatchResult, error) {
	if profile == nil {
		return models.MatchResult{
			Score:        0,
			MatchReasons: []string{"No profile set"},
		}, nil
	}

	jobEmbedding, err := m.provider.Embed(ctx, fields.RawText)
	if err != nil {
		return models.MatchResult{}, fmt.Errorf("failed to embed job posting: %w", err)
	}

	semanticScore := embeddings.CosineSimilarity(profile.Embedding, jobEmbedding) * maxSemanticScore
	if len(fields.RawText) < shortPostLength {
		semanticScore *= shortPostBoost
	}

	jobSkills := ExtractSkills(fields.RawText)
	matchedSkills := intersectSkills(profile.Skills, jobSkills)

	numMatches := len(matchedSkills)
	if numMatches > maxMatchedSkills {
		numMatches = maxMatchedSkills
	}
	keywordScore := float64(numMatches * keywordBonus)

	adjustment, matchReasons, filterReasons := m.applyRules(fields, filters)

	totalScore := int(semanticScore + keywordScore + float64(adjustment))
	if totalScore < 0 {
		totalScore = 0
	}
	if totalScore > 100 {
		totalScore = 100
	}

	if len(matchedSkills) > 0 {
		top := SortedSkills(matchedSkills)
		if len(top) > 5 {
			top = top[:5]
		}
		matchReasons = append([]string{"Skills match: " + strings.Join(top, ", ")}, matchReasons...)
	}
	if len(matchReasons) > 5 {
		matchReasons = matchReasons[:5]
	}

	m.logger.Debug("Match scored", map[string]interface{}{
		"score":      totalScore,
		"semantic":   semanticScore,
		"keyword":    keywordScore,
		"adjustment": adjustment,
	})

	return models.MatchResult{
		Score:         totalScore,
		MatchReasons:  matchReasons,
		FilterReasons: filterReasons,
		SemanticScore: semanticScore,
		KeywordScore:  keywordScore,
	}, nil
}

// applyRules folds the user's filters into a score adjustment plus
// human-readable reasons
func (m *Matcher) applyRules(fields *models.JobFields, filters models.FilterSet) (int, []string, []string) {
	adjustment := 0
	var matchReasons []string
	var filterReasons []string

	// Remote preference
	if filters.Remote == models.RemoteYes && fields.IsRemote() {
		adjustment += remoteMatchBonus
		matchReasons = append(matchReasons, "Remote-friendly position")
	} else if filters.Remote == models.RemoteNo && fields.Remote != nil && !*fields.Remote {
		adjustment += remoteMatchBonus
		matchReasons = append(matchReasons, "On-site position (as preferred)")
	}

	// Seniority
	if len(filters.Seniorities) > 0 && fields.Seniority != "" {
		wanted := false
		for _, level := range filters.Seniorities {
			if level == fields.Seniority {
				wanted = true
				break
			}
		}
		if wanted {
			adjustment += seniorityMatchBonus
			matchReasons = append(matchReasons, fmt.Sprintf("%s level (matches preference)", fields.Seniority.Title()))
		} else {
			filterReasons = append(filterReasons, fmt.Sprintf("Seniority: %s (wanted: %s)",
				fields.Seniority, joinSeniorities(filters.Seniorities)))
		}
	}

	jobTextLower := strings.ToLower(fields.RawText)

	// Excluded keywords penalize once, naming the first hit
	for _, excluded := range filters.Excluded {
		if strings.Contains(jobTextLower, strings.ToLower(excluded)) {
			adjustment += excludedKeywordPenalty
			filterReasons = append(filterReasons, "Contains excluded keyword: "+excluded)
			break
		}
	}

	// Required keywords: a reason per hit, one capped bonus
	requiredHits := 0
	for _, keyword := range filters.Keywords {
		if strings.Contains(jobTextLower, strings.ToLower(keyword)) {
			requiredHits++
			matchReasons = append(matchReasons, "Contains required keyword: "+keyword)
		}
	}
	bonus := requiredHits * 4
	if bonus > 12 {
		bonus = 12
	}
	adjustment += bonus

	// Location mismatch only penalizes on-site roles
	if len(filters.Locations) > 0 && fields.Location != "" {
		locationLower := strings.ToLower(fields.Location)
		located := false
		for _, loc := range filters.Locations {
			if strings.Contains(locationLower, strings.ToLower(loc)) {
				located = true
				break
			}
		}
		if located {
			matchReasons = append(matchReasons, "Location: "+fields.Location)
		} else if !fields.IsRemote() {
			adjustment += locationMismatchPenalty
			filterReasons = append(filterReasons, fmt.Sprintf("Location: %s (wanted: %s)",
				fields.Location, strings.Join(filters.Locations, ", ")))
		}
	}

	return adjustment, matchReasons, filterReasons
}

func joinSeniorities(levels []models.Seniority) string {
	parts := make([]string, len(levels))
	for i, level := range levels {
		parts[i] = string(level)
	}
	return strings.Join(parts, ", ")
}
