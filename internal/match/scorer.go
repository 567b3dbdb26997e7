// Package match scores a job posting against a user profile. The score is
// a fixed composition of three components, each clamped before summation:
// semantic similarity (0..60), skill keyword overlap (0..25), and rule
// adjustments (-20..+15). The ordering and per-stage clamps decide
// tie-breaks and saturation, so they are not negotiable.
package match

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cryoneth/job-bot-telegram/internal/extract"
	"github.com/cryoneth/job-bot-telegram/internal/model"
)

const (
	maxSemantic = 60
	maxKeyword  = 25

	skillBonus = 5 // per overlapping skill

	remoteMatchBonus    = 10
	seniorityMatchBonus = 5
	excludedPenalty     = -10
	locationPenalty     = -10

	minRules = -20
	maxRules = 15
)

// Scorer combines the external similarity function with keyword and rule
// scoring.
type Scorer struct {
	similarity model.Similarity
	timeout    time.Duration // bound on one similarity call
}

// NewScorer creates a scorer. timeout bounds each similarity call; the
// similarity function may be remote and slow.
func NewScorer(similarity model.Similarity, timeout time.Duration) *Scorer {
	return &Scorer{similarity: similarity, timeout: timeout}
}

// Score computes the 0..100 match score for (posting, profile) given the
// user's CV document. A similarity failure is returned as an error so the
// caller defers the pair; scoring it as zero would be indistinguishable
// from a genuine poor match.
func (s *Scorer) Score(ctx context.Context, posting model.JobPosting, profile model.UserProfile, doc string) (model.Breakdown, error) {
	jobText := posting.Text()

	simCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	similarity, err := s.similarity.Similarity(simCtx, doc, jobText)
	if err != nil {
		return model.Breakdown{}, fmt.Errorf("similarity for user %s: %w", profile.UserID, err)
	}

	semantic := clamp(int(math.Round(maxSemantic*similarity)), 0, maxSemantic)
	keyword := keywordScore(posting.Skills, extract.Skills(doc))
	rules := clamp(ruleAdjustments(posting, profile, jobText), minRules, maxRules)

	total := clamp(semantic+keyword+rules, 0, 100)

	return model.Breakdown{
		Semantic: semantic,
		Keyword:  keyword,
		Rules:    rules,
		Total:    total,
	}, nil
}

// keywordScore awards skillBonus per skill the posting shares with the
// CV-implied skill set, capped at maxKeyword.
func keywordScore(jobSkills, impliedSkills map[string]bool) int {
	overlap := 0
	for skill := range jobSkills {
		if impliedSkills[skill] {
			overlap++
		}
	}

	score := overlap * skillBonus
	if score > maxKeyword {
		score = maxKeyword
	}
	return score
}

func ruleAdjustments(posting model.JobPosting, profile model.UserProfile, jobText string) int {
	adj := 0
	lower := strings.ToLower(jobText)

	if posting.Remote == model.Yes && profile.RemotePreference == model.RemoteYes {
		adj += remoteMatchBonus
	}

	if posting.Seniority != model.SeniorityUnknown && posting.Seniority == profile.SeniorityPref {
		adj += seniorityMatchBonus
	}

	// Penalize once no matter how many excluded terms appear; the hard
	// veto in the filter stage is separate from this numeric nudge.
	for _, excluded := range profile.ExcludedKeywords {
		if excluded != "" && strings.Contains(lower, strings.ToLower(excluded)) {
			adj += excludedPenalty
			break
		}
	}

	if profile.LocationPref != "" && posting.Location != "" && posting.Remote != model.Yes {
		if !strings.Contains(strings.ToLower(posting.Location), strings.ToLower(profile.LocationPref)) {
			adj += locationPenalty
		}
	}

	return adj
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
