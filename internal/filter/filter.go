// Package filter turns a computed score into a terminal decision for one
// (job, user) pair.
package filter

import (
	"strings"

	"github.com/cryoneth/job-bot-telegram/internal/model"
)

// Evaluate decides alerted vs suppressed. Alerted requires the profile to
// be active, the score to reach the threshold, every required keyword to
// appear in the job text, and no excluded keyword to appear.
//
// The excluded-keyword check is a hard veto, deliberately independent of
// the scorer's numeric penalty: a posting containing an excluded term is
// suppressed even when its score clears the threshold.
func Evaluate(posting model.JobPosting, profile model.UserProfile, score int) model.Decision {
	if !profile.Active {
		return model.DecisionSuppressed
	}

	lower := strings.ToLower(posting.Text())

	for _, excluded := range profile.ExcludedKeywords {
		if excluded != "" && strings.Contains(lower, strings.ToLower(excluded)) {
			return model.DecisionSuppressed
		}
	}

	for _, required := range profile.RequiredKeywords {
		if required != "" && !strings.Contains(lower, strings.ToLower(required)) {
			return model.DecisionSuppressed
		}
	}

	if score < profile.Threshold {
		return model.DecisionSuppressed
	}

	return model.DecisionAlerted
}
