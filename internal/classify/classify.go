// Package classify decides whether a message is a job posting by counting
// lexicon hits. It is a pure function of the text: no network, no state,
// reproducible in tests.
package classify

import "strings"

// DefaultMinKeywords is the classification threshold. Two independent
// lexicon hits are required, which deliberately biases toward false
// negatives: a missed posting costs one user an alert, a false positive
// floods every user.
const DefaultMinKeywords = 2

// defaultLexicon lists job-indicating terms: hiring verbs, role nouns,
// requirements/application phrasing, employment and compensation terms.
var defaultLexicon = []string{
	// Strong indicators
	"hiring",
	"vacancy",
	"job opening",
	"position available",
	"we're looking for",
	"we are looking for",
	"join our team",
	"apply now",
	"send your cv",
	"send cv",
	"submit resume",
	"open position",
	"job opportunity",
	"career opportunity",
	"open role",
	// Role-related
	"developer",
	"engineer",
	"designer",
	"analyst",
	"manager",
	"coordinator",
	"specialist",
	"consultant",
	"architect",
	"researcher",
	"scientist",
	"trader",
	"quant",
	// Requirements section
	"requirements",
	"qualifications",
	"experience required",
	"must have",
	"skills required",
	"what we expect",
	"what you'll need",
	"responsibilities",
	"about the role",
	"role overview",
	"job description",
	"what you'll do",
	"your responsibilities",
	// Employment terms
	"full-time",
	"fulltime",
	"part-time",
	"parttime",
	"contract",
	"freelance",
	"remote",
	"hybrid",
	"on-site",
	"onsite",
	"permanent",
	// Compensation
	"salary",
	"compensation",
	"benefits",
	"competitive pay",
	"equity",
	"stock options",
	// Application
	"how to apply",
	"to apply",
	"apply for this",
	"application",
	"interview",
	"candidate",
	"submit your",
	"apply here",
	// Web3/Crypto specific
	"web3",
	"blockchain",
	"defi",
	"crypto",
}

// Classifier makes the binary job/not-job decision.
type Classifier struct {
	lexicon     []string
	minKeywords int
}

// New creates a classifier. extraTerms extends the built-in lexicon;
// minKeywords <= 0 falls back to DefaultMinKeywords.
func New(extraTerms []string, minKeywords int) *Classifier {
	if minKeywords <= 0 {
		minKeywords = DefaultMinKeywords
	}

	lexicon := make([]string, 0, len(defaultLexicon)+len(extraTerms))
	lexicon = append(lexicon, defaultLexicon...)
	for _, term := range extraTerms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			lexicon = append(lexicon, term)
		}
	}

	return &Classifier{lexicon: lexicon, minKeywords: minKeywords}
}

// Classify reports whether text looks like a job posting and how many
// lexicon terms matched.
func (c *Classifier) Classify(text string) (bool, int) {
	lower := strings.ToLower(text)

	hits := 0
	for _, term := range c.lexicon {
		if strings.Contains(lower, term) {
			hits++
		}
	}

	return hits >= c.minKeywords, hits
}
