package model

// TriState represents a yes/no answer that may be unknown.
type TriState int

const (
	Unknown TriState = iota
	Yes
	No
)

func (t TriState) String() string {
	switch t {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unknown"
	}
}

// Seniority is the extracted seniority band of a posting.
type Seniority string

const (
	SeniorityUnknown Seniority = "unknown"
	SeniorityJunior  Seniority = "junior"
	SeniorityMid     Seniority = "mid"
	SenioritySenior  Seniority = "senior"
)

// RemotePref is a user's remote-work preference.
type RemotePref string

const (
	RemoteYes RemotePref = "yes"
	RemoteNo  RemotePref = "no"
	RemoteAny RemotePref = "any"
)

// JobPosting is the structured representation extracted from a classified
// message. All fields are best-effort; absent fields stay at their zero
// value (or Unknown). A posting is always derived from its source Message
// and is never persisted on its own.
type JobPosting struct {
	Title     string
	Company   string
	Location  string
	Remote    TriState
	Seniority Seniority
	Salary    string          // raw salary string as found in the text
	Skills    map[string]bool // lowercase skill tokens
	ApplyURL  string
	Source    Message
}

// Text returns the text the posting was extracted from (enriched when
// enrichment succeeded).
func (p JobPosting) Text() string {
	if p.Source.EnrichedText != "" {
		return p.Source.EnrichedText
	}
	return p.Source.Text
}

// UserProfile is the per-user configuration the pipeline reads. Profiles
// are owned by the users command surface; the pipeline only ever sees
// deep-copied snapshots.
type UserProfile struct {
	UserID           string
	RequiredKeywords []string
	ExcludedKeywords []string
	LocationPref     string
	RemotePreference RemotePref
	SeniorityPref    Seniority
	Threshold        int // 0..100, minimum score to alert
	Active           bool
	Sources          []string // monitored source IDs; empty = all
	UpdatedAt        int64
}

// WatchesSource reports whether the profile monitors the given source.
// An empty source list means every source.
func (p UserProfile) WatchesSource(sourceID string) bool {
	if len(p.Sources) == 0 {
		return true
	}
	for _, s := range p.Sources {
		if s == sourceID {
			return true
		}
	}
	return false
}

// Decision is the terminal outcome for one (item, user) pair.
type Decision string

const (
	DecisionAlerted    Decision = "alerted"
	DecisionSuppressed Decision = "suppressed"
	// DecisionSkipped marks a whole item as not a job posting. It is
	// recorded once under TombstoneUser, never for a real user.
	DecisionSkipped Decision = "skipped"
)

// TombstoneUser is the reserved ledger user ID for per-item records
// (non-job tombstones). Real user IDs never collide with it.
const TombstoneUser = "-"

// MatchResult is the scored, filtered outcome for one (item, user) pair.
type MatchResult struct {
	UserID   string
	Key      ItemKey
	Score    int
	Decision Decision
}

// Breakdown carries the per-stage score components for logging and audit.
type Breakdown struct {
	Semantic int // 0..60
	Keyword  int // 0..25
	Rules    int // -20..+15
	Total    int // 0..100
}
