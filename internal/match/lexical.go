package match

import (
	"context"
	"math"
	"regexp"
	"strings"
)

var tokenRegex = regexp.MustCompile(`[a-z0-9+#]+`)

// stopwords are dropped before building term vectors; they dominate raw
// frequency counts without carrying any signal.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true,
	"have": true, "in": true, "is": true, "it": true, "of": true,
	"on": true, "or": true, "our": true, "that": true, "the": true,
	"this": true, "to": true, "we": true, "will": true, "with": true,
	"you": true, "your": true,
}

// LexicalSimilarity is a deterministic, fully local similarity function:
// cosine over term-frequency vectors. It keeps the pipeline testable and
// usable without a remote embedding model.
type LexicalSimilarity struct{}

func NewLexicalSimilarity() *LexicalSimilarity {
	return &LexicalSimilarity{}
}

// Similarity returns the TF cosine of the two documents in [0,1].
func (l *LexicalSimilarity) Similarity(_ context.Context, a, b string) (float64, error) {
	va := termVector(a)
	vb := termVector(b)

	if len(va) == 0 || len(vb) == 0 {
		return 0, nil
	}

	var dot, normA, normB float64
	for term, fa := range va {
		normA += fa * fa
		if fb, ok := vb[term]; ok {
			dot += fa * fb
		}
	}
	for _, fb := range vb {
		normB += fb * fb
	}

	if dot == 0 {
		return 0, nil
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Guard against floating-point drift past 1.
	return math.Min(cos, 1), nil
}

func termVector(text string) map[string]float64 {
	vec := make(map[string]float64)
	for _, token := range tokenRegex.FindAllString(strings.ToLower(text), -1) {
		if len(token) < 2 || stopwords[token] {
			continue
		}
		vec[token]++
	}
	return vec
}
