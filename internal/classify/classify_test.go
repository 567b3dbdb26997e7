package classify

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantJob bool
	}{
		{
			name:    "clear job posting",
			text:    "We're looking for a Senior Backend Engineer. Requirements: Go, Postgres. Apply now!",
			wantJob: true,
		},
		{
			name:    "hiring announcement with role",
			text:    "TechCorp is hiring a fullstack developer, remote, competitive salary.",
			wantJob: true,
		},
		{
			name:    "casual chat",
			text:    "anyone watched the match last night?",
			wantJob: false,
		},
		{
			name:    "news about a company",
			text:    "BigCo raised a $50M Series B led by Acme Ventures.",
			wantJob: false,
		},
		{
			name:    "single keyword is not enough",
			text:    "my manager is great",
			wantJob: false,
		},
		{
			name:    "case insensitive",
			text:    "HIRING: DevOps ENGINEER for our platform team",
			wantJob: true,
		},
		{
			name:    "empty text",
			text:    "",
			wantJob: false,
		},
	}

	c := New(nil, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotJob, _ := c.Classify(tt.text)
			if gotJob != tt.wantJob {
				t.Errorf("Classify(%q) = %v, want %v", tt.text, gotJob, tt.wantJob)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := New(nil, 0)
	text := "We are hiring a developer. Requirements: experience with Go."

	first, firstHits := c.Classify(text)
	for i := 0; i < 10; i++ {
		got, hits := c.Classify(text)
		if got != first || hits != firstHits {
			t.Fatalf("classification not deterministic: run %d gave (%v, %d), want (%v, %d)",
				i, got, hits, first, firstHits)
		}
	}
}

func TestClassifyExtraTerms(t *testing.T) {
	// A domain-specific lexicon extension should tip a borderline message.
	text := "seeking a solidity wizard for our protocol"

	base := New(nil, 0)
	if job, _ := base.Classify(text); job {
		t.Fatal("borderline text should not classify with the default lexicon")
	}

	extended := New([]string{"solidity", "protocol"}, 0)
	if job, _ := extended.Classify(text); !job {
		t.Error("extended lexicon should classify the message as a job")
	}
}

func TestClassifyCustomThreshold(t *testing.T) {
	c := New(nil, 4)
	text := "hiring a developer" // 2 hits
	if job, hits := c.Classify(text); job {
		t.Errorf("with threshold 4, %d hits should not classify", hits)
	}
}
