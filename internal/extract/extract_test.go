package extract

import (
	"testing"

	"github.com/cryoneth/job-bot-telegram/internal/model"
)

func msg(text string) model.Message {
	return model.Message{
		Key:          model.ItemKey{SourceID: "chan", ItemID: "1"},
		Text:         text,
		EnrichedText: text,
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "looking for pattern",
			text: "We are looking for a Senior Python Developer to join us.",
			want: "Senior Python Developer",
		},
		{
			name: "position pattern",
			text: "Open Backend Engineer position at our Berlin office.",
			want: "Open Backend Engineer",
		},
		{
			name: "hiring colon pattern",
			text: "Hiring: Staff Platform Engineer\nApply below.",
			want: "Staff Platform Engineer",
		},
		{
			name: "first line heuristic",
			text: "Senior Remote Backend Engineer\nPython, Go. Apply now.",
			want: "Senior Remote Backend Engineer",
		},
		{
			name: "no title",
			text: "nothing that looks like a role here",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(msg(tt.text))
			if got.Title != tt.want {
				t.Errorf("Title = %q, want %q", got.Title, tt.want)
			}
		})
	}
}

func TestExtractCompany(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"at pattern", "Senior engineer at TechCorp, remote.", "TechCorp"},
		{"is hiring pattern", "Acme Labs is hiring engineers.", "Acme Labs"},
		{"company label", "Company: Initech\nRole: SRE", "Initech"},
		{"join pattern", "Join Hooli as a data analyst.", "Hooli"},
		{"domain fallback", "Apply at https://umbrella.io/jobs/42", "Umbrella"},
		{"aggregator domain skipped", "See https://linkedin.com/jobs/42", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(msg(tt.text))
			if got.Company != tt.want {
				t.Errorf("Company = %q, want %q", got.Company, tt.want)
			}
		})
	}
}

func TestExtractLocationAndRemote(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantLoc    string
		wantRemote model.TriState
	}{
		{"location label", "Location: Berlin\nFull-time role.", "Berlin", model.Unknown},
		{"city comma country", "Great role in London, UK for a backend dev.", "London, UK", model.Unknown},
		{"fully remote", "This position is fully remote.", "", model.Yes},
		{"wfh", "wfh friendly, async team", "", model.Yes},
		{"onsite only", "on-site only, office-based in the city", "", model.No},
		{"nothing", "some text without any hints", "", model.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(msg(tt.text))
			if got.Location != tt.wantLoc {
				t.Errorf("Location = %q, want %q", got.Location, tt.wantLoc)
			}
			if got.Remote != tt.wantRemote {
				t.Errorf("Remote = %v, want %v", got.Remote, tt.wantRemote)
			}
		})
	}
}

func TestExtractSeniority(t *testing.T) {
	tests := []struct {
		text string
		want model.Seniority
	}{
		{"Senior Backend Engineer wanted", model.SenioritySenior},
		{"hiring a tech lead for payments", model.SenioritySenior},
		{"VP of Engineering role", model.SenioritySenior},
		{"mid-level developer position", model.SeniorityMid},
		{"junior frontend dev, entry-level friendly", model.SeniorityJunior},
		{"internship available this summer", model.SeniorityJunior},
		{"developer position", model.SeniorityUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := Extract(msg(tt.text))
			if got.Seniority != tt.want {
				t.Errorf("Seniority = %v, want %v", got.Seniority, tt.want)
			}
		})
	}
}

func TestExtractSalary(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool // whether any salary string should be found
	}{
		{"dollar range", "Pay: $120k - $150k plus equity", true},
		{"salary label", "Salary: €80,000 per year", true},
		{"range with currency word", "100,000 - 130,000 usd annually", true},
		{"no salary", "competitive package", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(msg(tt.text))
			if (got.Salary != "") != tt.want {
				t.Errorf("Salary = %q, found = %v, want found = %v", got.Salary, got.Salary != "", tt.want)
			}
		})
	}
}

func TestSkills(t *testing.T) {
	skills := Skills("Looking for Python and Go experience, Postgres, Docker, k8s. Community management a plus.")

	for _, want := range []string{"python", "go", "postgres", "docker", "k8s", "community"} {
		if !skills[want] {
			t.Errorf("Skills missing %q, got %v", want, skills)
		}
	}
	if skills["rust"] {
		t.Error("Skills should not contain rust")
	}
}

func TestSkillsNormalizesX(t *testing.T) {
	skills := Skills("grow our x presence")
	if skills["x"] {
		t.Error("bare x should be folded into twitter")
	}
	if !skills["twitter"] {
		t.Error("x should map to twitter")
	}
}

func TestExtractApplyLink(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "prefers job platform over first url",
			text: "Info: https://example.com/about Apply: https://jobs.lever.co/acme/1",
			want: "https://jobs.lever.co/acme/1",
		},
		{
			name: "first url fallback",
			text: "details at https://example.com/hiring",
			want: "https://example.com/hiring",
		},
		{
			name: "email fallback",
			text: "send your cv to talent@acme.io",
			want: "mailto:talent@acme.io",
		},
		{
			name: "nothing",
			text: "no links here",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(msg(tt.text))
			if got.ApplyURL != tt.want {
				t.Errorf("ApplyURL = %q, want %q", got.ApplyURL, tt.want)
			}
		})
	}
}

func TestExtractIsTotal(t *testing.T) {
	// Garbage input must produce a zero-but-valid posting, never panic.
	inputs := []string{"", "\x00\xff", "🎉🎉🎉", "((((", "a"}
	for _, in := range inputs {
		p := Extract(msg(in))
		if p.Remote != model.Unknown && in == "" {
			t.Errorf("empty input should give unknown remote")
		}
		if p.Skills == nil {
			t.Error("Skills must never be nil")
		}
	}
}
