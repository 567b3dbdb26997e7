// Package extract pulls structured fields out of a classified job message.
// Every rule is best-effort: a field that cannot be parsed degrades to its
// unknown/zero value, never to an error.
package extract

import (
	"regexp"
	"strings"

	"github.com/cryoneth/job-bot-telegram/internal/model"
)

var titlePatterns = []*regexp.Regexp{
	// "Looking for a Senior Python Developer"
	regexp.MustCompile(`looking for (?:a |an )?([A-Z][A-Za-z/\- ]+(?:Developer|Engineer|Designer|Analyst|Manager|Lead|Architect|Specialist|Consultant|Coordinator))`),
	// "Senior Python Developer position"
	regexp.MustCompile(`([A-Z][A-Za-z/\- ]+(?:Developer|Engineer|Designer|Analyst|Manager|Lead|Architect|Specialist|Consultant|Coordinator))\s+position`),
	// "Hiring: Senior Python Developer"
	regexp.MustCompile(`(?:Hiring|Vacancy|Position)[: ]+([A-Z][A-Za-z/\- ]+)`),
	// "Job: Senior Python Developer"
	regexp.MustCompile(`(?:Job|Role|Position)[: ]+([A-Z][A-Za-z/\- ]+)`),
	// First line often contains the title.
	regexp.MustCompile(`(?m)^([A-Z][A-Za-z\s/\-,]+)$`),
}

var companyPatterns = []*regexp.Regexp{
	// "at TechCorp" or "@ TechCorp"
	regexp.MustCompile(`(?:at|@)\s+([A-Z][A-Za-z0-9\s&\-.]+?)(?:\s+is|\s+we|\s+are|,|\.|\n)`),
	// "TechCorp is hiring"
	regexp.MustCompile(`([A-Z][A-Za-z0-9\s&\-.]+?)\s+is\s+(?:hiring|looking|seeking)`),
	// "Company: TechCorp"
	regexp.MustCompile(`(?:Company|Organization|Employer)[:\s]+([A-Za-z0-9\s&\-.]+)`),
	// "Join TechCorp"
	regexp.MustCompile(`Join\s+([A-Z][A-Za-z0-9\s&\-.]+?)(?:\s+as|\s+team|!|,|\.|\n)`),
	// "About CompanyName" section header
	regexp.MustCompile(`About\s+([A-Z][A-Za-z0-9]+)(?:\s|$|\n)`),
}

var companyDomainRegex = regexp.MustCompile(`https?://(?:www\.)?([a-zA-Z0-9\-]+)\.`)

// aggregatorDomains never name the employer.
var aggregatorDomains = map[string]bool{
	"linkedin": true, "indeed": true, "glassdoor": true, "github": true,
	"twitter": true, "t": true, "x": true, "google": true, "bit": true,
	"tinyurl": true,
}

var locationPatterns = []*regexp.Regexp{
	// "Location: City, Country"
	regexp.MustCompile(`(?:Location|Based in|Office in|Located in)[:\s]+([A-Z][A-Za-z\s,]{2,30}?)(?:\.|,\s*[a-z]|\n|$)`),
	// "New York, NY" / "London, UK"
	regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?,\s*[A-Z]{2,3})\b`),
	// "based in San Francisco"
	regexp.MustCompile(`(?:based |located |position )?in\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\s*(?:[,.\n]|$)`),
}

// locationSkipWords guard against sentence fragments matching as places.
var locationSkipWords = []string{"team", "company", "role", "position", "job", "work", "stack"}

var remotePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:fully[- ]?remote|100%[- ]?remote|remote[- ]?only)\b`),
	regexp.MustCompile(`\b(?:remote[- ]?first|remote[- ]?friendly)\b`),
	regexp.MustCompile(`\b(?:work[- ]?from[- ]?home|wfh)\b`),
	regexp.MustCompile(`\b(?:remote|distributed)\b`),
}

var onsiteRegex = regexp.MustCompile(`\b(?:on[- ]?site[- ]?only|office[- ]?based|in[- ]?office)\b`)

// seniorityPatterns are ordered from highest band to lowest so that
// "Senior Engineering Manager" resolves by the first hit. Bands above
// senior collapse into senior, intern into junior.
var seniorityPatterns = []struct {
	level model.Seniority
	re    *regexp.Regexp
}{
	{model.SenioritySenior, regexp.MustCompile(`\b(?:cto|ceo|cfo|coo|c-level|chief)\b`)},
	{model.SenioritySenior, regexp.MustCompile(`\b(?:vp|vice president|head of)\b`)},
	{model.SenioritySenior, regexp.MustCompile(`\b(?:director)\b`)},
	{model.SenioritySenior, regexp.MustCompile(`\b(?:principal|staff engineer|staff)\b`)},
	{model.SenioritySenior, regexp.MustCompile(`\b(?:manager|engineering manager)\b`)},
	{model.SenioritySenior, regexp.MustCompile(`\b(?:lead|team lead|tech lead)\b`)},
	{model.SenioritySenior, regexp.MustCompile(`\b(?:senior|sr\.?)\b`)},
	{model.SeniorityMid, regexp.MustCompile(`\b(?:mid[- ]?level|intermediate|regular)\b`)},
	{model.SeniorityJunior, regexp.MustCompile(`\b(?:junior|jr\.?|entry[- ]level|associate)\b`)},
	{model.SeniorityJunior, regexp.MustCompile(`\b(?:intern|internship|trainee|apprentice)\b`)},
}

var salaryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[$€£]\s*\d+[,.]?\d*\s*[kK]?\s*[-–]\s*[$€£]?\s*\d+[,.]?\d*\s*[kK]?`),
	regexp.MustCompile(`\d+[,.]?\d*\s*[kK]?\s*[-–]\s*\d+[,.]?\d*\s*[kK]?\s*[$€£]`),
	regexp.MustCompile(`(?i)(?:salary|compensation|pay)[:\s]+[$€£]?\s*\d+[,.]?\d*\s*[kK]?`),
	regexp.MustCompile(`(?i)\d+[,.]?\d*\s*[-–]\s*\d+[,.]?\d*\s*(?:usd|eur|gbp|per year|annually|per month|monthly)`),
}

var (
	urlRegex   = regexp.MustCompile(`https?://[^\s<>\[\]()"']+`)
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// jobPlatformDomains mark application links worth preferring over a
// generic first URL.
var jobPlatformDomains = []string{
	"linkedin.com", "indeed.com", "lever.co", "greenhouse.io",
	"workable.com", "breezy.hr", "jobs.", "careers.", "apply.",
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Extract builds a JobPosting from a classified message. It is total:
// fields that cannot be determined stay unknown/empty.
func Extract(msg model.Message) model.JobPosting {
	text := msg.EnrichedText
	if text == "" {
		text = msg.Text
	}

	return model.JobPosting{
		Title:     extractTitle(text),
		Company:   extractCompany(text),
		Location:  extractLocation(text),
		Remote:    extractRemote(text),
		Seniority: extractSeniority(text),
		Salary:    extractSalary(text),
		Skills:    Skills(text),
		ApplyURL:  extractApplyLink(text),
		Source:    msg,
	}
}

func extractTitle(text string) string {
	for _, re := range titlePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		title := whitespaceRegex.ReplaceAllString(strings.TrimSpace(m[1]), " ")
		title = strings.Trim(title, ",")
		if len(title) >= 3 && len(title) <= 80 {
			return title
		}
	}
	return ""
}

func extractCompany(text string) string {
	for _, re := range companyPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		company := whitespaceRegex.ReplaceAllString(strings.TrimSpace(m[1]), " ")
		if len(company) >= 2 && len(company) <= 50 {
			return company
		}
	}

	// Fall back to the first non-aggregator URL domain.
	if m := companyDomainRegex.FindStringSubmatch(text); m != nil {
		domain := m[1]
		if !aggregatorDomains[strings.ToLower(domain)] && len(domain) >= 2 {
			return strings.ToUpper(domain[:1]) + domain[1:]
		}
	}

	return ""
}

func extractLocation(text string) string {
	for _, re := range locationPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		location := strings.TrimRight(strings.TrimSpace(m[1]), ",.")
		if len(location) < 2 || len(location) > 40 {
			continue
		}

		lower := strings.ToLower(location)
		skip := false
		for _, word := range locationSkipWords {
			if strings.Contains(lower, word) {
				skip = true
				break
			}
		}
		if !skip {
			return location
		}
	}
	return ""
}

func extractRemote(text string) model.TriState {
	lower := strings.ToLower(text)

	for _, re := range remotePatterns {
		if re.MatchString(lower) {
			return model.Yes
		}
	}
	if onsiteRegex.MatchString(lower) {
		return model.No
	}
	return model.Unknown
}

func extractSeniority(text string) model.Seniority {
	lower := strings.ToLower(text)

	for _, sp := range seniorityPatterns {
		if sp.re.MatchString(lower) {
			return sp.level
		}
	}
	return model.SeniorityUnknown
}

func extractSalary(text string) string {
	for _, re := range salaryPatterns {
		if m := re.FindString(text); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

func extractApplyLink(text string) string {
	urls := urlRegex.FindAllString(text, -1)

	for _, u := range urls {
		lower := strings.ToLower(u)
		for _, domain := range jobPlatformDomains {
			if strings.Contains(lower, domain) {
				return u
			}
		}
	}

	if len(urls) > 0 {
		return urls[0]
	}

	if email := emailRegex.FindString(text); email != "" {
		return "mailto:" + email
	}

	return ""
}
