package extract

import (
	"regexp"
	"strings"
)

// skillPatterns is the maintained skill vocabulary: tech stacks plus the
// community/growth/web3 vocabulary the monitored channels actually use.
// Each pattern carries exactly one capturing group.
var skillPatterns = []*regexp.Regexp{
	// Tech skills
	regexp.MustCompile(`\b(python|javascript|typescript|java|c\+\+|c#|ruby|go|golang|rust|php|swift|kotlin|scala|r)\b`),
	regexp.MustCompile(`\b(react|vue|angular|svelte|node\.?js|express|django|flask|fastapi|spring|rails|laravel|nextjs|nuxt)\b`),
	regexp.MustCompile(`\b(sql|mysql|postgresql|postgres|mongodb|redis|elasticsearch|dynamodb|cassandra|sqlite)\b`),
	regexp.MustCompile(`\b(aws|azure|gcp|docker|kubernetes|k8s|terraform|ansible|jenkins|gitlab|github|ci/cd)\b`),
	regexp.MustCompile(`\b(machine learning|ml|deep learning|tensorflow|pytorch|pandas|numpy|scikit-learn|data science|nlp|ai)\b`),
	regexp.MustCompile(`\b(git|linux|agile|scrum|rest|graphql|microservices|api|testing|tdd|devops)\b`),
	regexp.MustCompile(`\b(html|css|sass|webpack|babel|npm|yarn|gradle|maven|spark|kafka|rabbitmq)\b`),

	// Community / Marketing / Growth
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

// Skills returns the lowercase skill tokens found in text. It drives both
// the posting skill set and the implied skill terms of a CV document.
func Skills(text string) map[string]bool {
	lower := strings.ToLower(text)
	skills := make(map[string]bool)

	for _, re := range skillPatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			skill := strings.TrimSpace(m[1])
			if skill != "" {
				skills[skill] = true
			}
		}
	}

	// "x" the platform is ambiguous with the letter; fold into twitter.
	if skills["x"] {
		delete(skills, "x")
		skills["twitter"] = true
	}

	return skills
}
