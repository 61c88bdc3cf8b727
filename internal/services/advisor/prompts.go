package services

import (
	"strings"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// keyword сопоставляет подстроку названия сервиса с категорией.
// Порядок важен: побеждает первое совпадение.
type keyword struct {
	key      string
	category models.Category
}

var knownServices = []keyword{
	{"netflix", models.CategoryEntertainment},
	{"spotify", models.CategoryEntertainment},
	{"disney+", models.CategoryEntertainment},
	{"disney plus", models.CategoryEntertainment},
	{"hulu", models.CategoryEntertainment},
	{"hbo max", models.CategoryEntertainment},
	{"prime video", models.CategoryEntertainment},
	{"amazon prime", models.CategoryEntertainment},
	{"youtube", models.CategoryEntertainment},
	{"twitch", models.CategoryEntertainment},
	{"crunchyroll", models.CategoryEntertainment},
	{"apple tv", models.CategoryEntertainment},
	{"apple music", models.CategoryEntertainment},

	{"notion", models.CategoryProductivity},
	{"slack", models.CategoryProductivity},
	{"asana", models.CategoryProductivity},
	{"trello", models.CategoryProductivity},
	{"monday", models.CategoryProductivity},
	{"todoist", models.CategoryProductivity},
	{"evernote", models.CategoryProductivity},
	{"dropbox", models.CategoryProductivity},
	{"google one", models.CategoryProductivity},
	{"icloud", models.CategoryProductivity},
	{"1password", models.CategoryProductivity},
	{"lastpass", models.CategoryProductivity},
	{"zoom", models.CategoryProductivity},

	{"aws", models.CategoryUtilities},
	{"google cloud", models.CategoryUtilities},
	{"azure", models.CategoryUtilities},
	{"digitalocean", models.CategoryUtilities},
	{"vercel", models.CategoryUtilities},
	{"netlify", models.CategoryUtilities},
	{"heroku", models.CategoryUtilities},
	{"cloudflare", models.CategoryUtilities},

	{"peloton", models.CategoryHealth},
	{"headspace", models.CategoryHealth},
	{"calm", models.CategoryHealth},
	{"fitbit", models.CategoryHealth},
	{"apple fitness", models.CategoryHealth},
	{"strava", models.CategoryHealth},

	{"coursera", models.CategoryEducation},
	{"udemy", models.CategoryEducation},
	{"skillshare", models.CategoryEducation},
	{"masterclass", models.CategoryEducation},
	{"duolingo", models.CategoryEducation},
	{"linkedin", models.CategoryEducation},
	{"pluralsight", models.CategoryEducation},
}

func lookupCategory(serviceName string) (models.Category, bool) {
	name := strings.ToLower(serviceName)
	for _, k := range knownServices {
		if strings.Contains(name, k.key) {
			return k.category, true
		}
	}
	return "", false
}

const categorizePrompt = `You are a subscription categorization assistant. Given a service name, respond with ONLY a JSON object containing:
1. "category": one of these exact values: "entertainment", "productivity", "utilities", "health", "education", "other"
2. "tip": a brief helpful tip about this service (max 100 chars)

Example response:
{"category": "entertainment", "tip": "Consider the annual plan to save 2 months."}`

const analyzePrompt = `You are a financial advisor specializing in subscription management. Analyze the user's subscriptions and provide actionable insights. Respond with ONLY a JSON object containing:
1. "summary": A 1-2 sentence summary of their spending
2. "recommendations": An array of 3 objects, each with:
   - "type": one of "savings", "overlap", or "unused"
   - "title": Short title (max 50 chars)
   - "description": Actionable advice (max 150 chars)

Be specific and reference their actual subscriptions when possible.`

const alternativesPrompt = `You are a subscription advisor helping users save money. Given a subscription service, suggest alternatives and savings opportunities. Respond with ONLY a JSON object containing:
1. "alternatives": An array of 2-3 objects with:
   - "name": Alternative service name
   - "estimated_cost": Monthly cost in INR (number)
   - "savings": Monthly savings vs current service (number)
   - "reason": Why this is a good alternative (max 80 chars)
2. "bundle_tip": A tip about bundling opportunities (max 100 chars, or null)
3. "annual_savings": Estimated yearly savings if switching to annual plan (number, or null)
4. "annual_tip": Advice about annual billing (max 80 chars, or null)

Focus on real, practical alternatives available in India.`
