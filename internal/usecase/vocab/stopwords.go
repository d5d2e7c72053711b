package vocab

// stopwords are function words and generic commercial adjectives (English and
// Norwegian) that must never define a tenant's domain: a query is not
// in-scope just because it says "best" or "tilbud".
var stopwords = map[string]struct{}{
	// English function words
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "have": {}, "how": {},
	"in": {}, "is": {}, "it": {}, "of": {}, "on": {}, "or": {}, "that": {},
	"the": {}, "this": {}, "to": {}, "was": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "with": {}, "you": {}, "your": {},

	// Norwegian function words
	"av": {}, "da": {}, "de": {}, "den": {}, "det": {}, "du": {}, "eller": {},
	"en": {}, "er": {}, "et": {}, "fra": {}, "har": {}, "hva": {},
	"hvilken": {}, "hvor": {}, "hvordan": {}, "i": {}, "ikke": {}, "med": {},
	"og": {}, "om": {}, "paa": {}, "som": {}, "til": {}, "var": {}, "vi": {},

	// Generic commercial adjectives
	"best": {}, "better": {}, "cheap": {}, "discount": {}, "free": {},
	"great": {}, "new": {}, "offer": {}, "official": {}, "original": {},
	"popular": {}, "premium": {}, "quality": {}, "sale": {}, "top": {},
	"beste": {}, "billig": {}, "gratis": {}, "kampanje": {}, "ny": {},
	"nye": {}, "populaer": {}, "tilbud": {},
}
