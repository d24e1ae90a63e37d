package lexical

// Bilingual (English/Swedish) stopwords filtered out before matching.
var stopWords = map[string]bool{
	"and": true, "or": true, "but": true, "the": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "of": true, "with": true, "by": true,
	"och": true, "eller": true, "men": true, "det": true, "en": true, "ett": true,
	"på": true, "till": true, "för": true, "av": true, "med": true, "vid": true,
}

// Curated bilingual funding/technology/sustainability terms that earn a
// context bonus when they appear in a query.
var domainTerms = map[string]bool{
	"innovation": true, "research": true, "development": true, "startup": true,
	"sme": true, "technology": true, "digital": true, "sustainability": true,
	"green": true, "energy": true, "health": true, "artificial": true,
	"intelligence": true, "funding": true, "grant": true,
	"forskning": true, "utveckling": true, "teknik": true,
	"digitalisering": true, "hållbarhet": true, "energi": true, "hälsa": true,
	"miljö": true, "klimat": true, "bidrag": true, "finansiering": true,
	"stöd": true,
}
