package search

import "strings"

// synonyms maps exact query terms to additional matching vocabulary. The
// table mirrors the derived terms emitted by the document builder so that
// expanded queries land on document bodies.
var synonyms = map[string][]string{
	"thumbs":  {"thumbs up", "thumb", "approval", "positive"},
	"peace":   {"peace sign", "v sign", "victory", "v-sign"},
	"people":  {"person", "individuals", "humans", "group"},
	"outdoor": {"outside", "nature", "exterior"},
	"indoor":  {"inside", "interior"},
	"sunny":   {"bright", "clear", "sunshine"},
	"happy":   {"joyful", "cheerful", "positive"},
	"group":   {"multiple", "several", "many"},
}

// ExpandQuery splits the lowercased query on whitespace and enriches the
// terms with fixed synonyms. Iteration order of the returned set is not
// significant to scoring.
func ExpandQuery(query string) map[string]struct{} {
	terms := strings.Fields(strings.ToLower(query))

	expanded := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		expanded[t] = struct{}{}
	}
	for _, t := range terms {
		for _, syn := range synonyms[t] {
			expanded[syn] = struct{}{}
		}
	}
	return expanded
}
