package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"reconcile-backend/internal/roles"
)

// titleAbbreviations maps common title shorthand to its canonical form so
// "Sr. Software Engineer" and "Senior Software Engineer" tokenize identically.
var titleAbbreviations = map[string]string{
	"sr":    "senior",
	"snr":   "senior",
	"jr":    "junior",
	"eng":   "engineer",
	"engr":  "engineer",
	"mgr":   "manager",
	"dir":   "director",
	"vp":    "vice president",
	"svp":   "senior vice president",
	"evp":   "executive vice president",
	"pres":  "president",
	"asst":  "assistant",
	"assoc": "associate",
	"dev":   "developer",
	"tech":  "technical",
	"swe":   "software engineer",
}

// orgDesignators are corporate suffixes dropped before comparing company
// names, so "Acme Corp" and "ACME Corporation" collapse to the same tokens.
var orgDesignators = map[string]struct{}{
	"corp":         {},
	"corporation":  {},
	"inc":          {},
	"incorporated": {},
	"llc":          {},
	"llp":          {},
	"ltd":          {},
	"limited":      {},
	"co":           {},
	"company":      {},
	"gmbh":         {},
	"plc":          {},
	"sa":           {},
	"ag":           {},
	"holdings":     {},
	"group":        {},
}

var foldDiacritics = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

func foldText(s string) string {
	folded, _, err := transform.String(foldDiacritics, s)
	if err != nil {
		return s
	}
	return folded
}

// tokenize lowercases, strips diacritics and punctuation, and splits into words.
func tokenize(s string) []string {
	folded := strings.ToLower(foldText(s))
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// titleTokens tokenizes a job title with abbreviation expansion applied.
func titleTokens(title string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, tok := range tokenize(title) {
		expanded, ok := titleAbbreviations[tok]
		if !ok {
			set[tok] = struct{}{}
			continue
		}
		for _, part := range strings.Fields(expanded) {
			set[part] = struct{}{}
		}
	}
	return set
}

// orgTokens tokenizes a company name with corporate designators removed.
// If stripping would leave nothing (the name is all designators, e.g. "The
// Company Co"), the unstripped tokens are kept so the name still compares.
func orgTokens(org string) map[string]struct{} {
	raw := tokenize(org)
	set := map[string]struct{}{}
	for _, tok := range raw {
		if _, drop := orgDesignators[tok]; drop {
			continue
		}
		set[tok] = struct{}{}
	}
	if len(set) == 0 {
		for _, tok := range raw {
			set[tok] = struct{}{}
		}
	}
	return set
}

// jaccard returns |a∩b| / |a∪b|, and 0 when either set is empty.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// dateInterval is a closed range of month indexes.
type dateInterval struct {
	start int
	end   int
	known bool
}

// interval resolves a role's date range against a horizon month index.
// Open-ended roles (known start, no end) run through the horizon.
// Roles with no date information at all are unknown and score 0.
func interval(start, end roles.YearMonth, horizon int) dateInterval {
	if start.IsZero() && end.IsZero() {
		return dateInterval{}
	}
	iv := dateInterval{known: true}
	if start.IsZero() {
		iv.start = 0
	} else {
		iv.start = start.StartIndex()
	}
	if end.IsZero() {
		iv.end = horizon
	} else {
		iv.end = end.EndIndex()
	}
	if iv.end < iv.start {
		iv.end = iv.start
	}
	return iv
}

// dateHorizon returns the latest known month index across both roles, so an
// open-ended role extends to the most recent date either role mentions
// rather than to the wall clock.
func dateHorizon(dates ...roles.YearMonth) int {
	horizon := 0
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		if idx := d.EndIndex(); idx > horizon {
			horizon = idx
		}
	}
	return horizon
}

// dateOverlap scores how much two date ranges coincide, as
// intersection-months over union-months. Either side lacking any date
// information scores 0.
func dateOverlap(aStart, aEnd, bStart, bEnd roles.YearMonth) float64 {
	horizon := dateHorizon(aStart, aEnd, bStart, bEnd)
	a := interval(aStart, aEnd, horizon)
	b := interval(bStart, bEnd, horizon)
	if !a.known || !b.known {
		return 0
	}

	interStart := a.start
	if b.start > interStart {
		interStart = b.start
	}
	interEnd := a.end
	if b.end < interEnd {
		interEnd = b.end
	}
	if interEnd < interStart {
		return 0
	}
	inter := interEnd - interStart + 1

	unionStart := a.start
	if b.start < unionStart {
		unionStart = b.start
	}
	unionEnd := a.end
	if b.end > unionEnd {
		unionEnd = b.end
	}
	union := unionEnd - unionStart + 1

	return float64(inter) / float64(union)
}
