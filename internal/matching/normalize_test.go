package matching

import (
	"testing"

	"reconcile-backend/internal/roles"
)

func ym(year, month int) roles.YearMonth {
	return roles.YearMonth{Year: year, Month: month}
}

func TestOrgTokensStripDesignators(t *testing.T) {
	a := orgTokens("Acme Corp")
	b := orgTokens("ACME Corporation")
	if got := jaccard(a, b); got != 1.0 {
		t.Fatalf("designator variants should match fully, got %v", got)
	}
}

func TestOrgTokensAllDesignatorsFallsBack(t *testing.T) {
	set := orgTokens("The Company Co")
	if len(set) == 0 {
		t.Fatalf("stripping should not produce an empty token set")
	}
	if _, ok := set["company"]; !ok {
		t.Fatalf("expected fallback to keep original tokens, got %v", set)
	}
}

func TestOrgTokensFoldDiacritics(t *testing.T) {
	a := orgTokens("Café Müller GmbH")
	b := orgTokens("Cafe Muller")
	if got := jaccard(a, b); got != 1.0 {
		t.Fatalf("diacritic variants should match fully, got %v", got)
	}
}

func TestTitleTokensExpandAbbreviations(t *testing.T) {
	a := titleTokens("Sr. Software Engineer")
	b := titleTokens("Senior Software Engineer")
	if got := jaccard(a, b); got != 1.0 {
		t.Fatalf("abbreviated title should match fully, got %v", got)
	}

	c := titleTokens("VP, Sales")
	d := titleTokens("Vice President of Sales")
	if got := jaccard(c, d); got < 0.7 {
		t.Fatalf("vp expansion should score high, got %v", got)
	}
}

func TestJaccardEmptySets(t *testing.T) {
	if got := jaccard(nil, map[string]struct{}{"a": {}}); got != 0 {
		t.Fatalf("empty side should score 0, got %v", got)
	}
}

func TestDateOverlapIdentical(t *testing.T) {
	got := dateOverlap(ym(2020, 1), ym(2022, 6), ym(2020, 1), ym(2022, 6))
	if got != 1.0 {
		t.Fatalf("identical ranges should overlap fully, got %v", got)
	}
}

func TestDateOverlapDisjoint(t *testing.T) {
	got := dateOverlap(ym(2015, 1), ym(2016, 1), ym(2019, 1), ym(2020, 1))
	if got != 0 {
		t.Fatalf("disjoint ranges should not overlap, got %v", got)
	}
}

func TestDateOverlapOpenEnded(t *testing.T) {
	// Both roles start at the same month and are current: a perfect overlap
	// even without a wall-clock reference.
	got := dateOverlap(ym(2021, 3), roles.YearMonth{}, ym(2021, 3), roles.YearMonth{})
	if got != 1.0 {
		t.Fatalf("matching open-ended ranges should overlap fully, got %v", got)
	}

	// An open-ended role extends to the latest date either side mentions.
	partial := dateOverlap(ym(2020, 1), roles.YearMonth{}, ym(2021, 1), ym(2021, 12))
	if partial <= 0 || partial >= 1 {
		t.Fatalf("partial overlap should be strictly between 0 and 1, got %v", partial)
	}
}

func TestDateOverlapUnknownSide(t *testing.T) {
	got := dateOverlap(roles.YearMonth{}, roles.YearMonth{}, ym(2020, 1), ym(2021, 1))
	if got != 0 {
		t.Fatalf("side with no date information should score 0, got %v", got)
	}
}

func TestDateOverlapYearOnly(t *testing.T) {
	// "2020" against "2020-01..2020-12" covers the same twelve months.
	got := dateOverlap(ym(2020, 0), ym(2020, 0), ym(2020, 1), ym(2020, 12))
	if got != 1.0 {
		t.Fatalf("year-only range should equal its explicit months, got %v", got)
	}
}

func TestDateOverlapShrinksWithDistance(t *testing.T) {
	near := dateOverlap(ym(2020, 1), ym(2020, 12), ym(2020, 6), ym(2021, 6))
	far := dateOverlap(ym(2020, 1), ym(2020, 12), ym(2021, 1), ym(2022, 1))
	if near <= far {
		t.Fatalf("closer ranges should overlap more: near=%v far=%v", near, far)
	}
}
