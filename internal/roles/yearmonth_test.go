package roles

import "testing"

func TestParseYearMonth(t *testing.T) {
	cases := []struct {
		in      string
		want    YearMonth
		wantErr bool
	}{
		{"", YearMonth{}, false},
		{"2021", YearMonth{Year: 2021}, false},
		{"2021-03", YearMonth{Year: 2021, Month: 3}, false},
		{" 2019-12 ", YearMonth{Year: 2019, Month: 12}, false},
		{"2021-13", YearMonth{}, true},
		{"21-0", YearMonth{}, true},
		{"abcd", YearMonth{}, true},
	}
	for _, tc := range cases {
		got, err := ParseYearMonth(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseYearMonth(%q): expected error, got %+v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseYearMonth(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseYearMonth(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestYearMonthString(t *testing.T) {
	if got := (YearMonth{}).String(); got != "" {
		t.Errorf("zero value rendered %q", got)
	}
	if got := (YearMonth{Year: 2020}).String(); got != "2020" {
		t.Errorf("year-only rendered %q", got)
	}
	if got := (YearMonth{Year: 2020, Month: 7}).String(); got != "2020-07" {
		t.Errorf("full value rendered %q", got)
	}
}

func TestYearMonthIndexes(t *testing.T) {
	full := YearMonth{Year: 2020, Month: 3}
	if full.StartIndex() != full.EndIndex() {
		t.Fatalf("month-precise value should have equal start and end indexes")
	}
	yearOnly := YearMonth{Year: 2020}
	if got := yearOnly.EndIndex() - yearOnly.StartIndex(); got != 11 {
		t.Fatalf("year-only value should span 12 months, spanned %d", got+1)
	}
}

func TestExtractedRoleFields(t *testing.T) {
	role := ExtractedRole{
		Company:   "Acme Corp",
		Title:     "Senior Engineer",
		StartDate: YearMonth{Year: 2020, Month: 1},
		Headcount: 4,
		Achievements: []string{
			"Cut build times in half",
			"",
			"Led the platform migration",
		},
	}
	fields := role.Fields()
	if fields[FieldCompany] != "Acme Corp" {
		t.Errorf("company = %q", fields[FieldCompany])
	}
	if fields[FieldHeadcount] != "4" {
		t.Errorf("headcount = %q", fields[FieldHeadcount])
	}
	if _, ok := fields[FieldEndDate]; ok {
		t.Errorf("empty end date should be omitted")
	}
	want := "Cut build times in half\nLed the platform migration"
	if fields[FieldAchievements] != want {
		t.Errorf("achievements = %q", fields[FieldAchievements])
	}
}
