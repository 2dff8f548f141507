package roles

import "strconv"

// Field names used in record-store writes and citation rows.
const (
	FieldCompany              = "company"
	FieldTitle                = "title"
	FieldStartDate            = "start_date"
	FieldEndDate              = "end_date"
	FieldManagerTitle         = "manager_title"
	FieldHeadcount            = "headcount"
	FieldBudgetResponsibility = "budget_responsibility"
	FieldQuota                = "quota"
	FieldAchievements         = "achievements"
	FieldResponsibilities     = "responsibilities"
)

// SourceSpan locates a piece of extracted text inside the source document.
type SourceSpan struct {
	PageNumber   int    `json:"pageNumber"`
	Paragraph    int    `json:"paragraph"`
	LocationNote string `json:"locationNote,omitempty"`
}

// FieldEvidence ties a field value back to where it was read from.
type FieldEvidence struct {
	Field string     `json:"field"`
	Text  string     `json:"text"`
	Span  SourceSpan `json:"span"`
}

// ExtractedRole is one employment role pulled out of a document.
// Zero YearMonth values mean the document did not state the date;
// a zero EndDate on a role with a StartDate means the role is current.
type ExtractedRole struct {
	Company              string          `json:"company"`
	Title                string          `json:"title"`
	StartDate            YearMonth       `json:"startDate"`
	EndDate              YearMonth       `json:"endDate"`
	ManagerTitle         string          `json:"managerTitle,omitempty"`
	Headcount            int             `json:"headcount,omitempty"`
	BudgetResponsibility string          `json:"budgetResponsibility,omitempty"`
	Quota                string          `json:"quota,omitempty"`
	Achievements         []string        `json:"achievements,omitempty"`
	Responsibilities     []string        `json:"responsibilities,omitempty"`
	Confidence           float64         `json:"confidence"`
	Evidence             []FieldEvidence `json:"evidence,omitempty"`
}

// StoredRole is an existing record in the record store.
type StoredRole struct {
	ID           string    `json:"id"`
	Company      string    `json:"company"`
	Title        string    `json:"title"`
	StartDate    YearMonth `json:"startDate"`
	EndDate      YearMonth `json:"endDate"`
	LastModified int64     `json:"lastModified"`
}

// Fields flattens a role into the name/value pairs written to the record store.
// Empty values are omitted so an EDIT never blanks fields the reviewer left alone.
func (r ExtractedRole) Fields() map[string]string {
	out := map[string]string{}
	put := func(name, val string) {
		if val != "" {
			out[name] = val
		}
	}
	put(FieldCompany, r.Company)
	put(FieldTitle, r.Title)
	put(FieldStartDate, r.StartDate.String())
	put(FieldEndDate, r.EndDate.String())
	put(FieldManagerTitle, r.ManagerTitle)
	if r.Headcount > 0 {
		out[FieldHeadcount] = strconv.Itoa(r.Headcount)
	}
	put(FieldBudgetResponsibility, r.BudgetResponsibility)
	put(FieldQuota, r.Quota)
	put(FieldAchievements, joinLines(r.Achievements))
	put(FieldResponsibilities, joinLines(r.Responsibilities))
	return out
}

func joinLines(items []string) string {
	joined := ""
	for _, item := range items {
		if item == "" {
			continue
		}
		if joined != "" {
			joined += "\n"
		}
		joined += item
	}
	return joined
}
