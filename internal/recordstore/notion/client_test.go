package notion

import (
	"testing"
	"time"

	"reconcile-backend/internal/recordstore"
	"reconcile-backend/internal/roles"
)

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient("", "db-1"); err == nil {
		t.Fatalf("expected error without token")
	}
	if _, err := NewClient("secret", ""); err == nil {
		t.Fatalf("expected error without database id")
	}
	if _, err := NewClient("secret", "db-1"); err != nil {
		t.Fatalf("NewClient: %v", err)
	}
}

func TestPropertyName(t *testing.T) {
	cases := map[string]string{
		roles.FieldCompany:              "Company",
		roles.FieldStartDate:            "Start Date",
		roles.FieldBudgetResponsibility: "Budget Responsibility",
	}
	for in, want := range cases {
		if got := propertyName(in); got != want {
			t.Errorf("propertyName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFieldPropertiesUsesTitleForCompany(t *testing.T) {
	props := fieldProperties(recordstore.FieldValues{
		roles.FieldCompany: "Acme Corp",
		roles.FieldTitle:   "Engineer",
	})

	company, ok := props["Company"].(map[string]any)
	if !ok {
		t.Fatalf("missing Company property: %v", props)
	}
	if _, ok := company["title"]; !ok {
		t.Fatalf("company should map to the title property, got %v", company)
	}

	title, ok := props["Title"].(map[string]any)
	if !ok {
		t.Fatalf("missing Title property: %v", props)
	}
	if _, ok := title["rich_text"]; !ok {
		t.Fatalf("title should map to rich text, got %v", title)
	}
}

func TestPageToRole(t *testing.T) {
	edited := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	p := page{
		ID:             "page-1",
		LastEditedTime: edited,
		Properties: map[string]property{
			propCompany: {Type: "title", Title: []richText{{PlainText: "Acme Corp"}}},
			propTitle:   {Type: "rich_text", RichText: []richText{{PlainText: "Engineer"}}},
			propStart:   {Type: "rich_text", RichText: []richText{{PlainText: "2020-01"}}},
			propEnd:     {Type: "rich_text", RichText: []richText{{PlainText: "2022-06"}}},
		},
	}

	role := pageToRole(p)
	if role.ID != "page-1" || role.Company != "Acme Corp" || role.Title != "Engineer" {
		t.Fatalf("unexpected role: %+v", role)
	}
	if role.StartDate != (roles.YearMonth{Year: 2020, Month: 1}) {
		t.Fatalf("start date = %+v", role.StartDate)
	}
	if role.LastModified != edited.UnixMilli() {
		t.Fatalf("last modified = %d", role.LastModified)
	}
}
