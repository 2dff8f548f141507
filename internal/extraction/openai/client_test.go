package openai

import (
	"encoding/json"
	"testing"

	"reconcile-backend/internal/roles"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "gpt-4o-mini"); err == nil {
		t.Fatalf("expected error without api key")
	}
	if _, err := NewClient("sk-test", ""); err == nil {
		t.Fatalf("expected error without model")
	}
	if _, err := NewClient("sk-test", "gpt-4o-mini"); err != nil {
		t.Fatalf("NewClient: %v", err)
	}
}

func TestParseRoles(t *testing.T) {
	raw := json.RawMessage(`{
		"roles": [
			{
				"company": "Acme Corp",
				"title": "Sr. Software Engineer",
				"start_date": "2020-01",
				"end_date": "",
				"manager_title": "VP Engineering",
				"headcount": 6,
				"confidence": 0.92,
				"achievements": ["Shipped the billing rewrite"],
				"evidence": [
					{"field": "company", "text": "Acme Corp", "page": 1, "paragraph": 2}
				]
			}
		]
	}`)

	got, err := parseRoles(raw)
	if err != nil {
		t.Fatalf("parseRoles: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 role, got %d", len(got))
	}
	role := got[0]
	if role.Company != "Acme Corp" || role.Title != "Sr. Software Engineer" {
		t.Fatalf("unexpected role: %+v", role)
	}
	if role.StartDate != (roles.YearMonth{Year: 2020, Month: 1}) {
		t.Fatalf("start date = %+v", role.StartDate)
	}
	if !role.EndDate.IsZero() {
		t.Fatalf("current role should have zero end date, got %+v", role.EndDate)
	}
	if role.Headcount != 6 || role.Confidence != 0.92 {
		t.Fatalf("metadata not carried: %+v", role)
	}
	if len(role.Evidence) != 1 || role.Evidence[0].Span.Paragraph != 2 {
		t.Fatalf("evidence not carried: %+v", role.Evidence)
	}
}

func TestParseRolesEmpty(t *testing.T) {
	got, err := parseRoles(json.RawMessage(`{"roles": []}`))
	if err != nil {
		t.Fatalf("parseRoles: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no roles, got %d", len(got))
	}
}

func TestParseRolesRejectsAnonymousRole(t *testing.T) {
	_, err := parseRoles(json.RawMessage(`{"roles": [{"confidence": 0.5}]}`))
	if err == nil {
		t.Fatalf("expected error for role without company or title")
	}
}

func TestParseRolesRejectsBadDate(t *testing.T) {
	_, err := parseRoles(json.RawMessage(`{"roles": [{"company": "Acme", "start_date": "January 2020"}]}`))
	if err == nil {
		t.Fatalf("expected error for unparseable date")
	}
}
