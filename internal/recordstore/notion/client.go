package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"reconcile-backend/internal/recordstore"
	"reconcile-backend/internal/roles"
)

const (
	apiBase       = "https://api.notion.com/v1"
	notionVersion = "2022-06-28"
)

// Property names in the roles database.
const (
	propCompany = "Company"
	propScope   = "Scope"
	propTitle   = "Title"
	propStart   = "Start Date"
	propEnd     = "End Date"
)

// Client implements recordstore.Store against a Notion database, one page
// per employment role.
type Client struct {
	token      string
	databaseID string
	httpClient *http.Client
}

var _ recordstore.Store = (*Client)(nil)

// NewClient constructs a Notion record store client.
func NewClient(token, databaseID string) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("NOTION_TOKEN is required")
	}
	if strings.TrimSpace(databaseID) == "" {
		return nil, fmt.Errorf("NOTION_DATABASE_ID is required")
	}
	timeout := 30 * time.Second
	if raw := strings.TrimSpace(os.Getenv("NOTION_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		token:      token,
		databaseID: databaseID,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type queryRequest struct {
	Filter      any    `json:"filter,omitempty"`
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

type queryResponse struct {
	Results    []page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

type page struct {
	ID             string              `json:"id"`
	LastEditedTime time.Time           `json:"last_edited_time"`
	Properties     map[string]property `json:"properties"`
}

type property struct {
	Type     string     `json:"type"`
	Title    []richText `json:"title,omitempty"`
	RichText []richText `json:"rich_text,omitempty"`
}

type richText struct {
	PlainText string       `json:"plain_text,omitempty"`
	Text      *textContent `json:"text,omitempty"`
}

type textContent struct {
	Content string `json:"content"`
}

type apiError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) ListByScope(ctx context.Context, scope string) ([]roles.StoredRole, error) {
	var out []roles.StoredRole
	cursor := ""
	for {
		reqBody := queryRequest{
			Filter: map[string]any{
				"property":  propScope,
				"rich_text": map[string]any{"equals": scope},
			},
			StartCursor: cursor,
			PageSize:    100,
		}
		var parsed queryResponse
		if err := c.do(ctx, http.MethodPost, "/databases/"+c.databaseID+"/query", reqBody, &parsed); err != nil {
			return nil, fmt.Errorf("query roles database: %w", err)
		}
		for _, p := range parsed.Results {
			out = append(out, pageToRole(p))
		}
		if !parsed.HasMore || parsed.NextCursor == "" {
			return out, nil
		}
		cursor = parsed.NextCursor
	}
}

func (c *Client) WriteFields(ctx context.Context, scope, recordID string, fields recordstore.FieldValues) (string, error) {
	props := fieldProperties(fields)

	if recordID == "" {
		props[propScope] = map[string]any{
			"rich_text": []map[string]any{{"text": map[string]any{"content": scope}}},
		}
		body := map[string]any{
			"parent":     map[string]any{"database_id": c.databaseID},
			"properties": props,
		}
		var created page
		if err := c.do(ctx, http.MethodPost, "/pages", body, &created); err != nil {
			return "", &recordstore.WriteError{Err: err}
		}
		return created.ID, nil
	}

	body := map[string]any{"properties": props}
	var updated page
	if err := c.do(ctx, http.MethodPatch, "/pages/"+recordID, body, &updated); err != nil {
		return "", &recordstore.WriteError{RecordID: recordID, Err: err}
	}
	return updated.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, apiBase+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", notionVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("notion %s (%s)", apiErr.Message, apiErr.Code)
		}
		return fmt.Errorf("notion status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("notion response parse: %w", err)
	}
	return nil
}

// fieldProperties maps flattened field values onto Notion page properties.
// Company is the database title property; everything else is rich text.
func fieldProperties(fields recordstore.FieldValues) map[string]any {
	props := map[string]any{}
	for name, value := range fields {
		propName := propertyName(name)
		if name == roles.FieldCompany {
			props[propName] = map[string]any{
				"title": []map[string]any{{"text": map[string]any{"content": value}}},
			}
			continue
		}
		props[propName] = map[string]any{
			"rich_text": []map[string]any{{"text": map[string]any{"content": value}}},
		}
	}
	return props
}

// propertyName converts a snake_case field name to the Title Case property
// name used in the database schema.
func propertyName(field string) string {
	parts := strings.Split(field, "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

func pageToRole(p page) roles.StoredRole {
	role := roles.StoredRole{
		ID:           p.ID,
		Company:      plainText(p.Properties[propCompany]),
		Title:        plainText(p.Properties[propTitle]),
		LastModified: p.LastEditedTime.UnixMilli(),
	}
	role.StartDate, _ = roles.ParseYearMonth(plainText(p.Properties[propStart]))
	role.EndDate, _ = roles.ParseYearMonth(plainText(p.Properties[propEnd]))
	return role
}

func plainText(prop property) string {
	texts := prop.RichText
	if prop.Type == "title" {
		texts = prop.Title
	}
	var b strings.Builder
	for _, t := range texts {
		if t.PlainText != "" {
			b.WriteString(t.PlainText)
		} else if t.Text != nil {
			b.WriteString(t.Text.Content)
		}
	}
	return strings.TrimSpace(b.String())
}
