package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Store is the document-store contract the conversation engines consume.
// Queries are subject to the upstream store's eventual consistency: a page
// written moments ago may not be visible yet, so duplicate checks are advisory.
type Store interface {
	CreatePage(ctx context.Context, databaseID string, props Properties) (*Page, error)
	QueryDatabase(ctx context.Context, databaseID string, q Query) ([]Page, error)
	UpdatePage(ctx context.Context, pageID string, props Properties) (*Page, error)
	ArchivePage(ctx context.Context, pageID string) error
	ListSelectOptions(ctx context.Context, databaseID, property string) ([]string, error)
	AddSelectOption(ctx context.Context, databaseID, property, name string) error
}

// Client talks to the Notion REST API.
type Client struct {
	BaseURL string
	token   string
	version string
	http    *http.Client
}

func NewClient(baseURL, token, version string) *Client {
	if baseURL == "" {
		baseURL = "https://api.notion.com"
	}
	if version == "" {
		version = "2022-06-28"
	}
	return &Client{
		BaseURL: baseURL,
		token:   token,
		version: version,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

type createPageRequest struct {
	Parent     map[string]string `json:"parent"`
	Properties Properties        `json:"properties"`
}

type queryResponse struct {
	Results []Page `json:"results"`
}

type databaseResponse struct {
	Properties map[string]struct {
		Select *struct {
			Options []SelectOption `json:"options"`
		} `json:"select,omitempty"`
	} `json:"properties"`
}

func (c *Client) CreatePage(ctx context.Context, databaseID string, props Properties) (*Page, error) {
	req := createPageRequest{
		Parent:     map[string]string{"database_id": databaseID},
		Properties: props,
	}
	var page Page
	if err := c.call(ctx, http.MethodPost, "/v1/pages", req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) QueryDatabase(ctx context.Context, databaseID string, q Query) ([]Page, error) {
	var resp queryResponse
	path := fmt.Sprintf("/v1/databases/%s/query", databaseID)
	if err := c.call(ctx, http.MethodPost, path, q, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *Client) UpdatePage(ctx context.Context, pageID string, props Properties) (*Page, error) {
	body := map[string]interface{}{"properties": props}
	var page Page
	if err := c.call(ctx, http.MethodPatch, "/v1/pages/"+pageID, body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ArchivePage soft-deletes: the page is flagged archived, never removed.
func (c *Client) ArchivePage(ctx context.Context, pageID string) error {
	body := map[string]interface{}{"archived": true}
	return c.call(ctx, http.MethodPatch, "/v1/pages/"+pageID, body, nil)
}

func (c *Client) ListSelectOptions(ctx context.Context, databaseID, property string) ([]string, error) {
	var resp databaseResponse
	if err := c.call(ctx, http.MethodGet, "/v1/databases/"+databaseID, nil, &resp); err != nil {
		return nil, err
	}
	prop, ok := resp.Properties[property]
	if !ok || prop.Select == nil {
		return nil, fmt.Errorf("notion: database has no select property %q", property)
	}
	names := make([]string, 0, len(prop.Select.Options))
	for _, opt := range prop.Select.Options {
		names = append(names, opt.Name)
	}
	return names, nil
}

// AddSelectOption appends a new option to the select property's schema.
// Idempotent on a case-insensitive match: adding an existing name is a no-op
// and the first insertion's casing wins.
func (c *Client) AddSelectOption(ctx context.Context, databaseID, property, name string) error {
	existing, err := c.ListSelectOptions(ctx, databaseID, property)
	if err != nil {
		return err
	}
	options := make([]SelectOption, 0, len(existing)+1)
	for _, opt := range existing {
		if strings.EqualFold(opt, name) {
			return nil
		}
		options = append(options, SelectOption{Name: opt})
	}
	options = append(options, SelectOption{Name: name})

	body := map[string]interface{}{
		"properties": map[string]interface{}{
			property: map[string]interface{}{
				"select": map[string]interface{}{"options": options},
			},
		},
	}
	return c.call(ctx, http.MethodPatch, "/v1/databases/"+databaseID, body, nil)
}

func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewBuffer(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Notion-Version", c.version)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notion %s %s: %s", method, path, string(bodyBytes))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(bodyBytes, out)
}
