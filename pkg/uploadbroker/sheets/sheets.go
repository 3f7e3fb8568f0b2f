// Package sheets appends submission rows to the spreadsheet-backed ledger
// through the Sheets values:append endpoint. The ledger is append-only: one
// row per completed upload, insertion order, no updates, no deletes.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/cybergallery/upload-broker/pkg/uploadbroker"
)

const (
	defaultBaseURL   = "https://sheets.googleapis.com"
	defaultSheetName = "Sheet1"
)

// TokenSource provides bearer tokens for ledger writes.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client appends rows to one spreadsheet tab.
type Client struct {
	spreadsheetID string
	sheetName     string
	tokens        TokenSource
	httpClient    *http.Client
	baseURL       string
}

// Option configures a Client.
type Option func(*Client)

// WithSheetName selects the tab the ledger lives in.
func WithSheetName(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.sheetName = name
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.httpClient = client }
}

// WithBaseURL overrides the API base URL (tests point it at a local server).
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

// NewClient creates a ledger client. An empty spreadsheet ID is allowed here
// and reported per append, so the upload path keeps working while the ledger
// is unconfigured.
func NewClient(spreadsheetID string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		spreadsheetID: spreadsheetID,
		sheetName:     defaultSheetName,
		tokens:        tokens,
		httpClient:    http.DefaultClient,
		baseURL:       defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AppendRow appends one row of cells after the last row of the ledger range.
func (c *Client) AppendRow(ctx context.Context, cells []string) error {
	if c.spreadsheetID == "" {
		return &uploadbroker.ConfigError{Key: "SPREADSHEET_ID"}
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	rangeRef := c.sheetName + "!A:E"
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s:append?valueInputOption=USER_ENTERED&insertDataOption=INSERT_ROWS",
		c.baseURL, url.PathEscape(c.spreadsheetID), url.PathEscape(rangeRef))

	payload := struct {
		Values [][]string `json:"values"`
	}{
		Values: [][]string{cells},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode append request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build append request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ledger append: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &uploadbroker.UpstreamError{
			Service:    "sheets",
			StatusCode: resp.StatusCode,
			Body:       string(detail),
		}
	}
	return nil
}
