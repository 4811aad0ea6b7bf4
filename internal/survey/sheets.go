package survey

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// SheetsSource downloads a Google Sheets worksheet through its CSV export.
// The spreadsheet must be readable by anyone with the link.
type SheetsSource struct {
	URL       string // spreadsheet URL as copied from the browser, or a direct CSV URL
	SheetName string

	Client  *http.Client
	Log     *slog.Logger
	Backoff func(attempt int) time.Duration
}

// NewSheetsSource creates a source with a 30 second HTTP timeout.
func NewSheetsSource(spreadsheetURL, sheetName string, log *slog.Logger) *SheetsSource {
	return &SheetsSource{
		URL:       spreadsheetURL,
		SheetName: sheetName,
		Client:    &http.Client{Timeout: 30 * time.Second},
		Log:       log,
		Backoff:   Backoff,
	}
}

// ExportURL turns a spreadsheet URL into the CSV export URL of the named
// worksheet. URLs that do not point at a spreadsheet are returned unchanged.
func ExportURL(spreadsheetURL, sheetName string) (string, error) {
	u, err := url.Parse(spreadsheetURL)
	if err != nil {
		return "", fmt.Errorf("parse sheet url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	id := ""
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "spreadsheets" && parts[i+1] == "d" {
			id = parts[i+2]
			break
		}
	}
	if id == "" {
		return spreadsheetURL, nil
	}
	q := url.Values{}
	q.Set("tqx", "out:csv")
	if sheetName != "" {
		q.Set("sheet", sheetName)
	}
	out := url.URL{
		Scheme:   u.Scheme,
		Host:     u.Host,
		Path:     "/spreadsheets/d/" + id + "/gviz/tq",
		RawQuery: q.Encode(),
	}
	return out.String(), nil
}

func (s *SheetsSource) Load(ctx context.Context) (*Sheet, error) {
	target, err := ExportURL(s.URL, s.SheetName)
	if err != nil {
		return nil, err
	}
	backoff := s.Backoff
	if backoff == nil {
		backoff = Backoff
	}

	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			wait := backoff(attempt - 1)
			if s.Log != nil {
				s.Log.Warn("retrying sheet download", "attempt", attempt, "wait_ms", wait.Milliseconds(), "error", lastErr)
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
		sheet, err := s.fetch(ctx, target)
		if err == nil {
			return sheet, nil
		}
		if !IsRetryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("download sheet after %d attempts: %w", MaxRetries+1, lastErr)
}

func (s *SheetsSource) fetch(ctx context.Context, target string) (*Sheet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Timeouts and dropped connections are transient.
		return nil, &RetryableError{Message: fmt.Sprintf("download sheet: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download sheet: status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	// Private spreadsheets answer 200 with a sign-in page.
	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mt == "text/html" {
		title := ""
		if doc, err := html.Parse(bytes.NewReader(body)); err == nil {
			title = pageTitle(doc)
		}
		return nil, fmt.Errorf("sheet is not shared publicly (got page %q)", title)
	}
	return ReadCSV(bytes.NewReader(body))
}
