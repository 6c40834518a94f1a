package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/xrpl-commons/dapp-wallet/apperr"
	"go.uber.org/zap"
)

const (
	DefaultNotionURL = "https://api.notion.com/v1"
	notionVersion    = "2022-06-28"
)

// Database properties read from each page
const (
	propertyID       = "ID"
	propertyTitle    = "Title"
	propertySubtitle = "Subtitle"
	propertyPrice    = "Price"
	propertyImages   = "Images"
)

type NotionConfig struct {
	BaseURL    string
	Token      string
	DatabaseID string
	Timeout    time.Duration
	// Attempts is the number of tries for rate limited and server side failures
	Attempts   uint
	RetryDelay time.Duration
}

func DefaultNotionConfig() NotionConfig {
	return NotionConfig{
		BaseURL:    DefaultNotionURL,
		Timeout:    10 * time.Second,
		Attempts:   3,
		RetryDelay: 500 * time.Millisecond,
	}
}

// NotionError is an error object returned by the Notion API
type NotionError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *NotionError) Error() string {
	return fmt.Sprintf("notion api error %d %s: %s", e.Status, e.Code, e.Message)
}

// RemoteCode returns the Notion error code (object_not_found, unauthorized, ...)
func (e *NotionError) RemoteCode() string {
	return e.Code
}

func (e *NotionError) retryable() bool {
	return e.Code == "rate_limited" || e.Status >= http.StatusInternalServerError
}

// NotionCatalog reads offers from a Notion database. Pages need a Price and an
// ID to be listed.
type NotionCatalog struct {
	cfg        NotionConfig
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Catalog = (*NotionCatalog)(nil)

func NewNotionCatalog(cfg NotionConfig, logger *zap.Logger) (*NotionCatalog, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("notion token is required")
	}
	if cfg.DatabaseID == "" {
		return nil, fmt.Errorf("notion database id is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultNotionURL
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 1
	}
	return &NotionCatalog{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

type databaseQuery struct {
	Filter      any    `json:"filter,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
	StartCursor string `json:"start_cursor,omitempty"`
}

type queryResult struct {
	Results    []notionPage `json:"results"`
	HasMore    bool         `json:"has_more"`
	NextCursor *string      `json:"next_cursor"`
}

type notionPage struct {
	Object     string                    `json:"object"`
	ID         string                    `json:"id"`
	Properties map[string]notionProperty `json:"properties"`
}

func (p *notionPage) offer() *FullOffer {
	return &FullOffer{
		NFTID:    p.Properties[propertyID].String(),
		Title:    p.Properties[propertyTitle].String(),
		Subtitle: p.Properties[propertySubtitle].String(),
		Price:    p.Properties[propertyPrice].String(),
		Images:   splitImages(p.Properties[propertyImages].String()),
	}
}

func (c *NotionCatalog) Offers(ctx context.Context, pageSize int, cursor string) (*Page, error) {
	query := &databaseQuery{
		Filter: map[string]any{
			"and": []any{
				map[string]any{"property": propertyPrice, "number": map[string]any{"is_not_empty": true}},
				map[string]any{"property": propertyID, "title": map[string]any{"is_not_empty": true}},
			},
		},
		PageSize:    clampPageSize(pageSize),
		StartCursor: cursor,
	}

	res, err := c.query(ctx, query)
	if err != nil {
		return nil, err
	}

	page := &Page{Offers: []Offer{}, HasMore: res.HasMore}
	if res.NextCursor != nil {
		page.NextCursor = *res.NextCursor
	}
	for _, p := range res.Results {
		if p.Properties == nil {
			continue
		}
		page.Offers = append(page.Offers, p.offer().summary())
	}
	return page, nil
}

func (c *NotionCatalog) Offer(ctx context.Context, nftID string) (*FullOffer, error) {
	query := &databaseQuery{
		Filter: map[string]any{"property": propertyID, "title": map[string]any{"equals": nftID}},
	}

	res, err := c.query(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(res.Results) == 0 || res.Results[0].Properties == nil {
		return nil, apperr.Newf(apperr.KindNotFound, "Offer not found.")
	}
	return res.Results[0].offer(), nil
}

func (c *NotionCatalog) query(ctx context.Context, query *databaseQuery) (*queryResult, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshaling database query: %w", err)
	}
	url := fmt.Sprintf("%s/databases/%s/query", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.DatabaseID)

	var result queryResult
	err = retry.Do(
		func() error {
			err := c.post(ctx, url, body, &result)
			var notionErr *NotionError
			if errors.As(err, &notionErr) && !notionErr.retryable() {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.cfg.Attempts),
		retry.Delay(c.cfg.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying notion query", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("querying notion database %s: %w", c.cfg.DatabaseID, err)
	}
	return &result, nil
}

func (c *NotionCatalog) post(ctx context.Context, url string, body []byte, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	c.logger.Debug("notion query", zap.Int("status", resp.StatusCode), zap.Duration("duration", time.Since(startTime)))

	if resp.StatusCode != http.StatusOK {
		notionErr := &NotionError{}
		if err := json.Unmarshal(respBody, notionErr); err != nil || notionErr.Code == "" {
			notionErr = &NotionError{Status: resp.StatusCode, Code: "response_error", Message: strconv.Quote(string(respBody))}
		}
		return notionErr
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return &NotionError{Status: resp.StatusCode, Code: "response_error", Message: fmt.Sprintf("unmarshaling response: %v", err)}
	}
	return nil
}

// notionProperty is a page property value. Only the fields of its type are set.
type notionProperty struct {
	Type        string        `json:"type"`
	Title       []richText    `json:"title"`
	RichText    []richText    `json:"rich_text"`
	Number      *json.Number  `json:"number"`
	URL         *string       `json:"url"`
	Email       *string       `json:"email"`
	PhoneNumber *string       `json:"phone_number"`
	Checkbox    bool          `json:"checkbox"`
	Select      *namedOption  `json:"select"`
	Status      *namedOption  `json:"status"`
	MultiSelect []namedOption `json:"multi_select"`
	Files       []notionFile  `json:"files"`
	Date        *struct {
		Start string `json:"start"`
	} `json:"date"`
	CreatedTime    string `json:"created_time"`
	LastEditedTime string `json:"last_edited_time"`
}

type richText struct {
	PlainText string `json:"plain_text"`
}

type namedOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type notionFile struct {
	Type string `json:"type"`
	External *struct {
		URL string `json:"url"`
	} `json:"external"`
	File *struct {
		URL string `json:"url"`
	} `json:"file"`
}

// String renders the property as text. Files are joined with ", ".
func (p notionProperty) String() string {
	switch p.Type {
	case "title":
		return joinText(p.Title)
	case "rich_text":
		return joinText(p.RichText)
	case "number":
		if p.Number == nil {
			return ""
		}
		return p.Number.String()
	case "url":
		return deref(p.URL)
	case "email":
		return deref(p.Email)
	case "phone_number":
		return deref(p.PhoneNumber)
	case "checkbox":
		return strconv.FormatBool(p.Checkbox)
	case "select":
		if p.Select == nil {
			return ""
		}
		return p.Select.Name
	case "status":
		if p.Status == nil {
			return ""
		}
		return p.Status.Name
	case "multi_select":
		names := make([]string, 0, len(p.MultiSelect))
		for _, option := range p.MultiSelect {
			names = append(names, option.Name)
		}
		return strings.Join(names, ", ")
	case "files":
		urls := make([]string, 0, len(p.Files))
		for _, f := range p.Files {
			switch {
			case f.Type == "external" && f.External != nil:
				urls = append(urls, f.External.URL)
			case f.Type == "file" && f.File != nil:
				urls = append(urls, f.File.URL)
			}
		}
		return strings.Join(urls, ", ")
	case "date":
		if p.Date == nil {
			return ""
		}
		return p.Date.Start
	case "created_time":
		return p.CreatedTime
	case "last_edited_time":
		return p.LastEditedTime
	}
	return ""
}

func joinText(parts []richText) string {
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(part.PlainText)
	}
	return b.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
