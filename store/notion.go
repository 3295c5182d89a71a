package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"taskboard/model"

	"github.com/google/uuid"
	"github.com/jomei/notionapi"
	"golang.org/x/time/rate"
)

const (
	DefaultNotionBaseURL = "https://api.notion.com"
	DefaultNotionVersion = "2022-06-28"
)

type NotionConfig struct {
	Token     string
	Version   string
	BaseURL   string  // scheme and host of the API, the client adds the /v1 paths
	RateLimit float64 // requests per second, 0 disables throttling
}

// NotionStore reads and writes database pages through the Notion API client.
type NotionStore struct {
	client  *notionapi.Client
	limiter *rate.Limiter
	baseURL *url.URL
	logger  *slog.Logger
}

func NewNotionStore(cfg NotionConfig, httpClient *http.Client, logger *slog.Logger) *NotionStore {
	if cfg.Version == "" {
		cfg.Version = DefaultNotionVersion
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultNotionBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	n := &NotionStore{limiter: limiter, logger: logger}
	if u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/")); err == nil && u.Host != "" {
		n.baseURL = u
	}

	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	throttled := *httpClient
	throttled.Transport = &notionTransport{base: base, limiter: limiter, baseURL: n.baseURL, logger: logger}

	// WithRetry(1) allows a single attempt: a 429 comes back as an error
	// instead of being slept on and replayed.
	n.client = notionapi.NewClient(
		notionapi.Token(cfg.Token),
		notionapi.WithHTTPClient(&throttled),
		notionapi.WithVersion(cfg.Version),
		notionapi.WithRetry(1),
	)
	return n
}

// Query returns the first page of the database, at most 100 records.
func (n *NotionStore) Query(ctx context.Context, databaseID string, sorts []model.Sort) ([]model.Record, error) {
	resp, err := n.client.Database.Query(ctx, notionapi.DatabaseID(databaseID), &notionapi.DatabaseQueryRequest{
		Sorts:    toSortObjects(sorts),
		PageSize: 100,
	})
	if err != nil {
		return nil, classify(err, false)
	}
	if resp.HasMore {
		n.logger.Warn("database has more records than one page, extra records ignored", "database", databaseID)
	}

	records := make([]model.Record, 0, len(resp.Results))
	for i := range resp.Results {
		records = append(records, fromPage(&resp.Results[i]))
	}
	return records, nil
}

func (n *NotionStore) Retrieve(ctx context.Context, id string) (model.Record, error) {
	if err := checkPageID(id); err != nil {
		return model.Record{}, err
	}
	page, err := n.client.Page.Get(ctx, notionapi.PageID(id))
	if err != nil {
		return model.Record{}, classify(err, true)
	}
	return fromPage(page), nil
}

func (n *NotionStore) Create(ctx context.Context, databaseID string, properties model.Properties) (model.Record, error) {
	page, err := n.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent:     notionapi.Parent{DatabaseID: notionapi.DatabaseID(databaseID)},
		Properties: toNotionProperties(properties),
	})
	if err != nil {
		return model.Record{}, classify(err, false)
	}
	return fromPage(page), nil
}

func (n *NotionStore) Update(ctx context.Context, id string, properties model.Properties) (model.Record, error) {
	if err := checkPageID(id); err != nil {
		return model.Record{}, err
	}
	page, err := n.client.Page.Update(ctx, notionapi.PageID(id), &notionapi.PageUpdateRequest{
		Properties: toNotionProperties(properties),
	})
	if err != nil {
		return model.Record{}, classify(err, true)
	}
	return fromPage(page), nil
}

// Schema returns the database's property names mapped to their types.
func (n *NotionStore) Schema(ctx context.Context, databaseID string) (map[string]string, error) {
	db, err := n.client.Database.Get(ctx, notionapi.DatabaseID(databaseID))
	if err != nil {
		return nil, classify(err, false)
	}
	schema := make(map[string]string, len(db.Properties))
	for name, cfg := range db.Properties {
		schema[name] = string(cfg.GetType())
	}
	return schema, nil
}

// WhoAmI returns the name of the integration the token belongs to.
func (n *NotionStore) WhoAmI(ctx context.Context) (string, error) {
	user, err := n.client.User.Me(ctx)
	if err != nil {
		return "", classify(err, false)
	}
	if user.Name != "" {
		return user.Name, nil
	}
	return string(user.ID), nil
}

// checkPageID rejects ids Notion would answer with a validation error.
// Page ids are UUIDs, with or without dashes.
func checkPageID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: invalid page id %q", model.ErrRecordNotFound, id)
	}
	return nil
}

// classify turns Notion's not-found answers into model.ErrRecordNotFound.
// For page lookups a rejected page_id path parameter counts as not found.
func classify(err error, pageLookup bool) error {
	var apiErr *notionapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	code := string(apiErr.Code)
	switch {
	case apiErr.Status == http.StatusNotFound || code == "object_not_found":
		return fmt.Errorf("%w: %w", model.ErrRecordNotFound, err)
	case pageLookup && code == "validation_error" && strings.Contains(apiErr.Message, "page_id"):
		return fmt.Errorf("%w: %w", model.ErrRecordNotFound, err)
	}
	return err
}

func toSortObjects(sorts []model.Sort) []notionapi.SortObject {
	out := make([]notionapi.SortObject, 0, len(sorts))
	for _, s := range sorts {
		obj := notionapi.SortObject{Property: s.Property, Direction: notionapi.SortOrderASC}
		if s.Direction == model.SortDescending {
			obj.Direction = notionapi.SortOrderDESC
		}
		if s.Timestamp == model.TimestampLastEdited {
			obj.Timestamp = notionapi.TimestampLastEdited
		}
		out = append(out, obj)
	}
	return out
}

func fromPage(page *notionapi.Page) model.Record {
	record := model.Record{
		Object: string(page.Object),
		ID:     string(page.ID),
	}
	if !page.LastEditedTime.IsZero() {
		record.LastEditedTime = page.LastEditedTime.UTC().Format(TimestampLayout)
	}
	if len(page.Properties) == 0 {
		return record
	}

	record.Properties = make(model.Properties, len(page.Properties))
	for name, prop := range page.Properties {
		record.Properties[name] = fromNotionProperty(prop)
	}
	return record
}

// fromNotionProperty keeps the title and status shapes; other property
// types are carried with their type only.
func fromNotionProperty(prop notionapi.Property) model.Property {
	out := model.Property{Type: string(prop.GetType())}
	switch p := prop.(type) {
	case *notionapi.TitleProperty:
		out.ID = string(p.ID)
		out.Title = make([]model.RichText, 0, len(p.Title))
		for _, rt := range p.Title {
			segment := model.RichText{Type: string(rt.Type), PlainText: rt.PlainText}
			if rt.Text != nil {
				segment.Text = &model.TextContent{Content: rt.Text.Content}
			}
			out.Title = append(out.Title, segment)
		}
	case *notionapi.StatusProperty:
		out.ID = string(p.ID)
		if p.Status.Name != "" {
			out.Status = &model.StatusOption{
				ID:    string(p.Status.ID),
				Name:  p.Status.Name,
				Color: string(p.Status.Color),
			}
		}
	}
	return out
}

func toNotionProperties(properties model.Properties) notionapi.Properties {
	out := make(notionapi.Properties, len(properties))
	for name, prop := range properties {
		switch {
		case prop.Title != nil:
			title := make([]notionapi.RichText, 0, len(prop.Title))
			for _, segment := range prop.Title {
				content := segment.PlainText
				if segment.Text != nil {
					content = segment.Text.Content
				}
				title = append(title, notionapi.RichText{Text: &notionapi.Text{Content: content}})
			}
			out[name] = &notionapi.TitleProperty{Title: title}
		case prop.Status != nil:
			out[name] = &notionapi.StatusProperty{Status: notionapi.Status{Name: prop.Status.Name}}
		}
	}
	return out
}

// notionTransport throttles outgoing API calls and points them at the
// configured host.
type notionTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
	baseURL *url.URL
	logger  *slog.Logger
}

func (t *notionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, err
	}

	if t.baseURL != nil {
		req = req.Clone(req.Context())
		req.URL.Scheme = t.baseURL.Scheme
		req.URL.Host = t.baseURL.Host
		req.Host = t.baseURL.Host
	}

	t.logger.Debug("notion request", "method", req.Method, "path", req.URL.Path)
	return t.base.RoundTrip(req)
}
