package wikisource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"
)

// Client defines the interface for the external page status source.
type Client interface {
	// CreatedPageList returns the names of pages created under a book's index.
	CreatedPageList(ctx context.Context, book string) ([]string, error)
	// PageStatus returns the observed proofread/validate events for a page.
	PageStatus(ctx context.Context, page string) (*PageStatus, error)
}

// Factory returns a Client bound to a wiki language edition.
// The reconciliation engine obtains one handle per contest language;
// tests substitute a mock.
type Factory func(lang string) Client

// NewFactory creates a Factory producing API clients with shared settings.
func NewFactory(cfg Config) Factory {
	return func(lang string) Client {
		return New(lang, cfg)
	}
}

// APIClient talks to a Wikisource language edition via the MediaWiki API.
type APIClient struct {
	// BaseURL is the api.php endpoint. Overridable for tests.
	BaseURL string

	userAgent string
	http      *http.Client
}

// New creates an API client for the given language edition (e.g. "bn", "ta").
func New(lang string, cfg Config) *APIClient {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	return &APIClient{
		BaseURL:   fmt.Sprintf("https://%s.wikisource.org/w/api.php", lang),
		userAgent: cfg.UserAgent,
		http: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
	}
}

// pagequality markup written by the Proofread Page extension, e.g.
// <pagequality level="3" user="Alice" />
var pageQualityRe = regexp.MustCompile(`<pagequality level="(\d)" user="([^"]*)"`)

// apiResponse covers the subset of the MediaWiki query API this client uses
// (formatversion=2).
type apiResponse struct {
	Continue *struct {
		PsOffset int `json:"psoffset"`
	} `json:"continue"`
	Query struct {
		PrefixSearch []struct {
			Title string `json:"title"`
		} `json:"prefixsearch"`
		Pages []struct {
			Title     string        `json:"title"`
			Missing   bool          `json:"missing"`
			Revisions []apiRevision `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

type apiRevision struct {
	RevID     int64  `json:"revid"`
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	Slots     struct {
		Main struct {
			Content string `json:"content"`
		} `json:"main"`
	} `json:"slots"`
}

// CreatedPageList enumerates existing pages of a book via a prefix search in
// the Page namespace, following API continuation until exhausted.
func (c *APIClient) CreatedPageList(ctx context.Context, book string) ([]string, error) {
	var pages []string
	offset := 0

	for {
		params := url.Values{}
		params.Set("action", "query")
		params.Set("list", "prefixsearch")
		params.Set("pssearch", "Page:"+book+"/")
		params.Set("pslimit", "max")
		if offset > 0 {
			params.Set("psoffset", strconv.Itoa(offset))
		}

		resp, err := c.get(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("page list for book %q: %w", book, err)
		}

		for _, p := range resp.Query.PrefixSearch {
			pages = append(pages, p.Title)
		}

		if resp.Continue == nil {
			return pages, nil
		}
		offset = resp.Continue.PsOffset
	}
}

// PageStatus fetches the page's revision history (oldest first) and reports
// the first revision that reached proofread quality and the first that
// reached validated quality.
func (c *APIClient) PageStatus(ctx context.Context, page string) (*PageStatus, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "revisions")
	params.Set("titles", page)
	params.Set("rvdir", "newer")
	params.Set("rvlimit", "max")
	params.Set("rvprop", "ids|timestamp|user|content")
	params.Set("rvslots", "main")

	resp, err := c.get(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("status for page %q: %w", page, err)
	}

	if len(resp.Query.Pages) == 0 || resp.Query.Pages[0].Missing {
		return nil, fmt.Errorf("page %q: %w: page not found", page, ErrMalformedStatus)
	}

	status := &PageStatus{}
	for _, rev := range resp.Query.Pages[0].Revisions {
		m := pageQualityRe.FindStringSubmatch(rev.Slots.Main.Content)
		if m == nil {
			continue
		}
		level, _ := strconv.Atoi(m[1])

		var ev *Event
		switch {
		case level == qualityProofread && status.Proofread == nil:
			status.Proofread = &Event{}
			ev = status.Proofread
		case level == qualityValidated && status.Validate == nil:
			status.Validate = &Event{}
			ev = status.Validate
		default:
			continue
		}

		ts, err := time.Parse(time.RFC3339, rev.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("page %q revision %d: %w: bad timestamp %q",
				page, rev.RevID, ErrMalformedStatus, rev.Timestamp)
		}

		// The pagequality user attribute names who set the level; fall
		// back to the revision author when the attribute is empty.
		user := m[2]
		if user == "" {
			user = rev.User
		}

		ev.User = user
		ev.Timestamp = ts
		ev.RevisionID = rev.RevID
	}

	return status, nil
}

// get performs a single API request and decodes the response envelope.
func (c *APIClient) get(ctx context.Context, params url.Values) (*apiResponse, error) {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrSourceUnavailable, res.StatusCode)
	}

	var decoded apiResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrSourceUnavailable, err)
	}

	if decoded.Error != nil {
		return nil, fmt.Errorf("%w: api error %s: %s", ErrSourceUnavailable, decoded.Error.Code, decoded.Error.Info)
	}

	return &decoded, nil
}
