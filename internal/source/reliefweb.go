package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"github.com/faizalashwel-dev/Yemen-weather-data/internal/extract"
)

// ReliefWebClient fetches sector update feeds from the ReliefWeb RSS surface,
// which is open where the JSON API demands registration.
type ReliefWebClient struct {
	name    string
	baseURL string
	country string
	parser  *gofeed.Parser
	timeout time.Duration
	circuit *gobreaker.CircuitBreaker
}

func NewReliefWebClient(client *http.Client, country string) *ReliefWebClient {
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = browserHeaders["User-Agent"]
	return &ReliefWebClient{
		name:    "reliefweb",
		baseURL: "https://reliefweb.int/updates/rss.xml",
		country: country,
		parser:  parser,
		timeout: 25 * time.Second,
		circuit: newCircuit("reliefweb"),
	}
}

func (c *ReliefWebClient) Name() string { return c.name }

// Updates fetches the feed filtered to the client's country and the given
// theme names, returning one item per feed entry.
func (c *ReliefWebClient) Updates(ctx context.Context, themes []string) ([]extract.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := fmt.Sprintf("%s?search=%s", c.baseURL, url.QueryEscape(c.searchExpr(themes)))

	result, err := c.circuit.Execute(func() (interface{}, error) {
		feed, parseErr := c.parser.ParseURLWithContext(u, ctx)
		if parseErr != nil {
			return nil, c.classify(parseErr)
		}
		return feed, nil
	})
	if err != nil {
		var se *SourceError
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, &SourceError{Provider: c.name, Kind: FailureUnreachable, Err: err}
	}

	feed, ok := result.(*gofeed.Feed)
	if !ok {
		return nil, &SourceError{Provider: c.name, Kind: FailureMalformed, Err: errors.New("unexpected result type from circuit breaker")}
	}

	items := make([]extract.Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		item := extract.Item{
			Title:       it.Title,
			Description: it.Description,
			Link:        it.Link,
		}
		if it.PublishedParsed != nil {
			item.Published = it.PublishedParsed.UTC()
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *ReliefWebClient) searchExpr(themes []string) string {
	expr := fmt.Sprintf("primary_country.name:%q", c.country)
	if len(themes) > 0 {
		quoted := ""
		for i, t := range themes {
			if i > 0 {
				quoted += " OR "
			}
			quoted += fmt.Sprintf("%q", t)
		}
		expr += fmt.Sprintf(" AND theme.name:(%s)", quoted)
	}
	return expr
}

func (c *ReliefWebClient) classify(err error) *SourceError {
	var httpErr gofeed.HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == http.StatusTooManyRequests:
			return &SourceError{Provider: c.name, Kind: FailureRateLimited, Err: err}
		case httpErr.StatusCode >= 500:
			return &SourceError{Provider: c.name, Kind: FailureUnreachable, Err: err}
		default:
			return &SourceError{Provider: c.name, Kind: FailureMalformed, Err: err}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &SourceError{Provider: c.name, Kind: FailureTimeout, Err: err}
	}
	if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
		return &SourceError{Provider: c.name, Kind: FailureMalformed, Err: err}
	}
	return classifyTransport(c.name, err)
}
