package exchange

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/yelinaung/ecb-rates/internal/logger"
)

// DefaultFeedURL is the ECB daily reference rates document.
const DefaultFeedURL = "http://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"

const instrumentationName = "gitlab.com/yelinaung/ecb-rates/internal/exchange"

// ECBClient downloads the ECB daily reference rates feed.
type ECBClient struct {
	feedURL    string
	httpClient *http.Client
	tracer     trace.Tracer
	fetches    metric.Int64Counter
}

// NewECBClient creates a feed client. Empty URL and non-positive timeout fall back to defaults.
func NewECBClient(feedURL string, timeout time.Duration) *ECBClient {
	trimmed := strings.TrimSpace(feedURL)
	if trimmed == "" {
		trimmed = DefaultFeedURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	fetches, err := otel.Meter(instrumentationName).Int64Counter(
		"ecb_rates.feed.fetches",
		metric.WithDescription("Number of feed downloads by result"),
	)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to create feed fetch counter")
	}

	return &ECBClient{
		feedURL: trimmed,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tracer:  otel.Tracer(instrumentationName),
		fetches: fetches,
	}
}

// FetchLatest downloads and decodes the latest feed.
func (c *ECBClient) FetchLatest(ctx context.Context) (Feed, error) {
	ctx, span := c.tracer.Start(ctx, "ecb.fetch_latest",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("feed.url", c.feedURL)),
	)
	defer span.End()

	feed, err := c.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.record(ctx, "error")
		return Feed{}, err
	}

	span.SetAttributes(
		attribute.Int("feed.rates", len(feed.Rates)),
		attribute.String("feed.date", feed.Date.Format("2006-01-02")),
	)
	c.record(ctx, "ok")

	logger.Log.Debug().
		Str("date", feed.Date.Format("2006-01-02")).
		Int("rates", len(feed.Rates)).
		Msg("Fetched ECB feed")

	return feed, nil
}

func (c *ECBClient) fetch(ctx context.Context) (Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return Feed{}, fmt.Errorf("failed to create feed request: %w", err)
	}
	req.Header.Set("Accept", "application/xml, text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Feed{}, fmt.Errorf("failed to request feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Feed{}, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	return ParseFeed(resp.Body)
}

func (c *ECBClient) record(ctx context.Context, result string) {
	if c.fetches == nil {
		return
	}
	c.fetches.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
