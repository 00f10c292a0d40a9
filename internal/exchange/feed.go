package exchange

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// AnchorCurrency is the currency every ECB reference rate is quoted against.
const AnchorCurrency = "EUR"

var (
	errEmptyFeed       = errors.New("feed contains no rates")
	errInvalidFeedDate = errors.New("feed date is invalid")
)

// Rate is a single currency entry of the feed. Value is kept exactly as published.
type Rate struct {
	Currency string
	Value    string
}

// Feed is the decoded daily reference rates document.
type Feed struct {
	Date  time.Time
	Rates []Rate
}

type envelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Subject string   `xml:"subject"`
	Sender  string   `xml:"Sender>name"`
	Days    []cube   `xml:"Cube>Cube"`
}

type cube struct {
	Time  string      `xml:"time,attr"`
	Rates []cubeEntry `xml:"Cube"`
}

type cubeEntry struct {
	Currency string `xml:"currency,attr"`
	Rate     string `xml:"rate,attr"`
}

// ParseFeed decodes an eurofxref XML document. Only the first dated cube is used.
func ParseFeed(r io.Reader) (Feed, error) {
	var env envelope
	if err := xml.NewDecoder(r).Decode(&env); err != nil {
		return Feed{}, fmt.Errorf("failed to decode feed: %w", err)
	}
	if len(env.Days) == 0 {
		return Feed{}, errEmptyFeed
	}

	day := env.Days[0]
	date, err := time.Parse("2006-01-02", strings.TrimSpace(day.Time))
	if err != nil {
		return Feed{}, fmt.Errorf("%w: %q", errInvalidFeedDate, day.Time)
	}
	if len(day.Rates) == 0 {
		return Feed{}, errEmptyFeed
	}

	feed := Feed{
		Date:  date,
		Rates: make([]Rate, 0, len(day.Rates)),
	}
	for _, entry := range day.Rates {
		feed.Rates = append(feed.Rates, Rate{
			Currency: strings.ToUpper(strings.TrimSpace(entry.Currency)),
			Value:    strings.TrimSpace(entry.Rate),
		})
	}

	return feed, nil
}
