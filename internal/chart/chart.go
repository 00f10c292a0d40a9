// Package chart renders rate tables as PNG charts.
package chart

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-analyze/charts"
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/ecb-rates/internal/rates"
)

// ErrNoChartData is returned when none of the requested codes can be charted.
var ErrNoChartData = errors.New("no currencies to chart")

// Slice is one pie slice: the value of one unit of Currency in the base currency.
type Slice struct {
	Currency string
	Value    decimal.Decimal
}

// UnitValues returns the base-currency value of one unit of each known code.
// Unknown codes, the base itself and zero rates are skipped.
func UnitValues(t *rates.Table, codes []string) []Slice {
	one := decimal.NewFromInt(1)
	slices := make([]Slice, 0, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == t.Base() {
			continue
		}
		raw, ok := t.Rate(code)
		if !ok {
			continue
		}
		rate, err := decimal.NewFromString(raw)
		if err != nil || !rate.IsPositive() {
			continue
		}
		slices = append(slices, Slice{Currency: code, Value: one.Div(rate).Round(4)})
	}
	return slices
}

// RenderValueChart creates a pie chart comparing what one unit of each code is
// worth in the table's base currency. Returns PNG image as bytes.
func RenderValueChart(t *rates.Table, codes []string) ([]byte, error) {
	data := UnitValues(t, codes)
	if len(data) == 0 {
		return nil, ErrNoChartData
	}

	values := make([]float64, 0, len(data))
	names := make([]string, 0, len(data))
	for _, s := range data {
		values = append(values, s.Value.InexactFloat64())
		names = append(names, fmt.Sprintf("%s (%s %s)", s.Currency, s.Value.StringFixed(4), t.Base()))
	}

	title := fmt.Sprintf("Value of 1 unit in %s", t.Base())
	if date := t.Date(); date != "" {
		title += " - " + date
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{
			Text: title,
		}),
		charts.LegendLabelsOptionFunc(names),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return buf, nil
}

// Filename returns a download name such as "rates_EUR_2026-10-16.png".
func Filename(t *rates.Table) string {
	if t.AsOf().IsZero() {
		return fmt.Sprintf("rates_%s.png", t.Base())
	}
	return fmt.Sprintf("rates_%s_%s.png", t.Base(), t.AsOf().Format("2006-01-02"))
}
