package rates

import (
	"html"
	"strings"
)

// DefaultLocale is used when no table locale is configured.
const DefaultLocale = "bg"

// Labels are the captions of the rendered rates table.
type Labels struct {
	Title         string
	BaseReference string
	Currency      string
	Rate          string
}

// LabelsFor returns the captions for a locale ("bg" or "en").
func LabelsFor(locale string) (Labels, bool) {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "bg":
		return Labels{
			Title:         "Референтни курсове на Европейската Централна Банка",
			BaseReference: "Всички курсове са за 1 ",
			Currency:      "Валута",
			Rate:          "Курс",
		}, true
	case "en":
		return Labels{
			Title:         "Reference rates of European Central Bank",
			BaseReference: "All rates are for 1 ",
			Currency:      "Currency",
			Rate:          "Rate",
		}, true
	default:
		return Labels{}, false
	}
}

// RatesTable renders the table as an HTML fragment styled through the
// "rates_table" class. With no visible codes (or just "all") every currency is
// listed; otherwise only the known ones among visible, in the given order.
func (t *Table) RatesTable(labels Labels, visible ...string) string {
	var sb strings.Builder

	sb.WriteString(`<p align="center"><b>`)
	sb.WriteString(html.EscapeString(labels.Title))
	sb.WriteString(`</b></p>`)
	sb.WriteString(`<p align="center">`)
	sb.WriteString(html.EscapeString(labels.BaseReference + t.base))
	sb.WriteString(`</p>`)
	sb.WriteString(`<table class="rates_table"><tr><th>`)
	sb.WriteString(html.EscapeString(labels.Currency))
	sb.WriteString(`</th><th>`)
	sb.WriteString(html.EscapeString(labels.Rate))
	sb.WriteString(`</th></tr>`)

	codes := t.codes
	if len(visible) > 0 && !(len(visible) == 1 && strings.EqualFold(visible[0], "all")) {
		codes = visible
	}
	for _, code := range codes {
		code = normalizeCode(code)
		rate, ok := t.rates[code]
		if !ok {
			continue
		}
		sb.WriteString(`<tr><td>`)
		sb.WriteString(html.EscapeString(code))
		sb.WriteString(`</td><td align="right">`)
		sb.WriteString(html.EscapeString(rate))
		sb.WriteString(`</td></tr>`)
	}

	sb.WriteString(`</table>`)
	return sb.String()
}
