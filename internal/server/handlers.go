package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/ecb-rates/internal/chart"
	"gitlab.com/yelinaung/ecb-rates/internal/logger"
	appmodels "gitlab.com/yelinaung/ecb-rates/internal/models"
	"gitlab.com/yelinaung/ecb-rates/internal/rates"
)

const isoDate = "2006-01-02"

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// CurrencyResponse describes one table entry.
type CurrencyResponse struct {
	Code   string `json:"code"`
	Rate   string `json:"rate"`
	Symbol string `json:"symbol"`
	Name   string `json:"name,omitempty"`
}

// CurrenciesResponse is returned by GET /api/currencies.
type CurrenciesResponse struct {
	Base       string             `json:"base"`
	Date       string             `json:"date,omitempty"`
	Parsed     bool               `json:"parsed"`
	Currencies []CurrencyResponse `json:"currencies"`
}

// ConvertResponse is returned by GET /api/convert.
type ConvertResponse struct {
	Amount   string `json:"amount"`
	From     string `json:"from"`
	To       string `json:"to"`
	Result   string `json:"result"`
	Rate     string `json:"rate"`
	RateDate string `json:"rate_date,omitempty"`
}

// CrossResponse is returned by GET /api/cross.
type CrossResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
	Rate string `json:"rate"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status     string `json:"status"`
	Parsed     bool   `json:"parsed"`
	Date       string `json:"date,omitempty"`
	Base       string `json:"base"`
	Currencies int    `json:"currencies"`
	Error      string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Status: status})
}

// writeTableError maps table failures to 404 for unknown codes, 400 otherwise.
func writeTableError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, rates.ErrUnknownCurrency) {
		status = http.StatusNotFound
	}
	writeError(w, status, err.Error())
}

func isoDateOf(t *rates.Table) string {
	if t.AsOf().IsZero() {
		return ""
	}
	return t.AsOf().Format(isoDate)
}

func splitCodes(raw string) []string {
	var codes []string
	for code := range strings.SplitSeq(raw, ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// handleRates renders the HTML rate table.
func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	table := s.snapshot()

	if base := q.Get("base"); base != "" {
		if err := table.SetBaseCurrency(base); err != nil {
			writeTableError(w, err)
			return
		}
	}

	locale := q.Get("lang")
	if locale == "" {
		locale = s.locale
	}
	labels, ok := rates.LabelsFor(strings.ToLower(locale))
	if !ok {
		writeError(w, http.StatusBadRequest, "unsupported lang "+locale)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(table.RatesTable(labels, splitCodes(q.Get("visible"))...)))
}

// handleCurrencies lists every code with its rate.
func (s *Server) handleCurrencies(w http.ResponseWriter, _ *http.Request) {
	table := s.snapshot()

	resp := CurrenciesResponse{
		Base:       table.Base(),
		Date:       isoDateOf(table),
		Parsed:     table.Parsed(),
		Currencies: make([]CurrencyResponse, 0, table.Len()),
	}
	for _, code := range table.CurrencyList() {
		rate, _ := table.Rate(code)
		resp.Currencies = append(resp.Currencies, CurrencyResponse{
			Code:   code,
			Rate:   rate,
			Symbol: appmodels.Symbol(code),
			Name:   appmodels.Name(code),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleConvert converts amount between two currencies.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rawAmount := q.Get("amount")
	from := strings.ToUpper(strings.TrimSpace(q.Get("from")))
	to := strings.ToUpper(strings.TrimSpace(q.Get("to")))

	if rawAmount == "" || from == "" {
		writeError(w, http.StatusBadRequest, "amount and from are required")
		return
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount "+rawAmount)
		return
	}

	table := s.snapshot()
	if to == "" {
		to = table.Base()
	}

	result, err := rates.NewConverter(table).Convert(r.Context(), amount, from, to)
	if err != nil {
		writeTableError(w, err)
		return
	}

	resp := ConvertResponse{
		Amount: amount.String(),
		From:   from,
		To:     to,
		Result: result.Amount.StringFixed(2),
		Rate:   result.Rate.StringFixed(4),
	}
	if !result.RateDate.IsZero() {
		resp.RateDate = result.RateDate.Format(isoDate)
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleCross returns the cross rate between two currencies.
func (s *Server) handleCross(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := strings.ToUpper(strings.TrimSpace(q.Get("from")))
	to := strings.ToUpper(strings.TrimSpace(q.Get("to")))
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	rate, err := s.snapshot().CrossRate(from, to)
	if err != nil {
		writeTableError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CrossResponse{From: from, To: to, Rate: rate})
}

// handleChart renders the unit value pie chart as PNG.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	codes := splitCodes(r.URL.Query().Get("codes"))
	if len(codes) == 0 {
		codes = s.chartCodes
	}

	table := s.snapshot()
	png, err := chart.RenderValueChart(table, codes)
	if err != nil {
		if errors.Is(err, chart.ErrNoChartData) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		logger.Log.Error().Err(err).Msg("Failed to render chart")
		writeError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `inline; filename="`+chart.Filename(table)+`"`)
	_, _ = w.Write(png)
}

// handleHealth reports whether the table came from the feed.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	table := s.snapshot()

	resp := HealthResponse{
		Status:     "ok",
		Parsed:     table.Parsed(),
		Date:       isoDateOf(table),
		Base:       table.Base(),
		Currencies: table.Len(),
	}
	if !table.Parsed() {
		resp.Status = "degraded"
		if err := table.LastError(); err != nil {
			resp.Error = err.Error()
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
