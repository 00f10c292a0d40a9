package rates

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"gitlab.com/yelinaung/ecb-rates/internal/exchange"
	"gitlab.com/yelinaung/ecb-rates/internal/logger"
)

var _ exchange.Service = (*Converter)(nil)

// Converter adapts a Table to exchange.Service.
type Converter struct {
	table       *Table
	conversions metric.Int64Counter
}

// NewConverter wraps t. The converter reads t on every call, so re-basing t
// is visible to later conversions.
func NewConverter(t *Table) *Converter {
	conversions, err := otel.Meter("gitlab.com/yelinaung/ecb-rates/internal/rates").Int64Counter(
		"ecb_rates.conversions",
		metric.WithDescription("Number of currency conversions by result"),
	)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to create conversion counter")
	}
	return &Converter{table: t, conversions: conversions}
}

// Convert converts amount using the table's cross rate.
func (c *Converter) Convert(
	ctx context.Context,
	amount decimal.Decimal,
	fromCurrency, toCurrency string,
) (exchange.ConversionResult, error) {
	result, err := c.convert(amount, fromCurrency, toCurrency)
	if c.conversions != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		c.conversions.Add(ctx, 1, metric.WithAttributes(attribute.String("result", status)))
	}
	return result, err
}

func (c *Converter) convert(amount decimal.Decimal, from, to string) (exchange.ConversionResult, error) {
	if to == "" {
		to = c.table.Base()
	}

	converted, err := c.table.Exchange(amount, from, to)
	if err != nil {
		return exchange.ConversionResult{}, err
	}
	rate, err := c.table.CrossRate(from, to)
	if err != nil {
		return exchange.ConversionResult{}, err
	}

	amountValue, err := decimal.NewFromString(converted)
	if err != nil {
		return exchange.ConversionResult{}, fmt.Errorf("failed to parse converted amount: %w", err)
	}
	rateValue, err := decimal.NewFromString(rate)
	if err != nil {
		return exchange.ConversionResult{}, fmt.Errorf("failed to parse cross rate: %w", err)
	}

	return exchange.ConversionResult{
		Amount:   amountValue,
		Rate:     rateValue,
		RateDate: c.table.AsOf(),
	}, nil
}
