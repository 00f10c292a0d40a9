//go:build ignore
// +build ignore

package main

import (
	"fmt"
	"os"
	"time"

	"gitlab.com/yelinaung/ecb-rates/internal/chart"
	"gitlab.com/yelinaung/ecb-rates/internal/exchange"
	"gitlab.com/yelinaung/ecb-rates/internal/rates"
)

func main() {
	table := rates.NewFromFeed(exchange.Feed{
		Date: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
		Rates: []exchange.Rate{
			{Currency: "USD", Value: "1.0876"},
			{Currency: "JPY", Value: "161.43"},
			{Currency: "BGN", Value: "1.9558"},
			{Currency: "GBP", Value: "0.8541"},
			{Currency: "CHF", Value: "0.9412"},
		},
	})

	chartData, err := chart.RenderValueChart(table, []string{"USD", "GBP", "CHF", "BGN"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile("graph.png", chartData, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ Created graph.png - Example reference rate chart")
}
