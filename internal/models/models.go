// Package models defines the currency metadata shown alongside rates.
package models

import "strings"

// DefaultCurrency is the currency assumed when a conversion omits the target.
const DefaultCurrency = "EUR"

// CurrencySymbols maps ECB currency codes to their display symbol.
var CurrencySymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"JPY": "¥",
	"BGN": "лв",
	"CZK": "Kč",
	"DKK": "kr",
	"GBP": "£",
	"HUF": "Ft",
	"PLN": "zł",
	"RON": "lei",
	"SEK": "kr",
	"CHF": "Fr",
	"ISK": "kr",
	"NOK": "kr",
	"TRY": "₺",
	"AUD": "A$",
	"BRL": "R$",
	"CAD": "C$",
	"CNY": "¥",
	"HKD": "HK$",
	"IDR": "Rp",
	"ILS": "₪",
	"INR": "₹",
	"KRW": "₩",
	"MXN": "Mex$",
	"MYR": "RM",
	"NZD": "NZ$",
	"PHP": "₱",
	"SGD": "S$",
	"THB": "฿",
	"ZAR": "R",
}

// CurrencyNames maps ECB currency codes to their English name.
var CurrencyNames = map[string]string{
	"EUR": "Euro",
	"USD": "US dollar",
	"JPY": "Japanese yen",
	"BGN": "Bulgarian lev",
	"CZK": "Czech koruna",
	"DKK": "Danish krone",
	"GBP": "Pound sterling",
	"HUF": "Hungarian forint",
	"PLN": "Polish zloty",
	"RON": "Romanian leu",
	"SEK": "Swedish krona",
	"CHF": "Swiss franc",
	"ISK": "Icelandic krona",
	"NOK": "Norwegian krone",
	"TRY": "Turkish lira",
	"AUD": "Australian dollar",
	"BRL": "Brazilian real",
	"CAD": "Canadian dollar",
	"CNY": "Chinese yuan renminbi",
	"HKD": "Hong Kong dollar",
	"IDR": "Indonesian rupiah",
	"ILS": "Israeli shekel",
	"INR": "Indian rupee",
	"KRW": "South Korean won",
	"MXN": "Mexican peso",
	"MYR": "Malaysian ringgit",
	"NZD": "New Zealand dollar",
	"PHP": "Philippine peso",
	"SGD": "Singapore dollar",
	"THB": "Thai baht",
	"ZAR": "South African rand",
}

// Symbol returns the display symbol for code, or the code itself when unknown.
func Symbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if symbol, ok := CurrencySymbols[code]; ok {
		return symbol
	}
	return code
}

// Name returns the English currency name, empty when unknown.
func Name(code string) string {
	return CurrencyNames[strings.ToUpper(strings.TrimSpace(code))]
}

// Describe returns "CODE (Name)" or just the code when the name is unknown.
func Describe(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if name := Name(code); name != "" {
		return code + " (" + name + ")"
	}
	return code
}
