package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// zeroDecimalCurrencies have no minor unit
var zeroDecimalCurrencies = map[string]bool{
	"clp": true,
	"jpy": true,
	"krw": true,
	"ugx": true,
	"vnd": true,
	"xaf": true,
	"xof": true,
}

const DefaultCurrencyPrecision = 2

// GetCurrencyPrecision returns the number of minor unit digits for a currency
func GetCurrencyPrecision(currency string) int32 {
	if zeroDecimalCurrencies[strings.ToLower(currency)] {
		return 0
	}
	return DefaultCurrencyPrecision
}

// RoundToCurrencyPrecision rounds half away from zero to the currency's minor unit
func RoundToCurrencyPrecision(amount decimal.Decimal, currency string) decimal.Decimal {
	return amount.Round(GetCurrencyPrecision(currency))
}
