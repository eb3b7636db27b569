package domain

import "strings"

// CurrencyTable maps processor currency codes to the canonical codes stored
// on pending deposits.
type CurrencyTable map[string]string

// DefaultCurrencyTable returns the built-in processor code mapping.
func DefaultCurrencyTable() CurrencyTable {
	return CurrencyTable{
		"btc":       "BTC",
		"eth":       "ETH",
		"ltc":       "LTC",
		"trx":       "TRX",
		"sol":       "SOL",
		"usdttrc20": "USDT_TRC20",
		"usdterc20": "USDT_ETH",
		"usdt":      "USDT_ETH",
		"usdtsol":   "USDT_SOL",
		"usdc":      "USDC_ETH",
		"usdcsol":   "USDC_SOL",
	}
}

// WithOverrides returns a copy of t extended by extra. Keys are matched
// case-insensitively.
func (t CurrencyTable) WithOverrides(extra map[string]string) CurrencyTable {
	out := make(CurrencyTable, len(t)+len(extra))
	for k, v := range t {
		out[strings.ToLower(k)] = v
	}
	for k, v := range extra {
		out[strings.ToLower(k)] = v
	}
	return out
}

// Canonical maps a processor code. Unknown codes pass through unchanged.
func (t CurrencyTable) Canonical(code string) string {
	if c, ok := t[strings.ToLower(code)]; ok {
		return c
	}
	return code
}

// Matches reports whether the processor code resolves to the deposit currency.
func (t CurrencyTable) Matches(processorCode, depositCurrency string) bool {
	return strings.EqualFold(t.Canonical(processorCode), depositCurrency)
}
