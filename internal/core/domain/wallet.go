package domain

import "github.com/shopspring/decimal"

// WalletBalance is a per-(chat, currency) balance. Deposits only ever add to it.
type WalletBalance struct {
	ChatID   string          `json:"chat_id"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

// Credit returns the balance after adding amount to current, where a nil
// current means the wallet does not exist yet.
func Credit(current *decimal.Decimal, amount decimal.Decimal) decimal.Decimal {
	if current == nil {
		return amount
	}
	return current.Add(amount)
}
