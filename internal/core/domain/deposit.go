package domain

import "github.com/shopspring/decimal"

// PaymentStatus is the processor-reported state of a payment.
type PaymentStatus string

const (
	PaymentStatusFinished  PaymentStatus = "finished"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusExpired   PaymentStatus = "expired"
)

// Outcome is the terminal branch a notification resolves to.
type Outcome string

const (
	OutcomeCredit Outcome = "credit"
	OutcomeFail   Outcome = "fail"
	OutcomeIgnore Outcome = "ignore"
)

// Outcome maps the status to its reconciliation branch. Statuses the relay
// does not act on (waiting, confirming, partially_paid, ...) are ignored.
func (s PaymentStatus) Outcome() Outcome {
	switch s {
	case PaymentStatusFinished, PaymentStatusConfirmed:
		return OutcomeCredit
	case PaymentStatusFailed, PaymentStatusExpired:
		return OutcomeFail
	default:
		return OutcomeIgnore
	}
}

// PendingDeposit is an expected incoming payment awaiting confirmation.
// It is created by the deposit flow and removed exactly once here.
type PendingDeposit struct {
	PaymentID      string          `json:"payment_id"`
	ChatID         string          `json:"chat_id"`
	Currency       string          `json:"currency"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
}

// PaymentNotification is the decoded IPN callback body.
type PaymentNotification struct {
	PaymentID    string
	Status       PaymentStatus
	ActuallyPaid decimal.Decimal
	PayAmount    decimal.NullDecimal // absent when the processor omits pay_amount
	PayCurrency  string
}

// ReconcileResult describes what a reconciliation did.
type ReconcileResult struct {
	Outcome      Outcome
	Deposit      PendingDeposit
	ActuallyPaid decimal.Decimal
	// Expected is the amount the payment is compared against: the processor's
	// pay_amount, or the deposit's expected amount when that is absent.
	Expected   decimal.Decimal
	NewBalance decimal.Decimal
}

// ExpectedAmount picks the comparison amount for a notification.
func ExpectedAmount(n PaymentNotification, d PendingDeposit) decimal.Decimal {
	if n.PayAmount.Valid {
		return n.PayAmount.Decimal
	}
	return d.ExpectedAmount
}

// Underpaid reports whether less than expected arrived.
func (r *ReconcileResult) Underpaid() bool {
	return r.ActuallyPaid.LessThan(r.Expected)
}

// Overpaid reports whether more than expected arrived.
func (r *ReconcileResult) Overpaid() bool {
	return r.ActuallyPaid.GreaterThan(r.Expected)
}

// AmountMismatch reports any difference, regardless of direction.
func (r *ReconcileResult) AmountMismatch() bool {
	return !r.ActuallyPaid.Equal(r.Expected)
}
