package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"ipn-relay/internal/core/domain"
	"ipn-relay/internal/core/ports"

	"github.com/rs/zerolog"
)

// Delivery result labels.
const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// AnnounceServiceImpl implements ports.DepositAnnouncer.
type AnnounceServiceImpl struct {
	notifier ports.Notifier
	admins   []string
	recorder ports.OutcomeRecorder
	log      zerolog.Logger
}

// NewAnnounceService creates a new AnnounceServiceImpl. admins receive a copy
// of every announcement, in order.
func NewAnnounceService(notifier ports.Notifier, admins []string, recorder ports.OutcomeRecorder, log zerolog.Logger) *AnnounceServiceImpl {
	return &AnnounceServiceImpl{
		notifier: notifier,
		admins:   admins,
		recorder: recorder,
		log:      log,
	}
}

// AnnounceCredit tells the depositor their balance went up, then each operator.
func (s *AnnounceServiceImpl) AnnounceCredit(ctx context.Context, r *domain.ReconcileResult) {
	s.deliver(ctx, r.Deposit.ChatID, CreditMessage(r))
	admin := AdminCreditMessage(r)
	for _, id := range s.admins {
		s.deliver(ctx, id, admin)
	}
}

// AnnounceFailure tells the depositor the payment failed or expired, then each operator.
func (s *AnnounceServiceImpl) AnnounceFailure(ctx context.Context, r *domain.ReconcileResult) {
	s.deliver(ctx, r.Deposit.ChatID, FailureMessage(r))
	admin := AdminFailureMessage(r)
	for _, id := range s.admins {
		s.deliver(ctx, id, admin)
	}
}

func (s *AnnounceServiceImpl) deliver(ctx context.Context, chatID, text string) {
	if err := s.notifier.Notify(ctx, chatID, text); err != nil {
		s.recorder.RecordDelivery(DeliveryFailed)
		s.log.Error().Err(err).Str("chat_id", chatID).Msg("notification not delivered")
		return
	}
	s.recorder.RecordDelivery(DeliverySent)
}

// CreditMessage is the depositor's receipt. It qualifies the amount when it
// differs from what was expected.
func CreditMessage(r *domain.ReconcileResult) string {
	cur := esc(r.Deposit.Currency)
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Deposit successful!\nAmount: %s %s\nPayment ID: %s",
		r.ActuallyPaid.String(), cur, esc(r.Deposit.PaymentID))

	switch {
	case r.Underpaid():
		fmt.Fprintf(&b, "\n⚠️ Note: You sent less than the expected amount (%s %s). Your balance has been updated accordingly.",
			r.Expected.String(), cur)
	case r.Overpaid():
		fmt.Fprintf(&b, "\nℹ️ Note: You sent more than the expected amount (%s %s). Your balance has been updated with the full amount you sent.",
			r.Expected.String(), cur)
	}
	return b.String()
}

// AdminCreditMessage notes a mismatch without saying which way it went.
func AdminCreditMessage(r *domain.ReconcileResult) string {
	cur := esc(r.Deposit.Currency)
	msg := fmt.Sprintf("🔔 New Deposit\nUser: %s\nAmount: %s %s\nPayment ID: %s",
		esc(r.Deposit.ChatID), r.ActuallyPaid.String(), cur, esc(r.Deposit.PaymentID))
	if r.AmountMismatch() {
		msg += fmt.Sprintf("\n⚠️ Expected: %s %s", r.Expected.String(), cur)
	}
	return msg
}

func FailureMessage(r *domain.ReconcileResult) string {
	return fmt.Sprintf("❌ Deposit failed or expired.\nPayment ID: %s", esc(r.Deposit.PaymentID))
}

func AdminFailureMessage(r *domain.ReconcileResult) string {
	return fmt.Sprintf("🔔 Deposit Failed/Expired\nUser: %s\nPayment ID: %s",
		esc(r.Deposit.ChatID), esc(r.Deposit.PaymentID))
}

// esc escapes values for Telegram's HTML parse mode.
func esc(s string) string {
	return html.EscapeString(s)
}
