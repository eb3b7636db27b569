package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"

	"ipn-relay/internal/core/domain"
)

// SignatureService authenticates IPN payloads with the deployment's shared secret.
type SignatureService interface {
	// Sign returns the hex HMAC-SHA512 of the canonical form of payload.
	Sign(payload []byte) (string, error)
	// Verify compares in constant time. Undecodable payloads never verify.
	Verify(payload []byte, signature string) bool
}

// Locker serializes the reconciliation critical section.
type Locker interface {
	// Acquire blocks until the lock is held or ctx is done.
	Acquire(ctx context.Context) (release func(), err error)
}

// Notifier delivers a text message to one chat.
type Notifier interface {
	Notify(ctx context.Context, chatID string, text string) error
}

// DepositAnnouncer tells the depositor and the operators about a committed outcome.
// Delivery is best-effort; nothing is returned.
type DepositAnnouncer interface {
	AnnounceCredit(ctx context.Context, result *domain.ReconcileResult)
	AnnounceFailure(ctx context.Context, result *domain.ReconcileResult)
}

// ReconcileService applies a verified notification to its pending deposit.
type ReconcileService interface {
	Reconcile(ctx context.Context, n domain.PaymentNotification) (*domain.ReconcileResult, error)
}

// OutcomeRecorder counts reconciliation and delivery results.
type OutcomeRecorder interface {
	RecordCallback(outcome string)
	RecordDelivery(result string)
}
