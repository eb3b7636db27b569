package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ipn-relay/internal/core/domain"
	"ipn-relay/internal/core/ports"
	"ipn-relay/pkg/apperror"

	"github.com/rs/zerolog"
)

// Callback outcome labels for requests that did not reach a terminal branch.
const (
	OutcomeMissingSignature = "missing_signature"
	OutcomeMissingPayload   = "missing_payload"
	OutcomePayloadTooLarge  = "payload_too_large"
	OutcomeInvalidPayload   = "invalid_payload"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeNotFound         = "not_found"
	OutcomeCurrencyMismatch = "currency_mismatch"
	OutcomeLockTimeout      = "lock_timeout"
	OutcomeError            = "error"
)

// OutcomeLabel maps a rejection to its callback outcome label.
func OutcomeLabel(err error) string {
	switch {
	case errors.Is(err, apperror.ErrMissingSignature()):
		return OutcomeMissingSignature
	case errors.Is(err, apperror.ErrMissingPayload()):
		return OutcomeMissingPayload
	case errors.Is(err, apperror.ErrPayloadTooLarge()):
		return OutcomePayloadTooLarge
	case errors.Is(err, apperror.ErrInvalidPayload("", nil)):
		return OutcomeInvalidPayload
	case errors.Is(err, apperror.ErrInvalidSignature()):
		return OutcomeInvalidSignature
	case errors.Is(err, apperror.ErrPaymentNotFound()):
		return OutcomeNotFound
	case errors.Is(err, apperror.ErrCurrencyMismatch()):
		return OutcomeCurrencyMismatch
	case errors.Is(err, apperror.ErrLockTimeout(nil)):
		return OutcomeLockTimeout
	default:
		return OutcomeError
	}
}

// ReconcileServiceImpl implements ports.ReconcileService.
type ReconcileServiceImpl struct {
	store      ports.DepositStore
	locker     ports.Locker
	announcer  ports.DepositAnnouncer
	recorder   ports.OutcomeRecorder
	currencies domain.CurrencyTable
	lockWait   time.Duration
	log        zerolog.Logger
}

// NewReconcileService creates a new ReconcileServiceImpl. lockWait bounds how
// long a request queues for the lock; zero waits as long as the request lives.
func NewReconcileService(
	store ports.DepositStore,
	locker ports.Locker,
	announcer ports.DepositAnnouncer,
	recorder ports.OutcomeRecorder,
	currencies domain.CurrencyTable,
	lockWait time.Duration,
	log zerolog.Logger,
) *ReconcileServiceImpl {
	return &ReconcileServiceImpl{
		store:      store,
		locker:     locker,
		announcer:  announcer,
		recorder:   recorder,
		currencies: currencies,
		lockWait:   lockWait,
		log:        log,
	}
}

// Reconcile applies a verified notification to its pending deposit and, once
// the change is committed and the lock released, announces the outcome.
func (s *ReconcileServiceImpl) Reconcile(ctx context.Context, n domain.PaymentNotification) (*domain.ReconcileResult, error) {
	result, err := s.apply(ctx, n)
	if err != nil {
		s.recorder.RecordCallback(OutcomeLabel(err))
		return nil, err
	}
	s.recorder.RecordCallback(string(result.Outcome))

	switch result.Outcome {
	case domain.OutcomeCredit:
		s.announcer.AnnounceCredit(ctx, result)
	case domain.OutcomeFail:
		s.announcer.AnnounceFailure(ctx, result)
	}

	return result, nil
}

func (s *ReconcileServiceImpl) apply(ctx context.Context, n domain.PaymentNotification) (*domain.ReconcileResult, error) {
	lockCtx := ctx
	if s.lockWait > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.lockWait)
		defer cancel()
	}

	release, err := s.locker.Acquire(lockCtx)
	if err != nil {
		return nil, apperror.ErrLockTimeout(err)
	}
	defer release()

	dbTx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	deposit, err := dbTx.GetPendingDeposit(ctx, n.PaymentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get pending deposit: %w", err))
	}
	if deposit == nil {
		s.log.Warn().Str("payment_id", n.PaymentID).Str("status", string(n.Status)).Msg("no pending deposit for notification")
		return nil, apperror.ErrPaymentNotFound()
	}

	if !s.currencies.Matches(n.PayCurrency, deposit.Currency) {
		s.log.Warn().
			Str("payment_id", n.PaymentID).
			Str("pay_currency", n.PayCurrency).
			Str("expected_currency", deposit.Currency).
			Msg("currency mismatch, pending deposit kept")
		return nil, apperror.ErrCurrencyMismatch()
	}

	result := &domain.ReconcileResult{
		Outcome:      n.Status.Outcome(),
		Deposit:      *deposit,
		ActuallyPaid: n.ActuallyPaid,
		Expected:     domain.ExpectedAmount(n, *deposit),
	}

	switch result.Outcome {
	case domain.OutcomeCredit:
		current, err := dbTx.GetWalletBalance(ctx, deposit.ChatID, deposit.Currency)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("get wallet balance: %w", err))
		}
		result.NewBalance = domain.Credit(current, n.ActuallyPaid)
		if err := dbTx.UpsertWalletBalance(ctx, deposit.ChatID, deposit.Currency, result.NewBalance); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("upsert wallet balance: %w", err))
		}
		if err := dbTx.DeletePendingDeposit(ctx, deposit.PaymentID); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("delete pending deposit: %w", err))
		}

	case domain.OutcomeFail:
		if err := dbTx.DeletePendingDeposit(ctx, deposit.PaymentID); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("delete pending deposit: %w", err))
		}

	default:
		s.log.Info().Str("payment_id", n.PaymentID).Str("status", string(n.Status)).Msg("non-terminal status ignored")
		return result, nil
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("payment_id", deposit.PaymentID).
		Str("chat_id", deposit.ChatID).
		Str("outcome", string(result.Outcome)).
		Str("actually_paid", n.ActuallyPaid.String()).
		Str("expected", result.Expected.String()).
		Str("currency", deposit.Currency).
		Msg("notification reconciled")

	return result, nil
}
