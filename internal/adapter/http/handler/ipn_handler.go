package handler

import (
	"errors"
	"io"
	"net/http"

	"ipn-relay/internal/adapter/http/dto"
	"ipn-relay/internal/core/ports"
	"ipn-relay/internal/service"
	"ipn-relay/pkg/apperror"
	"ipn-relay/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RootMessage is served at / for uptime probes.
const RootMessage = "IPN Webhook Service for NOWPayments. Use /ipn endpoint for payment notifications."

// IPNHandler receives payment processor callbacks.
type IPNHandler struct {
	sigSvc       ports.SignatureService
	reconcileSvc ports.ReconcileService
	recorder     ports.OutcomeRecorder
	sigHeader    string
	log          zerolog.Logger
}

// NewIPNHandler creates a new IPNHandler. sigHeader names the request header
// carrying the hex signature.
func NewIPNHandler(
	sigSvc ports.SignatureService,
	reconcileSvc ports.ReconcileService,
	recorder ports.OutcomeRecorder,
	sigHeader string,
	log zerolog.Logger,
) *IPNHandler {
	return &IPNHandler{
		sigSvc:       sigSvc,
		reconcileSvc: reconcileSvc,
		recorder:     recorder,
		sigHeader:    sigHeader,
		log:          log,
	}
}

// Root handles GET and HEAD /.
func (h *IPNHandler) Root(c *gin.Context) {
	response.Message(c, RootMessage)
}

// Receive handles POST /ipn. Authentication and decoding failures are
// answered here; everything after is the reconcile service's.
func (h *IPNHandler) Receive(c *gin.Context) {
	h.log.Info().Msg("received IPN callback")

	signature := c.GetHeader(h.sigHeader)
	if signature == "" {
		h.reject(c, apperror.ErrMissingSignature())
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(c, apperror.ErrPayloadTooLarge())
			return
		}
		h.reject(c, apperror.ErrMissingPayload())
		return
	}

	fields, err := dto.DecodeIPN(body)
	if err != nil {
		h.reject(c, err)
		return
	}

	if !h.sigSvc.Verify(body, signature) {
		h.reject(c, apperror.ErrInvalidSignature())
		return
	}

	n, err := dto.ParseIPN(fields)
	if err != nil {
		h.reject(c, err)
		return
	}

	h.log.Info().
		Str("payment_id", n.PaymentID).
		Str("status", string(n.Status)).
		Str("actually_paid", n.ActuallyPaid.String()).
		Str("pay_currency", n.PayCurrency).
		Msg("IPN verified")

	if _, err := h.reconcileSvc.Reconcile(c.Request.Context(), n); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c)
}

func (h *IPNHandler) reject(c *gin.Context, err error) {
	h.log.Warn().Err(err).Str("client_ip", c.ClientIP()).Msg("IPN rejected")
	h.recorder.RecordCallback(service.OutcomeLabel(err))
	response.Error(c, err)
}
