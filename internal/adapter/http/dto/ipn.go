package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"ipn-relay/internal/core/domain"
	"ipn-relay/pkg/apperror"
	"ipn-relay/pkg/canonical"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// IPNPayload holds the fields the relay reads from a callback body, after
// coercion to text. Other members are ignored but still covered by the
// signature.
type IPNPayload struct {
	PaymentID     string `validate:"max=128"`
	PaymentStatus string `validate:"max=64"`
	ActuallyPaid  string `validate:"omitempty,max=64"`
	PayAmount     string `validate:"omitempty,max=64"`
	PayCurrency   string `validate:"max=32"`
}

// DecodeIPN splits the body into top-level members. A body that is empty,
// not a JSON object, or an empty object counts as missing.
func DecodeIPN(raw []byte) (map[string]json.RawMessage, error) {
	fields, err := canonical.Decode(raw)
	if err != nil || len(fields) == 0 {
		return nil, apperror.ErrMissingPayload()
	}
	return fields, nil
}

// ParseIPN coerces the decoded members into a notification.
func ParseIPN(fields map[string]json.RawMessage) (domain.PaymentNotification, error) {
	var (
		p   IPNPayload
		err error
	)
	if p.PaymentID, err = scalarText(fields["payment_id"]); err != nil {
		return domain.PaymentNotification{}, apperror.ErrInvalidPayload("payment_id", err)
	}
	if p.PaymentStatus, err = stringField(fields["payment_status"]); err != nil {
		return domain.PaymentNotification{}, apperror.ErrInvalidPayload("payment_status", err)
	}
	if p.PayCurrency, err = stringField(fields["pay_currency"]); err != nil {
		return domain.PaymentNotification{}, apperror.ErrInvalidPayload("pay_currency", err)
	}
	if p.ActuallyPaid, err = scalarText(fields["actually_paid"]); err != nil {
		return domain.PaymentNotification{}, apperror.ErrInvalidPayload("actually_paid", err)
	}
	if p.PayAmount, err = scalarText(fields["pay_amount"]); err != nil {
		return domain.PaymentNotification{}, apperror.ErrInvalidPayload("pay_amount", err)
	}

	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.PaymentNotification{}, apperror.ErrInvalidPayload(jsonName(verrs[0].Field()), err)
		}
		return domain.PaymentNotification{}, apperror.ErrInvalidPayload("payload", err)
	}

	return p.toDomain()
}

func (p IPNPayload) toDomain() (domain.PaymentNotification, error) {
	n := domain.PaymentNotification{
		PaymentID:    p.PaymentID,
		Status:       domain.PaymentStatus(p.PaymentStatus),
		ActuallyPaid: decimal.Zero,
		PayCurrency:  p.PayCurrency,
	}

	if p.ActuallyPaid != "" {
		d, err := decimal.NewFromString(p.ActuallyPaid)
		if err != nil {
			return domain.PaymentNotification{}, apperror.ErrInvalidPayload("actually_paid", err)
		}
		n.ActuallyPaid = d
	}
	if p.PayAmount != "" {
		d, err := decimal.NewFromString(p.PayAmount)
		if err != nil {
			return domain.PaymentNotification{}, apperror.ErrInvalidPayload("pay_amount", err)
		}
		n.PayAmount = decimal.NewNullDecimal(d)
	}
	return n, nil
}

// scalarText returns a string member's value or a number member's literal.
// Absent and null members yield "".
func scalarText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", err
		}
		return n.String(), nil
	}
	return "", fmt.Errorf("unexpected JSON value %s", truncate(raw))
}

func stringField(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("expected string, got %s", truncate(raw))
	}
	return s, nil
}

func truncate(raw []byte) string {
	if len(raw) > 32 {
		return string(raw[:32]) + "..."
	}
	return string(raw)
}

func jsonName(field string) string {
	switch field {
	case "PaymentID":
		return "payment_id"
	case "PaymentStatus":
		return "payment_status"
	case "ActuallyPaid":
		return "actually_paid"
	case "PayAmount":
		return "pay_amount"
	case "PayCurrency":
		return "pay_currency"
	}
	return field
}
