package policy

import (
	"strings"

	"stablebook/pkg/model"
)

// IsDeferred reports payment collected at the stable rather than online.
func IsDeferred(paymentMethod string) bool {
	return strings.EqualFold(strings.TrimSpace(paymentMethod), model.PaymentMethodCash)
}

// CashAllowed applies the trusted-only gate to deferred payment.
func CashAllowed(paymentMethod string, trustedOnly, callerTrusted bool) bool {
	if !IsDeferred(paymentMethod) || !trustedOnly {
		return true
	}
	return callerTrusted
}
