package client

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Pre-dispatch guards. The server validates everything again; these exist so
// the common rejections never cost a round-trip, and their messages match the
// server's wording.
var (
	ErrInvalidAmount  = errors.New("el abono debe ser mayor que cero")
	ErrClientRequired = errors.New("debe indicar un cliente registrado o un cliente externo")
	ErrClientConflict = errors.New("indique un cliente registrado o uno externo, no ambos")
)

// checkPayment rejects non-positive amounts and amounts above the entity's
// outstanding balance.
func checkPayment(amount, balance string) error {
	amt, err := decimal.NewFromString(amount)
	if err != nil || amt.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	bal, err := decimal.NewFromString(balance)
	if err != nil {
		// Unknown balance; let the server decide.
		return nil
	}
	if amt.GreaterThan(bal) {
		return fmt.Errorf("el abono no puede ser mayor que el saldo pendiente (%s)", bal.StringFixed(2))
	}
	return nil
}

// checkClientMode enforces the registered-client XOR walk-in-client rule.
func checkClientMode(clientID, clientName string) error {
	hasID := clientID != ""
	hasName := clientName != ""
	if hasID && hasName {
		return ErrClientConflict
	}
	if !hasID && !hasName {
		return ErrClientRequired
	}
	return nil
}
