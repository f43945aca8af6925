/*
Package engine
File: errors.go
Description:
    Errors returned by purchases and balance updates.
    Each typed error matches its sentinel with errors.Is and carries the details
    a caller needs to explain the failure.
*/

package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientFunds is returned when a purchase costs more than the current currency.
	// It is an ordinary game outcome; state is left untouched.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUnknownUpgrade means the caller used an id that is not in the catalog.
	// This is an integration bug between the presentation layer and the engine.
	ErrUnknownUpgrade = errors.New("unknown upgrade")

	// ErrInvalidCurrency is returned by SetCurrency for negative or NaN amounts.
	ErrInvalidCurrency = errors.New("currency must be a non-negative number")
)

// UnknownUpgradeError carries the offending id. It matches ErrUnknownUpgrade.
type UnknownUpgradeError struct {
	ID int
}

func (e *UnknownUpgradeError) Error() string {
	return fmt.Sprintf("unknown upgrade id %d", e.ID)
}

func (e *UnknownUpgradeError) Is(target error) bool {
	return target == ErrUnknownUpgrade
}

// InsufficientFundsError reports how far short a purchase fell. It matches ErrInsufficientFunds.
type InsufficientFundsError struct {
	ID       int
	Cost     float64
	Currency float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("upgrade %d costs %.2f, have %.2f: %v", e.ID, e.Cost, e.Currency, ErrInsufficientFunds)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}
