package economy

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientPoints matches any *InsufficientPointsError.
	ErrInsufficientPoints = errors.New("insufficient points")
	// ErrInvalidTier is returned when an amount must match a fixed tier and does not.
	ErrInvalidTier = errors.New("invalid tier")
	// ErrInvalidAmount is returned for negative spends or non-positive credits.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidPlan is returned when settlement is asked to divide by a non-positive plan.
	ErrInvalidPlan = errors.New("invalid plan limit")
)

// InsufficientPointsError reports a rejected spend together with the balance
// the caller can show.
type InsufficientPointsError struct {
	Balance   int64
	Requested int64
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: have %d, need %d", e.Balance, e.Requested)
}

// Is lets errors.Is(err, ErrInsufficientPoints) match.
func (e *InsufficientPointsError) Is(target error) bool {
	return target == ErrInsufficientPoints
}
