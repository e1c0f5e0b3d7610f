package domain

import "errors"

// Billing error taxonomy. Every failure is locally recoverable and aborts the
// triggering operation with no partial state change; the single documented
// exception is the expiry accounting committed on a failed payment pull.
var (
	ErrInvalidPrice      = errors.New("price must be greater than 0")
	ErrInvalidPeriod     = errors.New("billing period must be greater than 0")
	ErrPlanNotFound      = errors.New("plan not found")
	ErrPlanNotActive     = errors.New("plan is not accepting new subscriptions")
	ErrCapacityExceeded  = errors.New("plan subscriber capacity exceeded")
	ErrAlreadySubscribed = errors.New("already subscribed to this plan")
	ErrNotSubscribed     = errors.New("no active subscription")
	ErrPaymentNotDue     = errors.New("payment is not due yet")
	ErrPaymentFailed     = errors.New("token payment failed")
	ErrUnauthorized      = errors.New("caller is not authorized")
	ErrEnginePaused      = errors.New("billing engine is paused")
	ErrInvalidOwner      = errors.New("owner identity cannot be empty")
)
