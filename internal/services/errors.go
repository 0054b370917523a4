package services

// Custom errors
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

// InvalidStateError covers operations that are valid requests against the
// wrong state: closing a session that is not open, or addressing a
// non-student account with a student operation.
type InvalidStateError struct{ Message string }

func (e *InvalidStateError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

// AggregationError wraps a persistence failure during a rollup merge or
// snapshot write. The session itself is already closed when this surfaces;
// closing is the durable fact, the rollup is a derived view.
type AggregationError struct {
	Message string
	Err     error
}

func (e *AggregationError) Error() string { return e.Message }
func (e *AggregationError) Unwrap() error { return e.Err }

type DeliveryKind string

const (
	DeliveryAuth       DeliveryKind = "auth"
	DeliveryConnection DeliveryKind = "connection"
	DeliveryGeneric    DeliveryKind = "generic"
)

// DeliveryError classifies an email transport failure so callers can tell a
// configuration problem from a transient network one. Sends are never
// retried automatically.
type DeliveryError struct {
	Kind DeliveryKind
	Err  error
}

func (e *DeliveryError) Error() string {
	switch e.Kind {
	case DeliveryAuth:
		return "Email rejected: mail server authentication failed"
	case DeliveryConnection:
		return "Email not sent: could not reach the mail server"
	default:
		return "Email not sent: delivery failed"
	}
}

func (e *DeliveryError) Unwrap() error { return e.Err }
