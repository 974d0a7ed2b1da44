package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// ErrIntentionalFault is raised by the fault endpoint and by armed fault
// points. It must never be recovered below the alert-reporting middleware:
// suppressing it would defeat the purpose of this service.
var ErrIntentionalFault = errors.New("intentional fault")
