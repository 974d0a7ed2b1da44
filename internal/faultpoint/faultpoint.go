// Package faultpoint provides named, configuration-armed fault injection
// points. A fault point placed on a code path does nothing until its name is
// armed; once armed, every pass through it aborts the request abnormally so
// the failure surfaces to the alert-reporting layer.
//
// The exact trigger condition of the documented login defect is intentionally
// not business logic: whoever owns the alert-testing requirements arms or
// disarms points by name through configuration.
package faultpoint

import (
	"fmt"

	"github.com/Recurse-ML/logfire-example/internal/domain"
)

// Fault is the panic value carried out of an armed fault point.
type Fault struct {
	Point string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%v: fault point %q fired", domain.ErrIntentionalFault, f.Point)
}

func (f *Fault) Unwrap() error { return domain.ErrIntentionalFault }

// Registry holds the set of armed fault point names. The set is fixed at
// construction; requests only read it, so no locking is needed.
type Registry struct {
	armed map[string]bool
}

func NewRegistry(points []string) *Registry {
	armed := make(map[string]bool, len(points))
	for _, p := range points {
		armed[p] = true
	}
	return &Registry{armed: armed}
}

// Armed reports whether the named point would fire.
func (r *Registry) Armed(name string) bool {
	return r != nil && r.armed[name]
}

// Hit aborts the calling request by panicking when the named point is armed.
// Disarmed points are free.
func (r *Registry) Hit(name string) {
	if r.Armed(name) {
		panic(&Fault{Point: name})
	}
}
