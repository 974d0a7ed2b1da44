package middleware

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Recurse-ML/logfire-example/internal/observe"
	"github.com/Recurse-ML/logfire-example/internal/pkg/id"
)

// Observe is the outermost error-reporting layer. It captures a panicking
// request, delivers an alert event to the observability backend, and answers
// with the framework-default 500. It replaces chi's Recoverer: nothing below
// it may recover intentional faults, and nothing above it sees them.
func Observe(reporter observe.Reporter, source observe.CodeSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				ev := &observe.Event{
					EventID:    id.New(),
					Kind:       "panic",
					Error:      panicMessage(rec),
					Stack:      string(debug.Stack()),
					Method:     r.Method,
					Route:      r.URL.Path,
					RequestID:  chimiddleware.GetReqID(r.Context()),
					OccurredAt: time.Now().UTC(),
					CodeSource: source,
				}
				// The request context may already be cancelled; delivery
				// gets its own deadline.
				ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 10*time.Second)
				defer cancel()
				reporter.Report(ctx, ev)

				writeJSONError(w, http.StatusInternalServerError, "internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func panicMessage(rec interface{}) string {
	if err, ok := rec.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", rec)
}
