package handler

import (
	"net/http"

	"github.com/Recurse-ML/logfire-example/internal/domain"
)

// FaultHandler is the always-failing test endpoint. Every invocation panics
// with the same sentinel error before any response is produced; the observe
// middleware turns that into an alert. There is no success path, and there
// must never be one — this endpoint exists to generate deterministic alert
// fixtures. Do not "fix" it.
type FaultHandler struct{}

func NewFaultHandler() *FaultHandler { return &FaultHandler{} }

func (h *FaultHandler) Trigger(_ http.ResponseWriter, _ *http.Request) {
	panic(domain.ErrIntentionalFault)
}
