// internal/gateway/gateway.go
package gateway

import (
	"context"

	"recharge-core/internal/domain"
)

// Gateway dispatches a rendered command through a SIM's transmission channel.
//
// Transport failures, timeouts and explicit modem rejections are reported as
// DispatchResult{Success: false} with a message rather than as an error, so
// the orchestrator can decide completed-vs-failed synchronously in one place.
// A non-nil error is reserved for malformed dispatch requests (e.g. an
// unknown simulator slot); the orchestrator treats both identically.
type Gateway interface {
	Send(ctx context.Context, sim *domain.SIM, command string) (domain.DispatchResult, error)
}
