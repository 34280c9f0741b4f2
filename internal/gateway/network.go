// internal/gateway/network.go
package gateway

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"recharge-core/internal/domain"
)

// NetworkGateway dispatches commands to a physical modem over TCP.
// The modem speaks a line protocol: one command line out, one response line
// back, "OK ..." on success and anything else on failure.
type NetworkGateway struct {
	dialer  net.Dialer
	timeout time.Duration
}

// NewNetworkGateway creates a gateway with the given per-dispatch timeout.
func NewNetworkGateway(timeout time.Duration) *NetworkGateway {
	return &NetworkGateway{timeout: timeout}
}

// Send transmits the command to the modem at the SIM's transport address and
// blocks until the modem responds or the timeout elapses. All transport
// failures are reported as Success=false so the caller has a single
// completed-vs-failed decision point.
func (g *NetworkGateway) Send(ctx context.Context, sim *domain.SIM, command string) (domain.DispatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	conn, err := g.dialer.DialContext(ctx, "tcp", sim.TransportAddress)
	if err != nil {
		return domain.DispatchResult{Success: false, Message: fmt.Sprintf("modem unreachable: %v", err)}, nil
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := fmt.Fprintf(conn, "%s\n", command); err != nil {
		return domain.DispatchResult{Success: false, Message: fmt.Sprintf("modem write failed: %v", err)}, nil
	}

	response, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return domain.DispatchResult{Success: false, Message: fmt.Sprintf("modem read failed: %v", err)}, nil
	}
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "OK") {
		return domain.DispatchResult{Success: true, Message: response}, nil
	}
	return domain.DispatchResult{Success: false, Message: response}, nil
}
