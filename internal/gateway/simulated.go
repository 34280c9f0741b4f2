// internal/gateway/simulated.go
package gateway

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"recharge-core/internal/domain"
	"recharge-core/internal/util"

	"github.com/shopspring/decimal"
)

// slotCount is the number of preconfigured simulator slots.
const slotCount = 10

// simSlot is one simulated SIM line. A slot mid-dispatch is busy and
// rejects a second concurrent dispatch instead of silently executing it.
type simSlot struct {
	operator    string
	phoneNumber string
	balance     decimal.Decimal
	usageCount  int64
	busy        bool
}

// SimulatedGateway is an in-memory gateway for development and tests.
// It holds a fixed pool of ten slots, addressed by the SIM's transport
// address ("0".."9"), and succeeds after a fixed simulated latency.
// The pool is an injected object, not package state; every instance owns
// its slot table.
type SimulatedGateway struct {
	mu      sync.Mutex
	slots   [slotCount]*simSlot
	latency time.Duration
	seq     int64
}

// NewSimulatedGateway creates a simulator with ten preconfigured slots
// spread across the three network operators.
func NewSimulatedGateway(latency time.Duration) *SimulatedGateway {
	g := &SimulatedGateway{latency: latency}
	operators := []string{"mobilis", "mobilis", "mobilis", "mobilis", "djezzy", "djezzy", "djezzy", "ooredoo", "ooredoo", "ooredoo"}
	for i := 0; i < slotCount; i++ {
		g.slots[i] = &simSlot{
			operator:    operators[i],
			phoneNumber: fmt.Sprintf("06600000%02d", i),
			balance:     decimal.NewFromInt(50000),
		}
	}
	return g
}

// Send dispatches a command through a simulator slot. The slot flips to
// busy for the duration of the simulated latency, then returns a
// synthesized success message embedding a fabricated remaining balance and
// a trace id. A slot already mid-dispatch answers Success=false.
func (g *SimulatedGateway) Send(ctx context.Context, sim *domain.SIM, command string) (domain.DispatchResult, error) {
	idx, err := strconv.Atoi(sim.TransportAddress)
	if err != nil || idx < 0 || idx >= slotCount {
		return domain.DispatchResult{}, fmt.Errorf("unknown simulator slot %q: %w", sim.TransportAddress, util.ErrNotFound)
	}

	g.mu.Lock()
	slot := g.slots[idx]
	if slot.busy {
		g.mu.Unlock()
		return domain.DispatchResult{Success: false, Message: fmt.Sprintf("slot %d busy", idx)}, nil
	}
	slot.busy = true
	g.mu.Unlock()

	// Simulated network latency; a cancelled context aborts the dispatch.
	select {
	case <-time.After(g.latency):
	case <-ctx.Done():
		g.mu.Lock()
		slot.busy = false
		g.mu.Unlock()
		return domain.DispatchResult{Success: false, Message: fmt.Sprintf("dispatch aborted: %v", ctx.Err())}, nil
	}

	g.mu.Lock()
	slot.busy = false
	slot.usageCount++
	slot.balance = slot.balance.Sub(decimal.NewFromInt(100))
	g.seq++
	trace := fmt.Sprintf("SIM%02d-%06d", idx, g.seq)
	message := fmt.Sprintf("recharge accepted; remaining balance %s; trace %s", slot.balance.StringFixed(2), trace)
	g.mu.Unlock()

	return domain.DispatchResult{Success: true, Message: message}, nil
}

// SlotUsage returns the dispatch count of a slot.
func (g *SimulatedGateway) SlotUsage(idx int) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if idx < 0 || idx >= slotCount {
		return 0
	}
	return g.slots[idx].usageCount
}
