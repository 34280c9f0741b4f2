// internal/domain/sim.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SIMStatus is the dispatch state of a SIM resource.
type SIMStatus string

const (
	SIMActive SIMStatus = "active"
	SIMBusy   SIMStatus = "busy"
)

// TransportKind selects the gateway variant used to dispatch through a SIM.
// It is fixed at provisioning time rather than inferred from the address.
type TransportKind string

const (
	TransportSimulated TransportKind = "simulated"
	TransportNetwork   TransportKind = "network"
)

// SIM is a scarce, stateful transmission channel tied to one network
// operator. At most one dispatch is in flight per SIM (SIMBusy excludes
// concurrent use). Balance is an advisory estimate of the prepaid credit
// remaining on the physical line, refreshed out of band; it is never used
// for ledger decisions.
type SIM struct {
	ID               int64           `db:"id" json:"id"`
	Operator         string          `db:"operator" json:"operator"`
	PhoneNumber      string          `db:"phone_number" json:"phone_number"`
	PIN              string          `db:"pin" json:"-"`
	TransportKind    TransportKind   `db:"transport_kind" json:"transport_kind"`
	TransportAddress string          `db:"transport_address" json:"transport_address"` // slot index or modem host:port
	Status           SIMStatus       `db:"status" json:"status"`
	Balance          decimal.Decimal `db:"balance" json:"balance"`
	UsageCount       int64           `db:"usage_count" json:"usage_count"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// NewSIM creates an active SIM entry for provisioning.
func NewSIM(operator, phoneNumber, pin string, kind TransportKind, address string) *SIM {
	now := time.Now().UTC()
	return &SIM{
		Operator:         operator,
		PhoneNumber:      phoneNumber,
		PIN:              pin,
		TransportKind:    kind,
		TransportAddress: address,
		Status:           SIMActive,
		Balance:          decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
