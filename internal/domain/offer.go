// internal/domain/offer.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Offer is a fixed-price bundled product (e.g. a data package) with the
// command template used to activate it on the target line.
type Offer struct {
	ID              int64           `db:"id" json:"id"`
	Operator        string          `db:"operator" json:"operator"`
	Name            string          `db:"name" json:"name"`
	Price           decimal.Decimal `db:"price" json:"price"`
	CommandTemplate string          `db:"command_template" json:"command_template"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// OperatorTemplate is an administrator-set override of the built-in
// per-operator flexy command pattern.
type OperatorTemplate struct {
	Operator  string    `db:"operator" json:"operator"`
	Template  string    `db:"template" json:"template"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DispatchResult is the gateway's synchronous verdict on a command.
// Transport failures and modem rejections surface as Success=false with a
// message, not as a separate error channel, so the orchestrator can always
// decide completed-vs-failed in one place.
type DispatchResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
