// Package coin defines the coin transaction audit trail.
package coin

import "time"

// Transaction types.
const (
	TypeEarned  = "earned"
	TypeSpent   = "spent"
	TypeBonus   = "bonus"
	TypePenalty = "penalty"
)

// Reference types.
const (
	RefUpload   = "upload"
	RefDownload = "download"
	RefBonus    = "bonus"
	RefPenalty  = "penalty"
)

// Transaction is an append-only audit entry in coin_transactions. Entries
// are written by backend triggers; the client only reads them.
type Transaction struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	TransactionType string    `json:"transaction_type"`
	Amount          int       `json:"amount"`
	Description     string    `json:"description"`
	ReferenceID     string    `json:"reference_id"`
	ReferenceType   string    `json:"reference_type"`
	CreatedAt       time.Time `json:"created_at"`
}
