package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	LeadStatusNew       = "New"
	LeadStatusContacted = "Contacted"
	LeadStatusQualified = "Qualified"
	LeadStatusConverted = "Converted"
	LeadStatusLost      = "Lost"
)

type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   *string   `json:"company"`
	Status    string    `json:"status"`
	Source    *string   `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	DealStageQualified   = "Qualified"
	DealStageProposal    = "Proposal"
	DealStageNegotiation = "Negotiation"
	DealStageClosedWon   = "Closed Won"
	DealStageClosedLost  = "Closed Lost"
)

type Deal struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	CustomerID  string          `json:"customer_id"`
	Stage       string          `json:"stage"`
	Value       decimal.Decimal `json:"value"`
	Probability *int            `json:"probability"`
	CloseDate   *time.Time      `json:"close_date"`
}

// OpenDealStages are the stages counted into pipeline value.
func OpenDealStages() []string {
	return []string{DealStageQualified, DealStageProposal, DealStageNegotiation}
}
