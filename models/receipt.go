package models

// ReceiptKind distinguishes archived settlement receipts.
type ReceiptKind string

const (
	ReceiptChallengePayout ReceiptKind = "challenge_payout"
	ReceiptDonation        ReceiptKind = "donation"
)

// Receipt is the archived proof of a completed value movement.
type Receipt struct {
	Kind          ReceiptKind `json:"kind"`
	ChallengeID   uint32      `json:"challenge_id,omitempty"`
	DonationID    uint32      `json:"donation_id,omitempty"`
	From          Address     `json:"from"`
	To            Address     `json:"to"`
	Asset         string      `json:"asset"`
	Amount        int64       `json:"amount"`
	DisplayAmount string      `json:"display_amount"` // amount in whole asset units
	Message       string      `json:"message,omitempty"`
	Timestamp     uint64      `json:"timestamp"`
}
