package models

// Donation records one direct transfer from a donor to a recipient.
// Records are written once and never mutated.
type Donation struct {
	ID        uint32  `json:"id"` // donation count at the time it was recorded
	Donor     Address `json:"donor"`
	Recipient Address `json:"recipient"`
	Amount    int64   `json:"amount"`
	Asset     string  `json:"asset"`
	Message   string  `json:"message"`
	Timestamp uint64  `json:"timestamp"`
}
