package models

// Challenge is a time-boxed contest whose prize pool sits in escrow at the
// contract account until the creator names a winner.
type Challenge struct {
	ID           uint32    `json:"id"`
	Creator      Address   `json:"creator"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Slug         string    `json:"slug"`
	PrizePool    int64     `json:"prize_pool"` // smallest asset unit (stroops for XLM)
	Asset        string    `json:"asset"`      // asset the prize was escrowed in
	EndDate      uint64    `json:"end_date"`   // ledger timestamp, open while now <= end_date
	Participants []Address `json:"participants"`
	Winner       *Address  `json:"winner,omitempty"`
	IsActive     bool      `json:"is_active"`
}

// HasEnded reports whether the contest is closed at the given ledger time.
func (c Challenge) HasEnded(now uint64) bool {
	return now > c.EndDate
}

// IsFinalized is true once a winner has been paid.
func (c Challenge) IsFinalized() bool {
	return !c.IsActive && c.Winner != nil
}
