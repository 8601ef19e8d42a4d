package host

import (
	"github.com/jonboulle/clockwork"
)

// LedgerClock reports ledger time as unix seconds of the wrapped clock.
type LedgerClock struct {
	clock clockwork.Clock
}

// NewLedgerClock wraps c; a nil c uses the real clock.
func NewLedgerClock(c clockwork.Clock) *LedgerClock {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	return &LedgerClock{clock: c}
}

func (l *LedgerClock) Timestamp() uint64 {
	sec := l.clock.Now().Unix()
	if sec < 0 {
		return 0
	}
	return uint64(sec)
}
