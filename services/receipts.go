package services

import (
	"context"
	"fmt"

	"contest-ledger/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Archiver stores settlement receipts, e.g. in object storage.
type Archiver interface {
	Archive(ctx context.Context, key string, v any) error
}

// DisplayAmount renders an amount in smallest units as whole asset units,
// e.g. 12_500_000 stroops with 7 decimals is "1.25".
func DisplayAmount(amount int64, decimals int32) string {
	return decimal.New(amount, -decimals).String()
}

func receiptKey(r models.Receipt) string {
	switch r.Kind {
	case models.ReceiptChallengePayout:
		return fmt.Sprintf("receipts/challenges/%d.json", r.ChallengeID)
	default:
		return fmt.Sprintf("receipts/donations/%d.json", r.DonationID)
	}
}

// archiveReceipt never fails the caller: the ledger state is already committed.
func archiveReceipt(ctx context.Context, a Archiver, log *logrus.Entry, r models.Receipt) {
	if a == nil {
		return
	}
	key := receiptKey(r)
	if err := a.Archive(context.WithoutCancel(ctx), key, r); err != nil {
		log.WithError(err).WithField("key", key).Warn("[Receipts] archive failed")
		return
	}
	log.WithField("key", key).Debug("[Receipts] archived")
}
