package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"contest-ledger/host"
	"contest-ledger/models"

	"github.com/sirupsen/logrus"
)

// DonationService records direct donor to recipient transfers. Each donation
// is stored under its own key and indexed by recipient.
type DonationService struct {
	env        host.Env
	log        *logrus.Entry
	archiver   Archiver
	decimals   int32
	streamPoll time.Duration
}

func NewDonationService(env host.Env, logger *logrus.Logger) *DonationService {
	return &DonationService{
		env:        env,
		log:        logger.WithField("service", "donations"),
		decimals:   7,
		streamPoll: defaultStreamPollInterval,
	}
}

// WithArchiver enables donation receipts; decimals sets the display precision.
func (s *DonationService) WithArchiver(a Archiver, decimals int32) *DonationService {
	s.archiver = a
	s.decimals = decimals
	return s
}

// Initialize sets the donation counter to zero unless it already exists.
func (s *DonationService) Initialize(ctx context.Context) error {
	return s.env.Store.Invoke(ctx, func(ctx context.Context, tx host.Tx) error {
		ok, err := tx.Has(models.DonationCountKey())
		if err != nil || ok {
			return err
		}
		return tx.Set(models.DonationCountKey(), uint32(0))
	})
}

// Donate moves amount of asset from donor straight to recipient and records
// the donation. It returns the donation count after this donation.
func (s *DonationService) Donate(ctx context.Context, donor, recipient models.Address, amount int64, message, asset string) (uint32, error) {
	var donation models.Donation
	st := newSettlement(ctx, s.env.Token, s.log, "donate")

	err := s.env.Store.Invoke(ctx, func(ctx context.Context, tx host.Tx) error {
		if err := requireActor(ctx, s.env, donor); err != nil {
			return err
		}

		if err := st.transfer(ctx, asset, donor, recipient, amount); err != nil {
			return fmt.Errorf("transfer donation: %w", err)
		}

		var count uint32
		if _, err := tx.Get(models.DonationCountKey(), &count); err != nil {
			return err
		}
		if count == math.MaxUint32 {
			return ErrCounterExhausted
		}
		count++

		donation = models.Donation{
			ID:        count,
			Donor:     donor,
			Recipient: recipient,
			Amount:    amount,
			Asset:     asset,
			Message:   message,
			Timestamp: s.env.Clock.Timestamp(),
		}
		if err := tx.Set(models.DonationKey(count), donation); err != nil {
			return err
		}

		var index []uint32
		if _, err := tx.Get(models.RecipientDonationsKey(recipient), &index); err != nil {
			return err
		}
		if err := tx.Set(models.RecipientDonationsKey(recipient), append(index, count)); err != nil {
			return err
		}
		return tx.Set(models.DonationCountKey(), count)
	})
	if err != nil {
		st.unwind(ctx)
		recordFailure("donate", err)
		s.log.WithError(err).WithFields(logrus.Fields{
			"donor":     donor,
			"recipient": recipient,
		}).Warn("[Donation] rejected")
		return 0, err
	}

	donationsRecorded.WithLabelValues(asset).Inc()
	s.log.WithFields(logrus.Fields{
		"donation_id": donation.ID,
		"donor":       donor,
		"recipient":   recipient,
		"amount":      amount,
	}).Info("💸 [Donation] recorded")

	archiveReceipt(ctx, s.archiver, s.log, models.Receipt{
		Kind:          models.ReceiptDonation,
		DonationID:    donation.ID,
		From:          donor,
		To:            recipient,
		Asset:         asset,
		Amount:        amount,
		DisplayAmount: DisplayAmount(amount, s.decimals),
		Message:       message,
		Timestamp:     donation.Timestamp,
	})
	return donation.ID, nil
}

// GetDonationCount returns the number of donations ever recorded.
func (s *DonationService) GetDonationCount(ctx context.Context) (uint32, error) {
	var count uint32
	err := s.env.Store.Invoke(ctx, func(_ context.Context, tx host.Tx) error {
		_, err := tx.Get(models.DonationCountKey(), &count)
		return err
	})
	return count, err
}

// GetRecipientDonations returns every donation received by recipient, oldest first.
func (s *DonationService) GetRecipientDonations(ctx context.Context, recipient models.Address) ([]models.Donation, error) {
	return s.ListRecipientDonations(ctx, recipient, 0, 0)
}

// ListRecipientDonations returns up to limit donations received by recipient,
// skipping the first offset. A limit of zero means no limit.
func (s *DonationService) ListRecipientDonations(ctx context.Context, recipient models.Address, offset, limit int) ([]models.Donation, error) {
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("invalid page: offset %d, limit %d", offset, limit)
	}

	donations := []models.Donation{}
	err := s.env.Store.Invoke(ctx, func(_ context.Context, tx host.Tx) error {
		var index []uint32
		if _, err := tx.Get(models.RecipientDonationsKey(recipient), &index); err != nil {
			return err
		}
		if offset >= len(index) {
			return nil
		}
		index = index[offset:]
		if limit > 0 && limit < len(index) {
			index = index[:limit]
		}
		for _, id := range index {
			var d models.Donation
			ok, err := tx.Get(models.DonationKey(id), &d)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("donation %d indexed for %s is missing", id, recipient)
			}
			donations = append(donations, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return donations, nil
}
