package services

import (
	"context"
	"fmt"
	"math"

	"contest-ledger/host"
	"contest-ledger/models"

	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
)

// ChallengeService owns the challenge lifecycle: prize escrow at creation,
// the participant roster, and the single winner payout.
type ChallengeService struct {
	env      host.Env
	log      *logrus.Entry
	archiver Archiver
	decimals int32
}

func NewChallengeService(env host.Env, logger *logrus.Logger) *ChallengeService {
	return &ChallengeService{
		env:      env,
		log:      logger.WithField("service", "challenges"),
		decimals: 7,
	}
}

// WithArchiver enables payout receipts; decimals sets the display precision.
func (s *ChallengeService) WithArchiver(a Archiver, decimals int32) *ChallengeService {
	s.archiver = a
	s.decimals = decimals
	return s
}

// Initialize sets the challenge counter to zero unless it already exists, so
// running it again never makes ids reusable.
func (s *ChallengeService) Initialize(ctx context.Context) error {
	return s.env.Store.Invoke(ctx, func(ctx context.Context, tx host.Tx) error {
		ok, err := tx.Has(models.ChallengeCountKey())
		if err != nil || ok {
			return err
		}
		return tx.Set(models.ChallengeCountKey(), uint32(0))
	})
}

// CreateChallenge escrows prizePool of asset from creator at the contract
// account and records a new active challenge. It returns the new id.
func (s *ChallengeService) CreateChallenge(ctx context.Context, creator models.Address, title, description string, prizePool int64, endDate uint64, asset string) (uint32, error) {
	var created models.Challenge
	st := newSettlement(ctx, s.env.Token, s.log, "create_challenge")

	err := s.env.Store.Invoke(ctx, func(ctx context.Context, tx host.Tx) error {
		if err := requireActor(ctx, s.env, creator); err != nil {
			return err
		}

		if err := st.transfer(ctx, asset, creator, s.env.Contract, prizePool); err != nil {
			return fmt.Errorf("escrow prize pool: %w", err)
		}

		var count uint32
		if _, err := tx.Get(models.ChallengeCountKey(), &count); err != nil {
			return err
		}
		if count == math.MaxUint32 {
			return ErrCounterExhausted
		}
		count++

		created = models.Challenge{
			ID:           count,
			Creator:      creator,
			Title:        title,
			Description:  description,
			Slug:         slug.Make(title),
			PrizePool:    prizePool,
			Asset:        asset,
			EndDate:      endDate,
			Participants: []models.Address{},
			IsActive:     true,
		}
		if err := tx.Set(models.ChallengeKey(count), created); err != nil {
			return err
		}
		return tx.Set(models.ChallengeCountKey(), count)
	})
	if err != nil {
		st.unwind(ctx)
		recordFailure("create_challenge", err)
		s.log.WithError(err).WithField("creator", creator).Warn("[Challenge] create rejected")
		return 0, err
	}

	challengesCreated.Inc()
	s.log.WithFields(logrus.Fields{
		"challenge_id": created.ID,
		"creator":      creator,
		"prize_pool":   prizePool,
		"asset":        asset,
		"end_date":     endDate,
	}).Info("✅ [Challenge] created, prize pool escrowed")
	return created.ID, nil
}

// JoinChallenge appends participant to an active challenge that has not
// ended. The same participant may join more than once.
func (s *ChallengeService) JoinChallenge(ctx context.Context, challengeID uint32, participant models.Address) error {
	err := s.env.Store.Invoke(ctx, func(ctx context.Context, tx host.Tx) error {
		if err := requireActor(ctx, s.env, participant); err != nil {
			return err
		}

		challenge, err := loadChallenge(tx, challengeID)
		if err != nil {
			return err
		}
		if !challenge.IsActive {
			return ErrChallengeInactive
		}
		if challenge.HasEnded(s.env.Clock.Timestamp()) {
			return ErrChallengeEnded
		}

		challenge.Participants = append(challenge.Participants, participant)
		return tx.Set(models.ChallengeKey(challengeID), challenge)
	})
	if err != nil {
		recordFailure("join_challenge", err)
		s.log.WithError(err).WithFields(logrus.Fields{
			"challenge_id": challengeID,
			"participant":  participant,
		}).Warn("[Challenge] join rejected")
		return err
	}

	challengeJoins.Inc()
	s.log.WithFields(logrus.Fields{
		"challenge_id": challengeID,
		"participant":  participant,
	}).Info("[Challenge] participant joined")
	return nil
}

// SetWinner pays the escrowed prize to winner and finalizes the challenge.
// Only the creator may call it, and only after the end date has passed.
func (s *ChallengeService) SetWinner(ctx context.Context, challengeID uint32, winner models.Address, asset string) error {
	var paid models.Challenge
	var now uint64
	st := newSettlement(ctx, s.env.Token, s.log, "set_winner")

	err := s.env.Store.Invoke(ctx, func(ctx context.Context, tx host.Tx) error {
		challenge, err := loadChallenge(tx, challengeID)
		if err != nil {
			return err
		}
		if err := requireActor(ctx, s.env, challenge.Creator); err != nil {
			return err
		}
		now = s.env.Clock.Timestamp()
		if !challenge.HasEnded(now) {
			return ErrChallengeNotEnded
		}
		// The escrow is drained by the first payout; a second one must not
		// reach the transfer at all.
		if !challenge.IsActive {
			return ErrChallengeInactive
		}
		if challenge.Asset != "" && challenge.Asset != asset {
			return fmt.Errorf("%w: prize was escrowed in %q, not %q", host.ErrTransferFailed, challenge.Asset, asset)
		}

		if err := st.transfer(ctx, asset, s.env.Contract, winner, challenge.PrizePool); err != nil {
			return fmt.Errorf("pay prize: %w", err)
		}

		w := winner
		challenge.Winner = &w
		challenge.IsActive = false
		if err := tx.Set(models.ChallengeKey(challengeID), challenge); err != nil {
			return err
		}
		paid = challenge
		return nil
	})
	if err != nil {
		st.unwind(ctx)
		recordFailure("set_winner", err)
		s.log.WithError(err).WithFields(logrus.Fields{
			"challenge_id": challengeID,
			"winner":       winner,
		}).Warn("[Challenge] set winner rejected")
		return err
	}

	challengePayouts.WithLabelValues(asset).Add(float64(paid.PrizePool))
	s.log.WithFields(logrus.Fields{
		"challenge_id": challengeID,
		"winner":       winner,
		"prize_pool":   paid.PrizePool,
	}).Info("🏆 [Challenge] winner paid, challenge finalized")

	archiveReceipt(ctx, s.archiver, s.log, models.Receipt{
		Kind:          models.ReceiptChallengePayout,
		ChallengeID:   challengeID,
		From:          s.env.Contract,
		To:            winner,
		Asset:         asset,
		Amount:        paid.PrizePool,
		DisplayAmount: DisplayAmount(paid.PrizePool, s.decimals),
		Timestamp:     now,
	})
	return nil
}

// GetChallenge returns the challenge with the given id.
func (s *ChallengeService) GetChallenge(ctx context.Context, challengeID uint32) (models.Challenge, error) {
	var challenge models.Challenge
	err := s.env.Store.Invoke(ctx, func(_ context.Context, tx host.Tx) error {
		var err error
		challenge, err = loadChallenge(tx, challengeID)
		return err
	})
	return challenge, err
}

// GetChallengeCount returns the number of challenges ever created.
func (s *ChallengeService) GetChallengeCount(ctx context.Context) (uint32, error) {
	var count uint32
	err := s.env.Store.Invoke(ctx, func(_ context.Context, tx host.Tx) error {
		_, err := tx.Get(models.ChallengeCountKey(), &count)
		return err
	})
	return count, err
}

// ListChallenges returns every challenge in id order.
func (s *ChallengeService) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	challenges := []models.Challenge{}
	err := s.env.Store.Invoke(ctx, func(_ context.Context, tx host.Tx) error {
		var count uint32
		if _, err := tx.Get(models.ChallengeCountKey(), &count); err != nil {
			return err
		}
		for id := uint32(1); id <= count; id++ {
			challenge, err := loadChallenge(tx, id)
			if err != nil {
				return err
			}
			challenges = append(challenges, challenge)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return challenges, nil
}

// AwaitingWinner returns active challenges whose end date has passed.
func (s *ChallengeService) AwaitingWinner(ctx context.Context) ([]models.Challenge, error) {
	all, err := s.ListChallenges(ctx)
	if err != nil {
		return nil, err
	}
	now := s.env.Clock.Timestamp()
	var due []models.Challenge
	for _, c := range all {
		if c.IsActive && c.HasEnded(now) {
			due = append(due, c)
		}
	}
	return due, nil
}

func loadChallenge(tx host.Tx, challengeID uint32) (models.Challenge, error) {
	var challenge models.Challenge
	ok, err := tx.Get(models.ChallengeKey(challengeID), &challenge)
	if err != nil {
		return models.Challenge{}, err
	}
	if !ok {
		return models.Challenge{}, fmt.Errorf("%w: id %d", ErrChallengeNotFound, challengeID)
	}
	return challenge, nil
}
