package tiers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ivankudzin/matchrank/internal/config"
	"github.com/ivankudzin/matchrank/internal/domain/enums"
	"github.com/ivankudzin/matchrank/internal/domain/model"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrDependenciesNil = errors.New("tier classifier dependencies are not configured")
)

type SignalStore interface {
	CountInboundSince(ctx context.Context, targetUserID int64, signalType enums.SignalType, since time.Time) (int, error)
}

// Classifier maps users to coarse value tiers. The tier only ever boosts
// the user's own visibility as a candidate; it never filters anyone out.
type Classifier struct {
	signals SignalStore
	cfg     config.TiersConfig
	now     func() time.Time
}

func NewClassifier(signals SignalStore, cfg config.TiersConfig) *Classifier {
	if cfg.NewUserMaxAge <= 0 {
		cfg.NewUserMaxAge = 7 * 24 * time.Hour
	}
	if cfg.PaidChatsMin <= 0 {
		cfg.PaidChatsMin = 5
	}
	if cfg.MeetingsMin <= 0 {
		cfg.MeetingsMin = 2
	}
	if cfg.ResponseRateMin <= 0 {
		cfg.ResponseRateMin = 0.7
	}
	if cfg.MatchesMin <= 0 {
		cfg.MatchesMin = 10
	}
	if cfg.LowPopularitySwipes <= 0 {
		cfg.LowPopularitySwipes = 50
	}
	if cfg.LowPopularityInbound <= 0 {
		cfg.LowPopularityInbound = 0.10
	}
	if cfg.Multipliers == (config.TierMultipliers{}) {
		cfg.Multipliers = config.TierMultipliers{
			Royal:            1.5,
			HighEngagement:   1.2,
			HighMonetization: 1.3,
			Standard:         1.0,
			LowPopularity:    1.15,
			NewUser:          1.1,
		}
	}

	return &Classifier{
		signals: signals,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Classify evaluates tiers in fixed priority order. Royal and monetization
// checks run before the low-popularity protection rule; a high-value user
// with few inbound likes must still land in a value tier.
func (c *Classifier) Classify(ctx context.Context, user model.User, profile model.BehaviorProfile) (enums.Tier, error) {
	if user.ID <= 0 {
		return "", ErrValidation
	}

	if user.IsRoyal {
		return enums.TierRoyal, nil
	}

	now := c.now().UTC()
	if now.Sub(user.CreatedAt) < c.cfg.NewUserMaxAge {
		return enums.TierNewUser, nil
	}

	if profile.PaidChats >= c.cfg.PaidChatsMin || profile.Meetings >= c.cfg.MeetingsMin {
		return enums.TierHighMonetization, nil
	}

	if profile.ResponseRate >= c.cfg.ResponseRateMin && profile.Matches >= c.cfg.MatchesMin {
		return enums.TierHighEngagement, nil
	}

	if profile.TotalSwipes() >= c.cfg.LowPopularitySwipes {
		if c.signals == nil {
			return "", ErrDependenciesNil
		}
		inbound, err := c.signals.CountInboundSince(ctx, user.ID, enums.SignalRightSwipe, time.Unix(0, 0).UTC())
		if err != nil {
			return "", fmt.Errorf("count inbound likes: %w", err)
		}
		rate := float64(inbound) / float64(profile.TotalSwipes())
		if rate < c.cfg.LowPopularityInbound {
			return enums.TierLowPopularity, nil
		}
	}

	return enums.TierStandard, nil
}

// Multiplier returns the fixed ranking boost for a tier.
func (c *Classifier) Multiplier(tier enums.Tier) float64 {
	m := c.cfg.Multipliers
	switch tier {
	case enums.TierRoyal:
		return m.Royal
	case enums.TierHighEngagement:
		return m.HighEngagement
	case enums.TierHighMonetization:
		return m.HighMonetization
	case enums.TierLowPopularity:
		return m.LowPopularity
	case enums.TierNewUser:
		return m.NewUser
	default:
		if m.Standard > 0 {
			return m.Standard
		}
		return 1.0
	}
}
