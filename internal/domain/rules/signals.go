package rules

import (
	"strings"

	"github.com/ivankudzin/matchrank/internal/domain/enums"
)

const (
	// LongViewThresholdMS separates a long profile view from a short one.
	LongViewThresholdMS = 4000
	// FastSwipeThresholdMS marks a left-swipe as "fast" when the card was
	// on screen for less than this.
	FastSwipeThresholdMS = 1000
)

func ClassifyProfileView(durationMS int64) enums.SignalType {
	if durationMS >= LongViewThresholdMS {
		return enums.SignalProfileViewLong
	}
	return enums.SignalProfileViewShort
}

func ClassifyLeftSwipe(viewDurationMS int64) enums.SignalType {
	if viewDurationMS > 0 && viewDurationMS < FastSwipeThresholdMS {
		return enums.SignalLeftSwipeFast
	}
	return enums.SignalLeftSwipe
}

// PaidInteractionSignal maps a paid interaction sub-type to its signal type.
func PaidInteractionSignal(kind string) (enums.SignalType, bool) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "chat":
		return enums.SignalPaidChat, true
	case "call":
		return enums.SignalCallCompleted, true
	case "meeting":
		return enums.SignalMeetingBooked, true
	case "gift":
		return enums.SignalGiftSent, true
	case "media":
		return enums.SignalMediaUnlocked, true
	default:
		return "", false
	}
}
