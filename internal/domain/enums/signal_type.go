package enums

import (
	"errors"
	"strings"
)

type SignalType string

// Positive signals.
const (
	SignalProfileViewLong SignalType = "PROFILE_VIEW_LONG"
	SignalRightSwipe      SignalType = "RIGHT_SWIPE"
	SignalMessageSent     SignalType = "MESSAGE_SENT"
	SignalMessageReplied  SignalType = "MESSAGE_REPLIED"
	SignalPaidChat        SignalType = "PAID_CHAT"
	SignalCallCompleted   SignalType = "CALL_COMPLETED"
	SignalMeetingBooked   SignalType = "MEETING_BOOKED"
	SignalGiftSent        SignalType = "GIFT_SENT"
	SignalMediaUnlocked   SignalType = "MEDIA_UNLOCKED"
)

// Negative signals.
const (
	SignalProfileViewShort SignalType = "PROFILE_VIEW_SHORT"
	SignalLeftSwipe        SignalType = "LEFT_SWIPE"
	SignalLeftSwipeFast    SignalType = "LEFT_SWIPE_FAST"
	SignalMessageIgnored   SignalType = "MESSAGE_IGNORED"
	SignalChatAbandoned    SignalType = "CHAT_ABANDONED"
	SignalProfileSkipped   SignalType = "PROFILE_SKIPPED"
)

var ErrUnknownSignalType = errors.New("unknown signal type")

// signalWeights is fixed by product policy. Weights describe the strength of
// the signal; their sign must stay aligned with the positive/negative split.
var signalWeights = map[SignalType]int{
	SignalProfileViewLong: 5,
	SignalRightSwipe:      10,
	SignalMessageSent:     8,
	SignalMessageReplied:  12,
	SignalPaidChat:        25,
	SignalCallCompleted:   30,
	SignalMeetingBooked:   50,
	SignalGiftSent:        35,
	SignalMediaUnlocked:   20,

	SignalProfileViewShort: -2,
	SignalLeftSwipe:        -3,
	SignalLeftSwipeFast:    -5,
	SignalMessageIgnored:   -8,
	SignalChatAbandoned:    -10,
	SignalProfileSkipped:   -1,
}

func ParseSignalType(raw string) (SignalType, error) {
	value := SignalType(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := signalWeights[value]; !ok {
		return "", ErrUnknownSignalType
	}
	return value, nil
}

func (t SignalType) Valid() bool {
	_, ok := signalWeights[t]
	return ok
}

func (t SignalType) Weight() int {
	return signalWeights[t]
}

func (t SignalType) Positive() bool {
	return signalWeights[t] > 0
}

func AllSignalTypes() []SignalType {
	out := make([]SignalType, 0, len(signalWeights))
	for t := range signalWeights {
		out = append(out, t)
	}
	return out
}
