package enums

import (
	"errors"
	"strings"
)

type HeatingTrigger string

const (
	HeatingTriggerMeetingCompleted HeatingTrigger = "MEETING_COMPLETED"
	HeatingTriggerMatchReceived    HeatingTrigger = "MATCH_RECEIVED"
	HeatingTriggerGiftReceived     HeatingTrigger = "GIFT_RECEIVED"
	HeatingTriggerCallEnded        HeatingTrigger = "CALL_ENDED"
)

var ErrUnknownHeatingTrigger = errors.New("unknown heating trigger")

// initialHeat maps each trigger to the heat level it starts at.
var initialHeat = map[HeatingTrigger]float64{
	HeatingTriggerMeetingCompleted: 100,
	HeatingTriggerMatchReceived:    80,
	HeatingTriggerGiftReceived:     70,
	HeatingTriggerCallEnded:        60,
}

func ParseHeatingTrigger(raw string) (HeatingTrigger, error) {
	value := HeatingTrigger(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := initialHeat[value]; !ok {
		return "", ErrUnknownHeatingTrigger
	}
	return value, nil
}

func (t HeatingTrigger) Valid() bool {
	_, ok := initialHeat[t]
	return ok
}

func (t HeatingTrigger) InitialHeat() float64 {
	return initialHeat[t]
}
