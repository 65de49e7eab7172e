package checkout

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusIdle                 Status = "idle"
	StatusRequestingIntent     Status = "requesting_intent"
	StatusAwaitingConfirmation Status = "awaiting_confirmation"
	StatusSucceeded            Status = "succeeded"
	StatusFailed               Status = "failed"
)

var ErrInvalidTransition = errors.New("invalid checkout state transition")

// validTransitions defines allowed state transitions
var validTransitions = map[Status][]Status{
	StatusIdle:                 {StatusRequestingIntent},
	StatusRequestingIntent:     {StatusAwaitingConfirmation, StatusFailed},
	StatusAwaitingConfirmation: {StatusSucceeded, StatusFailed},
	StatusSucceeded:            {StatusIdle},
	StatusFailed:               {StatusIdle},
}

// CanTransitionTo checks if a session in status s may move to target
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// InFlight reports whether a checkout attempt is between submission and its terminal state
func (s Status) InFlight() bool {
	return s == StatusRequestingIntent || s == StatusAwaitingConfirmation
}

// Terminal reports whether the attempt has finished
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

func transitionError(from, to Status) error {
	if from.InFlight() && to == StatusRequestingIntent {
		return ErrCheckoutInProgress
	}
	return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, from, to)
}
