package session

import "fmt"

// Step of the booking wizard.
type Step int

const (
	StepSelectRoom Step = iota
	StepSelectDates
	StepSelectGuests
	StepReview
	StepSubmitted
)

func (s Step) String() string {
	switch s {
	case StepSelectRoom:
		return "select_room"
	case StepSelectDates:
		return "select_dates"
	case StepSelectGuests:
		return "select_guests"
	case StepReview:
		return "review"
	case StepSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Next returns the step after s. Submitted is final.
func Next(s Step) (Step, error) {
	if s < StepSelectRoom || s >= StepSubmitted {
		return s, fmt.Errorf("next from %s: %w", s, ErrIllegalTransition)
	}

	return s + 1, nil
}

// Back returns the step before s. Nothing leaves Submitted.
func Back(s Step) (Step, error) {
	if s <= StepSelectRoom || s >= StepSubmitted {
		return s, fmt.Errorf("back from %s: %w", s, ErrIllegalTransition)
	}

	return s - 1, nil
}
