package lobby

import (
	"fmt"
)

// ActionKind identifies what a player intends to do on their turn
type ActionKind string

// action constants
const (
	Check ActionKind = "check"
	Call  ActionKind = "call"
	Raise ActionKind = "raise"
	Fold  ActionKind = "fold"
	AllIn ActionKind = "allIn"
)

var allowedActions = map[ActionKind]bool{
	Check: true,
	Call:  true,
	Raise: true,
	Fold:  true,
	AllIn: true,
}

// KindFromString returns an action kind for the given string
func KindFromString(s string) (ActionKind, error) {
	if _, ok := allowedActions[ActionKind(s)]; ok {
		return ActionKind(s), nil
	}

	return "", fmt.Errorf("unknown action for identifier: %s", s)
}

// IsValid returns true if the action kind is known
func (k ActionKind) IsValid() bool {
	_, ok := allowedActions[k]
	return ok
}

func (k ActionKind) String() string {
	switch k {
	case Check:
		return "Check"
	case Call:
		return "Call"
	case Raise:
		return "Raise"
	case Fold:
		return "Fold"
	case AllIn:
		return "All-In"
	}

	return "Unknown"
}

// Action is an intent submitted by the player whose turn it is
// Amount is only meaningful for Raise.
type Action struct {
	Kind   ActionKind `json:"type"`
	Amount int        `json:"amount,omitempty"`
}

// NewAction returns a validated action
func NewAction(kind ActionKind, amount int) (Action, error) {
	a := Action{Kind: kind, Amount: amount}
	if err := a.Validate(); err != nil {
		return Action{}, err
	}

	return a, nil
}

// RaiseBy returns a Raise action that commits amount more chips
func RaiseBy(amount int) Action {
	return Action{Kind: Raise, Amount: amount}
}

// common actions without a payload
var (
	ActionCheck = Action{Kind: Check}
	ActionCall  = Action{Kind: Call}
	ActionFold  = Action{Kind: Fold}
	ActionAllIn = Action{Kind: AllIn}
)

// Validate checks the shape of the action, not whether it can be played
func (a Action) Validate() error {
	if !a.Kind.IsValid() {
		return fmt.Errorf("unknown action for identifier: %s", a.Kind)
	}

	if a.Kind == Raise {
		if a.Amount < 0 {
			return newActionError(InvalidAmount, "raise amount cannot be negative")
		}

		return nil
	}

	if a.Amount != 0 {
		return newActionError(InvalidAmount, "%s does not take an amount", a.Kind)
	}

	return nil
}

func (a Action) String() string {
	if a.Kind == Raise {
		return fmt.Sprintf("Raise(%d)", a.Amount)
	}

	return a.Kind.String()
}

// LogMessage returns a message formatted for the log
// amount is what the player put into the pot
func (a Action) LogMessage(amount int) string {
	switch a.Kind {
	case Check:
		return "checked"
	case Call:
		return fmt.Sprintf("called ${%d}", amount)
	case Raise:
		return fmt.Sprintf("raised ${%d}", amount)
	case Fold:
		return "folded"
	case AllIn:
		return fmt.Sprintf("went all-in for ${%d}", amount)
	}

	return ""
}
