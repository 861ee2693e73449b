package game

// Action represents a player action as a closed set, so dispatch is
// exhaustive rather than stringly typed.
type Action int

const (
	Fold Action = iota
	Check
	Bet
	Call
	Raise
	AllIn
)

// String returns the wire representation of an action
func (a Action) String() string {
	switch a {
	case Fold:
		return "fold"
	case Check:
		return "check"
	case Bet:
		return "bet"
	case Call:
		return "call"
	case Raise:
		return "raise"
	case AllIn:
		return "all-in"
	default:
		return "unknown"
	}
}

// ParseAction converts a wire action string to an Action
func ParseAction(s string) (Action, error) {
	switch s {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "bet":
		return Bet, nil
	case "call":
		return Call, nil
	case "raise":
		return Raise, nil
	case "all-in", "allin":
		return AllIn, nil
	default:
		return 0, invalidAction(s)
	}
}
