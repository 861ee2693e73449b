package game

import "fmt"

// Rule rejection codes. Every rejected action maps to exactly one of
// these; the gateway returns the code to the offending client and
// never broadcasts, since rejected actions leave table state
// untouched.
const (
	CodeGameNotStarted        = "game_not_started"
	CodeGameAlreadyStarted    = "game_already_started"
	CodeTableFull             = "table_full"
	CodePlayerNotFound        = "player_not_found"
	CodeNotYourTurn           = "not_your_turn"
	CodeCannotAct             = "cannot_act"
	CodeAlreadyActedThisRound = "already_acted_this_round"
	CodeActionInFlight        = "action_in_flight"
	CodeInvalidAction         = "invalid_action"
	CodeMustCallOrFold        = "must_call_or_fold"
	CodeUseRaiseInstead       = "use_raise_instead"
	CodeBelowMinimumBet       = "below_minimum_bet"
	CodeBelowMinimumRaise     = "below_minimum_raise"
	CodeInsufficientChips     = "insufficient_chips"
	CodeNothingToCall         = "nothing_to_call"
	CodeNotEnoughPlayers      = "not_enough_players_to_start"
	CodeUnreasonableAmount    = "unreasonable_amount"
	CodeHandAlreadyOver       = "hand_already_over"
)

// RuleError is a rejection of a client request. Rule errors are
// recovered locally: they produce an error response to the requester
// and never mutate table state or affect other tables.
type RuleError struct {
	Code    string
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

// RuleCode extracts the rejection code from an error, or "" when the
// error is not a rule rejection.
func RuleCode(err error) string {
	if re, ok := err.(*RuleError); ok {
		return re.Code
	}
	return ""
}

func ruleErrorf(code, format string, args ...any) *RuleError {
	return &RuleError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func invalidAction(s string) *RuleError {
	return ruleErrorf(CodeInvalidAction, "invalid action %q", s)
}
