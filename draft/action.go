package draft

import "fmt"

// Action is the compose action the draft originated from.
type Action string

const (
	ActionCompose  Action = "Compose"
	ActionReply    Action = "Reply"
	ActionReplyAll Action = "ReplyAll"
	ActionForward  Action = "Forward"
)

func ParseAction(s string) (Action, error) {
	switch action := Action(s); action {
	case ActionCompose, ActionReply, ActionReplyAll, ActionForward:
		return action, nil

	default:
		return "", fmt.Errorf("unknown draft action %q", s)
	}
}

// IsResponse reports whether the action answers or forwards an existing message.
func (a Action) IsResponse() bool {
	return a == ActionReply || a == ActionReplyAll || a == ActionForward
}
