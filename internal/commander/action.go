package commander

import (
	"fmt"
	"strings"
)

type Action int

const (
	ActionTrain Action = iota + 1
	ActionPredict
)

func (a Action) String() string {
	switch a {
	case ActionTrain:
		return "train"
	case ActionPredict:
		return "predict"
	default:
		return "unknown"
	}
}

// UsageError reports a missing or unrecognized command-line verb.
type UsageError struct {
	Args []string
}

func (e *UsageError) Error() string {
	msg := "must supply 'train' or 'predict' argument"
	switch {
	case len(e.Args) == 0:
		return msg
	case len(e.Args) > 1:
		return fmt.Sprintf("%s (got %d arguments)", msg, len(e.Args))
	default:
		return fmt.Sprintf("%s (got %q)", msg, e.Args[0])
	}
}

// ParseAction selects the flow from exactly one case-insensitive verb.
func ParseAction(args []string) (Action, error) {
	if len(args) != 1 {
		return 0, &UsageError{Args: args}
	}

	switch strings.ToLower(args[0]) {
	case "train":
		return ActionTrain, nil
	case "predict":
		return ActionPredict, nil
	default:
		return 0, &UsageError{Args: args}
	}
}
