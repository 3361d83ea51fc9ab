package command

import (
	"fmt"

	"github.com/marcelsud/webhook-recorder/message"
)

// GetOptions are the parsed arguments of webhook.get and custom commands
type GetOptions struct {
	Path     string
	Selector message.Selector
}

// DeleteOptions are the parsed arguments of webhook.delete
type DeleteOptions struct {
	Path     string
	Selector message.Selector
}

// ParseGetOptions parses "<path> [selector]"
func ParseGetOptions(args []string) (GetOptions, error) {
	if len(args) < 1 || len(args) > 2 {
		return GetOptions{}, fmt.Errorf("usage: %s <path> [index|start-end|all]", CmdGet)
	}
	sel := message.Latest()
	if len(args) == 2 {
		var err error
		if sel, err = message.ParseSelector(args[1]); err != nil {
			return GetOptions{}, err
		}
	}
	if sel.Kind == message.SelectOld {
		return GetOptions{}, fmt.Errorf("%w: old can only be deleted", message.ErrUnsupportedSelector)
	}
	return GetOptions{Path: args[0], Selector: sel}, nil
}

// ParseDeleteOptions parses "<path> <selector>"; the selector is required
func ParseDeleteOptions(args []string) (DeleteOptions, error) {
	if len(args) != 2 {
		return DeleteOptions{}, fmt.Errorf("usage: %s <path> <index|start-end|all|old>", CmdDelete)
	}
	sel, err := message.ParseSelector(args[1])
	if err != nil {
		return DeleteOptions{}, err
	}
	return DeleteOptions{Path: args[0], Selector: sel}, nil
}
