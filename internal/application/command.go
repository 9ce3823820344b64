package application

import (
	"fmt"
	"strings"
	"time"

	"support-duty-bot/internal/domain"
)

// Command is the parsed form of one incoming bot message. Each variant
// carries typed arguments; handlers never see raw text.
type Command interface {
	Verb() string
	isCommand()
}

type StartCommand struct{}
type HelpCommand struct{}
type DutyCommand struct{}
type MyDutiesCommand struct{}
type EmployeesCommand struct{}

type AddEmployeeCommand struct{ Username string }
type RemoveEmployeeCommand struct{ Username string }
type RemoveDutyCommand struct{ Date time.Time }

type SetDutyCommand struct {
	Date     time.Time
	Username string
}

func (StartCommand) Verb() string          { return "/start" }
func (HelpCommand) Verb() string           { return "/help" }
func (DutyCommand) Verb() string           { return "/duty" }
func (MyDutiesCommand) Verb() string       { return "/myduties" }
func (EmployeesCommand) Verb() string      { return "/employees" }
func (AddEmployeeCommand) Verb() string    { return "/addemployee" }
func (RemoveEmployeeCommand) Verb() string { return "/removeemployee" }
func (SetDutyCommand) Verb() string        { return "/setduty" }
func (RemoveDutyCommand) Verb() string     { return "/removeduty" }

func (StartCommand) isCommand()          {}
func (HelpCommand) isCommand()           {}
func (DutyCommand) isCommand()           {}
func (MyDutiesCommand) isCommand()       {}
func (EmployeesCommand) isCommand()      {}
func (AddEmployeeCommand) isCommand()    {}
func (RemoveEmployeeCommand) isCommand() {}
func (SetDutyCommand) isCommand()        {}
func (RemoveDutyCommand) isCommand()     {}

// ParseCommand turns "/verb arg1 arg2" into a typed command variant.
// Unknown verbs and malformed arguments return errors wrapping
// domain.ErrInvalidArgument with a user-presentable message.
func ParseCommand(text string) (Command, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return nil, fmt.Errorf("%w: not a command", domain.ErrInvalidArgument)
	}
	// Telegram appends "@botname" in group chats.
	verb := strings.ToLower(fields[0])
	if i := strings.Index(verb, "@"); i > 0 {
		verb = verb[:i]
	}
	args := fields[1:]

	switch verb {
	case "/start":
		return StartCommand{}, nil
	case "/help":
		return HelpCommand{}, nil
	case "/duty":
		return DutyCommand{}, nil
	case "/myduties":
		return MyDutiesCommand{}, nil
	case "/employees":
		return EmployeesCommand{}, nil
	case "/addemployee":
		username, err := handleArg(args, "/addemployee @username")
		if err != nil {
			return nil, err
		}
		return AddEmployeeCommand{Username: username}, nil
	case "/removeemployee":
		username, err := handleArg(args, "/removeemployee @username")
		if err != nil {
			return nil, err
		}
		return RemoveEmployeeCommand{Username: username}, nil
	case "/setduty":
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: usage: /setduty YYYY-MM-DD @username", domain.ErrInvalidArgument)
		}
		date, err := dateArg(args[0])
		if err != nil {
			return nil, err
		}
		username, err := handleArg(args[1:], "/setduty YYYY-MM-DD @username")
		if err != nil {
			return nil, err
		}
		return SetDutyCommand{Date: date, Username: username}, nil
	case "/removeduty":
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: usage: /removeduty YYYY-MM-DD", domain.ErrInvalidArgument)
		}
		date, err := dateArg(args[0])
		if err != nil {
			return nil, err
		}
		return RemoveDutyCommand{Date: date}, nil
	default:
		return nil, fmt.Errorf("%w: unknown command %s", domain.ErrInvalidArgument, verb)
	}
}

func handleArg(args []string, usage string) (string, error) {
	if len(args) != 1 || !strings.HasPrefix(args[0], "@") || len(args[0]) < 2 {
		return "", fmt.Errorf("%w: usage: %s", domain.ErrInvalidArgument, usage)
	}
	return strings.TrimPrefix(args[0], "@"), nil
}

func dateArg(arg string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", arg)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a date (expected YYYY-MM-DD)", domain.ErrInvalidArgument, arg)
	}
	return date, nil
}
