package commands

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type Operation int

const PORT_REGEX = "^[0-9]{2,5}$"

var portRegex = regexp.MustCompile(PORT_REGEX)

const (
	DEFAULT = iota
	// Start mining, infinite loop until explicit stop.
	START
	// Stop mining, the block being mined is dropped.
	STOP
	// Mine exactly one block.
	MINE
	// Print the balance of an address.
	BALANCE
	// Print the confirmed transactions of an address.
	HISTORY
	// List pending transactions.
	PENDING
	// Validate the whole chain.
	VALIDATE
	// Change the difficulty of the next block.
	DIFFICULTY
	// Change the mining reward of the next block.
	REWARD
	// Render the last blocks of the chain.
	SHOW
	// Persist the ledger to the state file.
	SAVE
)

// A command contains an operation and its arguments.
type Command struct {
	Op   Operation
	Args []string
}

func (c Command) IsValid() bool {
	switch c.Op {
	case STOP, PENDING, VALIDATE, SAVE:
		return len(c.Args) == 0
	case START, MINE, BALANCE, HISTORY:
		// Argument is an address.
		return len(c.Args) == 1 && c.Args[0] != ""
	case DIFFICULTY, SHOW:
		if len(c.Args) != 1 {
			return false
		}
		v, err := strconv.Atoi(c.Args[0])
		if err != nil || v < 0 {
			return false
		}
		return c.Op == SHOW || v <= 64
	case REWARD:
		if len(c.Args) != 1 {
			return false
		}
		v, err := strconv.ParseFloat(c.Args[0], 64)
		return err == nil && v >= 0
	default:
		return false
	}
}

var operations = map[string]Operation{
	"start":      START,
	"stop":       STOP,
	"mine":       MINE,
	"balance":    BALANCE,
	"history":    HISTORY,
	"pending":    PENDING,
	"validate":   VALIDATE,
	"difficulty": DIFFICULTY,
	"reward":     REWARD,
	"show":       SHOW,
	"save":       SAVE,
}

// From string, create a full node command, e.g. "mine 04ab..." or "show 3".
func CreateCommand(s string) (Command, error) {
	ss := strings.Fields(s)
	if len(ss) == 0 {
		return Command{}, errors.New("command is empty")
	}
	op, ok := operations[ss[0]]
	if !ok {
		return Command{}, errors.Errorf("unknown command %q", ss[0])
	}
	cmd := Command{Op: op, Args: ss[1:]}
	if !cmd.IsValid() {
		return Command{}, errors.Errorf("invalid arguments for %q", ss[0])
	}
	return cmd, nil
}

// Create a brand new command with default operation.
func NewDefaultCommand() Command {
	return Command{
		Op: DEFAULT,
	}
}

func (c Command) IsDefault() bool {
	return c.Op == DEFAULT
}
