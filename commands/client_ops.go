package commands

import (
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// do nothing operation
	NOOP = iota
	// Initiate a money transfer from wallet
	TRANSFER
	// Print user public key
	MY_PK
	// Connect a full node with ip address and port
	CONNECT
	// Get my own balance
	GET_BALANCE
	// List my confirmed transactions
	MY_HISTORY
	// Mine the pending pool, the reward goes to my current key
	MINE_BLOCK
	// List the pending transactions of the full node
	SHOW_PENDING
	// Print the chain of the full node
	SHOW_LEDGER
	// Ask the full node to validate its chain
	VALIDATE_CHAIN
	// Generate one more key
	NEW_KEY
	// Switch the current key by index
	USE_KEY
	// List my keys
	MY_KEYS
)

type ClientCommand struct {
	Op   Operation
	Args []string
}

func (c ClientCommand) IsValid() bool {
	switch c.Op {
	case TRANSFER:
		if len(c.Args) != 2 {
			return false
		}
		v, err := strconv.ParseFloat(c.Args[1], 64)
		return err == nil && v > 0
	case MY_PK, GET_BALANCE, MY_HISTORY, MINE_BLOCK, SHOW_PENDING, SHOW_LEDGER, VALIDATE_CHAIN, NEW_KEY, MY_KEYS:
		return len(c.Args) == 0
	case USE_KEY:
		if len(c.Args) != 1 {
			return false
		}
		v, err := strconv.Atoi(c.Args[0])
		return err == nil && v >= 0
	case CONNECT:
		if len(c.Args) != 2 {
			return false
		}
		host := c.Args[0]
		validHost := host == "localhost" || net.ParseIP(host) != nil
		return validHost && portRegex.MatchString(c.Args[1])
	default:
		return false
	}
}

var clientOperations = map[string]Operation{
	"transfer":    TRANSFER,
	"my_pk":       MY_PK,
	"connect":     CONNECT,
	"get_balance": GET_BALANCE,
	"history":     MY_HISTORY,
	"mine":        MINE_BLOCK,
	"pending":     SHOW_PENDING,
	"ledger":      SHOW_LEDGER,
	"validate":    VALIDATE_CHAIN,
	"new_key":     NEW_KEY,
	"use":         USE_KEY,
	"keys":        MY_KEYS,
}

func CreateClientCommand(s string) (ClientCommand, error) {
	ss := strings.Fields(s)
	if len(ss) == 0 {
		return ClientCommand{}, errors.New("command is empty")
	}
	cmd := ClientCommand{Op: NOOP, Args: ss[1:]}
	if op, ok := clientOperations[ss[0]]; ok {
		cmd.Op = op
	}
	if !cmd.IsValid() {
		return ClientCommand{}, errors.New("invalid command")
	}
	return cmd, nil
}
