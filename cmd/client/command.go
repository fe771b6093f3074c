package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pokerroom-server/pkg/lobby"
)

type commandKind int

const (
	cmdHelp commandKind = iota
	cmdShow
	cmdStart
	cmdCheck
	cmdCall
	cmdRaise
	cmdFold
	cmdAllIn
	cmdAward
	cmdQuit
)

// command is a parsed line of user input
type command struct {
	kind   commandKind
	amount int
	// seats are the one-based seat numbers named by award
	seats []int
}

var commandNames = map[string]commandKind{
	"help":  cmdHelp,
	"?":     cmdHelp,
	"show":  cmdShow,
	"start": cmdStart,
	"check": cmdCheck,
	"call":  cmdCall,
	"raise": cmdRaise,
	"fold":  cmdFold,
	"allin": cmdAllIn,
	"award": cmdAward,
	"quit":  cmdQuit,
	"exit":  cmdQuit,
}

var errEmptyCommand = errors.New("type a command, or help")

func parseCommand(line string) (command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return command{}, errEmptyCommand
	}

	kind, ok := commandNames[fields[0]]
	if !ok {
		return command{}, fmt.Errorf("unknown command: %s", fields[0])
	}

	if kind == cmdAward {
		return parseAward(fields[1:])
	}

	if kind != cmdRaise {
		if len(fields) > 1 {
			return command{}, fmt.Errorf("%s does not take an argument", fields[0])
		}

		return command{kind: kind}, nil
	}

	if len(fields) != 2 {
		return command{}, errors.New("usage: raise <amount>")
	}

	amount, err := strconv.Atoi(fields[1])
	if err != nil || amount < 0 {
		return command{}, fmt.Errorf("invalid amount: %s", fields[1])
	}

	return command{kind: cmdRaise, amount: amount}, nil
}

func parseAward(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, errors.New("usage: award <seat> [seat...]")
	}

	seats := make([]int, 0, len(args))
	for _, arg := range args {
		seat, err := strconv.Atoi(arg)
		if err != nil || seat < 1 {
			return command{}, fmt.Errorf("invalid seat: %s", arg)
		}

		seats = append(seats, seat)
	}

	return command{kind: cmdAward, seats: seats}, nil
}

// winners maps the seats named by an award command to client IDs
func (c command) winners(s lobby.Snapshot) ([]uint64, error) {
	ids := make([]uint64, 0, len(c.seats))
	for _, seat := range c.seats {
		if seat > len(s.Players) {
			return nil, fmt.Errorf("nobody sits at seat %d", seat)
		}

		ids = append(ids, s.Players[seat-1].ClientID)
	}

	return ids, nil
}

// action returns the lobby action for a betting command
func (c command) action() (lobby.Action, bool) {
	switch c.kind {
	case cmdCheck:
		return lobby.ActionCheck, true
	case cmdCall:
		return lobby.ActionCall, true
	case cmdRaise:
		return lobby.RaiseBy(c.amount), true
	case cmdFold:
		return lobby.ActionFold, true
	case cmdAllIn:
		return lobby.ActionAllIn, true
	}

	return lobby.Action{}, false
}

const helpText = `commands:
  start          start a hand (room owner only)
  check          check
  call           call the current bet
  raise <n>      put n more chips in
  fold           fold your hand
  allin          put all your chips in
  award <seat>   give the pot to the showdown winners (room owner only)
  show           redraw the table
  quit           leave the room`
