package main

import (
	"strconv"

	"github.com/pterm/pterm"
	"pokerroom-server/pkg/deck"
	"pokerroom-server/pkg/lobby"
)

// tableData lays out the seats, one row per player
func tableData(s lobby.Snapshot, self uint64) pterm.TableData {
	data := pterm.TableData{{"", "Seat", "Name", "Money", "Bet", "Status"}}
	for _, p := range s.Players {
		marker := ""
		if s.InProgress && p.Position == s.Turn {
			marker = ">"
		}

		name := p.Name
		if p.ClientID == self {
			name += " (you)"
		}

		data = append(data, []string{
			marker,
			strconv.Itoa(p.Position + 1),
			name,
			strconv.Itoa(p.Money),
			strconv.Itoa(p.BetThisTurn),
			status(p),
		})
	}

	return data
}

func status(p lobby.Player) string {
	switch {
	case p.Disconnected:
		return "left"
	case p.IsFolded:
		return "folded"
	case p.IsAllIn:
		return "all-in"
	case p.Acted:
		return "acted"
	}

	return ""
}

func render(s lobby.Snapshot, self uint64, hand deck.Hand) {
	pterm.Println()
	if err := pterm.DefaultTable.WithHasHeader().WithData(tableData(s, self)).Render(); err != nil {
		pterm.Error.Println(err)
	}

	if !s.InProgress {
		if s.Pot > 0 {
			pterm.Info.Printfln("Pot: %d. Waiting for the owner to award it or start a hand.", s.Pot)
		} else {
			pterm.Info.Println("Waiting for the owner to start a hand.")
		}
		return
	}

	pterm.Info.Printfln("Round %d. Pot: %d. Current bet: %d.", s.Round+1, s.Pot, s.CurrentBet)
	if len(hand) > 0 {
		pterm.Info.Printfln("Your hand: %s", hand.String())
	}
}
