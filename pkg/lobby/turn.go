package lobby

// Outcome describes what a successful state change did to the hand
type Outcome int

// outcome constants
const (
	OutcomeNone Outcome = iota
	// OutcomeTurnAdvanced means the next seat that can act is on the clock
	OutcomeTurnAdvanced
	// OutcomeRoundComplete means a betting round ended and the next one began
	OutcomeRoundComplete
	// OutcomeHandWon means every other seat folded and the last seat took the pot
	OutcomeHandWon
	// OutcomeShowdown means betting is over; the pot waits for AwardPot
	OutcomeShowdown
	// OutcomeSeatRemoved means a seat left before a hand started
	OutcomeSeatRemoved
	// OutcomeSeatFolded means a seat left during a hand, out of turn
	OutcomeSeatFolded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeTurnAdvanced:
		return "turn-advanced"
	case OutcomeRoundComplete:
		return "round-complete"
	case OutcomeHandWon:
		return "hand-won"
	case OutcomeShowdown:
		return "showdown"
	case OutcomeSeatRemoved:
		return "seat-removed"
	case OutcomeSeatFolded:
		return "seat-folded"
	}

	return ""
}

// HandOver returns true if the outcome ended the hand
func (o Outcome) HandOver() bool {
	return o == OutcomeHandWon || o == OutcomeShowdown
}

// PlayTurnAs plays the action for clientID, who must be the seat at the turn index
func (l *Lobby) PlayTurnAs(clientID uint64, a Action) (Outcome, error) {
	if !l.inProgress {
		return OutcomeNone, ErrHandNotInProgress
	}

	if l.players[l.turn].ClientID != clientID {
		return OutcomeNone, ErrNotYourTurn
	}

	return l.PlayTurn(a)
}

// PlayTurn applies the action to the player at the turn index
// If an error is returned, the lobby is unchanged.
func (l *Lobby) PlayTurn(a Action) (Outcome, error) {
	if !l.inProgress {
		return OutcomeNone, ErrHandNotInProgress
	}

	if err := a.Validate(); err != nil {
		return OutcomeNone, err
	}

	p := l.players[l.turn]

	switch a.Kind {
	case Check:
		if p.BetThisTurn < l.currentBet {
			return OutcomeNone, newActionError(MustCallCurrentBet, "you must call the current bet of ${%d}", l.currentBet)
		}
	case Call:
		owed := l.currentBet - p.BetThisTurn
		if p.Money < owed {
			return OutcomeNone, newActionError(NotEnoughMoney, "you don't have enough money to call")
		}

		l.pot += p.commit(owed)
	case Raise:
		if p.Money < a.Amount {
			return OutcomeNone, newActionError(NotEnoughMoney, "you don't have enough money to raise")
		}

		if a.Amount+p.BetThisTurn < l.currentBet {
			return OutcomeNone, newActionError(MustRaiseToCurrentBet, "you must raise to at least the current bet of ${%d}", l.currentBet)
		}

		l.pot += p.commit(a.Amount)
		l.raiseTo(p)
	case Fold:
		l.fold(p)
	case AllIn:
		l.pot += p.commit(p.Money)
		p.IsAllIn = true
		if p.BetThisTurn > l.currentBet {
			l.raiseTo(p)
		}
	}

	p.Acted = true
	return l.advance(), nil
}

// Cost returns the chips the player at the turn index would commit by playing the action
func (l *Lobby) Cost(a Action) int {
	if !l.inProgress {
		return 0
	}

	p := l.players[l.turn]
	switch a.Kind {
	case Call:
		return l.currentBet - p.BetThisTurn
	case Raise:
		return a.Amount
	case AllIn:
		return p.Money
	}

	return 0
}

// raiseTo makes the player's bet the current bet and re-opens the action for everyone else
func (l *Lobby) raiseTo(p *Player) {
	if p.BetThisTurn > l.currentBet {
		for _, other := range l.players {
			if other != p {
				other.Acted = false
			}
		}
	}

	l.currentBet = p.BetThisTurn
}

func (l *Lobby) fold(p *Player) {
	p.IsFolded = true
	for _, card := range p.Hand {
		l.discards.AddCard(card)
	}
	p.Hand = nil
}

// advance moves the turn after a successful action
// It never loops: every path either finds a seat that can act within one lap or ends the round or hand.
func (l *Lobby) advance() Outcome {
	if l.activeCount() == 1 {
		l.finishHandWon()
		return OutcomeHandWon
	}

	if l.roundComplete() {
		if l.round+1 >= l.options.BettingRounds || l.canActCount() < 2 {
			l.finishShowdown()
			return OutcomeShowdown
		}

		l.newRound()
		return OutcomeRoundComplete
	}

	next, ok := l.nextToAct(l.turn)
	if !ok {
		l.finishShowdown()
		return OutcomeShowdown
	}

	l.turn = next
	return OutcomeTurnAdvanced
}

// nextToAct returns the first seat after from, in position order, that can still act
func (l *Lobby) nextToAct(from int) (int, bool) {
	n := len(l.players)
	for i := 1; i <= n; i++ {
		index := (from + i) % n
		if l.players[index].CanAct() {
			return index, true
		}
	}

	return 0, false
}

func (l *Lobby) firstToAct() int {
	if index, ok := l.nextToAct(len(l.players) - 1); ok {
		return index
	}

	return 0
}

func (l *Lobby) roundComplete() bool {
	for _, p := range l.players {
		if !p.CanAct() {
			continue
		}

		if !p.Acted || p.BetThisTurn != l.currentBet {
			return false
		}
	}

	return true
}

func (l *Lobby) activeCount() int {
	count := 0
	for _, p := range l.players {
		if !p.IsFolded {
			count++
		}
	}

	return count
}

func (l *Lobby) canActCount() int {
	count := 0
	for _, p := range l.players {
		if p.CanAct() {
			count++
		}
	}

	return count
}

func (l *Lobby) newRound() {
	l.round++
	l.currentBet = 0
	for _, p := range l.players {
		p.BetThisTurn = 0
		p.Acted = false
	}

	l.turn = l.firstToAct()
}

func (l *Lobby) finishHandWon() {
	for i, p := range l.players {
		if !p.IsFolded {
			p.Money += l.pot
			l.pot = 0
			l.turn = i
			break
		}
	}

	l.endHand()
}

func (l *Lobby) finishShowdown() {
	if l.players[l.turn].IsFolded {
		l.turn = l.firstActive()
	}

	l.endHand()
}

func (l *Lobby) firstActive() int {
	for i, p := range l.players {
		if !p.IsFolded {
			return i
		}
	}

	return 0
}

func (l *Lobby) endHand() {
	l.inProgress = false
	l.currentBet = 0
	for _, p := range l.players {
		p.BetThisTurn = 0
		p.Acted = false
	}
}
