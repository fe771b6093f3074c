package lobby

import (
	"context"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
)

type turnEngineContext struct {
	lobby   *Lobby
	names   map[string]uint64
	outcome Outcome
	err     error
}

func (c *turnEngineContext) reset() {
	c.lobby = nil
	c.names = make(map[string]uint64)
	c.outcome = OutcomeNone
	c.err = nil
}

func (c *turnEngineContext) aTableWithPlayers(a, b, d string, money int) error {
	c.lobby = setupLobby()
	for i, name := range []string{a, b, d} {
		id := uint64(i + 1)
		if _, err := c.lobby.AddPlayer(NewPlayer(id, name, money)); err != nil {
			return err
		}

		c.names[name] = id
	}

	return nil
}

func (c *turnEngineContext) theHandHasStarted() error {
	return c.lobby.StartHand()
}

func (c *turnEngineContext) play(name string, a Action) error {
	id, ok := c.names[name]
	if !ok {
		return fmt.Errorf("unknown player %q", name)
	}

	c.outcome, c.err = c.lobby.PlayTurnAs(id, a)
	return nil
}

func (c *turnEngineContext) checks(name string) error {
	return c.play(name, ActionCheck)
}

func (c *turnEngineContext) calls(name string) error {
	return c.play(name, ActionCall)
}

func (c *turnEngineContext) folds(name string) error {
	return c.play(name, ActionFold)
}

func (c *turnEngineContext) raises(name string, amount int) error {
	return c.play(name, RaiseBy(amount))
}

func (c *turnEngineContext) hasChips(name string, money int) error {
	p, ok := c.lobby.Player(c.names[name])
	if !ok {
		return fmt.Errorf("unknown player %q", name)
	}

	if p.Money != money {
		return fmt.Errorf("expected %s to have %d chips, got %d", name, money, p.Money)
	}

	return nil
}

func (c *turnEngineContext) theCurrentBetIs(bet int) error {
	if c.lobby.CurrentBet() != bet {
		return fmt.Errorf("expected current bet %d, got %d", bet, c.lobby.CurrentBet())
	}

	return nil
}

func (c *turnEngineContext) thePotIs(pot int) error {
	if c.lobby.Pot() != pot {
		return fmt.Errorf("expected pot %d, got %d", pot, c.lobby.Pot())
	}

	return nil
}

func (c *turnEngineContext) itIsTurn(name string) error {
	if !c.lobby.IsClientTurn(c.names[name]) {
		p, _ := c.lobby.CurrentPlayer()
		return fmt.Errorf("expected %s to act, but it is %s's turn", name, p.Name)
	}

	return nil
}

func (c *turnEngineContext) theHandIsWonBy(name string) error {
	if c.err != nil {
		return c.err
	}

	if c.outcome != OutcomeHandWon {
		return fmt.Errorf("expected hand-won, got %s", c.outcome)
	}

	if c.lobby.InProgress() {
		return fmt.Errorf("hand is still in progress")
	}

	if p, _ := c.lobby.PlayerAt(c.lobby.Turn()); p.Name != name {
		return fmt.Errorf("expected %s to win, got %s", name, p.Name)
	}

	return nil
}

func (c *turnEngineContext) theActionIsRejectedWith(code string) error {
	actual, ok := CodeOf(c.err)
	if !ok {
		return fmt.Errorf("expected an action error, got %v", c.err)
	}

	if actual.String() != code {
		return fmt.Errorf("expected %s, got %s", code, actual)
	}

	return nil
}

func (c *turnEngineContext) theRoundIsComplete() error {
	if c.err != nil {
		return c.err
	}

	if c.outcome != OutcomeRoundComplete {
		return fmt.Errorf("expected round-complete, got %s", c.outcome)
	}

	return nil
}

func InitializeTurnEngineScenario(ctx *godog.ScenarioContext) {
	tc := &turnEngineContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^a table with players "([^"]*)", "([^"]*)" and "([^"]*)" holding (\d+) each$`, tc.aTableWithPlayers)
	ctx.Step(`^the hand has started$`, tc.theHandHasStarted)

	ctx.Step(`^"([^"]*)" checks$`, tc.checks)
	ctx.Step(`^"([^"]*)" calls$`, tc.calls)
	ctx.Step(`^"([^"]*)" folds$`, tc.folds)
	ctx.Step(`^"([^"]*)" raises (\d+)$`, tc.raises)

	ctx.Step(`^"([^"]*)" has (\d+) chips$`, tc.hasChips)
	ctx.Step(`^the current bet is (\d+)$`, tc.theCurrentBetIs)
	ctx.Step(`^the pot is (\d+)$`, tc.thePotIs)
	ctx.Step(`^it is "([^"]*)"'s turn$`, tc.itIsTurn)
	ctx.Step(`^the hand is won by "([^"]*)"$`, tc.theHandIsWonBy)
	ctx.Step(`^the action is rejected with "([^"]*)"$`, tc.theActionIsRejectedWith)
	ctx.Step(`^the round is complete$`, tc.theRoundIsComplete)
}

func TestTurnEngineFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeTurnEngineScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/turn_engine.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
