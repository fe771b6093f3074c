package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
	"pokerroom-server/internal/config"
	"pokerroom-server/internal/rng"
	"pokerroom-server/internal/util"
	"pokerroom-server/pkg/message"
	"pokerroom-server/pkg/room"
	"pokerroom-server/pkg/transport"
)

const dialTimeout = time.Second * 10

var (
	server    = flag.String("server", "http://localhost:7878", "the server URL")
	roomID    = flag.String("room", "", "the room to join; a new room is created when empty")
	name      = flag.String("name", "", "your name at the table (random when empty)")
	codecName = flag.String("codec", "", "the wire codec, json or binary (defaults to the configuration)")
)

func main() {
	flag.Parse()

	cfg := config.Instance()
	setupOutput(cfg.Log.Level)

	if *name == "" {
		*name = util.RandomName(rng.Crypto{})
	}

	if *codecName == "" {
		*codecName = cfg.Codec
	}

	codec, err := message.CodecFromString(*codecName)
	if err != nil {
		pterm.Fatal.Println(err)
	}

	if *roomID == "" {
		*roomID, err = createRoom(*server)
		if err != nil {
			pterm.Fatal.Println(err)
		}

		pterm.Success.Printfln("Created room %s", *roomID)
	}

	clientID := rng.Crypto{}.Uint64()
	wsURL, err := roomURL(*server, *roomID, clientID, cfg.ProtocolID, codec)
	if err != nil {
		pterm.Fatal.Println(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	conn, err := transport.Dial(ctx, wsURL, codec.Binary())
	cancel()
	if err != nil {
		pterm.Fatal.Println(err)
	}

	opts := room.OptionsFromConfig(cfg.Room)
	seat := room.NewSeat(clientID, *name, conn, codec, opts, logrus.StandardLogger())
	if err := seat.Join(); err != nil {
		pterm.Fatal.Println(err)
	}

	pterm.Info.Printfln("Joined room %s as %s. Type help for commands.", *roomID, *name)
	run(seat, conn, opts.Interval())
}

// run polls the connection and the terminal until the user quits or the server goes away
func run(seat *room.Seat, conn *transport.Conn, interval time.Duration) {
	lines := make(chan string)
	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if seat.Tick() > 0 {
				render(seat.Snapshot(), seat.ClientID(), seat.Hand())
			}
		case line, ok := <-lines:
			if !ok {
				_ = conn.Close()
				return
			}

			cmd, err := parseCommand(line)
			if err != nil {
				pterm.Warning.Println(err)
				continue
			}

			if cmd.kind == cmdQuit {
				_ = conn.Close()
				return
			}

			execute(seat, cmd)
		case <-conn.Done():
			if err := conn.Err(); err != nil {
				pterm.Error.Printfln("Disconnected: %v", err)
			} else {
				pterm.Info.Println("Disconnected")
			}

			return
		}
	}
}

func execute(seat *room.Seat, cmd command) {
	switch cmd.kind {
	case cmdHelp:
		pterm.Println(helpText)
	case cmdShow:
		render(seat.Snapshot(), seat.ClientID(), seat.Hand())
	case cmdStart:
		if err := seat.StartGame(); err != nil {
			pterm.Warning.Println(err)
		}
	case cmdAward:
		winners, err := cmd.winners(seat.Snapshot())
		if err != nil {
			pterm.Warning.Println(err)
			return
		}

		if err := seat.AwardPot(winners...); err != nil {
			pterm.Warning.Println(err)
		}
	default:
		a, ok := cmd.action()
		if !ok {
			return
		}

		outcome, err := seat.SubmitAction(a)
		if err != nil {
			pterm.Warning.Println(err)
			return
		}

		pterm.Success.Printfln("%s (%s)", a.String(), outcome.String())
		render(seat.Snapshot(), seat.ClientID(), seat.Hand())
	}
}

type createRoomResponse struct {
	UUID string `json:"uuid"`
}

func createRoom(server string) (string, error) {
	resp, err := http.Post(strings.TrimSuffix(server, "/")+"/room", "application/json", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("could not create a room: status %d", resp.StatusCode)
	}

	var created createRoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", err
	}

	return created.UUID, nil
}

// roomURL builds the websocket handshake URL for a room
func roomURL(server, roomID string, clientID uint64, protocolID uint64, codec message.Codec) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}

	if !util.IsRoomID(roomID) {
		return "", fmt.Errorf("invalid room: %s", roomID)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/room/" + roomID + "/ws"
	q := url.Values{}
	q.Set("clientId", fmt.Sprintf("%d", clientID))
	q.Set("protocol", fmt.Sprintf("%d", protocolID))
	q.Set("codec", codec.Name())
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// setupOutput keeps logs out of the way of the table and drops colors when stdout is not a terminal
func setupOutput(level string) {
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(logrus.WarnLevel)
	if level != "" {
		if lvl, err := logrus.ParseLevel(level); err == nil && lvl > logrus.InfoLevel {
			logrus.SetLevel(lvl)
		}
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		pterm.DisableStyling()
	}
}
