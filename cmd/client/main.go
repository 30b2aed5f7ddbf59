package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tkahng/tactoe/internal/config"
	"github.com/tkahng/tactoe/playerclient"
	"github.com/tkahng/tactoe/transport"
)

func main() {
	config.Load()
	brokerAddr := config.Getenv("TACTOE_CLIENT_BROKER_ADDR", "127.0.0.1:8989")

	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Welcome!")
	fmt.Print("Enter your username:\n")
	scanner.Scan()
	username := strings.TrimSpace(scanner.Text())

	conn, err := transport.DialWithBackoff(brokerAddr, transport.DefaultDialBackoff)
	if err != nil {
		fmt.Println("Webserver is not available. Try another time.")
		return
	}
	defer conn.Close()

	stub := playerclient.NewStub(conn, username)

	for {
		gameType, ok := mainMenu(scanner)
		if !ok {
			return
		}
		if err := playMatch(scanner, stub, gameType); err != nil {
			if errors.Is(err, playerclient.ErrExit) {
				return
			}
			fmt.Println("Disconnected from webserver.")
			return
		}
	}
}

func mainMenu(scanner *bufio.Scanner) (string, bool) {
	for {
		fmt.Println(strings.Repeat("*", 40))
		fmt.Println("1. Training\n2. Multiplayer\n3. Exit")
		if !scanner.Scan() {
			return "", false
		}
		switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
		case "1", "train", "training":
			return "single", true
		case "2", "multi", "multiplayer":
			return "multi", true
		case "3", "exit", "/exit":
			return "", false
		}
	}
}

// playMatch drives one matchmaking-through-game-end cycle: it sends
// start_game, then on each iteration applies at most one already-received
// server frame and blocks for the next line of input.
func playMatch(scanner *bufio.Scanner, stub *playerclient.Stub, gameType string) error {
	controller := playerclient.NewController()
	controller.BeginWait()
	if err := stub.StartGame(gameType); err != nil {
		return err
	}

	frames := make(chan frameOrErr, 1)
	go readFrames(stub, frames)

	for controller.State() != playerclient.StateIdle {
		select {
		case fe := <-frames:
			if fe.err != nil {
				return fe.err
			}
			controller.HandleFrame(fe.frame)
		default:
		}

		if !scanner.Scan() {
			return nil
		}
		if err := playerclient.HandleCommand(scanner.Text(), stub); err != nil {
			return err
		}
	}
	return nil
}

type frameOrErr struct {
	frame transport.Frame
	err   error
}

func readFrames(stub *playerclient.Stub, out chan<- frameOrErr) {
	for {
		f, err := stub.Receive()
		out <- frameOrErr{frame: f, err: err}
		if err != nil {
			return
		}
	}
}
