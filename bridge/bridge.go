// Package bridge implements the full-duplex forwarder that sits between a
// player's transport and the game-server transport handling that player's
// chatroom (spec §4.3).
package bridge

import (
	"errors"
	"fmt"
	"time"

	"github.com/tkahng/tactoe/internal/raceutil"
	"github.com/tkahng/tactoe/transport"
)

// ErrServerDisconnected indicates the game-server side of the bridge closed
// or errored first.
var ErrServerDisconnected = errors.New("bridge: game-server disconnected")

// ErrPlayerDisconnected indicates the player side of the bridge closed or
// errored first.
var ErrPlayerDisconnected = errors.New("bridge: player disconnected")

// Run forwards frames between server and client in both directions until
// either side disconnects or a frame with content["game_status"] ==
// "finished" passes from server to client. It returns nil on a clean
// finished-game termination, or one of ErrServerDisconnected /
// ErrPlayerDisconnected wrapping the underlying transport error otherwise.
//
// Run closes server before returning, and interrupts a pending Receive on
// client with a read deadline that it clears again before returning; client
// stays open for the caller. Transport.Close is idempotent, so the caller
// may close server again without consequence.
func Run(server, client *transport.Transport) error {
	quit := make(chan struct{})

	err := raceutil.First(
		func() {
			close(quit)
			_ = server.Close()
			_ = client.SetReadDeadline(time.Now())
		},
		func() error { return forwardServerToClient(server, client, quit) },
		func() error { return forwardClientToServer(server, client, quit) },
	)
	_ = client.SetReadDeadline(time.Time{})
	if errors.Is(err, errFinished) {
		return nil
	}
	return err
}

// errFinished is a private sentinel used to signal a clean end-of-game exit
// from forwardServerToClient through raceutil.First without it leaking as a
// disconnect classification.
var errFinished = errors.New("bridge: game finished")

func forwardServerToClient(server, client *transport.Transport, quit <-chan struct{}) error {
	for {
		select {
		case <-quit:
			return nil
		default:
		}

		f, err := server.Receive()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrServerDisconnected, err)
		}

		if err := client.Send(f); err != nil {
			return fmt.Errorf("%w: %w", ErrPlayerDisconnected, err)
		}

		if status, _ := f.Content["game_status"].(string); status == "finished" {
			return errFinished
		}
	}
}

func forwardClientToServer(server, client *transport.Transport, quit <-chan struct{}) error {
	for {
		select {
		case <-quit:
			return nil
		default:
		}

		f, err := client.Receive()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPlayerDisconnected, err)
		}

		if err := server.Send(f); err != nil {
			return fmt.Errorf("%w: %w", ErrServerDisconnected, err)
		}
	}
}
