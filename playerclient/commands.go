package playerclient

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrExit is returned by HandleCommand for the "/exit" command.
var ErrExit = errors.New("playerclient: exit requested")

var placeMarkPattern = regexp.MustCompile(`^(\d+) (\d+)$`)

// HandleCommand parses one line of terminal input and issues the matching
// stub call. Unrecognized lines are ignored, matching the original
// implementation's silent fallthrough.
func HandleCommand(line string, stub *Stub) error {
	line = strings.TrimSpace(line)

	if m := placeMarkPattern.FindStringSubmatch(line); m != nil {
		row, _ := strconv.Atoi(m[1])
		col, _ := strconv.Atoi(m[2])
		return stub.PlaceMark(row, col)
	}

	switch {
	case line == "cancel":
		return stub.CancelGame()
	case strings.HasPrefix(line, "chat:"):
		return stub.Chat(strings.TrimPrefix(line, "chat:"))
	case line == "/change":
		return stub.ChangeGame()
	case line == "/exit":
		return ErrExit
	}
	return nil
}
