package playerclient

import (
	"net"
	"testing"

	"github.com/tkahng/tactoe/transport"
)

// pipeStub returns two Stubs back-to-back over an in-memory pipe: a is the
// player side under test, b is a peer used to observe what a sends.
func pipeStub(t *testing.T) (*Stub, *Stub) {
	t.Helper()
	c1, c2 := net.Pipe()
	return NewStub(transport.New(c1), "alice"), NewStub(transport.New(c2), "peer")
}
