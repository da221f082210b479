package simhost

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/roottap/firmware-core/internal/ctap2"
)

// PromptGate is a PresenceGate backed by an operator prompt: it writes a
// prompt to out and blocks on a yes/no line from in, the loopback
// simulator's stand-in for a real authenticator's button or biometric
// sensor. A reply that doesn't arrive before timeout surfaces as
// StatusTimeout, matching the spec's presence-gate timeout semantics
// (§5, Cancellation).
type PromptGate struct {
	in      *bufio.Reader
	out     io.Writer
	timeout time.Duration
}

// NewPromptGate builds a PromptGate reading from in and prompting on out.
func NewPromptGate(in io.Reader, out io.Writer, timeout time.Duration) *PromptGate {
	return &PromptGate{in: bufio.NewReader(in), out: out, timeout: timeout}
}

// Wait prompts for approval and blocks until a reply line arrives or
// timeout elapses.
func (g *PromptGate) Wait() ctap2.Status {
	fmt.Fprintf(g.out, "touch the authenticator to approve (y/n, %v to time out): ", g.timeout)

	replies := make(chan string, 1)
	readFailed := make(chan struct{}, 1)
	go func() {
		line, err := g.in.ReadString('\n')
		if err != nil {
			readFailed <- struct{}{}
			return
		}
		replies <- strings.TrimSpace(line)
	}()

	select {
	case line := <-replies:
		if strings.EqualFold(line, "y") || strings.EqualFold(line, "yes") {
			return ctap2.StatusOK
		}
		return ctap2.StatusOperationDenied
	case <-readFailed:
		return ctap2.StatusTimeout
	case <-time.After(g.timeout):
		return ctap2.StatusTimeout
	}
}
