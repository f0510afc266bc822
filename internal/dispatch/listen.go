package dispatch

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pcb-core/pcb/internal/core"
)

// Listen runs the one-action-per-line stdin protocol: read a line, split
// it into argv by whitespace, dispatch it, print either the action's
// result or its error, and repeat until EOF. This is the required
// transport (spec's interactive dispatcher); the optional network listen
// mode in netlisten wraps the same Registry.Dispatch call per message
// instead of per stdin line.
func Listen(c *core.Context, r io.Reader, w io.Writer, reg *Registry) {
	s := NewState()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		argv := strings.Fields(line)
		result, err := reg.Dispatch(c, s, argv)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			continue
		}
		if result != "" {
			fmt.Fprintln(w, result)
		} else {
			fmt.Fprintln(w, "ok")
		}
	}
}
