package notifysvc

import (
	"fmt"
	"io"

	"github.com/trezcool/shule/core"
)

// ConsoleNotifier renders transient notifications to the terminal.
type ConsoleNotifier struct {
	out io.Writer
}

var _ core.Notifier = (*ConsoleNotifier)(nil)

func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out}
}

func (n ConsoleNotifier) Success(msg string) {
	fmt.Fprintf(n.out, "✔ %s\n", msg)
}

func (n ConsoleNotifier) Error(msg string) {
	fmt.Fprintf(n.out, "✖ %s\n", msg)
}
