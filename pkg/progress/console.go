package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// Console renders a single live progress line on a terminal. On a
// non-TTY writer it stays silent, so piping output never produces
// carriage-return garbage.
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	tty   bool
	tick  int
	label *color.Color
}

// NewConsole builds a console sink writing to stderr, which keeps the
// progress line separate from structured log output on stdout.
func NewConsole() *Console {
	return &Console{
		w:     os.Stderr,
		tty:   isatty.IsTerminal(os.Stderr.Fd()),
		label: color.New(color.FgHiCyan),
	}
}

// Report renders one progress frame. A negative percent renders a
// spinner instead of a percentage.
func (c *Console) Report(percent int, label string) {
	if !c.tty {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	const maxLabel = 60
	if len(label) > maxLabel {
		label = "..." + label[len(label)-maxLabel+3:]
	}
	if percent < 0 {
		frame := spinnerFrames[c.tick%len(spinnerFrames)]
		c.tick++
		fmt.Fprintf(c.w, "\r\033[K%s %s", frame, c.label.Sprint(label))
		return
	}
	if percent > 100 {
		percent = 100
	}
	fmt.Fprintf(c.w, "\r\033[K%3d%% %s", percent, c.label.Sprint(label))
}

// Done clears the live line.
func (c *Console) Done() {
	if !c.tty {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.w, "\r\033[K")
}

// ByteCountLabel formats a byte total for progress labels, e.g.
// "copying a/b.txt (1.2 MB)".
func ByteCountLabel(name string, size int64) string {
	if size < 0 {
		return name
	}
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString(" (")
	sb.WriteString(humanize.Bytes(uint64(size)))
	sb.WriteString(")")
	return sb.String()
}
