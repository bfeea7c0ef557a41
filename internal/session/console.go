package session

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	good    = color.New(color.FgGreen)
	bad     = color.New(color.FgRed)
	notice  = color.New(color.FgYellow)
)

// console reads answers line by line. Once input is exhausted every read
// returns "" and eof stays set. drained is set once a read comes back empty
// at eof; a final line without a newline still counts as input.
type console struct {
	in      *bufio.Reader
	out     io.Writer
	fd      int
	eof     bool
	drained bool
}

func newConsole(in io.Reader, out io.Writer) *console {
	c := &console{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		c.fd = int(f.Fd())
	}
	return c
}

func (c *console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) println(args ...any) {
	fmt.Fprintln(c.out, args...)
}

func (c *console) header(text string) {
	c.println()
	heading.Fprintln(c.out, text)
	c.println(strings.Repeat("=", len(text)))
}

func (c *console) ask(prompt string) string {
	c.printf("%s", prompt)
	if c.eof {
		c.drained = true
		return ""
	}
	line, err := c.in.ReadString('\n')
	if err != nil {
		c.eof = true
		if line == "" {
			c.drained = true
			c.println()
		}
	}
	return strings.TrimRight(line, "\r\n")
}

// askPassword does not echo when reading from a terminal.
func (c *console) askPassword(prompt string) string {
	if c.fd < 0 {
		return c.ask(prompt)
	}
	c.printf("%s", prompt)
	secret, err := term.ReadPassword(c.fd)
	c.println()
	if err != nil {
		c.eof, c.drained = true, true
		return ""
	}
	return string(secret)
}
