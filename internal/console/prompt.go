package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

type PasswordReader interface {
	ReadPassword(prompt string) (string, error)
}

var readPasswordFunc = term.ReadPassword // mockable

// TermPasswordReader reads without echo from a terminal and falls back to a
// plain line read when stdin is piped.
type TermPasswordReader struct {
	In  *os.File
	Out io.Writer
}

func (t TermPasswordReader) ReadPassword(prompt string) (string, error) {
	fmt.Fprint(t.Out, prompt)

	fd := int(t.In.Fd())
	if term.IsTerminal(fd) {
		pwd, err := readPasswordFunc(fd)
		fmt.Fprintln(t.Out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pwd), nil
	}

	line, err := bufio.NewReader(t.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
