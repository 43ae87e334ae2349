package shell

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// ReadSecret writes prompt to out and reads one secret from in. Echo is
// disabled when in is a terminal. A nil logger uses slog.Default().
func ReadSecret(in io.Reader, out io.Writer, prompt string, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return readSecret(in, bufio.NewReader(in), out, prompt, logger)
}

// readSecret reads from the terminal behind raw when there is one, otherwise
// one line from buffered, which must wrap raw.
func readSecret(raw io.Reader, buffered *bufio.Reader, out io.Writer, prompt string, logger *slog.Logger) (string, error) {
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}

	if f, ok := raw.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", fmt.Errorf("reading secret input: %w", err)
		}
		if _, err := fmt.Fprintln(out); err != nil {
			return "", fmt.Errorf("writing newline after secret input: %w", err)
		}
		return string(secret), nil
	}

	logger.Debug("not a terminal, reading secret as a line")
	return readLine(buffered)
}

// readLine returns the next line without its line ending. A final line
// without a newline is returned; io.EOF is only reported when nothing was read.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
