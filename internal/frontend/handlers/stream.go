package handlers

import (
	"bufio"
	"io"
	"strings"
	"sync"
)

// LineConn is the line-oriented connection a game session runs over.
// *telnet.Conn and *StreamConn implement it.
type LineConn interface {
	ReadLine() (string, error)
	WriteLines(lines ...string) error
	WritePrompt(prompt string) error
}

// StreamConn adapts a reader and writer pair, such as a terminal, to LineConn.
type StreamConn struct {
	scanner *bufio.Scanner
	mu      sync.Mutex
	w       io.Writer
}

// NewStreamConn creates a StreamConn reading lines from r and writing to w.
func NewStreamConn(r io.Reader, w io.Writer) *StreamConn {
	return &StreamConn{scanner: bufio.NewScanner(r), w: w}
}

// ReadLine returns the next line without its terminator, or io.EOF.
func (s *StreamConn) ReadLine() (string, error) {
	if s.scanner.Scan() {
		return strings.TrimRight(s.scanner.Text(), "\r"), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// WriteLines writes each line followed by a newline.
func (s *StreamConn) WriteLines(lines ...string) error {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return s.write(b.String())
}

// WritePrompt writes prompt without a trailing newline.
func (s *StreamConn) WritePrompt(prompt string) error {
	return s.write(prompt)
}

func (s *StreamConn) write(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.w, text)
	return err
}
