package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCanceled is returned when a prompt is abandoned because its context ended.
var ErrInputCanceled = errors.New("input canceled")

type lineResult struct {
	err  error
	line string
}

// LineReader reads trimmed lines from an input stream without blocking past
// context cancellation. A single goroutine scans the stream for the reader's
// lifetime, so lines typed after an abandoned prompt are delivered to the next one.
type LineReader struct {
	src   io.Reader
	lines chan lineResult
	start sync.Once
}

// NewLineReader wraps r. Scanning starts on the first ReadLine.
func NewLineReader(r io.Reader) *LineReader {
	if r == nil {
		panic("reader cannot be nil")
	}
	return &LineReader{src: r, lines: make(chan lineResult)}
}

func (r *LineReader) scan() {
	defer close(r.lines)
	scanner := bufio.NewScanner(r.src)
	for scanner.Scan() {
		r.lines <- lineResult{line: strings.TrimSpace(scanner.Text())}
	}
	if err := scanner.Err(); err != nil {
		r.lines <- lineResult{err: err}
	}
}

// ReadLine returns the next line with surrounding whitespace removed.
// It returns io.EOF once the input is exhausted and ErrInputCanceled when
// ctx ends first.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCanceled
	}
	r.start.Do(func() { go r.scan() })

	select {
	case <-ctx.Done():
		return "", ErrInputCanceled
	case res, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		return res.line, res.err
	}
}
