package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

type line struct {
	text string
	err  error
}

// lineReader reads stdin on its own goroutine so a blocked read never holds
// up cancellation. The goroutine exits at EOF or once ctx is done.
type lineReader struct {
	lines <-chan line
}

func newLineReader(ctx context.Context, r io.Reader) *lineReader {
	lines := make(chan line)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- line{text: sc.Text()}:
			case <-ctx.Done():
				return
			}
		}
		err := sc.Err()
		if err == nil {
			err = io.EOF
		} else {
			err = fmt.Errorf("read question: %w", err)
		}
		select {
		case lines <- line{err: err}:
		case <-ctx.Done():
		}
	}()
	return &lineReader{lines: lines}
}

// Next returns the next line, io.EOF at end of input or ctx.Err() once ctx
// is done.
func (lr *lineReader) Next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-lr.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}
