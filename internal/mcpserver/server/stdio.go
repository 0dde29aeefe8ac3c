package server

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
)

// maxMessageSize bounds a single newline-delimited JSON-RPC message
const maxMessageSize = 10 * 1024 * 1024

// stdioLine is one framed message read from the input
type stdioLine struct {
	data    []byte
	tooLong bool
	err     error
}

// ServeStdio reads newline-delimited JSON-RPC messages from r and writes
// responses to w until r is exhausted or ctx is cancelled. Messages are
// processed strictly in order. Cancellation returns ctx.Err() immediately,
// even while a read is blocked.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	out := bufio.NewWriter(w)

	done := make(chan struct{})
	defer close(done)
	lines := make(chan stdioLine)
	go readLines(r, lines, done)

	s.logger.Info().Str("server_name", s.info.Name).Msg("Serving MCP over stdio")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var line stdioLine
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok = <-lines:
		}
		if !ok {
			return nil
		}
		if line.err != nil {
			return fmt.Errorf("read request: %w", line.err)
		}

		var resp []byte
		if line.tooLong {
			s.logger.Warn().Int("limit", maxMessageSize).Msg("Discarded oversized message")
			resp = encode(errorResponse(nil, InvalidRequest, fmt.Sprintf("message exceeds %d bytes", maxMessageSize)))
		} else {
			payload := bytes.TrimSpace(line.data)
			if len(payload) == 0 {
				continue
			}
			resp = s.Handle(ctx, payload)
		}
		if resp == nil {
			continue
		}

		if _, err := out.Write(append(resp, '\n')); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		if err := out.Flush(); err != nil {
			return fmt.Errorf("flush response: %w", err)
		}
	}
}

// readLines frames r into lines until EOF, a read error, or done
func readLines(r io.Reader, lines chan<- stdioLine, done <-chan struct{}) {
	defer close(lines)
	br := bufio.NewReaderSize(r, 64*1024)

	send := func(line stdioLine) bool {
		select {
		case lines <- line:
			return true
		case <-done:
			return false
		}
	}

	for {
		data, tooLong, err := readLine(br)
		if len(data) > 0 || tooLong {
			if !send(stdioLine{data: data, tooLong: tooLong}) {
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				send(stdioLine{err: err})
			}
			return
		}
	}
}

// readLine returns the next line. A line longer than maxMessageSize is
// consumed up to its newline and reported as tooLong without its data.
func readLine(br *bufio.Reader) (line []byte, tooLong bool, err error) {
	for {
		chunk, err := br.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > maxMessageSize {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return line, tooLong, err
	}
}
