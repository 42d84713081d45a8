// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stream consumes newline-delimited JSON from a byte stream and
// emits each record as soon as its line is complete.
//
// The reader may deliver bytes in arbitrary chunks. Bytes are buffered until
// a newline arrives, so a record or a multi-byte character split across
// chunks is decoded only once it is whole. A line that is not valid JSON is
// logged and skipped; it never stops the stream.
package stream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/pdiddy/internscout/pkg/types"
)

const defaultChunkSize = 32 * 1024

// Options controls end-of-stream handling and read sizing.
type Options struct {
	// FlushTrailing parses a non-blank unterminated final line at EOF. When
	// false the residual is dropped and Stats.TrailingDropped is set.
	FlushTrailing bool

	// ChunkSize is the read buffer size. Zero uses 32 KiB.
	ChunkSize int
}

// Stats summarizes one consumed stream.
type Stats struct {
	Bytes           int64 `json:"bytes" yaml:"bytes"`
	Lines           int   `json:"lines" yaml:"lines"`
	Records         int   `json:"records" yaml:"records"`
	Malformed       int   `json:"malformed" yaml:"malformed"`
	TrailingDropped bool  `json:"trailing_dropped" yaml:"trailing_dropped"`
}

// RecordParseError describes a line that could not be decoded.
type RecordParseError struct {
	Line int
	Err  error
}

func (e *RecordParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RecordParseError) Unwrap() error { return e.Err }

// EmitFunc receives each decoded record in stream order. Returning an error
// stops consumption and Consume returns that error.
type EmitFunc func(types.CompanyResult) error

// Consume reads r until EOF, emitting one record per complete non-blank
// line. It returns early when ctx is cancelled between reads, when r fails,
// or when emit returns an error. Malformed lines are counted in Stats and
// logged through the zerolog logger carried by ctx.
func Consume(ctx context.Context, r io.Reader, emit EmitFunc, opts Options) (Stats, error) {
	size := opts.ChunkSize
	if size <= 0 {
		size = defaultChunkSize
	}

	c := &consumer{log: zerolog.Ctx(ctx), emit: emit}
	chunk := make([]byte, size)
	var buf []byte

	for {
		if err := ctx.Err(); err != nil {
			return c.stats, err
		}

		n, readErr := r.Read(chunk)
		if n > 0 {
			c.stats.Bytes += int64(n)
			buf = append(buf, chunk[:n]...)

			start := 0
			for {
				i := bytes.IndexByte(buf[start:], '\n')
				if i < 0 {
					break
				}
				line := buf[start : start+i]
				start += i + 1
				if err := c.line(line); err != nil {
					return c.stats, err
				}
			}
			buf = buf[:copy(buf, buf[start:])]
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return c.stats, fmt.Errorf("reading stream: %w", readErr)
		}
	}

	if len(bytes.TrimSpace(buf)) == 0 {
		return c.stats, nil
	}
	if !opts.FlushTrailing {
		c.stats.TrailingDropped = true
		c.log.Debug().Int("bytes", len(buf)).Msg("dropping unterminated final line")
		return c.stats, nil
	}
	return c.stats, c.line(buf)
}

type consumer struct {
	log   *zerolog.Logger
	emit  EmitFunc
	stats Stats
}

// line handles one complete segment without its newline.
func (c *consumer) line(seg []byte) error {
	c.stats.Lines++
	seg = bytes.TrimSuffix(seg, []byte("\r"))
	if len(bytes.TrimSpace(seg)) == 0 {
		return nil
	}

	rec, err := types.DecodeCompanyResult(seg)
	if err != nil {
		c.stats.Malformed++
		perr := &RecordParseError{Line: c.stats.Lines, Err: err}
		c.log.Warn().Err(perr).Msg("skipping malformed record")
		return nil
	}

	c.stats.Records++
	return c.emit(rec)
}
