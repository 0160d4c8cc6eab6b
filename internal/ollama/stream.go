// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
)

// =============================================================================
// DECODER
// =============================================================================

// Decoder turns a newline-delimited JSON body into Increments.
//
// Unlike a best-effort reader it never skips a bad line: one corrupt frame
// aborts the sequence, since dropping it could silently lose or reorder
// tokens. Errors are sticky; once Next fails it keeps returning the same
// error.
type Decoder struct {
	ctx    context.Context
	reader *bufio.Reader
	line   int
	done   bool
	err    error
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return NewDecoderContext(context.Background(), r)
}

// NewDecoderContext creates a Decoder whose read errors are classified
// against ctx, so an aborted request reads as Canceled or Timeout instead of
// StreamTruncated.
func NewDecoderContext(ctx context.Context, r io.Reader) *Decoder {
	return &Decoder{
		ctx:    ctx,
		reader: bufio.NewReader(r),
	}
}

// Next returns the next increment. After the done:true increment has been
// returned, Next returns io.EOF. Any other error is a *ClientError.
func (d *Decoder) Next() (Increment, error) {
	if d.err != nil {
		return Increment{}, d.err
	}
	if d.done {
		return Increment{}, io.EOF
	}

	for {
		raw, readErr := d.reader.ReadBytes('\n')
		line := bytes.TrimSpace(raw)

		if len(line) > 0 {
			d.line++
			inc, err := d.decodeLine(line)
			if err != nil {
				return Increment{}, d.fail(err)
			}
			if inc.Done {
				d.done = true
			}
			return inc, nil
		}

		if readErr != nil {
			return Increment{}, d.fail(d.classifyRead(readErr))
		}
	}
}

// Line returns the number of non-empty lines decoded so far.
func (d *Decoder) Line() int {
	return d.line
}

func (d *Decoder) decodeLine(line []byte) (Increment, error) {
	var chunk Chunk
	if err := json.Unmarshal(line, &chunk); err != nil {
		return Increment{}, &ClientError{Type: ErrTypeMalformedChunk, Message: ErrMalformedChunk.Message, Cause: err}
	}
	if chunk.Error != "" {
		return Increment{}, &ClientError{Type: ErrTypeServer, Message: chunk.Error}
	}
	if chunk.Done {
		return Increment{Token: chunk.Token(), Done: true, Stats: statsFromChunk(&chunk)}, nil
	}
	return Increment{Token: chunk.Token()}, nil
}

func (d *Decoder) classifyRead(err error) error {
	if ctxErr := d.ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
		}
		return &ClientError{Type: ErrTypeCanceled, Message: ErrCanceled.Message, Cause: err}
	}
	if errors.Is(err, io.EOF) {
		return &ClientError{Type: ErrTypeStreamTruncated, Message: ErrStreamTruncated.Message}
	}
	return &ClientError{Type: ErrTypeStreamTruncated, Message: ErrStreamTruncated.Message, Cause: err}
}

func (d *Decoder) fail(err error) error {
	d.err = err
	return err
}
