// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package args implements a quote- and escape-aware cursor over a command
// argument string, with backtracking support for speculative parsing.
package args

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrOutOfBounds is returned by Current when the cursor is at the end of the buffer.
	ErrOutOfBounds = errors.New("view index is out of bounds")
	// ErrUnterminatedQuote is returned by GetQuotedWord when a quoted section is never closed.
	ErrUnterminatedQuote = errors.New("unterminated quoted section")
)

// LexError wraps a lexing failure with the byte offset where it occurred.
type LexError struct {
	Offset int
	Err    error
}

func (le *LexError) Error() string {
	return fmt.Sprintf("%v at offset %d", le.Err, le.Offset)
}

func (le *LexError) Unwrap() error {
	return le.Err
}

const quoteChar = '"'
const escapeChar = '\\'

// StringView is a mutable cursor over an immutable string. Words are
// extracted by advancing the cursor, and previous cursor positions are
// recorded so that extractions can be rolled back with Undo.
//
// A view is not safe for concurrent use. Speculative parsing should work
// on a Copy and merge the position back on success.
type StringView struct {
	buf     string
	index   int
	history []int
}

// NewStringView creates a view positioned at the start of the given string.
func NewStringView(buf string) *StringView {
	return &StringView{buf: buf}
}

// Buffer returns the full underlying string.
func (v *StringView) Buffer() string {
	return v.buf
}

// Index returns the current cursor position as a byte offset.
func (v *StringView) Index() int {
	return v.index
}

// Eof returns true if the cursor is past the last character.
func (v *StringView) Eof() bool {
	return v.index >= len(v.buf)
}

// Current returns the character at the cursor, or ErrOutOfBounds at EOF.
func (v *StringView) Current() (byte, error) {
	if v.Eof() {
		return 0, ErrOutOfBounds
	}
	return v.buf[v.index], nil
}

// Remaining returns the not-yet-consumed tail of the buffer.
func (v *StringView) Remaining() string {
	return v.buf[v.index:]
}

// isWhitespace matches the ASCII whitespace set used by strings.Fields.
func isWhitespace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}

func (v *StringView) checkpoint() {
	v.history = append(v.history, v.index)
}

// Undo moves the cursor back to the most recently recorded position.
// It does nothing if there's no recorded history left.
func (v *StringView) Undo() {
	if len(v.history) > 0 {
		v.index = v.history[len(v.history)-1]
		v.history = v.history[:len(v.history)-1]
	}
}

// Copy returns an independent view over the same buffer with the same
// cursor position and history.
func (v *StringView) Copy() *StringView {
	return &StringView{
		buf:     v.buf,
		index:   v.index,
		history: slices.Clone(v.history),
	}
}

// MergeFrom adopts the cursor position and history of another view over
// the same buffer. It's used to commit the progress of a speculative Copy.
func (v *StringView) MergeFrom(other *StringView) {
	v.index = other.index
	v.history = slices.Clone(other.history)
}

// SkipWhitespace records an undo checkpoint, then advances the cursor past
// the run of whitespace starting at it. It never fails: if the current
// character is not whitespace, or the view is at EOF, only the checkpoint
// is recorded.
func (v *StringView) SkipWhitespace() {
	v.checkpoint()
	for !v.Eof() && isWhitespace(v.buf[v.index]) {
		v.index++
	}
}

// SkipString consumes the given literal if the remaining input starts with
// it and returns whether it did. The cursor is never partially advanced:
// on a miss it stays exactly where it was.
func (v *StringView) SkipString(s string) bool {
	if strings.HasPrefix(v.Remaining(), s) {
		v.checkpoint()
		v.index += len(s)
		return true
	}
	return false
}

// IsEscaped returns whether the character at the given byte offset is
// preceded by an odd number of consecutive backslashes, i.e. whether it is
// itself escaped. Offsets outside the buffer are never escaped; the offset
// one past the end is allowed so EOF can be tested like a character.
func (v *StringView) IsEscaped(pos int) bool {
	if pos <= 0 || pos > len(v.buf) {
		return false
	}
	count := 0
	for i := pos - 1; i >= 0 && v.buf[i] == escapeChar; i-- {
		count++
	}
	return count%2 == 1
}

// Unescape returns the substring between two absolute offsets with every
// backslash-escaped character reduced to its unescaped form: each `\X`
// pair becomes `X`, left to right, non-overlapping. A trailing backslash
// with no character after it inside the region is kept as-is.
func (v *StringView) Unescape(start, end int) string {
	raw := v.buf[start:end]
	if !strings.ContainsRune(raw, escapeChar) {
		return raw
	}
	var sb strings.Builder
	sb.Grow(len(raw))
	for i := 0; i < len(raw); {
		if raw[i] == escapeChar && i+1 < len(raw) {
			sb.WriteByte(raw[i+1])
			i += 2
		} else {
			sb.WriteByte(raw[i])
			i++
		}
	}
	return sb.String()
}

// word consumes characters up to the next unescaped whitespace, assuming
// leading whitespace was already skipped.
func (v *StringView) word() string {
	start := v.index
	for !v.Eof() && (!isWhitespace(v.buf[v.index]) || v.IsEscaped(v.index)) {
		v.index++
	}
	return v.Unescape(start, v.index)
}

// GetWord skips leading whitespace, then consumes and returns the next
// whitespace-delimited word with escape sequences resolved. Quotes are not
// treated specially. It records an undo checkpoint before moving and never
// fails: at EOF it returns an empty string.
func (v *StringView) GetWord() string {
	v.SkipWhitespace()
	return v.word()
}

// GetQuotedWord skips leading whitespace, then consumes and returns the
// next word. If the word starts with an unescaped double quote, everything
// up to the next unescaped double quote is consumed instead, and both
// quotes are dropped from the result. A quoted section that is never
// closed is a lexing error wrapping ErrUnterminatedQuote.
//
// This is the extraction used by value converters; GetWord is only for
// callers that need quoting bypassed.
func (v *StringView) GetQuotedWord() (string, error) {
	v.SkipWhitespace()
	if v.Eof() || v.buf[v.index] != quoteChar || v.IsEscaped(v.index) {
		return v.word(), nil
	}
	openedAt := v.index
	v.index++
	start := v.index
	for !v.Eof() && (v.buf[v.index] != quoteChar || v.IsEscaped(v.index)) {
		v.index++
	}
	if v.Eof() {
		return "", &LexError{Offset: openedAt, Err: ErrUnterminatedQuote}
	}
	word := v.Unescape(start, v.index)
	// Step over the closing quote.
	v.index++
	return word, nil
}
