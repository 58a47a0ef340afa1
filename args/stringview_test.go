// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package args_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mau.fi/botcmd/args"
)

func TestStringView_Current(t *testing.T) {
	view := args.NewStringView("ab")
	cur, err := view.Current()
	require.NoError(t, err)
	assert.Equal(t, byte('a'), cur)
	assert.False(t, view.Eof())

	assert.Equal(t, "ab", view.GetWord())
	assert.True(t, view.Eof())
	_, err = view.Current()
	assert.ErrorIs(t, err, args.ErrOutOfBounds)
}

func TestStringView_GetWord(t *testing.T) {
	view := args.NewStringView(`foo bar\ baz qux\\ quux`)
	assert.Equal(t, "foo", view.GetWord())
	assert.Equal(t, "bar baz", view.GetWord())
	assert.Equal(t, `qux\`, view.GetWord())
	assert.Equal(t, "quux", view.GetWord())
	assert.True(t, view.Eof())
	// Further calls at EOF return empty strings and don't fail.
	assert.Equal(t, "", view.GetWord())
}

func TestStringView_GetWord_IgnoresQuotes(t *testing.T) {
	view := args.NewStringView(`"foo bar" baz`)
	assert.Equal(t, `"foo`, view.GetWord())
	assert.Equal(t, `bar"`, view.GetWord())
	assert.Equal(t, "baz", view.GetWord())
}

func TestStringView_GetQuotedWord(t *testing.T) {
	view := args.NewStringView(`foo "bar baz" \"qux" qu"ux "foobar`)

	word, err := view.GetQuotedWord()
	require.NoError(t, err)
	assert.Equal(t, "foo", word)

	word, err = view.GetQuotedWord()
	require.NoError(t, err)
	assert.Equal(t, "bar baz", word)

	word, err = view.GetQuotedWord()
	require.NoError(t, err)
	assert.Equal(t, `"qux"`, word)

	word, err = view.GetQuotedWord()
	require.NoError(t, err)
	assert.Equal(t, `qu"ux`, word)

	_, err = view.GetQuotedWord()
	require.ErrorIs(t, err, args.ErrUnterminatedQuote)
	var lexErr *args.LexError
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, strings.LastIndexByte(view.Buffer(), '"'), lexErr.Offset)
}

func TestStringView_GetQuotedWord_EmptyQuotes(t *testing.T) {
	view := args.NewStringView(`"" after`)
	word, err := view.GetQuotedWord()
	require.NoError(t, err)
	assert.Equal(t, "", word)
	word, err = view.GetQuotedWord()
	require.NoError(t, err)
	assert.Equal(t, "after", word)
}

func TestStringView_GetQuotedWord_EscapedQuoteInside(t *testing.T) {
	view := args.NewStringView(`"say \"hi\"" rest`)
	word, err := view.GetQuotedWord()
	require.NoError(t, err)
	assert.Equal(t, `say "hi"`, word)
	assert.Equal(t, " rest", view.Remaining())
}

func TestStringView_SkipWhitespace(t *testing.T) {
	view := args.NewStringView("   foo")
	view.SkipWhitespace()
	assert.Equal(t, "foo", view.Remaining())

	view = args.NewStringView("foo   ")
	view.SkipWhitespace()
	assert.Equal(t, "foo   ", view.Remaining())

	view = args.NewStringView("\t\r\n\v\f x")
	view.SkipWhitespace()
	assert.Equal(t, "x", view.Remaining())

	// No-op at EOF.
	view = args.NewStringView("")
	view.SkipWhitespace()
	assert.True(t, view.Eof())
}

func TestStringView_SkipString(t *testing.T) {
	view := args.NewStringView("foobar")
	assert.True(t, view.SkipString("foo"))
	assert.Equal(t, 3, view.Index())
	assert.Equal(t, "bar", view.Remaining())

	// All-or-nothing: a miss doesn't consume anything, even on partial overlap.
	assert.False(t, view.SkipString("barbaz"))
	assert.Equal(t, 3, view.Index())
	assert.False(t, view.SkipString("x"))
	assert.Equal(t, 3, view.Index())

	assert.True(t, view.SkipString("bar"))
	assert.True(t, view.Eof())
}

func TestStringView_IsEscaped(t *testing.T) {
	// a \ \ b \ \ \ c
	// 0 1 2 3 4 5 6 7
	view := args.NewStringView(`a\\b\\\c`)
	escaped := make([]bool, len(view.Buffer())+1)
	for i := range escaped {
		escaped[i] = view.IsEscaped(i)
	}
	assert.Equal(t, []bool{false, false, true, false, false, true, false, true, false}, escaped)

	// Out-of-range positions are never escaped.
	assert.False(t, view.IsEscaped(-1))
	assert.False(t, view.IsEscaped(100))
}

func TestStringView_Unescape(t *testing.T) {
	view := args.NewStringView(`a\\b \x y\`)
	assert.Equal(t, `a\b`, view.Unescape(0, 4))
	assert.Equal(t, `x`, view.Unescape(5, 7))
	// A trailing backslash inside the region stays as-is.
	assert.Equal(t, `y\`, view.Unescape(8, 10))
	// No escapes means the region comes back verbatim.
	assert.Equal(t, `b `, view.Unescape(3, 5))
}

func TestStringView_Undo(t *testing.T) {
	view := args.NewStringView("  hello world")

	assert.Equal(t, "hello", view.GetWord())
	view.Undo()
	assert.Equal(t, 0, view.Index())
	assert.Equal(t, "hello", view.GetWord())

	idx := view.Index()
	view.SkipWhitespace()
	assert.Equal(t, idx+1, view.Index())
	view.Undo()
	assert.Equal(t, idx, view.Index())

	assert.Equal(t, "world", view.GetWord())
	view.Undo()
	assert.Equal(t, idx, view.Index())

	// Undo with no history left is a no-op.
	view.Undo()
	view.Undo()
	view.Undo()
	assert.Equal(t, 0, view.Index())
}

func TestStringView_Undo_QuotedWord(t *testing.T) {
	view := args.NewStringView(` "foo bar" baz`)
	word, err := view.GetQuotedWord()
	require.NoError(t, err)
	assert.Equal(t, "foo bar", word)
	view.Undo()
	assert.Equal(t, 0, view.Index())
}

func TestStringView_Copy(t *testing.T) {
	view := args.NewStringView("one two three")
	assert.Equal(t, "one", view.GetWord())

	speculative := view.Copy()
	assert.Equal(t, "two", speculative.GetWord())
	assert.Equal(t, "three", speculative.GetWord())
	// The original hasn't moved.
	assert.Equal(t, " two three", view.Remaining())

	// Undo history is copied too: undoing the copy doesn't depend on the original.
	speculative.Undo()
	assert.Equal(t, "three", speculative.GetWord())

	view.MergeFrom(speculative)
	assert.True(t, view.Eof())
	view.Undo()
	assert.Equal(t, "three", view.GetWord())
}

func TestStringView_Words_RoundTrip(t *testing.T) {
	// For input without quotes or escapes, GetWord returns exactly the
	// whitespace-delimited tokens in order.
	input := "  the quick\tbrown\nfox jumps  "
	expected := strings.Fields(input)
	view := args.NewStringView(input)
	var words []string
	for {
		word := view.GetWord()
		if word == "" {
			break
		}
		words = append(words, word)
	}
	assert.Equal(t, expected, words)
}
