// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package convert_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mau.fi/botcmd/args"
	"go.mau.fi/botcmd/convert"
)

func newCtx() *convert.Context {
	return &convert.Context{Ctx: context.Background()}
}

func TestStringConverter(t *testing.T) {
	reg := convert.NewRegistry()
	conv := convert.NewStringConverter(reg.Builtin().String)

	view := args.NewStringView(`hello "quoted words" tail`)
	val, err := conv.Convert(newCtx(), view)
	require.NoError(t, err)
	assert.Equal(t, "hello", val)
	val, err = conv.Convert(newCtx(), view)
	require.NoError(t, err)
	assert.Equal(t, "quoted words", val)
	assert.Equal(t, " tail", view.Remaining())

	view = args.NewStringView(`""`)
	val, err = conv.Convert(newCtx(), view)
	require.NoError(t, err)
	assert.Equal(t, "", val)
	assert.True(t, view.Eof())

	view = args.NewStringView(`"never closed`)
	_, err = conv.Convert(newCtx(), view)
	assert.ErrorIs(t, err, args.ErrUnterminatedQuote)
}

func TestIntConverter(t *testing.T) {
	reg := convert.NewRegistry()
	conv := convert.NewIntConverter(reg.Builtin().Int)

	view := args.NewStringView("42 extra")
	val, err := conv.Convert(newCtx(), view)
	require.NoError(t, err)
	assert.Equal(t, int64(42), val)
	assert.Equal(t, " extra", view.Remaining())

	view = args.NewStringView(`"-7"`)
	val, err = conv.Convert(newCtx(), view)
	require.NoError(t, err)
	assert.Equal(t, int64(-7), val)

	_, err = conv.Convert(newCtx(), args.NewStringView("twelve"))
	assert.ErrorIs(t, err, convert.ErrNoMatch)
	_, err = conv.Convert(newCtx(), args.NewStringView("3.5"))
	assert.ErrorIs(t, err, convert.ErrNoMatch)
}

func TestFloatConverter(t *testing.T) {
	reg := convert.NewRegistry()
	conv := convert.NewFloatConverter(reg.Builtin().Float)

	val, err := conv.Convert(newCtx(), args.NewStringView("3.5"))
	require.NoError(t, err)
	assert.Equal(t, 3.5, val)
	val, err = conv.Convert(newCtx(), args.NewStringView("-12"))
	require.NoError(t, err)
	assert.Equal(t, float64(-12), val)

	_, err = conv.Convert(newCtx(), args.NewStringView("pi"))
	assert.ErrorIs(t, err, convert.ErrNoMatch)
}

func TestBoolConverter(t *testing.T) {
	reg := convert.NewRegistry()
	conv := convert.NewBoolConverter(reg.Builtin().Bool)

	for _, word := range []string{"t", "true", "y", "yes", "1", "TRUE", "Yes"} {
		val, err := conv.Convert(newCtx(), args.NewStringView(word))
		require.NoErrorf(t, err, "parsing %q", word)
		assert.Equalf(t, true, val, "parsing %q", word)
	}
	for _, word := range []string{"f", "false", "n", "no", "0", "FALSE", "No"} {
		val, err := conv.Convert(newCtx(), args.NewStringView(word))
		require.NoErrorf(t, err, "parsing %q", word)
		assert.Equalf(t, false, val, "parsing %q", word)
	}
	_, err := conv.Convert(newCtx(), args.NewStringView("maybe"))
	assert.ErrorIs(t, err, convert.ErrNoMatch)
}

func TestDurationConverter(t *testing.T) {
	reg := convert.NewRegistry()
	conv := convert.NewDurationConverter(reg.Builtin().Duration)

	val, err := conv.Convert(newCtx(), args.NewStringView("1h30m"))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, val)

	_, err = conv.Convert(newCtx(), args.NewStringView("soon"))
	assert.ErrorIs(t, err, convert.ErrNoMatch)
}

func TestIntegerConverter_Range(t *testing.T) {
	reg := convert.NewRegistry()
	conv := convert.IntegerConverter[int8](reg.Builtin().Int)

	val, err := conv.Convert(newCtx(), args.NewStringView("-128"))
	require.NoError(t, err)
	assert.Equal(t, int8(-128), val)

	_, err = conv.Convert(newCtx(), args.NewStringView("128"))
	assert.ErrorIs(t, err, convert.ErrNoMatch)
	_, err = conv.Convert(newCtx(), args.NewStringView("-129"))
	assert.ErrorIs(t, err, convert.ErrNoMatch)
}

func TestUnsignedConverter_Range(t *testing.T) {
	reg := convert.NewRegistry()
	conv := convert.UnsignedConverter[uint8](reg.Builtin().Int)

	val, err := conv.Convert(newCtx(), args.NewStringView("255"))
	require.NoError(t, err)
	assert.Equal(t, uint8(255), val)

	_, err = conv.Convert(newCtx(), args.NewStringView("256"))
	assert.ErrorIs(t, err, convert.ErrNoMatch)
	_, err = conv.Convert(newCtx(), args.NewStringView("-1"))
	assert.ErrorIs(t, err, convert.ErrNoMatch)
}

func TestCombineConverter(t *testing.T) {
	reg := convert.NewRegistry()
	inner := convert.NewStringConverter(reg.Builtin().String)
	conv := &convert.CombineConverter[string, int]{
		Inner:      inner,
		OutputType: reg.Builtin().Int,
		Process: func(_ *convert.Context, value string) (int, error) {
			if !strings.HasPrefix(value, "#") {
				return 0, convert.ErrNoMatch
			}
			return len(value) - 1, nil
		},
	}

	view := args.NewStringView("#general rest")
	val, err := conv.Convert(newCtx(), view)
	require.NoError(t, err)
	assert.Equal(t, 7, val)
	assert.Equal(t, " rest", view.Remaining())

	// A failed transform doesn't give back what the inner converter consumed.
	view = args.NewStringView("general rest")
	_, err = conv.Convert(newCtx(), view)
	assert.ErrorIs(t, err, convert.ErrNoMatch)
	assert.Equal(t, " rest", view.Remaining())
}

func TestCombineConverter_InnerMismatch(t *testing.T) {
	reg := convert.NewRegistry()
	conv := &convert.CombineConverter[string, int]{
		Inner:      convert.NewIntConverter(reg.Builtin().Int),
		OutputType: reg.Builtin().Int,
		Process: func(_ *convert.Context, value string) (int, error) {
			return len(value), nil
		},
	}
	assert.Panics(t, func() {
		_, _ = conv.Convert(newCtx(), args.NewStringView("42"))
	})
}

func TestFallbackConverter(t *testing.T) {
	reg := convert.NewRegistry()
	conv := convert.NewFallbackConverter(
		&convert.SimpleConverter[string]{
			OutputType: reg.Builtin().String,
			Func: func(_ *convert.Context, view *args.StringView) (string, error) {
				word, err := view.GetQuotedWord()
				if err != nil {
					return "", err
				} else if !strings.HasPrefix(word, "@") {
					return "", convert.ErrNoMatch
				}
				return word[1:], nil
			},
		},
		convert.NewStringConverter(reg.Builtin().String),
	)

	// First child wins when it matches.
	view := args.NewStringView("@user rest")
	val, err := conv.Convert(newCtx(), view)
	require.NoError(t, err)
	assert.Equal(t, "user", val)
	assert.Equal(t, " rest", view.Remaining())

	// When the first child misses, its consumption is rolled back and the
	// second child's consumption is what gets committed.
	view = args.NewStringView("plain rest")
	val, err = conv.Convert(newCtx(), view)
	require.NoError(t, err)
	assert.Equal(t, "plain", val)
	assert.Equal(t, " rest", view.Remaining())
}

func TestFallbackConverter_NoMatch(t *testing.T) {
	reg := convert.NewRegistry()
	conv := convert.NewFallbackConverter(
		convert.NewIntConverter(reg.Builtin().Int),
	)

	view := args.NewStringView("words only")
	_, err := conv.Convert(newCtx(), view)
	assert.ErrorIs(t, err, convert.ErrNoMatch)
	assert.Equal(t, 0, view.Index(), "a missed fallback must not move the view")
}

func TestFallbackConverter_HardErrorAborts(t *testing.T) {
	reg := convert.NewRegistry()
	errBroken := errors.New("backend exploded")
	calls := 0
	conv := convert.NewFallbackConverter(
		&convert.SimpleConverter[string]{
			OutputType: reg.Builtin().String,
			Func: func(_ *convert.Context, _ *args.StringView) (string, error) {
				return "", errBroken
			},
		},
		&convert.SimpleConverter[string]{
			OutputType: reg.Builtin().String,
			Func: func(_ *convert.Context, _ *args.StringView) (string, error) {
				calls++
				return "unreachable", nil
			},
		},
	)

	_, err := conv.Convert(newCtx(), args.NewStringView("input"))
	assert.ErrorIs(t, err, errBroken)
	assert.Zero(t, calls, "a hard error must stop the chain")

	// Lexing errors count as hard errors too.
	view := args.NewStringView(`"never closed`)
	_, err = convert.NewFallbackConverter(convert.NewStringConverter(reg.Builtin().String)).Convert(newCtx(), view)
	assert.ErrorIs(t, err, args.ErrUnterminatedQuote)
	assert.Equal(t, 0, view.Index())
}

func TestNewFallbackConverter_Panics(t *testing.T) {
	reg := convert.NewRegistry()
	assert.Panics(t, func() {
		convert.NewFallbackConverter()
	})
	assert.Panics(t, func() {
		convert.NewFallbackConverter(
			convert.NewIntConverter(reg.Builtin().Int),
			convert.NewFloatConverter(reg.Builtin().Float),
		)
	})
}

func TestFallbackConverter_Choices(t *testing.T) {
	reg := convert.NewRegistry()
	withChoices := &convert.SimpleConverter[string]{
		OutputType: reg.Builtin().String,
		Options:    []convert.Choice{{Name: "red", Value: "red"}, {Name: "blue", Value: "blue"}},
		Func: func(_ *convert.Context, view *args.StringView) (string, error) {
			return view.GetQuotedWord()
		},
	}
	moreChoices := &convert.SimpleConverter[string]{
		OutputType: reg.Builtin().String,
		Options:    []convert.Choice{{Name: "green", Value: "green"}},
		Func: func(_ *convert.Context, view *args.StringView) (string, error) {
			return view.GetQuotedWord()
		},
	}

	conv := convert.NewFallbackConverter(withChoices, moreChoices)
	assert.Len(t, conv.Choices(), 3)

	// One free-form child makes the whole chain free-form.
	conv = convert.NewFallbackConverter(withChoices, convert.NewStringConverter(reg.Builtin().String))
	assert.Nil(t, conv.Choices())
}
