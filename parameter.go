// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package botcmd

import (
	"fmt"
	"strings"

	"go.mau.fi/botcmd/convert"
	"go.mau.fi/botcmd/typegraph"
)

// Parameter declares one argument of a command. Parameters are filled in
// declaration order from the input, or out of order using --name value /
// --name=value syntax.
type Parameter struct {
	// Name identifies the parameter. It must be lowercase and must not
	// contain whitespace, '=', '"' or characters that are special in
	// gjson paths ('.', '*', '?', '#', '@', '|').
	Name string
	// Description is free-form help text for manifests and usage strings.
	Description string
	// Type is the declared type the converted value must be assignable to.
	Type typegraph.TypeID
	// Optional parameters fall back to Default when the input runs out or
	// the next word doesn't convert. Required parameters fail the whole
	// command instead.
	Optional bool
	// Default is the value assigned to an optional parameter that wasn't
	// provided. It is not validated against Type.
	Default any
	// Converter overrides the processor registry's converter for this
	// parameter. Its output type must be assignable to Type.
	Converter convert.Converter
	// Choices optionally enumerates the values this parameter accepts, for
	// manifests and client-side pickers. It is informational only and
	// doesn't restrict conversion.
	Choices []convert.Choice

	bound convert.Converter
}

var paramNameBlocklist = " =.\"*?#@|\t\r\n"

// bind resolves the converter this parameter will use for every invocation.
// It panics on misconfiguration since it runs during command registration.
func (param *Parameter) bind(reg *convert.Registry) {
	if param.Name == "" {
		panic(fmt.Errorf("parameter has no name"))
	} else if strings.ToLower(param.Name) != param.Name {
		panic(fmt.Errorf("parameter name %q is not lowercase", param.Name))
	} else if strings.ContainsAny(param.Name, paramNameBlocklist) {
		panic(fmt.Errorf("parameter name %q contains forbidden characters", param.Name))
	}
	if param.Converter != nil {
		ok, err := reg.Types().IsAssignable(param.Converter.Output(), param.Type)
		if err != nil {
			panic(fmt.Errorf("failed to validate converter for parameter %q: %w", param.Name, err))
		} else if !ok {
			panic(fmt.Errorf(
				"converter output %s is not assignable to type %s of parameter %q",
				reg.Types().Describe(param.Converter.Output()), reg.Types().Describe(param.Type), param.Name,
			))
		}
		param.bound = param.Converter
		return
	}
	conv, err := reg.Resolve(param.Type)
	if err != nil {
		panic(fmt.Errorf("failed to resolve converter for parameter %q: %w", param.Name, err))
	}
	param.bound = conv
}

func parameterByName(params []*Parameter, name string) (*Parameter, int) {
	for i, param := range params {
		if strings.EqualFold(param.Name, name) {
			return param, i
		}
	}
	return nil, -1
}
