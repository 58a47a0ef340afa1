// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package convert

import (
	"fmt"
	"sync"

	"go.mau.fi/util/exerrors"

	"go.mau.fi/botcmd/typegraph"
)

// BuiltinTypes holds the identities of the types every registry starts with.
type BuiltinTypes struct {
	Object   typegraph.TypeID
	Function typegraph.TypeID
	String   typegraph.TypeID
	Num      typegraph.TypeID
	Int      typegraph.TypeID
	Float    typegraph.TypeID
	Bool     typegraph.TypeID
	Duration typegraph.TypeID
}

// Registry maps declared parameter types to converters. Exactly one converter
// may be registered per output type; looser matches are assembled on demand
// by Resolve through the type graph.
//
// Like the type graph it wraps, the registry is two-phase: converters and
// types are registered up front, then Seal freezes everything before the
// first command is dispatched.
type Registry struct {
	lock     sync.Mutex
	types    *typegraph.Registry
	builtin  BuiltinTypes
	exact    map[typegraph.TypeID]Converter
	order    []typegraph.TypeID
	resolved map[typegraph.TypeID]Converter
}

// NewRegistry creates a registry pre-seeded with the builtin type hierarchy
// (int and float below num, everything below object) and the default
// converters for string, int, float, bool and duration.
func NewRegistry() *Registry {
	types := typegraph.NewRegistry()
	addNominal := func(name string, supertypes ...typegraph.TypeID) typegraph.TypeID {
		return exerrors.Must(types.AddNominal(typegraph.Nominal{Name: name, Supertypes: supertypes}))
	}
	builtin := BuiltinTypes{Object: addNominal("object")}
	builtin.Function = addNominal("function", builtin.Object)
	builtin.String = addNominal("string", builtin.Object)
	builtin.Num = addNominal("num", builtin.Object)
	builtin.Int = addNominal("int", builtin.Num)
	builtin.Float = addNominal("float", builtin.Num)
	builtin.Bool = addNominal("bool", builtin.Object)
	builtin.Duration = addNominal("duration", builtin.Object)
	exerrors.PanicIfNotNil(types.DesignateRoots(builtin.Object, builtin.Function))

	cr := &Registry{
		types:    types,
		builtin:  builtin,
		exact:    make(map[typegraph.TypeID]Converter),
		resolved: make(map[typegraph.TypeID]Converter),
	}
	cr.Register(NewStringConverter(builtin.String))
	cr.Register(NewIntConverter(builtin.Int))
	cr.Register(NewFloatConverter(builtin.Float))
	cr.Register(NewBoolConverter(builtin.Bool))
	cr.Register(NewDurationConverter(builtin.Duration))
	return cr
}

// Types exposes the underlying type graph, e.g. for declaring custom types
// before sealing or for assignability checks.
func (cr *Registry) Types() *typegraph.Registry {
	return cr.types
}

// Builtin returns the identities of the pre-seeded types.
func (cr *Registry) Builtin() BuiltinTypes {
	return cr.builtin
}

// Register adds a converter for its output type. Registering a duplicate,
// registering for an unknown type, or registering after Seal all panic, as
// they are programmer errors.
func (cr *Registry) Register(conv Converter) {
	cr.lock.Lock()
	defer cr.lock.Unlock()
	if cr.types.Sealed() {
		panic("cannot register converters after the registry is sealed")
	}
	output := conv.Output()
	if !cr.types.Contains(output) {
		panic(fmt.Errorf("converter output type #%d is not registered", output))
	} else if _, exists := cr.exact[output]; exists {
		panic(fmt.Errorf("converter for %s is already registered", cr.types.Describe(output)))
	}
	cr.exact[output] = conv
	cr.order = append(cr.order, output)
}

// Seal freezes the registry and its type graph.
func (cr *Registry) Seal() {
	cr.types.Seal()
}

// Sealed returns whether the registry is sealed.
func (cr *Registry) Sealed() bool {
	return cr.types.Sealed()
}

// Lookup returns the converter registered for exactly the given type.
func (cr *Registry) Lookup(id typegraph.TypeID) (Converter, bool) {
	cr.lock.Lock()
	defer cr.lock.Unlock()
	conv, ok := cr.exact[id]
	return conv, ok
}

// Resolve finds a converter producing the given type, preferring an exact
// match and otherwise assembling a fallback chain from every registered
// converter whose output is assignable to it, in registration order. The
// assembled chain is cached. It requires a sealed registry and returns a
// NoConverterError when nothing can produce the type.
func (cr *Registry) Resolve(id typegraph.TypeID) (Converter, error) {
	if !cr.types.Sealed() {
		return nil, typegraph.ErrNotSealed
	}
	cr.lock.Lock()
	defer cr.lock.Unlock()
	if conv, ok := cr.exact[id]; ok {
		return conv, nil
	} else if conv, ok = cr.resolved[id]; ok {
		return conv, nil
	}
	var children []Converter
	for _, output := range cr.order {
		ok, err := cr.types.IsAssignable(output, id)
		if err != nil {
			return nil, err
		} else if ok {
			children = append(children, cr.exact[output])
		}
	}
	if len(children) == 0 {
		return nil, &NoConverterError{Type: id, Name: cr.types.Describe(id)}
	}
	conv := newResolvedFallback(id, children)
	cr.resolved[id] = conv
	return conv, nil
}
