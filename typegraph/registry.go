// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package typegraph

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

var (
	// ErrSealed is returned by declaration methods after the registry has been sealed.
	ErrSealed = errors.New("type registry is already sealed")
	// ErrNotSealed is returned by lookup methods before the registry has been sealed.
	ErrNotSealed = errors.New("type registry is not sealed yet")
	// ErrUnknownType is returned when a type ID doesn't refer to a registered type.
	ErrUnknownType = errors.New("unknown type")
	// ErrInvalidDeclaration is returned when a type declaration is malformed.
	ErrInvalidDeclaration = errors.New("invalid type declaration")
	// ErrConflictingDeclaration is returned when a type is redeclared with different content.
	ErrConflictingDeclaration = errors.New("conflicting type redeclaration")
)

// Registry interns type declarations and answers assignability queries over
// them. It has an explicit two-phase lifecycle: all types are declared first,
// then the registry is sealed and becomes immutable. Declarations after
// sealing fail with ErrSealed, queries before sealing fail with ErrNotSealed.
type Registry struct {
	lock     sync.RWMutex
	types    map[TypeID]TypeData
	content  map[string]TypeID
	names    map[string]TypeID
	nextID   TypeID
	isSealed bool

	objectRoot   TypeID
	functionRoot TypeID
	hasRoots     bool
}

// NewRegistry creates a registry containing only the three sentinel types.
func NewRegistry() *Registry {
	return &Registry{
		types: map[TypeID]TypeData{
			DynamicID: &sentinelData{id: DynamicID, kind: KindDynamic},
			VoidID:    &sentinelData{id: VoidID, kind: KindVoid},
			NeverID:   &sentinelData{id: NeverID, kind: KindNever},
		},
		content: make(map[string]TypeID),
		names:   make(map[string]TypeID),
		nextID:  firstUserID,
	}
}

// AddNominal interns an interface-like type and its nullable twin, returning
// the ID of the non-nullable form. Redeclaring identical content returns the
// existing ID; redeclaring the same name and type arguments with different
// supertypes is an error.
func (tr *Registry) AddNominal(decl Nominal) (TypeID, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if tr.isSealed {
		return 0, ErrSealed
	} else if decl.Name == "" {
		return 0, fmt.Errorf("%w: nominal type has no name", ErrInvalidDeclaration)
	} else if err := tr.requireKnown(decl.TypeArgs); err != nil {
		return 0, fmt.Errorf("type argument: %w", err)
	} else if err = tr.requireKnown(decl.Supertypes); err != nil {
		return 0, fmt.Errorf("supertype: %w", err)
	}
	key := nominalKey(decl.Name, decl.TypeArgs)
	if id, exists := tr.content[key]; exists {
		existing := tr.types[id].(*NominalData)
		if !slices.Equal(existing.supertypes, decl.Supertypes) {
			return 0, fmt.Errorf("%w: %s declared with different supertypes", ErrConflictingDeclaration, decl.Name)
		}
		return id, nil
	}

	id := tr.nextID
	tr.nextID += 2
	typeArgs := slices.Clone(decl.TypeArgs)
	supertypes := slices.Clone(decl.Supertypes)
	nullableSupertypes := make([]TypeID, len(supertypes))
	for i, super := range supertypes {
		nullableSupertypes[i] = super.AsNullable()
	}
	tr.types[id] = &NominalData{
		id:         id,
		name:       decl.Name,
		typeArgs:   typeArgs,
		supertypes: supertypes,
	}
	tr.types[id.AsNullable()] = &NominalData{
		id:         id.AsNullable(),
		name:       decl.Name,
		typeArgs:   typeArgs,
		supertypes: nullableSupertypes,
		nullable:   true,
	}
	tr.content[key] = id
	if len(typeArgs) == 0 {
		if _, taken := tr.names[decl.Name]; !taken {
			tr.names[decl.Name] = id
		}
	}
	return id, nil
}

// AddFunction interns a function-shaped type and its nullable twin, returning
// the ID of the non-nullable form. Identical redeclarations are idempotent.
func (tr *Registry) AddFunction(decl Function) (TypeID, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if tr.isSealed {
		return 0, ErrSealed
	} else if decl.RequiredCount < 0 || decl.RequiredCount > len(decl.Positional) {
		return 0, fmt.Errorf("%w: required count %d out of range for %d positional parameters", ErrInvalidDeclaration, decl.RequiredCount, len(decl.Positional))
	} else if err := tr.requireKnown([]TypeID{decl.Return}); err != nil {
		return 0, fmt.Errorf("return type: %w", err)
	} else if err = tr.requireKnown(decl.Positional); err != nil {
		return 0, fmt.Errorf("positional parameter: %w", err)
	}
	for name, paramType := range decl.RequiredNamed {
		if _, isOptional := decl.OptionalNamed[name]; isOptional {
			return 0, fmt.Errorf("%w: named parameter %q is both required and optional", ErrInvalidDeclaration, name)
		} else if err := tr.requireKnown([]TypeID{paramType}); err != nil {
			return 0, fmt.Errorf("named parameter %q: %w", name, err)
		}
	}
	for name, paramType := range decl.OptionalNamed {
		if err := tr.requireKnown([]TypeID{paramType}); err != nil {
			return 0, fmt.Errorf("named parameter %q: %w", name, err)
		}
	}
	key := functionKey(decl)
	if id, exists := tr.content[key]; exists {
		return id, nil
	}

	id := tr.nextID
	tr.nextID += 2
	positional := slices.Clone(decl.Positional)
	requiredNamed := maps.Clone(decl.RequiredNamed)
	optionalNamed := maps.Clone(decl.OptionalNamed)
	tr.types[id] = &FunctionData{
		id:            id,
		returnType:    decl.Return,
		positional:    positional,
		requiredCount: decl.RequiredCount,
		requiredNamed: requiredNamed,
		optionalNamed: optionalNamed,
	}
	tr.types[id.AsNullable()] = &FunctionData{
		id:            id.AsNullable(),
		returnType:    decl.Return,
		positional:    positional,
		requiredCount: decl.RequiredCount,
		requiredNamed: requiredNamed,
		optionalNamed: optionalNamed,
		nullable:      true,
	}
	tr.content[key] = id
	return id, nil
}

// DesignateRoots marks the root "any object" type and the root "function"
// type. These are the only nominal types a function type is assignable to.
func (tr *Registry) DesignateRoots(object, function TypeID) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if tr.isSealed {
		return ErrSealed
	}
	for _, id := range []TypeID{object, function} {
		data, exists := tr.types[id]
		if !exists {
			return fmt.Errorf("%w: #%d", ErrUnknownType, id)
		} else if data.Kind() != KindNominal || data.Nullable() {
			return fmt.Errorf("%w: root %s must be a non-nullable nominal type", ErrInvalidDeclaration, tr.describe(id))
		}
	}
	tr.objectRoot = object
	tr.functionRoot = function
	tr.hasRoots = true
	return nil
}

// Seal freezes the registry. After sealing, declarations fail and queries succeed.
func (tr *Registry) Seal() {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	tr.isSealed = true
}

// Sealed returns whether the registry is sealed.
func (tr *Registry) Sealed() bool {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return tr.isSealed
}

// Contains returns whether the given ID refers to a registered type. Unlike
// Get, it may be used before the registry is sealed.
func (tr *Registry) Contains(id TypeID) bool {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	_, exists := tr.types[id]
	return exists
}

// Get returns the data of a registered type.
func (tr *Registry) Get(id TypeID) (TypeData, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	if !tr.isSealed {
		return nil, ErrNotSealed
	}
	data, exists := tr.types[id]
	if !exists {
		return nil, fmt.Errorf("%w: #%d", ErrUnknownType, id)
	}
	return data, nil
}

// LookupName finds the non-nullable ID of a zero-argument nominal type by
// name. It may be used before the registry is sealed.
func (tr *Registry) LookupName(name string) (TypeID, bool) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	id, exists := tr.names[name]
	return id, exists
}

// Describe renders a human-readable form of the type for error messages.
// Unknown IDs render as "type#N" instead of failing.
func (tr *Registry) Describe(id TypeID) string {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return tr.describe(id)
}

func (tr *Registry) describe(id TypeID) string {
	data, exists := tr.types[id]
	if !exists {
		return fmt.Sprintf("type#%d", id)
	}
	switch typed := data.(type) {
	case *sentinelData:
		return typed.kind.String()
	case *NominalData:
		var sb strings.Builder
		sb.WriteString(typed.name)
		if len(typed.typeArgs) > 0 {
			sb.WriteByte('[')
			for i, arg := range typed.typeArgs {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(tr.describe(arg))
			}
			sb.WriteByte(']')
		}
		if typed.nullable {
			sb.WriteByte('?')
		}
		return sb.String()
	case *FunctionData:
		var sb strings.Builder
		sb.WriteString("fn(")
		for i, param := range typed.positional {
			if i > 0 {
				sb.WriteString(", ")
			}
			if i == typed.requiredCount {
				sb.WriteByte('[')
			}
			sb.WriteString(tr.describe(param))
		}
		if typed.requiredCount < len(typed.positional) {
			sb.WriteByte(']')
		}
		if len(typed.requiredNamed)+len(typed.optionalNamed) > 0 {
			if len(typed.positional) > 0 {
				sb.WriteString(", ")
			}
			sb.WriteByte('{')
			names := make([]string, 0, len(typed.requiredNamed)+len(typed.optionalNamed))
			for name := range typed.requiredNamed {
				names = append(names, name)
			}
			for name := range typed.optionalNamed {
				names = append(names, name)
			}
			slices.Sort(names)
			for i, name := range names {
				if i > 0 {
					sb.WriteString(", ")
				}
				paramType, required := typed.requiredNamed[name]
				if !required {
					paramType = typed.optionalNamed[name]
					sb.WriteString(name + "?: ")
				} else {
					sb.WriteString(name + ": ")
				}
				sb.WriteString(tr.describe(paramType))
			}
			sb.WriteByte('}')
		}
		sb.WriteString(") -> ")
		sb.WriteString(tr.describe(typed.returnType))
		if typed.nullable {
			sb.WriteByte('?')
		}
		return sb.String()
	default:
		return fmt.Sprintf("type#%d", id)
	}
}

func (tr *Registry) requireKnown(ids []TypeID) error {
	for _, id := range ids {
		if _, exists := tr.types[id]; !exists {
			return fmt.Errorf("%w: #%d", ErrUnknownType, id)
		}
	}
	return nil
}

func nominalKey(name string, typeArgs []TypeID) string {
	var sb strings.Builder
	sb.WriteString("n:")
	sb.WriteString(name)
	sb.WriteByte('[')
	for i, arg := range typeArgs {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", arg)
	}
	sb.WriteByte(']')
	return sb.String()
}

func functionKey(decl Function) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "f:(")
	for i, param := range decl.Positional {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", param)
	}
	fmt.Fprintf(&sb, ")req%d", decl.RequiredCount)
	for _, named := range []map[string]TypeID{decl.RequiredNamed, decl.OptionalNamed} {
		sb.WriteByte('{')
		names := make([]string, 0, len(named))
		for name := range named {
			names = append(names, name)
		}
		slices.Sort(names)
		for i, name := range names {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%s:%d", name, named[name])
		}
		sb.WriteByte('}')
	}
	fmt.Fprintf(&sb, "->%d", decl.Return)
	return sb.String()
}
