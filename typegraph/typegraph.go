// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package typegraph implements a registry of declared parameter types and an
// assignability relation over them. Types are interned by content, so two
// declarations of the same type always resolve to the same identity, and the
// registered supertype edges form a DAG by construction (every referenced
// type must already be registered).
package typegraph

// TypeID is the identity of one distinct declared type.
//
// Three sentinel identities are fixed: the universal top (dynamic), void and
// the bottom type (never). All other types are interned in pairs starting at
// 4: the non-nullable form always gets an even ID and its nullable twin is
// the next odd one, so nullability is a reversible bit flip on the identity.
type TypeID uint32

const (
	// DynamicID is the universal top type: everything is assignable to it.
	DynamicID TypeID = 0
	// VoidID accepts anything except never; nothing flows out of it.
	VoidID TypeID = 1
	// NeverID is the bottom type: uninhabited as both source and target.
	NeverID TypeID = 2

	firstUserID TypeID = 4
)

// IsSentinel returns whether the ID is one of the three fixed sentinels.
func (id TypeID) IsSentinel() bool {
	return id < firstUserID
}

// AsNullable returns the nullable twin of the type. Sentinels map to themselves.
func (id TypeID) AsNullable() TypeID {
	if id.IsSentinel() {
		return id
	}
	return id | 1
}

// AsNonNullable returns the non-nullable twin of the type. Sentinels map to themselves.
func (id TypeID) AsNonNullable() TypeID {
	if id.IsSentinel() {
		return id
	}
	return id &^ 1
}

// IsNullable returns whether the ID refers to the nullable twin of a type.
func (id TypeID) IsNullable() bool {
	return !id.IsSentinel() && id&1 == 1
}

// Kind tags the closed set of type shapes the registry can hold.
type Kind uint8

const (
	KindDynamic Kind = iota
	KindVoid
	KindNever
	KindNominal
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindDynamic:
		return "dynamic"
	case KindVoid:
		return "void"
	case KindNever:
		return "never"
	case KindNominal:
		return "nominal"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// TypeData is the data of one registered type. It is a closed union: the only
// implementations are NominalData, FunctionData and the three sentinels.
//
// Returned slices and maps are the registry's own immutable data and must not
// be modified.
type TypeData interface {
	ID() TypeID
	Kind() Kind
	Nullable() bool

	typeData()
}

// NominalData is an interface-like named type, optionally generic, with
// explicit direct supertypes.
type NominalData struct {
	id         TypeID
	name       string
	typeArgs   []TypeID
	supertypes []TypeID
	nullable   bool
}

func (nd *NominalData) ID() TypeID     { return nd.id }
func (nd *NominalData) Kind() Kind     { return KindNominal }
func (nd *NominalData) Nullable() bool { return nd.nullable }

// Name returns the stripped identity of the type: the name shared by all
// instantiations of the same generic type regardless of type arguments.
func (nd *NominalData) Name() string { return nd.name }

// TypeArgs returns the generic type arguments, if any.
func (nd *NominalData) TypeArgs() []TypeID { return nd.typeArgs }

// Supertypes returns the direct supertypes the type was declared with.
func (nd *NominalData) Supertypes() []TypeID { return nd.supertypes }

func (nd *NominalData) typeData() {}

// FunctionData is a function-shaped type: a return type, ordered positional
// parameters of which the first RequiredCount are mandatory, and named
// parameters split into required and optional sets.
type FunctionData struct {
	id            TypeID
	returnType    TypeID
	positional    []TypeID
	requiredCount int
	requiredNamed map[string]TypeID
	optionalNamed map[string]TypeID
	nullable      bool
}

func (fd *FunctionData) ID() TypeID     { return fd.id }
func (fd *FunctionData) Kind() Kind     { return KindFunction }
func (fd *FunctionData) Nullable() bool { return fd.nullable }

func (fd *FunctionData) Return() TypeID                   { return fd.returnType }
func (fd *FunctionData) Positional() []TypeID             { return fd.positional }
func (fd *FunctionData) RequiredCount() int               { return fd.requiredCount }
func (fd *FunctionData) RequiredNamed() map[string]TypeID { return fd.requiredNamed }
func (fd *FunctionData) OptionalNamed() map[string]TypeID { return fd.optionalNamed }

func (fd *FunctionData) typeData() {}

type sentinelData struct {
	id   TypeID
	kind Kind
}

func (sd *sentinelData) ID() TypeID { return sd.id }
func (sd *sentinelData) Kind() Kind { return sd.kind }

// Nullable reports whether null inhabits the sentinel: it does for the top
// types, never is uninhabited entirely.
func (sd *sentinelData) Nullable() bool { return sd.kind != KindNever }

func (sd *sentinelData) typeData() {}

// Nominal declares an interface-like type for registration. TypeArgs and
// Supertypes must already be registered.
type Nominal struct {
	Name       string
	TypeArgs   []TypeID
	Supertypes []TypeID
}

// Function declares a function-shaped type for registration. All referenced
// types must already be registered. RequiredCount is the number of leading
// positional parameters that are mandatory.
type Function struct {
	Return        TypeID
	Positional    []TypeID
	RequiredCount int
	RequiredNamed map[string]TypeID
	OptionalNamed map[string]TypeID
}
