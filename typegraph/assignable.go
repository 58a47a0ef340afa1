// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package typegraph

import (
	"fmt"
)

// IsAssignable reports whether a value declared as type a may be used where
// type b is expected. The registry must be sealed first.
func (tr *Registry) IsAssignable(a, b TypeID) (bool, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	if !tr.isSealed {
		return false, ErrNotSealed
	} else if _, exists := tr.types[a]; !exists {
		return false, fmt.Errorf("%w: #%d", ErrUnknownType, a)
	} else if _, exists = tr.types[b]; !exists {
		return false, fmt.Errorf("%w: #%d", ErrUnknownType, b)
	}
	return tr.assignable(a, b), nil
}

// assignable walks the subtyping rules. The caller must hold the read lock
// and have validated both IDs. Every edge the recursion follows leads to a
// type registered before the current one, so it always terminates.
func (tr *Registry) assignable(a, b TypeID) bool {
	if a == b {
		return true
	}
	aData := tr.types[a]
	bData := tr.types[b]
	switch {
	case aData.Kind() == KindNever || bData.Kind() == KindNever:
		// never is uninhabited: outside identity it neither accepts nor
		// provides values.
		return false
	case bData.Kind() == KindVoid:
		return true
	case aData.Kind() == KindVoid:
		return false
	case bData.Kind() == KindDynamic:
		return true
	case aData.Kind() == KindDynamic:
		return false
	}
	// A non-nullable source may flow into a nullable target, never the reverse.
	nullOK := bData.Nullable() || !aData.Nullable()
	switch typedA := aData.(type) {
	case *NominalData:
		typedB, isNominal := bData.(*NominalData)
		if !isNominal {
			// Nominal values never satisfy a function shape.
			return false
		}
		if typedA.name == typedB.name && len(typedA.typeArgs) == len(typedB.typeArgs) {
			// Same generic class: type arguments are covariant. This branch
			// is definitive, there's no supertype fallback for it.
			if !nullOK {
				return false
			}
			for i, argA := range typedA.typeArgs {
				if !tr.assignable(argA, typedB.typeArgs[i]) {
					return false
				}
			}
			return true
		}
		for _, super := range typedA.supertypes {
			if tr.assignable(super, b) {
				return true
			}
		}
		return false
	case *FunctionData:
		typedB, isFunction := bData.(*FunctionData)
		if !isFunction {
			// Function values only fit the designated root nominal types.
			return tr.hasRoots && nullOK &&
				(b.AsNonNullable() == tr.objectRoot || b.AsNonNullable() == tr.functionRoot)
		}
		return nullOK && tr.functionAssignable(typedA, typedB)
	default:
		panic(fmt.Errorf("impossible type data %T for #%d", aData, a))
	}
}

func (tr *Registry) functionAssignable(a, b *FunctionData) bool {
	if len(a.positional) > len(b.positional) || b.requiredCount > a.requiredCount {
		return false
	}
	for i, paramA := range a.positional {
		// Parameters are contravariant: the target's parameter type must be
		// usable where the source declares its own.
		if !tr.assignable(b.positional[i], paramA) {
			return false
		}
	}
	for name, paramA := range a.requiredNamed {
		paramB, exists := b.requiredNamed[name]
		if !exists {
			paramB, exists = b.optionalNamed[name]
		}
		if !exists || !tr.assignable(paramB, paramA) {
			return false
		}
	}
	for name, paramA := range a.optionalNamed {
		paramB, exists := b.optionalNamed[name]
		if !exists || !tr.assignable(paramB, paramA) {
			return false
		}
	}
	// Returns are covariant, standard function subtyping.
	return tr.assignable(a.returnType, b.returnType)
}
