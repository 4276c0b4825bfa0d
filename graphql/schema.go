/**
 * Copyright (c) 2018, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package graphql

import (
	"fmt"
	"reflect"

	"github.com/traverseql/traverseql/graphql/ast"
)

// This file holds the schema's named-type registry and the Schema value itself. Building a
// registry requires walking the whole type graph reachable from the three root operations, which
// can revisit the same named type many times (a Comment type reachable from both Post.comments
// and Query.recentComments, say) — the walk below is a worklist rather than plain recursion so a
// type that shows up through two different paths is only ever expanded once.

// TypeMap indexes every named type reachable from a schema's roots, keyed by name.
type TypeMap struct {
	types map[string]Type
}

// directChildren returns the types immediately reachable from t: field types, argument types,
// interfaces implemented, union members, or a wrapped element/inner type. It does not recurse —
// callers drive the transitive walk themselves.
func directChildren(t Type) []Type {
	switch t := t.(type) {
	case Object:
		children := make([]Type, 0, len(t.Interfaces())+len(t.Fields()))
		for _, iface := range t.Interfaces() {
			children = append(children, iface)
		}
		for _, field := range t.Fields() {
			children = append(children, field.Type())
			for _, arg := range field.Args() {
				children = append(children, arg.Type())
			}
		}
		return children

	case Interface:
		var children []Type
		for _, field := range t.Fields() {
			children = append(children, field.Type())
			for _, arg := range field.Args() {
				children = append(children, arg.Type())
			}
		}
		return children

	case *Union:
		return append([]Type(nil), t.PossibleTypes()...)

	case *InputObject:
		var children []Type
		for _, field := range t.Fields() {
			children = append(children, field.Type())
		}
		return children

	case *List:
		return []Type{t.ElementType()}
	case *NonNull:
		return []Type{t.InnerType()}

	default:
		// Scalar and Enum have no children; anything else is handled by the caller.
		return nil
	}
}

// add registers t and everything reachable from it into the map, visiting each named type exactly
// once even when several paths lead to it. NewSchema calls this once per root operation, once per
// built-in scalar, and once per explicitly enumerated type while assembling a schema.
func (typeMap TypeMap) add(root Type) error {
	pending := []Type{root}

	for len(pending) > 0 {
		last := len(pending) - 1
		t := pending[last]
		pending = pending[:last]

		if t == nil || reflect.ValueOf(t).IsNil() {
			continue
		}

		if named, ok := t.(TypeWithName); ok {
			name := named.Name()
			if seen, exists := typeMap.types[name]; exists {
				if seen != t {
					return NewError(fmt.Sprintf(
						"Schema must contain unique named types but contains multiple types named %s.", name))
				}
				// This exact type instance was already expanded on an earlier path; don't walk it twice.
				continue
			}
			typeMap.types[name] = t
		}

		switch t.(type) {
		case Scalar, Enum, nil:
			// Leaves; nothing further to enqueue.
		case Object, Interface, *Union, *InputObject, *List, *NonNull:
			pending = append(pending, directChildren(t)...)
		default:
			return NewError(fmt.Sprintf("Cannot add %s to schema: unsupported type %T", t, t))
		}
	}

	return nil
}

// Lookup returns the named type registered under name, or nil if the schema has none.
func (typeMap TypeMap) Lookup(name string) Type {
	return typeMap.types[name]
}

// DirectiveList is an ordered collection of directives, typically a schema's full directive set.
type DirectiveList []*Directive

// Lookup returns the first directive in the list named name, or nil if none matches.
func (directiveList DirectiveList) Lookup(name string) *Directive {
	for _, directive := range directiveList {
		if directive.Name() == name {
			return directive
		}
	}
	return nil
}

// SchemaConfig is the blueprint passed to NewSchema: the root operations, every other named type
// that should be part of the schema even if unreachable from the roots, and the directive set.
type SchemaConfig struct {
	// Root operation objects. Mutation and Subscription may be nil.
	Query        Object
	Mutation     Object
	Subscription Object

	// Types enumerates named types that belong to the schema but might not otherwise be reachable
	// by walking Query/Mutation/Subscription — for example, a member of a union that currently has
	// no field returning it, or an input object only ever referenced by name from client queries.
	Types []Type

	// Directives to add to the schema, in addition to (or, with ExcludeStandardDirectives, instead
	// of) the standard @skip/@include/@deprecated set.
	Directives DirectiveList

	// ExcludeStandardDirectives, when true, means Directives is the complete and only directive set;
	// the standard directives are not appended.
	ExcludeStandardDirectives bool

	// TODO: AST node
}

// Schema is a GraphQL service's complete type-system contract with its clients: every named type
// and directive it recognizes, plus which object types serve as the entry point for each of the
// three root operations (query, mutation, subscription).
//
// A Schema is immutable once constructed by NewSchema, which lets PossibleTypes and similar
// read-only queries answer from precomputed state rather than re-walking the type graph.
//
// Reference: https://facebook.github.io/graphql/June2018/#sec-Schema
type Schema struct {
	query        Object
	mutation     Object
	subscription Object

	typeMap TypeMap

	directives DirectiveList

	// implementations is the reverse index from an interface to every object type that declares it
	// among its Interfaces(); built once in NewSchema and consulted by PossibleTypes.
	//
	// TODO: Improve map by using TypeKey as key. #26
	implementations map[Interface][]Object
}

// builtinScalars lists the leaf types every schema carries regardless of whether a query ever
// touches them by name, so that introspection and literal coercion can always resolve "Int",
// "String" and friends.
func builtinScalars() []Type {
	return []Type{Int(), Float(), String(), Boolean(), ID()}
}

// NewSchema validates config and assembles a Schema from it: every root operation, every
// explicitly listed type, every built-in scalar, and everything transitively reachable from them
// is registered into a single TypeMap, failing if two distinct types ever claim the same name.
func NewSchema(config *SchemaConfig) (*Schema, error) {
	schema := &Schema{
		query:        config.Query,
		mutation:     config.Mutation,
		subscription: config.Subscription,
	}
	schema.directives = buildDirectiveList(config.Directives, config.ExcludeStandardDirectives)

	typeMap := TypeMap{types: map[string]Type{}}

	roots := []Type{config.Query, config.Mutation, config.Subscription}
	roots = append(roots, builtinScalars()...)
	roots = append(roots, config.Types...)

	// TODO: Add __Schema type in introspection.

	for _, t := range roots {
		if err := typeMap.add(t); err != nil {
			return nil, err
		}
	}

	for _, directive := range schema.directives {
		for _, arg := range directive.Args() {
			if err := typeMap.add(arg.Type()); err != nil {
				return nil, err
			}
		}
	}

	schema.typeMap = typeMap
	schema.implementations = buildImplementationIndex(typeMap)

	return schema, nil
}

// buildDirectiveList copies base and, unless excludeStandard is set, appends the standard
// @skip/@include/@deprecated directives after it.
func buildDirectiveList(base DirectiveList, excludeStandard bool) DirectiveList {
	if excludeStandard {
		list := make(DirectiveList, len(base))
		copy(list, base)
		return list
	}
	standard := StandardDirectives()
	list := make(DirectiveList, len(base), len(base)+len(standard))
	copy(list, base)
	return append(list, standard...)
}

// buildImplementationIndex scans every registered type for Object values and links each back to
// the interfaces it declares, so PossibleTypes can answer an interface query by map lookup.
func buildImplementationIndex(typeMap TypeMap) map[Interface][]Object {
	implementations := map[Interface][]Object{}
	for _, t := range typeMap.types {
		object, ok := t.(Object)
		if !ok {
			continue
		}
		for _, iface := range object.Interfaces() {
			implementations[iface] = append(implementations[iface], object)
		}
	}
	return implementations
}

// TypeMap returns every named type reachable from the schema's roots, directives, and
// explicitly-declared type list.
func (schema *Schema) TypeMap() TypeMap {
	return schema.typeMap
}

// Directives returns the full directive set recognized by the schema, standard directives
// included unless the schema was built with ExcludeStandardDirectives.
func (schema *Schema) Directives() DirectiveList {
	return schema.directives
}

// Query is one of the three GraphQL Root Operations.
//
// Reference: https://facebook.github.io/graphql/June2018/#sec-Root-Operation-Types
func (schema *Schema) Query() Object {
	return schema.query
}

// Mutation is one of the three GraphQL Root Operations.
//
// Reference: https://facebook.github.io/graphql/June2018/#sec-Root-Operation-Types
func (schema *Schema) Mutation() Object {
	return schema.mutation
}

// Subscription is one of the three GraphQL Root Operations.
//
// Reference: https://facebook.github.io/graphql/June2018/#sec-Root-Operation-Types
func (schema *Schema) Subscription() Object {
	return schema.subscription
}

// PossibleTypes resolves an abstract type to its concrete members: a Union's declared member
// types, or an Interface's implementors as recorded in the schema's reverse implementation index.
func (schema *Schema) PossibleTypes(t AbstractType) []Object {
	switch t := t.(type) {
	case *Union:
		return t.PossibleTypes()
	case Interface:
		return schema.implementations[t]
	default:
		return nil
	}
}

// TypeFromAST resolves a parsed type reference — a bare name, or a name wrapped in any combination
// of list and non-null markers — against the schema's type map. Given the AST for `[User]!` it
// peels down to the named type "User", looks that up, then rebuilds the List/NonNull wrapping on
// the way back out. Returns nil if the named type isn't registered in the schema.
func (schema *Schema) TypeFromAST(t ast.Type) Type {
	var wrappers []ast.Type
	var name string

	for name == "" {
		switch node := t.(type) {
		case ast.NamedType:
			name = node.Name.Value()
		case ast.ListType:
			wrappers = append(wrappers, t)
			t = node.ItemType
		case ast.NonNullType:
			wrappers = append(wrappers, t)
			t = node.Type
		default:
			panic("unexpected AST type kind")
		}
	}

	resolved := schema.TypeMap().Lookup(name)
	if resolved == nil {
		return nil
	}

	// Rewrap innermost-first, in the reverse order the wrappers were peeled off.
	for i := len(wrappers) - 1; i >= 0; i-- {
		if _, isList := wrappers[i].(ast.ListType); isList {
			resolved = MustNewListOfType(resolved)
		} else {
			resolved = MustNewNonNullOfType(resolved)
		}
	}

	return resolved
}
