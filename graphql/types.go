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

	"github.com/traverseql/traverseql/graphql/ast"
)

// Type is satisfied by every value the type system hands around: scalars, enums, objects,
// interfaces, unions, input objects, and the List/NonNull wrappers around any of those. The
// unexported graphqlType marker keeps arbitrary external types from being mistaken for one of
// ours — only values built through this package's constructors can ever satisfy Type.
//
// Reference: https://facebook.github.io/graphql/June2018/#sec-Types
type Type interface {
	fmt.Stringer

	graphqlType()
}

// LeafType is where a selection's value actually comes from: Scalar and Enum are the only two
// kinds of type a field can resolve to without the engine needing to keep descending into a
// nested selection set.
//
// [0]: https://facebook.github.io/graphql/June2018/#sec-Scalars
// [1]: https://facebook.github.io/graphql/June2018/#sec-Enums
type LeafType interface {
	Type
	TypeWithName
	TypeWithDescription

	// CoerceResultValue converts a resolver's raw return value into the representation that gets
	// serialized in the response.
	CoerceResultValue(value interface{}) (interface{}, error)

	graphqlLeafType()
}

// AbstractType covers the two type-system constructs whose concrete shape depends on the runtime
// value being resolved: Interface and Union.
//
// Reference: https://facebook.github.io/graphql/June2018/#sec-Types
type AbstractType interface {
	Type
	TypeWithName
	TypeWithDescription

	// TypeResolver picks the concrete Object type that a given resolved value should be completed
	// as, among the abstract type's possible types.
	//
	// Reference: https://facebook.github.io/graphql/June2018/#ResolveAbstractType()
	TypeResolver() TypeResolver

	graphqlAbstractType()
}

// WrappingType modifies another type rather than standing on its own — List and NonNull are the
// only two.
//
// Reference: https://facebook.github.io/graphql/draft/#sec-Wrapping-Types
type WrappingType interface {
	Type

	// UnwrappedType returns the type one level beneath the wrapper.
	UnwrappedType() Type

	graphqlWrappingType()
}

// Deprecation records why a field or enum value has been marked deprecated. A nil *Deprecation
// means "not deprecated" — see Defined.
//
// See https://facebook.github.io/graphql/June2018/#sec-Deprecation.
type Deprecation struct {
	Reason string
}

// Defined reports whether d denotes an actual deprecation, as opposed to a nil pointer standing
// in for "not deprecated."
func (d *Deprecation) Defined() bool {
	return d != nil
}

//===----------------------------------------------------------------------------------------====//
// Metafields that are only available in certain types
//===----------------------------------------------------------------------------------------====//

// TypeWithName is satisfied by every named type — every Type except the anonymous List/NonNull
// wrappers.
type TypeWithName interface {
	Name() string
}

// TypeWithDescription is satisfied by any type that can carry human-readable documentation,
// surfaced through introspection's `description` field.
type TypeWithDescription interface {
	Description() string
}

//===----------------------------------------------------------------------------------------====//
// Scalar
//===----------------------------------------------------------------------------------------====//

// Scalar is a named leaf type whose values come from outside the type system entirely — numbers,
// strings, booleans, IDs, and any custom scalar a host application adds (DateTime is one example
// in this package). A Scalar supplies the coercion functions needed to move a value across each of
// the three boundaries where it crosses between wire/AST representation and Go representation.
//
// Reference: https://facebook.github.io/graphql/June2018/#sec-Scalars
type Scalar interface {
	LeafType

	// CoerceVariableValue converts a decoded JSON-ish variable value into the scalar's Go
	// representation.
	CoerceVariableValue(value interface{}) (interface{}, error)

	// CoerceArgumentValue converts a literal AST value supplied directly in a field or directive
	// argument into the scalar's Go representation.
	CoerceArgumentValue(value ast.Value) (interface{}, error)

	graphqlScalarType()
}

// ThisIsScalarType is embedded by every concrete Scalar implementation to pick up the marker
// methods for free; it carries no state of its own.
type ThisIsScalarType struct{}

// graphqlType implements Type.
func (*ThisIsScalarType) graphqlType() {}

// graphqlLeafType implements LeafType.
func (*ThisIsScalarType) graphqlLeafType() {}

// graphqlScalarType implements Scalar.
func (*ThisIsScalarType) graphqlScalarType() {}

// ScalarResultCoercer is the result-direction half of a scalar's coercion contract: given
// whatever value a field resolver actually returned, produce the value that belongs in the
// response. See "Result Coercion" at [0].
//
// [0]: https://facebook.github.io/graphql/June2018/#sec-Scalars
type ScalarResultCoercer interface {
	CoerceResultValue(value interface{}) (interface{}, error)
}

// CoerceScalarResultFunc adapts a plain function to ScalarResultCoercer, so a custom scalar's
// result-coercion logic can be written as a function literal rather than a named type.
type CoerceScalarResultFunc func(value interface{}) (interface{}, error)

// CoerceResultValue calls f(value).
func (f CoerceScalarResultFunc) CoerceResultValue(value interface{}) (interface{}, error) {
	return f(value)
}

var _ ScalarResultCoercer = (CoerceScalarResultFunc)(nil)

// ScalarInputCoercer is the input-direction half of a scalar's coercion contract, covering both
// places a value can enter a request: as a query variable, and as a literal written directly into
// the document. See "Input Coercion" at [0].
//
// [0]: https://facebook.github.io/graphql/June2018/#sec-Scalars
type ScalarInputCoercer interface {
	// CoerceVariableValue handles a value arriving through the variables map.
	//
	// Reference: https://facebook.github.io/graphql/June2018/#CoerceVariableValues()
	CoerceVariableValue(value interface{}) (interface{}, error)

	// CoerceArgumentValue handles a value written as a literal in the query document itself.
	//
	// Reference: https://facebook.github.io/graphql/June2018/#CoerceArgumentValues()
	CoerceArgumentValue(value ast.Value) (interface{}, error)
}

// ScalarInputCoercerFuncs is an adapter to create a ScalarInputCoercer from function values.
type ScalarInputCoercerFuncs struct {
	CoerceVariableValueFunc func(value interface{}) (interface{}, error)
	CoerceArgumentValueFunc func(value ast.Value) (interface{}, error)
}

// CoerceVariableValue calls f.CoerceVariableValueFunc(value).
func (f ScalarInputCoercerFuncs) CoerceVariableValue(value interface{}) (interface{}, error) {
	return f.CoerceVariableValueFunc(value)
}

// CoerceArgumentValue calls f.CoerceArgumentValueFunc(value).
func (f ScalarInputCoercerFuncs) CoerceArgumentValue(value ast.Value) (interface{}, error) {
	return f.CoerceArgumentValueFunc(value)
}

// ScalarInputCoercerFuncs implements ScalarInputCoercer.
var _ ScalarInputCoercer = ScalarInputCoercerFuncs{}

//===----------------------------------------------------------------------------------------====//
// Object
//===----------------------------------------------------------------------------------------====//

// Object is a composite type with a fixed, named set of fields — the workhorse of a schema's type
// graph, standing in for everything that isn't a bare leaf value.
//
// Reference: https://facebook.github.io/graphql/June2018/#sec-Objects
type Object interface {
	Type
	TypeWithName
	TypeWithDescription

	Fields() FieldMap

	// Interfaces lists every Interface this Object claims to implement, each of which constrains
	// the shape of Fields().
	Interfaces() []Interface

	graphqlObjectType()
}

// ThisIsObjectType is embedded by concrete Object implementations for the marker methods.
type ThisIsObjectType struct{}

// graphqlType implements Type.
func (*ThisIsObjectType) graphqlType() {}

// graphqlObjectType implements Object.
func (*ThisIsObjectType) graphqlObjectType() {}

//===----------------------------------------------------------------------------------------====//
// Interface
//===----------------------------------------------------------------------------------------====//

// Interface describes a field set that one or more Object types commit to implementing, letting a
// field's declared type be "any object shaped like this" rather than one specific Object.
//
// Reference: https://facebook.github.io/graphql/June2018/#sec-Interfaces
type Interface interface {
	AbstractType

	// Fields lists the fields every implementing Object must provide, with compatible types.
	Fields() FieldMap

	graphqlInterfaceType()
}

// ThisIsInterfaceType is embedded by concrete Interface implementations for the marker methods.
type ThisIsInterfaceType struct{}

// graphqlType implements Type.
func (*ThisIsInterfaceType) graphqlType() {}

// graphqlAbstractType implements AbstractType.
func (*ThisIsInterfaceType) graphqlAbstractType() {}

// graphqlInterfaceType implements Interface.
func (*ThisIsInterfaceType) graphqlInterfaceType() {}

//===----------------------------------------------------------------------------------------====//
// Union
//===----------------------------------------------------------------------------------------====//

// Union describes a field whose value may be any one of an explicit, unrelated set of Object
// types, with no field set shared between them (unlike Interface, member types of a union need not
// have anything structurally in common).
//
// Reference: https://facebook.github.io/graphql/June2018/#sec-Unions
type Union interface {
	AbstractType

	PossibleTypes() []Object

	graphqlUnionType()
}

// ThisIsUnionType is embedded by concrete Union implementations for the marker methods.
type ThisIsUnionType struct{}

// graphqlType implements Type.
func (*ThisIsUnionType) graphqlType() {}

// graphqlAbstractType implements AbstractType.
func (*ThisIsUnionType) graphqlAbstractType() {}

// graphqlUnionType implements Union.
func (*ThisIsUnionType) graphqlUnionType() {}

//===----------------------------------------------------------------------------------------====//
// Enum
//===----------------------------------------------------------------------------------------====//

// EnumValueMap looks up an Enum's value definitions by their string name, the form they take on
// the wire and in query literals.
type EnumValueMap map[string]EnumValue

// Lookup returns the value definition named name, or nil if the enum has none by that name.
func (m EnumValueMap) Lookup(name string) EnumValue {
	return m[name]
}

// Enum is a leaf type whose legal values are an explicit, named set rather than an open-ended
// scalar range. On the wire an enum value is always its name as a string; internally it may be
// backed by whatever Go value its EnumValue.Value() returns — an int constant is typical, but
// nothing requires it.
//
// Reference: https://facebook.github.io/graphql/June2018/#sec-Enums
type Enum interface {
	LeafType

	Values() EnumValueMap

	graphqlEnumType()
}

// ThisIsEnumType is embedded by concrete Enum implementations for the marker methods.
type ThisIsEnumType struct{}

// graphqlType implements Type.
func (*ThisIsEnumType) graphqlType() {}

// graphqlLeafType implements LeafType.
func (*ThisIsEnumType) graphqlLeafType() {}

// graphqlEnumType implements Enum.
func (*ThisIsEnumType) graphqlEnumType() {}

// EnumValue is one named member of an Enum's value set.
//
// Reference: https://facebook.github.io/graphql/June2018/#EnumValue
type EnumValue interface {
	Name() string
	Description() string

	// Value is the internal Go representation substituted for Name() once the enum literal has
	// been coerced from input.
	Value() interface{}

	Deprecation() *Deprecation
}

//===------------------------------------------------------------------------------------------===//
// InputObject
//===------------------------------------------------------------------------------------------===//

// InputFieldMap looks up an InputObject's field definitions by name.
type InputFieldMap map[string]InputField

// InputObject is Object's counterpart on the input side: a structured bundle of named fields that
// can be passed as a single argument value, but — unlike Object — its fields carry no arguments
// and cannot reference interfaces or unions, since nothing ever needs to resolve an input field.
//
// Reference: https://facebook.github.io/graphql/June2018/#sec-Input-Objects
type InputObject interface {
	Type

	Fields() InputFieldMap

	graphqlInputObjectType()
}

// ThisIsInputObjectType is embedded by concrete InputObject implementations for the marker
// methods.
type ThisIsInputObjectType struct{}

// graphqlType implements Type.
func (*ThisIsInputObjectType) graphqlType() {}

// graphqlInputObjectType implements InputObject.
func (*ThisIsInputObjectType) graphqlInputObjectType() {}

// InputField is one named member of an InputObject's field set. It carries a type and an optional
// default but — unlike Field — no arguments and no resolver, since an input field is only ever
// read, never executed.
type InputField interface {
	Name() string
	Description() string
	Type() Type

	// HasDefaultValue reports whether DefaultValue is meaningful; calling DefaultValue when this is
	// false is undefined.
	HasDefaultValue() bool
	DefaultValue() interface{}
}

//===------------------------------------------------------------------------------------------===//
// List
//===------------------------------------------------------------------------------------------===//

// List wraps another type to mean "zero or more values of that type," most often seen attached
// directly to a field or argument's declared type rather than defined as its own named type.
//
// Reference: https://facebook.github.io/graphql/June2018/#sec-Type-System.List
type List interface {
	WrappingType

	ElementType() Type

	graphqlListType()
}

// ThisIsListType is embedded by concrete List implementations for the marker methods.
type ThisIsListType struct{}

// graphqlType implements Type.
func (*ThisIsListType) graphqlType() {}

// graphqlWrappingType implements WrappingType.
func (*ThisIsListType) graphqlWrappingType() {}

// graphqlListType implements List.
func (*ThisIsListType) graphqlListType() {}

//===------------------------------------------------------------------------------------------===//
// NonNull
//===------------------------------------------------------------------------------------------===//

// NonNull wraps another type to forbid a null value there. Declaring a field NonNull-of-String is
// a contract with clients that a resolver returning nil for that field is itself an error, not a
// valid result — the executor is what actually enforces this by turning a null completion of a
// non-null field into a propagated error. See NonNull's note in the executor package.
//
// Reference: https://facebook.github.io/graphql/June2018/#sec-Type-System.Non-Null
type NonNull interface {
	WrappingType

	InnerType() Type

	graphqlNonNullType()
}

// ThisIsNonNullType is embedded by concrete NonNull implementations for the marker methods.
type ThisIsNonNullType struct{}

// graphqlType implements Type.
func (*ThisIsNonNullType) graphqlType() {}

// graphqlWrappingType implements WrappingType.
func (*ThisIsNonNullType) graphqlWrappingType() {}

// graphqlNonNullType implements NonNull.
func (*ThisIsNonNullType) graphqlNonNullType() {}

//===------------------------------------------------------------------------------------------===//
// Type Predication
//===------------------------------------------------------------------------------------------===//

// NamedTypeOf strips every List/NonNull wrapper off t and returns the named type underneath —
// given `[[User!]]!`, it returns the User type itself.
//
// Reference: https://facebook.github.io/graphql/draft/#sec-Wrapping-Types
func NamedTypeOf(t Type) Type {
	for t != nil {
		wrapper, ok := t.(WrappingType)
		if !ok {
			break
		}
		t = wrapper.UnwrappedType()
	}
	return t
}

// NullableTypeOf strips at most one NonNull wrapper off t. Unlike NamedTypeOf it stops after a
// single layer: NullableTypeOf of `[User!]!` is `[User!]`, not `User`.
func NullableTypeOf(t Type) Type {
	if nonNull, ok := t.(NonNull); ok && nonNull != nil {
		return nonNull.InnerType()
	}
	return t
}

// namedTypeKindIsOneOf reports whether t, once unwrapped to its named type, is one of the given
// predicates. IsInputType/IsOutputType are both "check the named type's shape," differing only in
// which shapes count, so they share this helper rather than duplicating the unwrap-then-switch.
func namedTypeKindIsOneOf(t Type, predicates ...func(Type) bool) bool {
	named := NamedTypeOf(t)
	for _, p := range predicates {
		if p(named) {
			return true
		}
	}
	return false
}

// IsInputType reports whether t is legal as the type of an argument, variable, or input field —
// scalars, enums, and input objects, with any amount of List/NonNull wrapping.
//
// Reference: https://facebook.github.io/graphql/June2018/#IsInputType()
func IsInputType(t Type) bool {
	return namedTypeKindIsOneOf(t, IsScalarType, IsEnumType, IsInputObjectType)
}

// IsOutputType reports whether t is legal as a field's declared return type — scalars, objects,
// interfaces, unions and enums, with any amount of List/NonNull wrapping.
//
// Reference: https://facebook.github.io/graphql/draft/#IsOutputType()
func IsOutputType(t Type) bool {
	return namedTypeKindIsOneOf(t, IsScalarType, IsObjectType, IsInterfaceType, IsUnionType, IsEnumType)
}

// IsCompositeType reports whether t (without unwrapping) is an Object, Interface, or Union — the
// three types whose values are completed by descending into a nested selection set.
func IsCompositeType(t Type) bool {
	return IsObjectType(t) || IsInterfaceType(t) || IsUnionType(t)
}

// IsNullableType reports whether t accepts a null value, i.e. t is not itself a NonNull wrapper.
func IsNullableType(t Type) bool {
	return !IsNonNullType(t)
}

// IsNamedType reports whether t is not a List/NonNull wrapper.
//
// Reference: https://facebook.github.io/graphql/draft/#sec-Wrapping-Types
func IsNamedType(t Type) bool {
	return !IsWrappingType(t)
}

// IsLeafType reports whether t is a Scalar or Enum.
func IsLeafType(t Type) bool {
	_, ok := t.(LeafType)
	return ok
}

// IsAbstractType reports whether t is an Interface or Union.
func IsAbstractType(t Type) bool {
	_, ok := t.(AbstractType)
	return ok
}

// IsWrappingType reports whether t is a List or NonNull.
func IsWrappingType(t Type) bool {
	_, ok := t.(WrappingType)
	return ok
}

// IsScalarType reports whether t is a Scalar.
func IsScalarType(t Type) bool {
	_, ok := t.(Scalar)
	return ok
}

// IsObjectType reports whether t is an Object.
func IsObjectType(t Type) bool {
	_, ok := t.(Object)
	return ok
}

// IsInterfaceType reports whether t is an Interface.
func IsInterfaceType(t Type) bool {
	_, ok := t.(Interface)
	return ok
}

// IsUnionType reports whether t is a Union.
func IsUnionType(t Type) bool {
	_, ok := t.(Union)
	return ok
}

// IsEnumType reports whether t is an Enum.
func IsEnumType(t Type) bool {
	_, ok := t.(Enum)
	return ok
}

// IsInputObjectType reports whether t is an InputObject.
func IsInputObjectType(t Type) bool {
	_, ok := t.(InputObject)
	return ok
}

// IsListType reports whether t is a List.
func IsListType(t Type) bool {
	_, ok := t.(List)
	return ok
}

// IsNonNullType reports whether t is a NonNull.
func IsNonNullType(t Type) bool {
	_, ok := t.(NonNull)
	return ok
}
