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

// ObjectConfig is the usual way to describe an Object type: a name, an optional description, the
// interfaces it claims to implement, and its field set. It satisfies ObjectTypeDefinition directly,
// so most callers pass an *ObjectConfig straight to NewObject rather than writing their own
// ObjectTypeDefinition implementation.
type ObjectConfig struct {
	ThisIsTypeDefinition

	Name        string
	Description string

	// Interfaces this object claims to implement. Each is resolved to an Interface type when the
	// schema is finalized, so a forward reference to a type defined later is fine.
	Interfaces []InterfaceTypeDefinition

	Fields Fields
}

var (
	_ TypeDefinition       = (*ObjectConfig)(nil)
	_ ObjectTypeDefinition = (*ObjectConfig)(nil)
)

// TypeData implements ObjectTypeDefinition.
func (config *ObjectConfig) TypeData() ObjectTypeData {
	return ObjectTypeData{
		Name:        config.Name,
		Description: config.Description,
		Interfaces:  config.Interfaces,
		Fields:      config.Fields,
	}
}

// objectTypeCreator drives newTypeImpl's two-phase construction of an objectType: LoadDataAndNew
// allocates the instance from just the name/description/raw field config, and Finalize resolves
// field types and interface references once every other type in the schema also exists to resolve
// against.
type objectTypeCreator struct {
	typeDef ObjectTypeDefinition
}

var _ typeCreator = (*objectTypeCreator)(nil)

// TypeDefinition implements typeCreator.
func (creator *objectTypeCreator) TypeDefinition() TypeDefinition {
	return creator.typeDef
}

// LoadDataAndNew implements typeCreator.
func (creator *objectTypeCreator) LoadDataAndNew() (Type, error) {
	data := creator.typeDef.TypeData()
	if len(data.Name) == 0 {
		return nil, NewError("Must provide name for Object.")
	}
	return &objectType{data: data}, nil
}

// Finalize implements typeCreator. It resolves the object's declared field types and interface
// references now that typeDefResolver can look up any other type in the schema by definition.
func (*objectTypeCreator) Finalize(t Type, typeDefResolver typeDefinitionResolver) error {
	obj := t.(*objectType)

	fieldMap, err := BuildFieldMap(obj.data.Fields, typeDefResolver)
	if err != nil {
		return err
	}
	obj.fields = fieldMap

	if declared := obj.data.Interfaces; len(declared) > 0 {
		resolved := make([]Interface, len(declared))
		for i, ifaceTypeDef := range declared {
			iface, err := typeDefResolver(ifaceTypeDef)
			if err != nil {
				return err
			}
			resolved[i] = iface.(Interface)
		}
		obj.interfaces = resolved
	}

	return nil
}

// objectType is the concrete Object implementation produced by NewObject/MustNewObject.
type objectType struct {
	ThisIsObjectType
	data       ObjectTypeData
	fields     FieldMap
	interfaces []Interface
}

var _ Object = (*objectType)(nil)

// NewObject builds an Object type from typeDef, validating the name and deferring field/interface
// resolution until the owning schema is assembled.
func NewObject(typeDef ObjectTypeDefinition) (Object, error) {
	t, err := newTypeImpl(&objectTypeCreator{typeDef: typeDef})
	if err != nil {
		return nil, err
	}
	return t.(Object), nil
}

// MustNewObject is NewObject but panics instead of returning an error, for call sites (tests,
// package-level var initializers) that have no sensible way to propagate a definition error.
func MustNewObject(typeDef ObjectTypeDefinition) Object {
	o, err := NewObject(typeDef)
	if err != nil {
		panic(err)
	}
	return o
}

// Name implements TypeWithName.
func (t *objectType) Name() string {
	return t.data.Name
}

// Description implements TypeWithDescription.
func (t *objectType) Description() string {
	return t.data.Description
}

// Fields implements Object.
func (t *objectType) Fields() FieldMap {
	return t.fields
}

// Interfaces implements Object.
func (t *objectType) Interfaces() []Interface {
	return t.interfaces
}
