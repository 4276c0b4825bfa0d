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

package value

import (
	"fmt"

	"github.com/traverseql/traverseql/graphql"
	"github.com/traverseql/traverseql/graphql/ast"
)

// DefinitionWithArguments is anything that declares a fixed set of named arguments — fields and
// directives, specifically.
type DefinitionWithArguments interface {
	Args() []graphql.Argument
}

var (
	_ DefinitionWithArguments = (graphql.Field)(nil)
	_                         = (*graphql.Directive)(nil)
)

// ASTNodeWithArguments is an AST node that was actually written with a parenthesized argument
// list — a field selection or a directive application.
type ASTNodeWithArguments interface {
	ast.Node

	GetArguments() ast.Arguments
}

// suppliedArgument describes what the query document actually said about one argument, before
// it's reconciled against that argument's definition: whether anything was written at all, whether
// it resolved to an explicit null, and — if it came through a variable — which one and what its
// runtime value was.
type suppliedArgument struct {
	present  bool
	isNull   bool
	variable ast.Variable
	value    interface{}
}

// readSuppliedArgument inspects argNode (which may be nil, meaning the argument was omitted
// entirely) and resolves any variable reference against variableValues.
func readSuppliedArgument(argNode *ast.Argument, variableValues graphql.VariableValues) suppliedArgument {
	if argNode == nil {
		return suppliedArgument{}
	}

	switch v := argNode.Value.(type) {
	case ast.Variable:
		value, bound := variableValues.Lookup(v.Name.Value())
		return suppliedArgument{present: bound, isNull: bound && value == nil, variable: v, value: value}
	case ast.NullValue:
		return suppliedArgument{present: true, isNull: true}
	default:
		return suppliedArgument{present: true}
	}
}

// fromUnresolvedVariable reports whether this argument's value is a variable that the caller never
// supplied a runtime value for, as opposed to a variable that resolved to literal null.
func (s suppliedArgument) fromUnresolvedVariable() bool {
	return s.variable.Name.Token != nil && !s.present
}

// ArgumentValues coerces every argument def declares against the arguments actually written on
// node, applying defaults for omitted arguments and rejecting missing or null values for
// non-nullable arguments. variableValues must already hold this operation's coerced variables,
// since an argument may be written in terms of one.
func ArgumentValues(
	def DefinitionWithArguments,
	node ast.NodeWithArguments,
	variableValues graphql.VariableValues,
) (graphql.ArgumentValues, error) {
	argDefs := def.Args()
	argNodes := node.GetArguments()
	if len(argDefs) == 0 && len(argNodes) == 0 {
		return graphql.NoArgumentValues(), nil
	}

	argNodeMap := make(map[string]*ast.Argument, len(argNodes))
	for _, argNode := range argNodes {
		argNodeMap[argNode.Name.Value()] = argNode
	}

	coercedValues := map[string]interface{}{}
	for _, argDef := range argDefs {
		argName := argDef.Name()
		argNode := argNodeMap[argName]
		supplied := readSuppliedArgument(argNode, variableValues)

		switch {
		case !supplied.present && argDef.HasDefaultValue():
			coercedValues[argName] = argDef.DefaultValue()

		case (!supplied.present || supplied.isNull) && graphql.IsNonNullType(argDef.Type()):
			return graphql.NoArgumentValues(), missingRequiredArgumentError(argName, argDef.Type(), node, argNode, supplied)

		case !supplied.present:
			// Nullable and not written; leave it absent from coercedValues rather than storing nil, so
			// callers can tell "not provided" apart from "provided as null."

		case supplied.variable.Name.Token != nil:
			// A variable reference resolves to whatever the operation's variables already coerced it
			// to; re-validating its type here would be redundant with query validation.
			coercedValues[argName] = supplied.value

		case supplied.isNull:
			coercedValues[argName] = nil

		default:
			coerced, err := CoerceFromAST(argNode.Value, argDef.Type(), variableValues)
			if err != nil {
				// ValuesOfCorrectType validation should have caught this already; this is a defensive
				// runtime check so execution never proceeds on a value that failed coercion.
				return graphql.NoArgumentValues(), graphql.NewError(
					fmt.Sprintf(`Argument "%s" has invalid value %s.`,
						argName, graphql.Inspect(argNode.Value.Interface())),
					graphql.ErrorLocationOfASTNode(argNode.Value), err)
			}
			coercedValues[argName] = coerced
		}
	}

	return graphql.NewArgumentValues(coercedValues), nil
}

// missingRequiredArgumentError builds the appropriate error for a non-null argument that has no
// usable value, distinguishing an explicit null, an unresolved variable, and a plain omission.
func missingRequiredArgumentError(
	argName string,
	argType graphql.Type,
	node ast.NodeWithArguments,
	argNode *ast.Argument,
	supplied suppliedArgument,
) *graphql.Error {
	switch {
	case supplied.isNull:
		return graphql.NewError(
			fmt.Sprintf(`Argument "%s" of non-null type "%v" must not be null.`, argName, argType),
			graphql.ErrorLocationOfASTNode(argNode))
	case supplied.fromUnresolvedVariable():
		return graphql.NewError(
			fmt.Sprintf(`Argument "%s" of required type "%v" was provided the variable "$%s" which was `+
				`not provided a runtime value.`, argName, argType, supplied.variable.Name.Value()),
			graphql.ErrorLocationOfASTNode(argNode))
	default:
		return graphql.NewError(
			fmt.Sprintf(`Argument "%s" of required type "%v" was not provided.`, argName, argType),
			graphql.ErrorLocationOfASTNode(node))
	}
}
