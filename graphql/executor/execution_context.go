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

package executor

import (
	"context"

	"github.com/traverseql/traverseql/graphql"
	"github.com/traverseql/traverseql/graphql/internal/value"
)

// ExecutionContext bundles everything an in-flight request needs that isn't specific to any one
// field: the prepared operation being run, the request's root and app-specific values, and the
// variable values already coerced against the operation's declared variable types. One instance is
// built per call to PreparedOperation.Execute and threaded through every node in the selection set.
type ExecutionContext struct {
	ctx context.Context

	operation *PreparedOperation

	// rootValue is the source value handed to the root operation's own field resolvers — "source"
	// in spec terms, for the top-level fields only.
	rootValue interface{}

	// appContext is opaque request-scoped data (a logger, a per-request cache, an authenticated
	// user) made available to every resolver via ResolveInfo, regardless of how deep the field sits.
	appContext interface{}

	// variableValues holds the request's variables after CoerceVariableValues has already
	// validated and converted them against the operation's declared types; nothing downstream
	// re-validates them.
	variableValues graphql.VariableValues

	// dataLoaderManager dispatches batched loads queued by resolvers during this execution; nil
	// when the caller didn't supply one, in which case resolvers can't batch anything.
	dataLoaderManager graphql.DataLoaderManager
}

// newExecutionContext coerces params.VariableValues against operation's declared variables and, if
// that succeeds, builds the ExecutionContext that the rest of execution will run against. Any
// coercion failure short-circuits the whole operation before a single field resolver runs.
func newExecutionContext(
	ctx context.Context,
	operation *PreparedOperation,
	params *ExecuteParams,
) (*ExecutionContext, graphql.Errors) {
	variableValues, errs := value.CoerceVariableValues(
		operation.Schema(),
		operation.VariableDefinitions(),
		params.VariableValues)
	if errs.HaveOccurred() {
		return nil, errs
	}

	return &ExecutionContext{
		ctx:               ctx,
		operation:         operation,
		rootValue:         params.RootValue,
		appContext:        params.AppContext,
		variableValues:    variableValues,
		dataLoaderManager: params.DataLoaderManager,
	}, graphql.NoErrors()
}

// Context returns the context.Context this execution is running under, threaded through to every
// resolver so a request's cancellation or deadline reaches even deeply nested field resolution.
func (ec *ExecutionContext) Context() context.Context {
	return ec.ctx
}

// Operation returns the prepared operation this context is executing.
func (ec *ExecutionContext) Operation() *PreparedOperation {
	return ec.operation
}

// RootValue returns the source value passed to the root operation's top-level field resolvers.
func (ec *ExecutionContext) RootValue() interface{} {
	return ec.rootValue
}

// AppContext returns the request-scoped application value supplied to every resolver in this
// execution, unchanged from what ExecuteParams.AppContext provided.
func (ec *ExecutionContext) AppContext() interface{} {
	return ec.appContext
}

// VariableValues returns the operation's variables, already coerced to their declared types.
func (ec *ExecutionContext) VariableValues() graphql.VariableValues {
	return ec.variableValues
}

// DataLoaderManager returns the manager dispatching batched loads for this execution, or nil if
// none was supplied.
func (ec *ExecutionContext) DataLoaderManager() graphql.DataLoaderManager {
	return ec.dataLoaderManager
}
