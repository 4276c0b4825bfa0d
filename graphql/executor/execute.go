/**
 * Copyright (c) 2019, The Artemis Authors.
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
	"fmt"
	"io"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/traverseql/traverseql/concurrent/future"
	"github.com/traverseql/traverseql/graphql"
	"github.com/traverseql/traverseql/graphql/ast"
	values "github.com/traverseql/traverseql/graphql/internal/value"
	"github.com/traverseql/traverseql/iterator"
	"github.com/traverseql/traverseql/jsonwriter"
)

// ExecutionResult is the outcome of running one operation through an Executor: the response data
// tree alongside whatever field and request-level errors accumulated while producing it.
type ExecutionResult struct {
	Data   *ResultNode
	Errors graphql.Errors
}

// MarshalJSONTo streams result's JSON encoding to w using the jsonwriter package rather than
// encoding/json, which avoids building an intermediate byte slice for large responses. Callers that
// can write straight to a socket or response body should prefer this over MarshalJSON.
func (result *ExecutionResult) MarshalJSONTo(w io.Writer) error {
	stream := jsonwriter.NewStream(w)
	stream.WriteValue(NewExecutionResultMarshaler(result))
	stream.WriteRawString("\n")
	return stream.Flush()
}

// MarshalJSON implements json.Marshaler for ExecutionResult, delegating to the same marshaler
// MarshalJSONTo uses so both paths produce byte-identical output.
func (result ExecutionResult) MarshalJSON() ([]byte, error) {
	return jsonwriter.Marshal(NewExecutionResultMarshaler(&result))
}

// collectFields returns the child ExecutionNodes for node's selection set as seen under
// runtimeType, building and caching them on first use. A field whose return type is an interface
// or union may be collected once per distinct runtime type that shows up at execution time, since
// which fields are visible (and which fragments apply) depends on the concrete type — so the cache
// is keyed by runtimeType rather than being a single flat list.
func collectFields(
	ctx *ExecutionContext,
	node *ExecutionNode,
	runtimeType graphql.Object) ([]*ExecutionNode, error) {
	var childNodes []*ExecutionNode

	if node.Children == nil {
		node.Children = map[graphql.Object][]*ExecutionNode{}
	} else {
		childNodes = node.Children[runtimeType]
	}

	if childNodes == nil {
		var err error
		childNodes, err = buildChildExecutionNodesForSelectionSet(ctx, node, runtimeType)
		if err != nil {
			return nil, err
		}
		node.Children[runtimeType] = childNodes
	}

	return childNodes, nil
}

// fieldNodeFor resolves the ExecutionNode a field selection should contribute to parentNode's
// children, merging it into a node already collected under the same response key rather than
// creating a duplicate. It returns a nil node (and nil error) both when the selection merges into
// an existing node and when runtimeType doesn't actually have the named field — callers distinguish
// neither case from the other since both mean "nothing new to append."
func fieldNodeFor(
	ctx *ExecutionContext,
	parentNode *ExecutionNode,
	runtimeType graphql.Object,
	seen map[string]*ExecutionNode,
	selection *ast.Field,
) (*ExecutionNode, error) {
	name := selection.ResponseKey()
	if existing := seen[name]; existing != nil {
		existing.Definitions = append(existing.Definitions, selection)
		return nil, nil
	}

	fieldDef := findFieldDef(ctx.Operation().Schema(), runtimeType, selection.Name.Value())
	if fieldDef == nil {
		// The selected field isn't on this type; skip silently rather than erroring, per
		// https://facebook.github.io/graphql/June2018/#ExecuteSelectionSet() step 3.c.
		return nil, nil
	}

	args, err := values.ArgumentValues(fieldDef, selection, ctx.VariableValues())
	if err != nil {
		return nil, err
	}

	node := &ExecutionNode{
		Parent:      parentNode,
		Definitions: []*ast.Field{selection},
		Field:       fieldDef,
		Args:        args,
	}
	seen[name] = node
	return node, nil
}

// buildChildExecutionNodesForSelectionSet walks parentNode's selection set — descending into
// inline fragments and named fragment spreads that apply to runtimeType — and returns one
// ExecutionNode per distinct response key it encounters, depth-first in document order as the
// specification requires.
func buildChildExecutionNodesForSelectionSet(
	ctx *ExecutionContext,
	parentNode *ExecutionNode,
	runtimeType graphql.Object) ([]*ExecutionNode, error) {
	// Dedups named fragment spreads so the same fragment isn't walked twice within one selection set.
	visitedFragmentNames := map[string]bool{}

	// Tracks which response key each field node was collected under, so repeated selections of the
	// same key (e.g. the same field requested under two aliases-free occurrences) merge into one node.
	seenFields := map[string]*ExecutionNode{}

	childNodes := []*ExecutionNode{}

	// frame is one selection set awaiting a resumable walk: fragment spreads and inline fragments
	// push a new frame rather than recursing, so the whole selection set is walked with an explicit
	// stack instead of the Go call stack.
	type frame struct {
		selectionSet   ast.SelectionSet
		selectionIndex int
	}

	var stack []frame

	if parentNode.IsRoot() {
		stack = []frame{
			{ctx.Operation().Definition().SelectionSet, 0},
		}
	} else {
		definitions := parentNode.Definitions
		numDefinitions := len(definitions)
		stack = make([]frame, numDefinitions)
		// The stack is LIFO, so push later definitions first to pop them in document order.
		for i, definition := range definitions {
			stack[numDefinitions-i-1].selectionSet = definition.SelectionSet
		}
	}

	for len(stack) > 0 {
		var (
			top = &stack[len(stack)-1]

			selectionSet  = top.selectionSet
			numSelections = len(selectionSet)
			pushedFrame   = false
		)

		for top.selectionIndex < numSelections && !pushedFrame {
			selection := selectionSet[top.selectionIndex]
			top.selectionIndex++
			if top.selectionIndex >= numSelections {
				stack = stack[:len(stack)-1]
			}

			shouldInclude, err := shouldIncludeNode(ctx, selection)
			if err != nil {
				return nil, err
			} else if !shouldInclude {
				continue
			}

			switch selection := selection.(type) {
			case *ast.Field:
				node, err := fieldNodeFor(ctx, parentNode, runtimeType, seenFields, selection)
				if err != nil {
					return nil, err
				}
				if node != nil {
					childNodes = append(childNodes, node)
				}

			case *ast.InlineFragment:
				if selection.HasTypeCondition() && !doesTypeConditionSatisfy(ctx, selection.TypeCondition, runtimeType) {
					break
				}

				// Descend into the fragment's selection set before resuming the rest of this one, since
				// field order in the response must follow document order depth-first.
				stack = append(stack, frame{selectionSet: selection.SelectionSet})
				pushedFrame = true

			case *ast.FragmentSpread:
				fragmentName := selection.Name.Value()
				if visitedFragmentNames[fragmentName] {
					break
				}
				visitedFragmentNames[fragmentName] = true

				fragmentDef := ctx.Operation().FragmentDef(fragmentName)
				if fragmentDef == nil {
					break
				}
				if !doesTypeConditionSatisfy(ctx, fragmentDef.TypeCondition, runtimeType) {
					break
				}

				stack = append(stack, frame{selectionSet: fragmentDef.SelectionSet})
				pushedFrame = true
			}
		}
	}

	return childNodes, nil
}

// shouldIncludeNode evaluates @skip and @include on node against the operation's variables. A
// selection is kept only when @skip's condition is false and @include's condition is true — @skip
// wins outright when both directives are present and disagree.
//
// Reference: https://facebook.github.io/graphql/June2018/#sec--include
func shouldIncludeNode(ctx *ExecutionContext, node ast.Selection) (bool, error) {
	skip, err := values.DirectiveValues(
		graphql.SkipDirective(), node.GetDirectives(), ctx.VariableValues())
	if err != nil {
		return false, err
	}
	shouldSkip := skip.Get("if")
	if shouldSkip != nil && shouldSkip.(bool) {
		return false, nil
	}

	include, err := values.DirectiveValues(
		graphql.IncludeDirective(), node.GetDirectives(), ctx.VariableValues())
	if err != nil {
		return false, err
	}
	shouldInclude := include.Get("if")
	if shouldInclude != nil && !shouldInclude.(bool) {
		return false, nil
	}

	return true, nil
}

// findFieldDef looks up fieldName on parentType, special-casing the introspection fields __schema
// and __typename. __typename needs the special case because it's selectable on every type,
// including unions, where parentType.Fields() has nothing to offer; __schema only applies at the
// query root and is kept out of the schema's own field map to avoid mutating type definitions just
// to host it.
func findFieldDef(
	schema graphql.Schema,
	parentType graphql.Object,
	fieldName string) graphql.Field {
	if fieldName == typenameMetaFieldName {
		return typenameMetaField{}
	}
	if schema.Query() == parentType {
		// Deal with special introspection fields.
		if fieldName == schemaMetaFieldName {
			return schemaMetaField{}
		} else if fieldName == typeMetaFieldName {
			return typeMetaField{}
		}
	}
	return parentType.Fields()[fieldName]
}

// doesTypeConditionSatisfy reports whether t, the runtime type a fragment or inline fragment would
// apply to, matches typeCondition — either directly, or (when the condition names an interface or
// union) by being one of its possible concrete types.
func doesTypeConditionSatisfy(
	ctx *ExecutionContext,
	typeCondition ast.NamedType,
	t graphql.Object) bool {
	schema := ctx.Operation().Schema()

	conditionalType := schema.TypeFromAST(typeCondition)
	if conditionalType == t {
		return true
	}

	if abstractType, ok := conditionalType.(graphql.AbstractType); ok {
		return schema.PossibleTypes(abstractType).Contains(t)
	}

	return false
}

// collectAndDispatchRootTasks collects the operation's top-level selection set and dispatches one
// task per root field, returning the ResultNode the fields will populate as tasks complete.
func collectAndDispatchRootTasks(ctx *ExecutionContext, executor executor) (*ResultNode, error) {
	// The root node behaves like a field node with no parent and no selections of its own.
	rootNode := &ExecutionNode{}

	nodes, err := collectFields(ctx, rootNode, ctx.Operation().RootType())
	if err != nil {
		return nil, err
	}

	result := &ResultNode{}
	dispatchTasksForObject(ctx, executor, result, nodes, ctx.RootValue())
	return result, nil
}

// dispatchTasksForObject turns result into an object result populated by childNodes, dispatching
// one ExecuteNodeTask per field against value (the object's resolved source value).
func dispatchTasksForObject(
	ctx *ExecutionContext,
	executor executor,
	result *ResultNode,
	childNodes []*ExecutionNode,
	value interface{}) {

	numChildNodes := len(childNodes)

	// Allocate ResultNode's for each nodes.
	nodeResults := make([]ResultNode, numChildNodes)

	// Setup result value.
	result.Kind = ResultKindObject
	result.Value = &ObjectResultValue{
		ExecutionNodes: childNodes,
		FieldValues:    nodeResults,
	}

	// Create tasks to resolve object fields.
	for i := 0; i < numChildNodes; i++ {
		nodeResult := &nodeResults[i]
		nodeResult.Parent = result
		childNode := childNodes[i]

		// Set the flag so field can reject nil value on error.
		if graphql.IsNonNullType(childNode.Field.Type()) {
			nodeResult.SetToRejectNull()
		}

		// Create a task and dispatch it with given dispatcher.
		task := newExecuteNodeTask(executor, ctx, childNode, nodeResult, value)
		executor.Dispatch(task)
	}
}

//===----------------------------------------------------------------------------------------====//
// ExecuteNodeTask
//===----------------------------------------------------------------------------------------====//

var executeNodeTaskFreeList = sync.Pool{
	New: func() interface{} {
		return &ExecuteNodeTask{}
	},
}

func newExecuteNodeTask(
	executor executor,
	ctx *ExecutionContext,
	node *ExecutionNode,
	result *ResultNode,
	source interface{},
) *ExecuteNodeTask {

	task := executeNodeTaskFreeList.Get().(*ExecuteNodeTask)
	task.executor = executor
	task.ctx = ctx
	task.node = node
	task.result = result
	task.source = source
	task.refCount = 1

	return task
}

// ExecuteNodeTask resolves one field (identified by an ExecutionNode) and, once the field's value
// comes back, drives completion of that value into task.result.
//
// Tasks are allocated in bulk and recycled through executeNodeTaskFreeList rather than garbage
// collected individually, since a single request can schedule thousands of them. refCount tracks
// how many live references point at a task (its scheduler slot, plus any AsyncValueTask waiting on
// a pending future) — once it drops to zero nothing can still be holding the task, so it's safe to
// hand back to the pool.
type ExecuteNodeTask struct {
	executor executor
	ctx      *ExecutionContext
	node     *ExecutionNode

	// result is where the field's completed value gets written, allocated by whichever caller set
	// up the task (dispatchTasksForObject, for direct field tasks).
	result *ResultNode

	// source is the field's parent value, i.e. what gets passed to the resolver as "source" in
	// specification terms.
	source interface{}

	refCount int64
}

func (task *ExecuteNodeTask) retain() *ExecuteNodeTask {
	atomic.AddInt64(&task.refCount, 1)
	return task
}

// release drops one reference; once the count reaches zero the task is returned to the free list
// and must not be touched again.
func (task *ExecuteNodeTask) release() {
	if atomic.AddInt64(&task.refCount, -1) == 0 {
		executeNodeTaskFreeList.Put(task)
	}
}

// run implements Task by resolving the task's field and completing its value. Nothing is returned:
// the value lands in task.result, and any error is routed to task.executor.AppendError.
func (task *ExecuteNodeTask) run() {
	var (
		ctx    = task.ctx
		node   = task.node
		result = task.result
		field  = node.Field
	)

	resolver := field.Resolver()
	if resolver == nil {
		resolver = ctx.Operation().DefaultFieldResolver()
	}

	value, err := resolver.Resolve(ctx.Context(), task.source, task.newResolveInfoFor(result))
	if err != nil {
		task.handleNodeError(err, result)
		task.release()
		return
	}

	task.completeValue(field.Type(), task.result, value)
	task.release()
}

// handleNodeError records err against result as a field failure: it's normalized into a
// graphql.Error carrying this field's source locations and response path, the result is nil'd out,
// and the error is appended to the executor's accumulated error list.
func (task *ExecuteNodeTask) handleNodeError(err error, result *ResultNode) {
	node := task.node

	locations := make([]graphql.ErrorLocation, len(node.Definitions))
	for i := range node.Definitions {
		locations[i] = graphql.ErrorLocationOfASTNode(node.Definitions[i])
	}
	path := result.Path()

	e, ok := err.(*graphql.Error)
	if !ok {
		e = graphql.NewError(err.Error(), locations, path).(*graphql.Error)
	} else {
		e.Locations = locations
		e.Path = path
	}

	result.Kind = ResultKindNil
	result.Value = nil

	task.executor.AppendError(e, result)
}

// completeValue implements "Value Completion" [0]. It ensures the value resolved from the field
// resolver adheres to the expected return type.
//
// [0]: https://facebook.github.io/graphql/June2018/#sec-Value-Completion
func (task *ExecuteNodeTask) completeValue(
	returnType graphql.Type,
	result *ResultNode,
	value interface{}) {

	if wrappingType, isWrappingType := returnType.(graphql.WrappingType); isWrappingType {
		task.completeWrappingValue(wrappingType, result, value)
	} else {
		task.completeNonWrappingValue(returnType, result, value)
	}
}

func (task *ExecuteNodeTask) completeValuePrologue(
	returnType graphql.Type,
	result *ResultNode,
	value interface{}) (completed bool) {

	// A resolver signals failure by returning a *graphql.Error value instead of a Go error; see
	// https://github.com/graphql/graphql-js/commit/f62c0a25 for why graphql-js adopted the same
	// convention.
	if err, ok := value.(*graphql.Error); ok && err != nil {
		task.handleNodeError(err, result)
		return true
	}

	// A resolver can also return a Future when its value comes from an asynchronous computation
	// that hasn't finished yet; hand it off to be polled rather than completing it inline.
	if value, ok := value.(future.Future); ok {
		task.executor.Dispatch(&AsyncValueTask{
			// The AsyncValueTask now holds a reference to task too, so retain it.
			nodeTask:        task.retain(),
			dataLoaderCycle: task.executor.DataLoaderCycle(),
			returnType:      returnType,
			result:          result,
			value:           value,
		})
		return true
	}

	return false
}

// pendingValue is one unit of work queued by completeWrappingValue: a value still wrapped in List
// or NonNull that needs completing against a specific ResultNode.
type pendingValue struct {
	returnType graphql.WrappingType
	result     *ResultNode
	value      interface{}
}

// completeWrappingValue completes a value whose static type is List or NonNull (nested arbitrarily
// deep -- a [[Foo!]!]! return type unwraps across several queue entries before reaching a leaf,
// object, or abstract value). It runs as a worklist rather than recursing, since a list field can
// fan out into more list entries than the call stack should carry.
func (task *ExecuteNodeTask) completeWrappingValue(
	returnType graphql.WrappingType,
	result *ResultNode,
	value interface{}) {

	if task.completeValuePrologue(returnType, result, value) {
		return
	}

	queue := []pendingValue{{returnType: returnType, result: result, value: value}}

	for len(queue) > 0 {
		var pending *pendingValue
		pending, queue = &queue[0], queue[1:]

		var (
			returnType graphql.Type = pending.returnType
			result                  = pending.result
			value                   = pending.value
		)

		// A sibling field earlier in the same object already nil'd out the parent; there's no
		// point completing this value into a result nobody will read.
		if result.Parent.IsNil() {
			continue
		}

		nonNullType, isNonNullType := returnType.(graphql.NonNull)
		if isNonNullType {
			returnType = nonNullType.InnerType()
		}

		if values.IsNullish(value) {
			if isNonNullType {
				node := task.node
				task.handleNodeError(
					graphql.NewError(fmt.Sprintf("Cannot return null for non-nullable field %v.%s.",
						parentFieldType(task.ctx, node).Name(), node.Field.Name())),
					result)
			} else {
				result.Kind = ResultKindNil
				result.Value = nil
			}
			continue
		}

		listType, isListType := returnType.(graphql.List)
		if !isListType {
			task.completeNonWrappingValue(returnType, result, value)
			continue
		}

		elementType := listType.ElementType()
		elementWrappingType, isWrappingElementType := elementType.(graphql.WrappingType)

		// A list's elements come from one of two sources: a custom iterator (graphql.Iterable) when
		// the resolver returned one, or reflection over a Go slice/array otherwise. Both are
		// supported directly rather than adapting the slice/array case into an Iterable, to avoid
		// the extra indirection on the much more common case.
		iterable, v, resultNodes, numElements, ok := task.beginListResult(result, value)
		if !ok {
			continue
		}

		result.Kind = ResultKindList
		result.Value = resultNodes

		if iterable != nil {
			queue = task.drainIterableElements(
				iterable, elementType, elementWrappingType, isWrappingElementType, isNonNullType,
				result, resultNodes, queue)
		} else {
			queue = task.drainIndexedElements(
				v, numElements, elementType, elementWrappingType, isWrappingElementType, isNonNullType,
				result, resultNodes, queue)
		}
	}
}

// beginListResult figures out how to enumerate value as a list: through its Iterable interface
// when it implements one, or by reflecting over it as a slice or array otherwise. ok is false only
// when value is neither, in which case an error has already been recorded against result.
func (task *ExecuteNodeTask) beginListResult(
	result *ResultNode,
	value interface{},
) (iterable graphql.Iterable, v reflect.Value, resultNodes ResultNodeList, numElements int, ok bool) {
	if iter, isIterable := value.(graphql.Iterable); isIterable {
		if sized, isSized := iter.(graphql.SizedIterable); isSized {
			// A size hint lets the result list avoid growing incrementally.
			resultNodes = NewFixedSizeResultNodeList(sized.Size())
		} else {
			resultNodes = NewResultNodeList()
		}
		return iter, v, resultNodes, 0, true
	}

	v = reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Array && v.Kind() != reflect.Slice {
		node := task.node
		task.handleNodeError(
			graphql.NewError(
				fmt.Sprintf("Expected Iterable, but did not find one for field %s.%s.",
					parentFieldType(task.ctx, node).Name(), node.Field.Name())),
			result)
		return nil, v, nil, 0, false
	}

	numElements = v.Len()
	return nil, v, NewFixedSizeResultNodeList(numElements), numElements, true
}

// drainIterableElements completes every element a list's custom Iterable yields, appending to
// queue instead of recursing whenever an element's own type still wraps.
func (task *ExecuteNodeTask) drainIterableElements(
	iterable graphql.Iterable,
	elementType graphql.Type,
	elementWrappingType graphql.WrappingType,
	isWrappingElementType bool,
	isNonNullType bool,
	result *ResultNode,
	resultNodes ResultNodeList,
	queue []pendingValue,
) []pendingValue {
	iter := iterable.Iterator()
	for {
		value, err := iter.Next()
		if err == iterator.Done {
			return queue
		}
		if err != nil {
			node := task.node
			task.handleNodeError(
				graphql.NewError(
					fmt.Sprintf("Error occurred while enumerates values in the list field %s.%s.",
						parentFieldType(task.ctx, node).Name(), node.Field.Name()), err),
				result)
			return queue
		}

		resultNode := resultNodes.EmplaceBack(result, !isNonNullType)
		if isWrappingElementType {
			queue = append(queue, pendingValue{returnType: elementWrappingType, result: resultNode, value: value})
		} else if !task.completeNonWrappingValue(elementType, resultNode, value) && result.IsNil() {
			return queue
		}
	}
}

// drainIndexedElements completes every element of a reflect.Value-backed slice or array, the
// fallback used when a list's resolved value isn't a graphql.Iterable.
func (task *ExecuteNodeTask) drainIndexedElements(
	v reflect.Value,
	numElements int,
	elementType graphql.Type,
	elementWrappingType graphql.WrappingType,
	isWrappingElementType bool,
	isNonNullType bool,
	result *ResultNode,
	resultNodes ResultNodeList,
	queue []pendingValue,
) []pendingValue {
	for i := 0; i < numElements; i++ {
		resultNode := resultNodes.EmplaceBack(result, !isNonNullType)
		value := v.Index(i).Interface()
		if isWrappingElementType {
			queue = append(queue, pendingValue{returnType: elementWrappingType, result: resultNode, value: value})
		} else if !task.completeNonWrappingValue(elementType, resultNode, value) && result.IsNil() {
			break
		}
	}
	return queue
}

func (task *ExecuteNodeTask) completeNonWrappingValue(
	returnType graphql.Type,
	result *ResultNode,
	value interface{}) (ok bool) {

	if task.completeValuePrologue(returnType, result, value) {
		return true
	}

	// A null here is legitimate; non-null violations were already caught one level up in
	// completeWrappingValue, before the type was unwrapped to this non-wrapping type.
	if values.IsNullish(value) {
		result.Value = nil
		result.Kind = ResultKindNil
		return true
	}

	switch returnType := returnType.(type) {
	case graphql.LeafType: // Scalar or Enum
		return task.completeLeafValue(returnType, result, value)

	case graphql.Object:
		return task.completeObjectValue(returnType, result, value)

	case graphql.AbstractType: // Interface or Union
		return task.completeAbstractValue(returnType, result, value)
	}

	task.handleNodeError(
		graphql.NewError(fmt.Sprintf(`Cannot complete value of unexpected type "%v".`, returnType)),
		result)

	return false
}

// completeLeafValue coerces value through returnType's own result coercer, which is where a Go
// time.Time becomes an RFC 3339 string, an enum's backing value becomes its name, and so on.
func (task *ExecuteNodeTask) completeLeafValue(
	returnType graphql.LeafType,
	result *ResultNode,
	value interface{}) (ok bool) {

	coercedValue, err := returnType.CoerceResultValue(value)
	if err != nil {
		if e, ok := err.(*graphql.Error); !ok || e.Kind != graphql.ErrKindCoercion {
			err = graphql.NewDefaultResultCoercionError(returnType.Name(), value, err)
		}
		task.handleNodeError(err, result)
		return false
	}

	result.Kind = ResultKindLeaf
	result.Value = coercedValue
	return true
}

// completeObjectValue collects returnType's selection set against task.node (memoized per runtime
// type by collectFields) and dispatches one task per subfield, with value as their source.
func (task *ExecuteNodeTask) completeObjectValue(
	returnType graphql.Object,
	result *ResultNode,
	value interface{}) (ok bool) {

	childNodes, err := collectFields(task.ctx, task.node, returnType)
	if err != nil {
		task.handleNodeError(err, result)
		return false
	}

	dispatchTasksForObject(task.ctx, task.executor, result, childNodes, value)
	return true
}

// completeAbstractValue resolves value's concrete Object type through returnType's TypeResolver,
// confirms the schema actually allows that type where an interface or union was declared, and then
// completes it the same way a concrete object field would be.
func (task *ExecuteNodeTask) completeAbstractValue(
	returnType graphql.AbstractType,
	result *ResultNode,
	value interface{}) (ok bool) {

	var (
		ctx  = task.ctx
		node = task.node
	)

	resolver := returnType.TypeResolver()
	if resolver == nil {
		task.handleNodeError(
			graphql.NewError(
				fmt.Sprintf("Abstract type %s must provide resolver to resolve to an Object type at "+
					"runtime for field %s.%s with value %s",
					returnType, parentFieldType(ctx, node).Name(), node.Field.Name(),
					graphql.Inspect(value))), result)
		return false
	}

	runtimeType, err := resolver.Resolve(ctx.Context(), value, task.newResolveInfoFor(result))
	if err != nil {
		task.handleNodeError(err, result)
		return false
	}

	if runtimeType == nil {
		task.handleNodeError(
			graphql.NewError(
				fmt.Sprintf("Abstract type %s must resolve to an Object type at runtime for field %s.%s "+
					"with value %s, received nil.",
					returnType, parentFieldType(ctx, node).Name(), node.Field.Name(),
					graphql.Inspect(value))), result)
		return false
	}

	possibleTypes := task.ctx.Operation().Schema().PossibleTypes(returnType)
	if !possibleTypes.Contains(runtimeType) {
		task.handleNodeError(
			graphql.NewError(
				fmt.Sprintf(`Runtime Object type "%s" is not a possible type for "%s".`,
					runtimeType, returnType)), result)
		return false
	}

	return task.completeObjectValue(runtimeType, result, value)
}

// newResolveInfoFor builds the graphql.ResolveInfo a resolver sees for result. When result is the
// task's own result node — true for the field's own resolver, false for a resolver invoked partway
// through value completion against a nested result (e.g. completeAbstractValue's TypeResolver) —
// the task itself doubles as the ResolveInfo rather than allocating a separate one.
func (task *ExecuteNodeTask) newResolveInfoFor(result *ResultNode) graphql.ResolveInfo {
	if result == task.result {
		return task
	}

	return &ResolveInfo{
		ExecutionContext: task.ctx,
		ExecutionNode:    task.node,
		ResultNode:       result,
	}
}

// ExecuteNodeTask implements graphql.ResolveInfo directly below, rather than always allocating a
// separate ResolveInfo value, since every field resolution needs one and tasks are already pooled.

// Schema implements graphql.ResolveInfo.
func (task *ExecuteNodeTask) Schema() graphql.Schema {
	return task.ctx.Operation().Schema()
}

// Document implements graphql.ResolveInfo.
func (task *ExecuteNodeTask) Document() ast.Document {
	return task.ctx.Operation().Document()
}

// Operation implements graphql.ResolveInfo.
func (task *ExecuteNodeTask) Operation() *ast.OperationDefinition {
	return task.ctx.Operation().Definition()
}

// DataLoaderManager implements graphql.ResolveInfo.
func (task *ExecuteNodeTask) DataLoaderManager() graphql.DataLoaderManager {
	return task.ctx.DataLoaderManager()
}

// RootValue implements graphql.ResolveInfo.
func (task *ExecuteNodeTask) RootValue() interface{} {
	return task.ctx.RootValue()
}

// AppContext implements graphql.ResolveInfo.
func (task *ExecuteNodeTask) AppContext() interface{} {
	return task.ctx.AppContext()
}

// VariableValues implements graphql.ResolveInfo.
func (task *ExecuteNodeTask) VariableValues() graphql.VariableValues {
	return task.ctx.VariableValues()
}

// ParentFieldSelection implements graphql.ResolveInfo.
func (task *ExecuteNodeTask) ParentFieldSelection() graphql.FieldSelectionInfo {
	return fieldSelectionInfo{task.node.Parent}
}

// Object implements graphql.ResolveInfo.
func (task *ExecuteNodeTask) Object() graphql.Object {
	return parentFieldType(task.ctx, task.node)
}

// FieldDefinitions implements graphql.ResolveInfo.
func (task *ExecuteNodeTask) FieldDefinitions() []*ast.Field {
	return task.node.Definitions
}

// Field implements graphql.ResolveInfo.
func (task *ExecuteNodeTask) Field() graphql.Field {
	return task.node.Field
}

// Path implements graphql.ResolveInfo.
func (task *ExecuteNodeTask) Path() graphql.ResponsePath {
	return task.result.Path()
}

// Args implements graphql.ResolveInfo.
func (task *ExecuteNodeTask) Args() graphql.ArgumentValues {
	return task.node.Args
}

//===----------------------------------------------------------------------------------------====//
// AsyncValueTask
//===----------------------------------------------------------------------------------------====//

// AsyncValueTask polls a pending future.Future until it resolves, then feeds the resulting value
// back into value completion as if a resolver had returned it synchronously.
type AsyncValueTask struct {
	nodeTask *ExecuteNodeTask

	// dataLoaderCycle is the data-loader dispatch cycle this task was waiting on when it last
	// yielded; see DataLoaderCycle in executor.go.
	dataLoaderCycle DataLoaderCycle

	value future.Future

	// returnType and result are completeValue's parameters, stashed here since completion can't
	// run until the future resolves.
	returnType graphql.Type
	result     *ResultNode
}

var _ Task = (*AsyncValueTask)(nil)

func (task *AsyncValueTask) run() {
	value, err := task.value.Poll(future.WakerFunc(task.wake))
	switch {
	case err != nil:
		task.nodeTask.handleNodeError(err, task.result)
	case value != future.PollResultPending:
		task.nodeTask.completeValue(task.returnType, task.result, value)
		task.nodeTask.release()
	default:
		// Still pending; park this task and let whoever resolves the future wake it via task.wake.
		task.nodeTask.executor.Yield(task)
		tryDispatchDataLoaders(task.nodeTask.ctx, task.nodeTask.executor, task.dataLoaderCycle)
	}
}

// wake resumes the task on its executor so it polls task.value again.
func (task *AsyncValueTask) wake() error {
	task.nodeTask.executor.Resume(task)
	return nil
}

// tryDispatchDataLoaders dispatches any data loaders pending since taskCycle, if nobody else has
// already claimed that cycle's dispatch.
func tryDispatchDataLoaders(
	ctx *ExecutionContext,
	executor executor,
	taskCycle DataLoaderCycle) (newCycle DataLoaderCycle) {

	dataLoaderManager := ctx.DataLoaderManager()
	if dataLoaderManager == nil || !dataLoaderManager.HasPendingDataLoaders() {
		return
	}

	for {
		curCycle := executor.DataLoaderCycle()

		if taskCycle != curCycle {
			// Another task already advanced the cycle and dispatched for it.
			return curCycle
		}

		// Race to claim this cycle's dispatch via a compare-and-swap; lose and reload curCycle.
		if executor.IncDataLoaderCycle(taskCycle + 1) {
			dispatchDataLoaders(ctx.Context(), dataLoaderManager)
			return taskCycle + 1
		}
	}
}

// dispatchDataLoaders drains every data loader queued for this cycle, looping because dispatching
// one loader's batch can itself queue more loaders before this cycle is considered settled.
func dispatchDataLoaders(ctx context.Context, manager graphql.DataLoaderManager) {
	for {
		pendingLoaders := manager.GetAndResetPendingDataLoaders()
		if len(pendingLoaders) == 0 {
			break
		}

		for loader := range pendingLoaders {
			loader.Dispatch(ctx)
		}
	}
}
