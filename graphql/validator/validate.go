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

package validator

import (
	"github.com/traverseql/traverseql/graphql"
	"github.com/traverseql/traverseql/graphql/ast"
)

// Validate checks document against schema using the full standard rule set — every rule a
// spec-compliant server is expected to enforce before ever attempting execution. It returns
// graphql.NoErrors when the document is valid, or the accumulated graphql.Errors otherwise;
// validation always runs to completion and collects every violation rather than stopping at the
// first one.
func Validate(schema graphql.Schema, document ast.Document) graphql.Errors {
	return runRules(schema, document, StandardRules())
}

// ValidateWithRules validates document against a caller-chosen subset of rules instead of the
// standard set — useful for a host that wants to skip an expensive rule it knows can't fire for
// its workload, or that wants to run a single rule in isolation during testing. Passing zero rules
// disables validation entirely and always reports success.
//
// Each element of rs must implement at least one of the per-node-kind rule interfaces:
//
//	OperationRule        VariableRule          FragmentRule
//	SelectionSetRule      FieldRule             FieldArgumentRule
//	InlineFragmentRule     FragmentSpreadRule    ValueRule
//	VariableUsageRule      DirectivesRule        DirectiveRule
//	DirectiveArgumentRule
func ValidateWithRules(schema graphql.Schema, document ast.Document, rs ...interface{}) graphql.Errors {
	if len(rs) == 0 {
		return graphql.NoErrors()
	}
	return runRules(schema, document, buildRules(rs...))
}

// runRules walks document once against the given rule set and returns everything it collected.
func runRules(schema graphql.Schema, document ast.Document, rules *rules) graphql.Errors {
	ctx := newValidationContext(schema, document, rules)
	walk(ctx)
	return ctx.errs
}
