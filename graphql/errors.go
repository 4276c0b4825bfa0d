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

	"github.com/traverseql/traverseql/graphql/token"
)

//===----------------------------------------------------------------------------------------====//
// Syntax Error
//===----------------------------------------------------------------------------------------====//

// syntaxError pins a lexer/parser failure to the exact line and column in the offending source
// document, so NewSyntaxError's caller doesn't have to thread that bookkeeping through itself.
type syntaxError struct {
	source      *Source
	location    token.SourceLocation
	description string
}

var (
	_ error              = (*syntaxError)(nil)
	_ ErrorWithLocations = (*syntaxError)(nil)
)

func (e *syntaxError) Error() string {
	return fmt.Sprintf("Syntax Error: %s", e.description)
}

// Locations implements ErrorWithLocations by resolving the byte offset recorded at construction
// time into a line/column pair, deferring that lookup until the error is actually inspected.
func (e *syntaxError) Locations() []ErrorLocation {
	locInfo := e.source.LocationInfoOf(e.location)
	return []ErrorLocation{{Line: locInfo.Line, Column: locInfo.Column}}
}

// NewSyntaxError reports a malformed document at a specific source position — unterminated
// string, unexpected token, and the like, anything the lexer or parser catches before a document
// can even be built.
func NewSyntaxError(source *Source, location token.SourceLocation, description string) error {
	e := &syntaxError{source: source, location: location, description: description}
	return NewError(e.Error(), e)
}

//===----------------------------------------------------------------------------------------====//
// Coercion Error
//===----------------------------------------------------------------------------------------====//

// NewCoercionError reports a value that could not be converted to or from a scalar or enum's Go
// representation — an out-of-range int literal, a string that isn't valid RFC 3339, an enum
// literal naming no value of the enum, and so on. format/a follow fmt.Sprintf conventions.
func NewCoercionError(format string, a ...interface{}) error {
	return NewError(fmt.Sprintf(format, a...), ErrKindCoercion)
}
