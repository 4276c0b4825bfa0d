package graphql

import (
	"time"

	"github.com/traverseql/traverseql/graphql/ast"
)

// dateTimeCoerceResult serializes a time.Time (or an RFC 3339 string) into its RFC 3339 wire
// representation. See "Result Coercion" in [0].
//
// [0]: https://facebook.github.io/graphql/June2018/#sec-Scalars
func dateTimeCoerceResult(value interface{}) (interface{}, error) {
	switch value := value.(type) {
	case time.Time:
		return value.UTC().Format(time.RFC3339), nil
	case string:
		// Accept an already-formatted string as-is after validating it round-trips.
		if _, err := time.Parse(time.RFC3339, value); err != nil {
			return nil, NewCoercionError("DateTime cannot represent an invalid time string: %v", value)
		}
		return value, nil
	default:
		return nil, NewCoercionError("DateTime cannot represent non-time value: %v", value)
	}
}

// dateTimeCoerceVariableValue coerces a raw JSON-like variable value (always a string once it
// arrived through JSON) into a time.Time. See "Input Coercion" in [0].
//
// [0]: https://facebook.github.io/graphql/June2018/#sec-Scalars
func dateTimeCoerceVariableValue(value interface{}) (interface{}, error) {
	s, ok := value.(string)
	if !ok {
		return nil, NewCoercionError("DateTime cannot represent non-string value: %v", value)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, NewCoercionError("DateTime cannot represent an invalid time string: %v", s)
	}
	return t, nil
}

// dateTimeCoerceArgumentValue coerces a literal AST value given to an argument or directive into a
// time.Time.
func dateTimeCoerceArgumentValue(value ast.Value) (interface{}, error) {
	strValue, ok := value.(ast.StringValue)
	if !ok {
		return nil, NewCoercionError("DateTime cannot represent non-string literal value: %v", value)
	}
	return dateTimeCoerceVariableValue(strValue.Value())
}

// dateTimeScalarConfig is reused by both DateTime() and the tests that exercise it directly.
var dateTimeScalarConfig = &ScalarConfig{
	Name: "DateTime",
	Description: "The `DateTime` scalar type represents a point in time as an RFC 3339 encoded " +
		"string, e.g. \"2019-01-02T15:04:05Z\".",
	ResultCoercer: CoerceScalarResultFunc(dateTimeCoerceResult),
	InputCoercer: ScalarInputCoercerFuncs{
		CoerceVariableValueFunc: dateTimeCoerceVariableValue,
		CoerceArgumentValueFunc: dateTimeCoerceArgumentValue,
	},
}

// dateTimeTypeInstance is a singleton that backs DateTime(). It is lazily constructed once and
// reused for every schema, mirroring how the built-in scalars (Int(), Float(), ...) are singletons.
var dateTimeTypeInstance = MustNewScalar(dateTimeScalarConfig)

// DateTime returns the built-in DateTime custom scalar type. Unlike Int, Float, String, Boolean and
// ID, DateTime is not part of the GraphQL specification — it is provided here as a worked example of
// defining a custom scalar through ScalarConfig's CoerceInput/CoerceResult extension points.
func DateTime() Scalar {
	return dateTimeTypeInstance
}
