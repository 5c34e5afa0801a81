// Package filter narrows JSON response bodies with jq expressions.
package filter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

// ErrEmptyExpression is returned for a blank filter.
var ErrEmptyExpression = errors.New("empty jq expression")

// Query is a compiled jq expression.
type Query struct {
	expr string
	code *gojq.Code
}

// Compile parses and compiles expr.
func Compile(expr string) (*Query, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, ErrEmptyExpression
	}
	parsed, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("jq parse error: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("jq compile error: %w", err)
	}
	return &Query{expr: expr, code: code}, nil
}

// String returns the source expression.
func (q *Query) String() string {
	return q.expr
}

// Run evaluates the query against body. A single result is returned as is,
// several are collected into an array and none yields nil.
func (q *Query) Run(ctx context.Context, body any) (any, error) {
	iter := q.code.RunWithContext(ctx, body)
	var results []any
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("jq filter error: %w", err)
		}
		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// Apply compiles expr and runs it against body.
func Apply(body any, expr string) (any, error) {
	q, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	return q.Run(context.Background(), body)
}
