// Package validator provides a small composable rule engine over values of
// any type, and the bucket-name rules built on it.
package validator

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Rule is a named predicate over T.
type Rule[T any] interface {
	Name() string
	Validate(value T) bool
}

type funcRule[T any] struct {
	name string
	fn   func(T) bool
}

func (r funcRule[T]) Name() string { return r.name }
func (r funcRule[T]) Validate(value T) bool { return r.fn(value) }

// NewRule wraps fn as a Rule called name.
func NewRule[T any](name string, fn func(T) bool) Rule[T] {
	return funcRule[T]{name: name, fn: fn}
}

// Group is a Rule satisfied only when every member rule is.
type Group[T any] struct {
	name  string
	rules []Rule[T]
}

func NewGroup[T any](name string, rules ...Rule[T]) *Group[T] {
	return &Group[T]{name: name, rules: slices.Clone(rules)}
}

func (g *Group[T]) Name() string { return g.name }

func (g *Group[T]) Validate(value T) bool {
	for _, r := range g.rules {
		if !r.Validate(value) {
			return false
		}
	}
	return true
}

// RuleError reports the rule a value failed.
type RuleError struct {
	Rule string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s failed", e.Rule)
}

// Validator holds an ordered set of rules. It is immutable once built and
// safe for concurrent use.
type Validator[T any] struct {
	rules []Rule[T]
}

func New[T any](rules ...Rule[T]) *Validator[T] {
	return &Validator[T]{rules: slices.Clone(rules)}
}

// With returns a copy of v extended with rules.
func (v *Validator[T]) With(rules ...Rule[T]) *Validator[T] {
	return &Validator[T]{rules: append(slices.Clone(v.rules), rules...)}
}

// Rules returns the rules in evaluation order.
func (v *Validator[T]) Rules() []Rule[T] {
	return slices.Clone(v.rules)
}

// Validate reports whether value satisfies every rule. All rules are
// evaluated even after one fails.
func (v *Validator[T]) Validate(value T) bool {
	return len(v.Violations(value)) == 0
}

// Violations returns the names of the rules value fails, in rule order.
func (v *Validator[T]) Violations(value T) []string {
	var failed []string
	for _, r := range v.rules {
		if !r.Validate(value) {
			failed = append(failed, r.Name())
		}
	}
	return failed
}

// ValidateAsync evaluates every rule concurrently and returns a *RuleError
// for the first failing rule in declaration order, or nil.
func (v *Validator[T]) ValidateAsync(ctx context.Context, value T) error {
	results := make([]bool, len(v.rules))
	g, ctx := errgroup.WithContext(ctx)
	for i, r := range v.rules {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = r.Validate(value)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, ok := range results {
		if !ok {
			return &RuleError{Rule: v.rules[i].Name()}
		}
	}
	return nil
}
