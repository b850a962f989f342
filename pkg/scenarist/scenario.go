package scenarist

import "context"

// Unit is the value of scenarios run for their effects alone.
type Unit = struct{}

// Scenario describes a multi-step conversational interaction as an immutable
// value. Driven by an update stream, a scenario either produces a value,
// falls through silently (an expected update never arrived or did not match),
// or fails with an error recoverable via HandleErrorWith.
//
// Scenario values are freely shareable; all execution state lives in the
// interpreter, so concurrent executions on disjoint update streams do not
// interfere.
type Scenario[T any] struct {
	n *node
}

// opKind discriminates scenario nodes.
type opKind uint8

const (
	opStart opKind = iota
	opNext
	opEval
	opPure
	opDone
	opRaise
	opBind
	opHandle
)

// node is the type-erased scenario tree. The generic constructors wrap and
// unwrap values at the boundary; inside the interpreter everything is `any`.
type node struct {
	op     opKind
	expect func(Update) (any, bool)
	effect func(context.Context) (any, error)
	value  any
	err    error
	inner  *node
	bind   func(any) *node
	rescue func(error) *node
}

// Start awaits the first update matching e, dropping everything before it.
// If the stream ends first, the scenario falls through.
func Start[T any](e Expect[T]) Scenario[T] {
	return Scenario[T]{n: &node{op: opStart, expect: erase(e)}}
}

// Next consumes exactly the next update, whatever its kind. If it matches e
// the scenario continues with the match; otherwise it falls through.
func Next[T any](e Expect[T]) Scenario[T] {
	return Scenario[T]{n: &node{op: opNext, expect: erase(e)}}
}

// Eval runs a side effect, typically an RPC call against the bot API. An
// effect error raises inside the scenario.
func Eval[T any](effect func(ctx context.Context) (T, error)) Scenario[T] {
	return Scenario[T]{n: &node{op: opEval, effect: func(ctx context.Context) (any, error) {
		return effect(ctx)
	}}}
}

// Exec runs a side effect whose result is irrelevant.
func Exec(effect func(ctx context.Context) error) Scenario[Unit] {
	return Eval(func(ctx context.Context) (Unit, error) {
		return Unit{}, effect(ctx)
	})
}

// Pure yields v without consuming updates or performing effects.
func Pure[T any](v T) Scenario[T] {
	return Scenario[T]{n: &node{op: opPure, value: v}}
}

// Done terminates the scenario silently, bypassing error handlers.
func Done[T any]() Scenario[T] {
	return Scenario[T]{n: &node{op: opDone}}
}

// Raise fails the scenario with err.
func Raise[T any](err error) Scenario[T] {
	return Scenario[T]{n: &node{op: opRaise, err: err}}
}

// Bind sequences s with the continuation k.
func Bind[A, B any](s Scenario[A], k func(A) Scenario[B]) Scenario[B] {
	return Scenario[B]{n: &node{op: opBind, inner: s.n, bind: func(v any) *node {
		return k(v.(A)).n
	}}}
}

// Then sequences s with next, discarding the value of s.
func Then[A, B any](s Scenario[A], next Scenario[B]) Scenario[B] {
	return Bind(s, func(A) Scenario[B] { return next })
}

// HandleErrorWith recovers a raised error by switching to the scenario built
// by rescue. Fall-through is not an error and is not recovered.
func HandleErrorWith[T any](s Scenario[T], rescue func(error) Scenario[T]) Scenario[T] {
	return Scenario[T]{n: &node{op: opHandle, inner: s.n, rescue: func(err error) *node {
		return rescue(err).n
	}}}
}

// Result is the outcome of Attempt: exactly one of Value or Err is
// meaningful, discriminated by Err.
type Result[T any] struct {
	Value T
	Err   error
}

// Attempt converts a raising scenario into one yielding a Result.
func Attempt[T any](s Scenario[T]) Scenario[Result[T]] {
	lifted := Bind(s, func(v T) Scenario[Result[T]] {
		return Pure(Result[T]{Value: v})
	})

	return HandleErrorWith(lifted, func(err error) Scenario[Result[T]] {
		return Pure(Result[T]{Err: err})
	})
}

// erase drops the Expect type parameter for the interpreter.
func erase[T any](e Expect[T]) func(Update) (any, bool) {
	return func(u Update) (any, bool) {
		value, ok := e(u)
		if !ok {
			return nil, false
		}

		return value, true
	}
}
