// Package lang resolves expressions embedded in text and object graphs
// against a hierarchical variable context.
//
// # Expressions
//
// A bare expression such as user.name + "!" is evaluated directly by
// expr-lang. A delimited expression such as ${user.name} is recognized
// inside larger text:
//
//	hello ${name}              → hello world
//	${1 + 1}                   → 2
//	${regex.extract("a.*", s)} → abc
//
// # Resolution
//
// Identifiers and dotted member chains are looked up in a [Context]. The
// longest dotted prefix naming a key wins, so "db.host" may be a key of its
// own or the host member of the value stored under "db".
//
// A Context holds two layers. Assignments made during evaluation go to the
// updates layer, which shadows the original values. Names are rewritten by
// an optional alias mapping and then qualified by each configured prefix in
// order:
//
//	prefixes: [user, ""]
//	id        → user.id, then id
//
// A qualified key missing from the original layer is itself evaluated as an
// expression against a guarded view of the Context, so computed members of
// functors and maps resolve too. The guarded view performs direct lookups
// only, which bounds the indirection.
//
// # Evaluation
//
// [Evaluator.EvaluateRecursive] keeps evaluating while a result contains
// further delimited expressions, up to [Limits.MaxDepth], and degrades to
// the literal input text when the interpreter rejects an expression.
//
// [Interpolator.Substitute] expands every delimited expression in a
// template until it reaches a fixed point. Expansion that outgrows its
// input or never settles fails with [ErrRuntimeExpansion].
//
// [Walker] applies both to the strings and [Deferred] values of an
// arbitrary object graph, visiting each reference at most once.
//
// An [Engine] ties the pieces together with a shared configuration from
// which per-call contexts are created.
package lang
