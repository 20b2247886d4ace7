// Copyright 2026 skylon07.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://github.com/skylon07/scopely/blob/main/LICENSE.md
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scopely

import (
	"github.com/samber/lo"
)

// The typed MergeStreamsN variants are pure sugar over the dynamic
// MergeStreams: each source is adapted to Observable[any], the dynamic
// combiner does the work, and the ordered slice is destructured into a typed
// lo.TupleN. They add no semantics; the arity follows lo's tuple family.

// asAnyObservable adapts a typed sequence to Observable[any] through an
// identity transformer, preserving errors, done, pause and the
// single-subscription contract.
func asAnyObservable[T any](source Observable[T]) Observable[any] {
	return TransformStream(source, StreamLifecycle[T, any]{
		OnData: func(tctx *TransformerContext[T, any], value T) {
			tctx.Destination.AddWithContext(tctx.Context, value)
		},
	})
}

// mergeTyped runs the dynamic combiner over pre-adapted sources and maps each
// snapshot through the given destructuring function.
func mergeTyped[R any](sources []Observable[any], destructure func(values []any) R) Observable[R] {
	return TransformStream(MergeStreams(sources), StreamLifecycle[[]any, R]{
		OnData: func(tctx *TransformerContext[[]any, R], values []any) {
			tctx.Destination.AddWithContext(tctx.Context, destructure(values))
		},
	})
}

// MergeStreams2 combines 2 typed sources into latest-value tuples.
func MergeStreams2[A, B any](a Observable[A], b Observable[B]) Observable[lo.Tuple2[A, B]] {
	return mergeTyped(
		[]Observable[any]{asAnyObservable(a), asAnyObservable(b)},
		func(values []any) lo.Tuple2[A, B] {
			return lo.T2(values[0].(A), values[1].(B))
		},
	)
}

// MergeStreams3 combines 3 typed sources into latest-value tuples.
func MergeStreams3[A, B, C any](a Observable[A], b Observable[B], c Observable[C]) Observable[lo.Tuple3[A, B, C]] {
	return mergeTyped(
		[]Observable[any]{asAnyObservable(a), asAnyObservable(b), asAnyObservable(c)},
		func(values []any) lo.Tuple3[A, B, C] {
			return lo.T3(values[0].(A), values[1].(B), values[2].(C))
		},
	)
}

// MergeStreams4 combines 4 typed sources into latest-value tuples.
func MergeStreams4[A, B, C, D any](a Observable[A], b Observable[B], c Observable[C], d Observable[D]) Observable[lo.Tuple4[A, B, C, D]] {
	return mergeTyped(
		[]Observable[any]{asAnyObservable(a), asAnyObservable(b), asAnyObservable(c), asAnyObservable(d)},
		func(values []any) lo.Tuple4[A, B, C, D] {
			return lo.T4(values[0].(A), values[1].(B), values[2].(C), values[3].(D))
		},
	)
}

// MergeStreams5 combines 5 typed sources into latest-value tuples.
func MergeStreams5[A, B, C, D, E any](a Observable[A], b Observable[B], c Observable[C], d Observable[D], e Observable[E]) Observable[lo.Tuple5[A, B, C, D, E]] {
	return mergeTyped(
		[]Observable[any]{asAnyObservable(a), asAnyObservable(b), asAnyObservable(c), asAnyObservable(d), asAnyObservable(e)},
		func(values []any) lo.Tuple5[A, B, C, D, E] {
			return lo.T5(values[0].(A), values[1].(B), values[2].(C), values[3].(D), values[4].(E))
		},
	)
}

// MergeStreams6 combines 6 typed sources into latest-value tuples.
func MergeStreams6[A, B, C, D, E, F any](a Observable[A], b Observable[B], c Observable[C], d Observable[D], e Observable[E], f Observable[F]) Observable[lo.Tuple6[A, B, C, D, E, F]] {
	return mergeTyped(
		[]Observable[any]{asAnyObservable(a), asAnyObservable(b), asAnyObservable(c), asAnyObservable(d), asAnyObservable(e), asAnyObservable(f)},
		func(values []any) lo.Tuple6[A, B, C, D, E, F] {
			return lo.T6(values[0].(A), values[1].(B), values[2].(C), values[3].(D), values[4].(E), values[5].(F))
		},
	)
}

// MergeStreams7 combines 7 typed sources into latest-value tuples.
func MergeStreams7[A, B, C, D, E, F, G any](a Observable[A], b Observable[B], c Observable[C], d Observable[D], e Observable[E], f Observable[F], g Observable[G]) Observable[lo.Tuple7[A, B, C, D, E, F, G]] {
	return mergeTyped(
		[]Observable[any]{asAnyObservable(a), asAnyObservable(b), asAnyObservable(c), asAnyObservable(d), asAnyObservable(e), asAnyObservable(f), asAnyObservable(g)},
		func(values []any) lo.Tuple7[A, B, C, D, E, F, G] {
			return lo.T7(values[0].(A), values[1].(B), values[2].(C), values[3].(D), values[4].(E), values[5].(F), values[6].(G))
		},
	)
}

// MergeStreams8 combines 8 typed sources into latest-value tuples.
func MergeStreams8[A, B, C, D, E, F, G, H any](a Observable[A], b Observable[B], c Observable[C], d Observable[D], e Observable[E], f Observable[F], g Observable[G], h Observable[H]) Observable[lo.Tuple8[A, B, C, D, E, F, G, H]] {
	return mergeTyped(
		[]Observable[any]{asAnyObservable(a), asAnyObservable(b), asAnyObservable(c), asAnyObservable(d), asAnyObservable(e), asAnyObservable(f), asAnyObservable(g), asAnyObservable(h)},
		func(values []any) lo.Tuple8[A, B, C, D, E, F, G, H] {
			return lo.T8(values[0].(A), values[1].(B), values[2].(C), values[3].(D), values[4].(E), values[5].(F), values[6].(G), values[7].(H))
		},
	)
}

// MergeStreams9 combines 9 typed sources into latest-value tuples.
func MergeStreams9[A, B, C, D, E, F, G, H, I any](a Observable[A], b Observable[B], c Observable[C], d Observable[D], e Observable[E], f Observable[F], g Observable[G], h Observable[H], i Observable[I]) Observable[lo.Tuple9[A, B, C, D, E, F, G, H, I]] {
	return mergeTyped(
		[]Observable[any]{asAnyObservable(a), asAnyObservable(b), asAnyObservable(c), asAnyObservable(d), asAnyObservable(e), asAnyObservable(f), asAnyObservable(g), asAnyObservable(h), asAnyObservable(i)},
		func(values []any) lo.Tuple9[A, B, C, D, E, F, G, H, I] {
			return lo.T9(values[0].(A), values[1].(B), values[2].(C), values[3].(D), values[4].(E), values[5].(F), values[6].(G), values[7].(H), values[8].(I))
		},
	)
}
