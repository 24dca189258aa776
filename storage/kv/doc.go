// Package kv provides a sorted byte-key/byte-value store
// contract and the scoped contexts that higher layers consume
// to materialize structured state on top of raw keys.
//
// A kv plugin is a factory for store instances. A store is a
// single flat, lexicographically sorted key space supporting
// point reads, prefix searches and batched writes. Scoping is
// layered on top: a Context pairs a store with a base key
// prefix, and child contexts derive longer prefixes, giving
// each component a logically isolated sub-store without any
// coordination between them.
//
//	Store
//	  Context (base key "a")
//	    Context (base key "a" + scope)
//	  Context (base key "b")
//
// Rather than defining transactional semantics at this layer,
// writes are expressed as batches that the store applies in
// backend-sized chunks. A batch is not atomic: a failure may
// leave a prefix of its chunks applied, and consumers recover
// by resubmitting the same batch. Puts overwrite and deletes
// of absent keys are no-ops, so resubmission is idempotent.
package kv
