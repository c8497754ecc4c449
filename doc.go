// Package recql defines the scalar and record vocabulary shared by every
// layer of the engine: the paged storage substrate (page, buffer, table),
// the join engine (join), and the recursive query evaluator (eval). It
// carries no storage or evaluation logic of its own.
package recql
