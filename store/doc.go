// Package store provides the generic item operations for the corkboard
// single-table DynamoDB layout.
//
// Every entity (user, board, membership edge, list, task, attachment, image)
// is an item in one table addressed by keys.Key. The store knows nothing
// about entity kinds; it offers put, get, query, patch-style update, delete,
// batched writes and an all-or-nothing transactional delete. The kanban
// package composes these into per-entity access functions.
//
// # Client injection
//
// Store takes a [DynamoAPI] rather than a concrete *dynamodb.Client so tests
// can substitute an in-memory fake. Construct one per process and share it:
//
//	st := store.New(dynamodb.NewFromConfig(awsCfg), store.Config{Table: "corkboard"}, logger)
//
// # Concurrency
//
// There is no optimistic locking and no conditional write on Put: concurrent
// writers to the same item race and the last physical write wins. Update is
// the one conditional operation: it requires the item to exist and reports
// [ErrNotFound] otherwise.
//
// # Errors
//
//   - [ErrNotFound] - point lookup or update target is absent
//   - anything else - the backing call failed and is wrapped with the
//     operation and table name
package store
