// Package notes is the persistence boundary of the Notish client.
//
// # Contract
//
// Repository is the one contract the note services depend on. Every
// operation is scoped by owner id:
//
//   - List   : all notes of an owner, newest updated_at first
//   - Create : assigns id, created_at and updated_at
//   - Update : partial update; updated_at is written in the same statement;
//     a missing (or foreign) note yields common.ErrNotFound
//   - Delete : removes the note; deleting a missing note is not an error
//
// Every failure is returned as a *StoreError carrying the operation name, so
// callers can log it uniformly and still match the cause with errors.Is.
//
// # Implementations
//
//   - PostgresRepository: networked store over jackc/pgx (database/sql)
//   - SQLiteRepository  : local-only store over modernc.org/sqlite
//
// Both satisfy the contract identically; which one is used is decided once
// at startup by package storage.
package notes
