// Package metadata is a small key-value store kept in the local SQLite file.
// The client keeps its preferences there: per-owner keyword click counts and
// the editor zoom level. Values are opaque bytes; LoadJSON and StoreJSON cover
// the common case of JSON-encoded values.
package metadata
