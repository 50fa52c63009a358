// Package flat provides an exhaustive cosine-similarity vector index.
//
// Vectors live in memory and are persisted as two artifacts sharing a path
// prefix: a binary "<prefix>.vec" file holding the float32 vectors and a
// SQLite "<prefix>.meta.db" database holding the evidence records.
package flat
