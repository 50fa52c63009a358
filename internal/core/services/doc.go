// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The evidence pipeline lives here: the structurer and chunking pipeline on
// the ingest side, and the router, reranker and validator on the question
// side. A single Session guards the shared vector index.
package services
