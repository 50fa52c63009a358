// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Parser / ParserRegistry: Turns raw bytes into a ParsedDocument
//   - PostProcessor / PostProcessorPipeline: Turns blocks into chunks
//   - VectorIndex: Flat cosine index with paired save/load
//   - EmbeddingService: text -> vector
//   - RelevanceScorer: (query, text) -> score
//   - DocumentStore: Ingested document catalogue
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Without it, `ask` is disabled but evidence search still works.
//   - PromptStore: Without it, built-in prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
