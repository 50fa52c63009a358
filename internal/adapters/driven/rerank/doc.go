// Package rerank groups the driven.RelevanceScorer adapters.
//
// The api subpackage calls a hosted cross-encoder behind a Cohere/Jina style
// /rerank endpoint. The lexical subpackage is a built-in BM25 scorer used when
// no rerank service is configured.
package rerank
