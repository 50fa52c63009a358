package normalisers

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
	"github.com/custodia-labs/veritas/internal/normalisers/csv"
	"github.com/custodia-labs/veritas/internal/normalisers/docx"
	"github.com/custodia-labs/veritas/internal/normalisers/markdown"
	"github.com/custodia-labs/veritas/internal/normalisers/pdf"
	"github.com/custodia-labs/veritas/internal/normalisers/plaintext"
	"github.com/custodia-labs/veritas/internal/normalisers/xlsx"
)

// Ensure Registry implements the interface.
var _ driven.ParserRegistry = (*Registry)(nil)

// extensionMIMETypes maps supported file extensions to MIME types.
var extensionMIMETypes = map[string]string{
	".txt":      "text/plain",
	".text":     "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".pdf":      "application/pdf",
	".docx":     docx.MIMEType,
	".csv":      "text/csv",
	".tsv":      "text/tab-separated-values",
	".xlsx":     xlsx.MIMEType,
}

// MIMETypeForPath returns the MIME type for a file name by extension, or
// "application/octet-stream" when the extension is not supported.
func MIMETypeForPath(path string) string {
	if mt, ok := extensionMIMETypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mt
	}
	return "application/octet-stream"
}

// IsSupportedPath reports whether a file extension has a parser.
func IsSupportedPath(path string) bool {
	_, ok := extensionMIMETypes[strings.ToLower(filepath.Ext(path))]
	return ok
}

// SupportedExtensions returns the file extensions with a parser, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensionMIMETypes))
	for ext := range extensionMIMETypes {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Registry dispatches raw documents to parsers by MIME type, preferring
// the highest priority parser.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string][]driven.Parser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string][]driven.Parser)}
}

// NewDefaultRegistry creates a registry with every built-in parser.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(csv.New())
	r.Register(xlsx.New())
	return r
}

// Register adds a parser for each of its MIME types.
func (r *Registry) Register(parser driven.Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mt := range parser.SupportedMIMETypes() {
		mt = normaliseMIMEType(mt)
		list := append(r.parsers[mt], parser)
		sort.SliceStable(list, func(i, j int) bool { return list[i].Priority() > list[j].Priority() })
		r.parsers[mt] = list
	}
}

// Parse dispatches to the highest priority parser for raw.MIMEType. An empty
// MIME type is inferred from the source name.
func (r *Registry) Parse(ctx context.Context, raw *domain.RawDocument) (*domain.ParsedDocument, error) {
	if raw == nil {
		return nil, fmt.Errorf("parse: nil document: %w", domain.ErrInvalidInput)
	}

	mt := normaliseMIMEType(raw.MIMEType)
	if mt == "" {
		mt = MIMETypeForPath(raw.Source)
	}

	r.mu.RLock()
	list := r.parsers[mt]
	r.mu.RUnlock()

	if len(list) == 0 {
		return nil, fmt.Errorf("parse %s: %q: %w", raw.Source, mt, domain.ErrUnsupportedFormat)
	}
	return list[0].Parse(ctx, raw)
}

// SupportedMIMETypes returns all registered MIME types, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.parsers))
	for mt := range r.parsers {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// normaliseMIMEType lower-cases and drops parameters such as charset.
func normaliseMIMEType(mt string) string {
	mt, _, _ = strings.Cut(mt, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
