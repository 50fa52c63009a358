// Package normalisers provides driven.Parser implementations for the
// supported document formats and the Registry that dispatches between them
// by MIME type.
//
// Each subpackage turns raw bytes into a domain.ParsedDocument: ordered
// units of narrative text plus the table grids found on each unit. Block
// detection and table-row serialisation happen later in the structurer.
package normalisers
