// Package connectors provides document sources that feed ingestion.
//
// The filesystem connector scans a folder for supported files and watches
// it for changes.
package connectors
