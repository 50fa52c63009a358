package flat

import (
	"bufio"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/veritas/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/veritas/internal/core/domain"
)

// Artifact suffixes appended to the path prefix.
const (
	VectorSuffix = ".vec"
	MetaSuffix   = ".meta.db"
)

const (
	vecVersion = 1
	headerSize = 4 + 4 + 4 + 8
)

var vecMagic = [4]byte{'V', 'R', 'T', 'X'}

const metaSchema = `
CREATE TABLE info (
    key   TEXT PRIMARY KEY,
    value INTEGER NOT NULL
);
CREATE TABLE records (
    position  INTEGER PRIMARY KEY,
    chunk_id  TEXT NOT NULL,
    text      TEXT NOT NULL,
    type      TEXT NOT NULL,
    source    TEXT NOT NULL,
    page      INTEGER NOT NULL,
    doc_level INTEGER NOT NULL,
    table_id  TEXT,
    row_index INTEGER
);`

// Save writes both artifacts under temporary names and renames them into place.
func (x *Index) Save(prefix string) error {
	if err := x.save(prefix); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return nil
}

func (x *Index) save(prefix string) error {
	if dir := filepath.Dir(prefix); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating index directory: %w", err)
		}
	}

	vecPath, metaPath := prefix+VectorSuffix, prefix+MetaSuffix
	vecTmp, metaTmp := vecPath+".tmp", metaPath+".tmp"

	if err := x.writeVectors(vecTmp); err != nil {
		os.Remove(vecTmp)
		return err
	}
	if err := x.writeMeta(metaTmp); err != nil {
		os.Remove(vecTmp)
		os.Remove(metaTmp)
		return err
	}

	if err := os.Rename(vecTmp, vecPath); err != nil {
		os.Remove(vecTmp)
		os.Remove(metaTmp)
		return fmt.Errorf("renaming vector file: %w", err)
	}
	if err := os.Rename(metaTmp, metaPath); err != nil {
		os.Remove(metaTmp)
		return fmt.Errorf("renaming metadata file: %w", err)
	}
	return nil
}

func (x *Index) writeVectors(path string) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("creating vector file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing vector file: %w", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	header := struct {
		Magic   [4]byte
		Version uint32
		Dim     uint32
		Count   uint64
	}{vecMagic, vecVersion, uint32(x.dim), uint64(len(x.records))}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("writing vector header: %w", err)
	}
	for _, rec := range x.records {
		if err := binary.Write(w, binary.LittleEndian, rec.Vector); err != nil {
			return fmt.Errorf("writing vector %d: %w", rec.Position, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing vector file: %w", err)
	}
	return f.Sync()
}

func (x *Index) writeMeta(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing stale metadata file: %w", err)
	}

	db, err := sqlite.OpenFile(path, false)
	if err != nil {
		return fmt.Errorf("opening metadata database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(metaSchema); err != nil {
		return fmt.Errorf("creating metadata schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning metadata transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(`INSERT INTO info (key, value) VALUES ('dim', ?), ('count', ?), ('version', ?)`,
		x.dim, len(x.records), vecVersion); err != nil {
		return fmt.Errorf("writing metadata info: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO records
		(position, chunk_id, text, type, source, page, doc_level, table_id, row_index)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing record insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range x.records {
		var tableID sql.NullString
		var rowIndex sql.NullInt64
		if rec.Table != nil {
			tableID = sql.NullString{String: rec.Table.TableID, Valid: true}
			rowIndex = sql.NullInt64{Int64: int64(rec.Table.RowIndex), Valid: true}
		}
		if _, err := stmt.Exec(rec.Position, rec.ChunkID, rec.Text, string(rec.Type), rec.Source,
			rec.Page, rec.DocLevel, tableID, rowIndex); err != nil {
			return fmt.Errorf("writing record %d: %w", rec.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing metadata: %w", err)
	}
	return nil
}

// Load reads both artifacts and swaps them in only when they agree with
// each other and with the index dimension.
func (x *Index) Load(prefix string) error {
	records, err := x.load(prefix)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	x.records = records
	return nil
}

func (x *Index) load(prefix string) ([]domain.EvidenceRecord, error) {
	vecPath, metaPath := prefix+VectorSuffix, prefix+MetaSuffix
	for _, p := range []string{vecPath, metaPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("artifact %s: %w", p, err)
		}
	}

	vectors, err := x.readVectors(vecPath)
	if err != nil {
		return nil, err
	}
	records, err := x.readMeta(metaPath)
	if err != nil {
		return nil, err
	}
	if len(records) != len(vectors) {
		return nil, fmt.Errorf("metadata has %d records, vector file has %d", len(records), len(vectors))
	}

	for i := range records {
		records[i].Vector = vectors[i]
	}
	return records, nil
}

func (x *Index) readVectors(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening vector file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("reading vector file: %w", err)
	}

	r := bufio.NewReader(f)
	var header struct {
		Magic   [4]byte
		Version uint32
		Dim     uint32
		Count   uint64
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("reading vector header: %w", err)
	}
	switch {
	case header.Magic != vecMagic:
		return nil, errors.New("vector file has bad magic")
	case header.Version != vecVersion:
		return nil, fmt.Errorf("unsupported vector file version %d", header.Version)
	case int(header.Dim) != x.dim:
		return nil, fmt.Errorf("%w: vector file dimension %d, index dimension %d", domain.ErrDimensionMismatch, header.Dim, x.dim)
	}

	want := int64(headerSize) + int64(header.Count)*int64(header.Dim)*4
	if info.Size() != want {
		return nil, fmt.Errorf("vector file is %d bytes, expected %d", info.Size(), want)
	}

	vectors := make([][]float32, header.Count)
	for i := range vectors {
		v := make([]float32, x.dim)
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return nil, fmt.Errorf("reading vector %d: %w", i, err)
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (x *Index) readMeta(path string) ([]domain.EvidenceRecord, error) {
	db, err := sqlite.OpenFile(path, true)
	if err != nil {
		return nil, fmt.Errorf("opening metadata database: %w", err)
	}
	defer db.Close()

	var dim, count int
	if err := db.QueryRow(`SELECT value FROM info WHERE key = 'dim'`).Scan(&dim); err != nil {
		return nil, fmt.Errorf("reading metadata dimension: %w", err)
	}
	if err := db.QueryRow(`SELECT value FROM info WHERE key = 'count'`).Scan(&count); err != nil {
		return nil, fmt.Errorf("reading metadata count: %w", err)
	}
	if dim != x.dim {
		return nil, fmt.Errorf("metadata dimension %d, index dimension %d", dim, x.dim)
	}

	rows, err := db.Query(`SELECT position, chunk_id, text, type, source, page, doc_level, table_id, row_index
		FROM records ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("reading metadata records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.EvidenceRecord, 0, count)
	for rows.Next() {
		var rec domain.EvidenceRecord
		var typ string
		var tableID sql.NullString
		var rowIndex sql.NullInt64
		if err := rows.Scan(&rec.Position, &rec.ChunkID, &rec.Text, &typ, &rec.Source,
			&rec.Page, &rec.DocLevel, &tableID, &rowIndex); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if rec.Position != len(records) {
			return nil, fmt.Errorf("metadata record position %d out of sequence", rec.Position)
		}
		rec.Type = domain.BlockType(typ)
		if tableID.Valid {
			rec.Table = &domain.TableRef{TableID: tableID.String, RowIndex: int(rowIndex.Int64)}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading metadata records: %w", err)
	}
	if len(records) != count {
		return nil, fmt.Errorf("metadata info count %d, found %d records", count, len(records))
	}
	return records, nil
}
