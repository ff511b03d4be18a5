package modelio

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"structuralign/pkg/model"
)

// alterTableColumns are the enrichment columns added to the copied
// vertices table, grounded on db/writer.py's ALTER_TABLE_COLUMNS (PRD F-08).
var alterTableColumns = []struct {
	name, sqlType string
}{
	{"x_original", "REAL"},
	{"y_original", "REAL"},
	{"z_original", "REAL"},
	{"aligned_axis", "VARCHAR(10) NOT NULL DEFAULT 'none'"},
	{"fil_x_id", "VARCHAR(20)"},
	{"fil_y_id", "VARCHAR(20)"},
	{"fil_z_id", "VARCHAR(20)"},
	{"displacement_total", "REAL NOT NULL DEFAULT 0.0"},
}

var createIndexesSQL = []string{
	"CREATE INDEX IF NOT EXISTS idx_vertices_aligned_axis ON vertices(aligned_axis);",
	"CREATE INDEX IF NOT EXISTS idx_vertices_displacement ON vertices(displacement_total);",
}

// AlignedDBRow is one enriched vertices-table row: the aligned coordinate
// plus the original coordinate and alignment metadata, addressed by the
// input database's own vertex id. AlignedAxis follows the original's own
// vocabulary: "none", "X", "Y", or "XY".
type AlignedDBRow struct {
	ID int

	X, Y, Z                         float64
	OriginalX, OriginalY, OriginalZ float64

	AlignedAxis string
	FilXID      string
	FilYID      string
	FilZID      string

	DisplacementTotal float64
}

// AxisLabel derives the "none"/"X"/"Y"/"XY" aligned_axis label db/writer.py
// expects from a vertex's snap state.
func AxisLabel(v model.AlignedVertex) string {
	switch {
	case v.SnappedX() && v.SnappedY():
		return "XY"
	case v.SnappedX():
		return "X"
	case v.SnappedY():
		return "Y"
	default:
		return "none"
	}
}

// WriteAlignedDB copies inputDB to outputPath and enriches the copy's
// vertices table with the aligned coordinates and metadata, mirroring
// db/writer.py: write_aligned_db. It refuses to overwrite an existing
// output file, and rolls back and removes the output file on any failure
// so a partially written database is never left behind.
func WriteAlignedDB(inputDB, outputPath string, rows []AlignedDBRow) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("output already exists: %s", outputPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", outputPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := copyFile(inputDB, outputPath); err != nil {
		os.Remove(outputPath)
		return fmt.Errorf("copy %s to %s: %w", inputDB, outputPath, err)
	}

	if err := enrichVerticesTable(outputPath, rows); err != nil {
		os.Remove(outputPath)
		return err
	}
	return nil
}

func enrichVerticesTable(outputPath string, rows []AlignedDBRow) error {
	db, err := sql.Open("sqlite", outputPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", outputPath, err)
	}
	defer db.Close()

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	for _, col := range alterTableColumns {
		stmt := fmt.Sprintf("ALTER TABLE vertices ADD COLUMN %s %s;", col.name, col.sqlType)
		if _, err := tx.Exec(stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("add column %s: %w", col.name, err)
		}
	}

	update, err := tx.Prepare(`UPDATE vertices
		SET x = ?, y = ?, z = ?,
		    x_original = ?, y_original = ?, z_original = ?,
		    aligned_axis = ?, fil_x_id = ?, fil_y_id = ?, fil_z_id = ?,
		    displacement_total = ?
		WHERE id = ?`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare update: %w", err)
	}
	defer update.Close()

	for _, r := range rows {
		_, err := update.Exec(
			r.X, r.Y, r.Z,
			r.OriginalX, r.OriginalY, r.OriginalZ,
			r.AlignedAxis, r.FilXID, r.FilYID, r.FilZID,
			r.DisplacementTotal,
			r.ID,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("update vertex %d: %w", r.ID, err)
		}
	}

	for _, stmt := range createIndexesSQL {
		if _, err := tx.Exec(stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("create index: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
