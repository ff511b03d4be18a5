// Package modelio provides the two on-disk formats the alignment pipeline
// reads and writes: a compact binary container for the 3D structural model
// itself, and a SQLite-backed structural database that mirrors the PRD
// schema the original tool's db/reader.py and db/writer.py consumed.
//
// # Model container
//
// Real deployments of this pipeline read a proprietary CAD interchange
// format (Rhino's .3dm in the original tool). Standing in for that format,
// this package defines its own container: elements and their vertices,
// gob-encoded and gzip-compressed. Use [Export] and [Import] for file-based
// round trips, or [Write]/[Read] against any io.Writer/io.Reader.
//
// # Structural database
//
// [LoadVertices] and [LoadVerticesWithElements] read a vertices/elements
// SQLite schema, validating both tables exist before querying. [WriteAlignedDB]
// copies an input database and enriches its vertices table in place with
// the aligned coordinates and alignment metadata, exactly as the original
// tool's write_aligned_db did: ALTER TABLE to add columns, UPDATE per row,
// then two new indexes, all inside one transaction that rolls back and
// removes the output file on any failure.
package modelio
