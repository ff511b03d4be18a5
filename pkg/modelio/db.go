package modelio

import (
	"database/sql"
	"fmt"
	"sort"

	_ "modernc.org/sqlite"

	"structuralign/pkg/model"
)

// InputVertex is a single row of the structural database's vertices table,
// grounded on db/reader.py's InputVertex dataclass.
type InputVertex struct {
	ID          int
	ElementID   int
	X, Y, Z     float64
	VertexIndex int
}

// ElementInfo is a single row of the structural database's elements table.
// FaceCount is never carried by this schema (the original tool only ever
// read it live off a parsed Brep) — callers sourcing geometry from the
// database instead of the model container get FaceCount 0 for every
// element.
type ElementInfo struct {
	ID           int
	Name         string
	Kind         string
	GeometryType string
}

var geometryKinds = map[string]model.GeometryKind{
	"brep":           model.GeometryBrep,
	"line_curve":     model.GeometryLineCurve,
	"polyline_curve": model.GeometryPolyCurve,
	"poly_curve":     model.GeometryPolyCurve,
	"nurbs_curve":    model.GeometryNurbsCurve,
	"point":          model.GeometryPoint,
}

// LoadVertices reads every row of the vertices table, ordered by id, from
// the SQLite database at dbPath. It validates the table exists before
// querying, mirroring db/reader.py: load_vertices.
func LoadVertices(dbPath string) ([]InputVertex, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	defer db.Close()

	if err := requireTable(db, "vertices"); err != nil {
		return nil, err
	}
	return queryVertices(db)
}

// LoadVerticesWithElements reads both the vertices and elements tables,
// mirroring db/reader.py: load_vertices_with_elements. The returned map is
// keyed by element ID.
func LoadVerticesWithElements(dbPath string) ([]InputVertex, map[int]ElementInfo, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	defer db.Close()

	for _, table := range []string{"vertices", "elements"} {
		if err := requireTable(db, table); err != nil {
			return nil, nil, err
		}
	}

	elements, err := queryElements(db)
	if err != nil {
		return nil, nil, err
	}
	vertices, err := queryVertices(db)
	if err != nil {
		return nil, nil, err
	}
	return vertices, elements, nil
}

// LoadElements reads the vertices and elements tables and assembles them
// into the pipeline's own Element/Vertex shape, grouping each InputVertex
// under its owning element and ordering vertices by VertexIndex. Any
// vertex referencing an element ID absent from the elements table is
// dropped rather than failing the whole load, since the original schema
// does not enforce that foreign key at read time.
func LoadElements(dbPath string) ([]model.Element, error) {
	vertices, infos, err := LoadVerticesWithElements(dbPath)
	if err != nil {
		return nil, err
	}

	byElement := make(map[int][]model.Vertex, len(infos))
	for _, v := range vertices {
		byElement[v.ElementID] = append(byElement[v.ElementID], model.Vertex{
			ElementID:   v.ElementID,
			VertexIndex: v.VertexIndex,
			X:           v.X,
			Y:           v.Y,
			Z:           v.Z,
		})
	}
	for _, vs := range byElement {
		sort.Slice(vs, func(i, j int) bool { return vs[i].VertexIndex < vs[j].VertexIndex })
	}

	elements := make([]model.Element, 0, len(infos))
	for id, info := range infos {
		kind, _ := model.ParseKind(info.Kind)
		elements = append(elements, model.Element{
			ID:           id,
			Name:         info.Name,
			Kind:         kind,
			GeometryKind: geometryKinds[info.GeometryType],
			Vertices:     byElement[id],
		})
	}
	return elements, nil
}

func requireTable(db *sql.DB, name string) error {
	var found string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", name,
	).Scan(&found)
	if err == sql.ErrNoRows {
		return fmt.Errorf("database does not contain a %q table", name)
	}
	if err != nil {
		return fmt.Errorf("check table %q: %w", name, err)
	}
	return nil
}

func queryVertices(db *sql.DB) ([]InputVertex, error) {
	rows, err := db.Query("SELECT id, element_id, x, y, z, vertex_index FROM vertices ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query vertices: %w", err)
	}
	defer rows.Close()

	var out []InputVertex
	for rows.Next() {
		var v InputVertex
		if err := rows.Scan(&v.ID, &v.ElementID, &v.X, &v.Y, &v.Z, &v.VertexIndex); err != nil {
			return nil, fmt.Errorf("scan vertex row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vertices: %w", err)
	}
	return out, nil
}

func queryElements(db *sql.DB) (map[int]ElementInfo, error) {
	rows, err := db.Query("SELECT id, type, nom, geometry_type FROM elements")
	if err != nil {
		return nil, fmt.Errorf("query elements: %w", err)
	}
	defer rows.Close()

	out := make(map[int]ElementInfo)
	for rows.Next() {
		var (
			info         ElementInfo
			geometryType sql.NullString
		)
		if err := rows.Scan(&info.ID, &info.Kind, &info.Name, &geometryType); err != nil {
			return nil, fmt.Errorf("scan element row: %w", err)
		}
		info.GeometryType = geometryType.String
		out[info.ID] = info
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate elements: %w", err)
	}
	return out, nil
}
