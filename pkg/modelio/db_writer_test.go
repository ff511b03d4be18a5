package modelio

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"structuralign/pkg/model"
)

func alignedVertexWithAxes(axisLineX, axisLineY int) model.AlignedVertex {
	return model.AlignedVertex{AxisLineX: axisLineX, AxisLineY: axisLineY}
}

func TestWriteAlignedDB_EnrichesVerticesTable(t *testing.T) {
	inputPath := newTestDB(t)
	outputPath := filepath.Join(t.TempDir(), "aligned.db")

	rows := []AlignedDBRow{
		{
			ID: 1,
			X:  1.0, Y: 2.0, Z: 0.0,
			OriginalX: 1.01, OriginalY: 1.99, OriginalZ: 0.0,
			AlignedAxis:       "XY",
			FilXID:            "X0",
			FilYID:            "Y0",
			DisplacementTotal: 0.014,
		},
	}

	if err := WriteAlignedDB(inputPath, outputPath, rows); err != nil {
		t.Fatalf("WriteAlignedDB: %v", err)
	}

	db, err := sql.Open("sqlite", outputPath)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer db.Close()

	var (
		x, xOriginal, displacement float64
		alignedAxis                string
	)
	err = db.QueryRow(
		"SELECT x, x_original, aligned_axis, displacement_total FROM vertices WHERE id = 1",
	).Scan(&x, &xOriginal, &alignedAxis, &displacement)
	if err != nil {
		t.Fatalf("query enriched row: %v", err)
	}
	if x != 1.0 || xOriginal != 1.01 || alignedAxis != "XY" || displacement != 0.014 {
		t.Errorf("got x=%v x_original=%v aligned_axis=%v displacement=%v", x, xOriginal, alignedAxis, displacement)
	}

	var untouched float64
	if err := db.QueryRow("SELECT x FROM vertices WHERE id = 2").Scan(&untouched); err != nil {
		t.Fatalf("query untouched row: %v", err)
	}
	if untouched != 1.0 {
		t.Errorf("got untouched row x=%v, want original value 1.0", untouched)
	}
}

func TestWriteAlignedDB_RefusesExistingOutput(t *testing.T) {
	inputPath := newTestDB(t)
	outputPath := filepath.Join(t.TempDir(), "aligned.db")

	if err := WriteAlignedDB(inputPath, outputPath, nil); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteAlignedDB(inputPath, outputPath, nil); err == nil {
		t.Fatal("expected an error writing to an already-existing output path")
	}
}

func TestAxisLabel(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name      string
		axisLineX int
		axisLineY int
		want      string
	}{
		{"both snapped", 0, 0, "XY"},
		{"x only", 0, -1, "X"},
		{"y only", -1, 0, "Y"},
		{"neither", -1, -1, "none"},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			got := AxisLabel(alignedVertexWithAxes(c.axisLineX, c.axisLineY))
			if got != c.want {
				t.Errorf("got %s, want %s", got, c.want)
			}
		})
	}
}
