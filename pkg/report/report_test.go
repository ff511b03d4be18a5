package report

import (
	"strings"
	"testing"

	"structuralign/pkg/model"
	"structuralign/pkg/rules"
	"structuralign/pkg/validate"
)

func TestBuild_AggregatesRuleCountsAndDisplacement(t *testing.T) {
	elements := []model.Element{{ID: 1, Kind: model.KindColumn}}
	aligned := []model.AlignedVertex{
		{ElementID: 1, VertexIndex: 0, AlignedX: 10, AlignedY: 20, AxisLineX: 0, AxisLineY: 0, Displacement: 0.01},
		{ElementID: 1, VertexIndex: 1, AlignedX: 11, AlignedY: 21, AxisLineX: -1, AxisLineY: 0, Displacement: 0.02},
	}
	xLines := []model.AxisLine{{Axis: model.AxisX, Position: 10}}
	yLines := []model.AxisLine{{Axis: model.AxisY, Position: 20}}

	rulesResult := rules.Result{
		Edits: []model.ObjectEdit{
			{Op: model.EditAdd, Rule: 4, AddKind: model.KindSlab},
			{Op: model.EditRemove, Rule: 3, RemoveElementID: 1},
		},
	}
	validation := validate.Result{Passed: true, UnalignedVertexKeys: nil}

	r := Build(elements, aligned, xLines, yLines, rulesResult, validation)

	if r.RuleCounts[4].Added != 1 {
		t.Errorf("got rule 4 added %d, want 1", r.RuleCounts[4].Added)
	}
	if r.RuleCounts[3].Removed != 1 {
		t.Errorf("got rule 3 removed %d, want 1", r.RuleCounts[3].Removed)
	}
	if r.VertexUnsnappedX != 1 {
		t.Errorf("got VertexUnsnappedX %d, want 1", r.VertexUnsnappedX)
	}
	if r.Displacement.Max != 0.02 {
		t.Errorf("got max displacement %v, want 0.02", r.Displacement.Max)
	}

	foundUnsnapped := false
	for _, w := range r.Warnings {
		if w.Code == errCodeVertexUnsnapped {
			foundUnsnapped = true
		}
	}
	if !foundUnsnapped {
		t.Errorf("expected a %s warning, got %v", errCodeVertexUnsnapped, r.Warnings)
	}

	data, err := r.JSON()
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	if !strings.Contains(string(data), "rule_counts") {
		t.Errorf("expected JSON to contain rule_counts, got %s", data)
	}
}

func TestBuild_NoWarningsWhenFullyAligned(t *testing.T) {
	aligned := []model.AlignedVertex{
		{ElementID: 1, VertexIndex: 0, AxisLineX: 0, AxisLineY: 0},
	}
	r := Build(nil, aligned, nil, nil, rules.Result{}, validate.Result{Passed: true})

	for _, w := range r.Warnings {
		if w.Code == errCodeVertexUnsnapped {
			t.Errorf("did not expect a vertex-unsnapped warning, got %v", w)
		}
	}
}

func TestAddReference_AppendsMissingPositionWarnings(t *testing.T) {
	r := Build(nil, nil, nil, nil, rules.Result{}, validate.Result{Passed: true})

	recallX := validate.CompareAxisToReference(model.AxisX, nil, []float64{10.0}, 0.005)
	recallY := validate.CompareAxisToReference(model.AxisY, nil, nil, 0.005)
	cmp := validate.ReferenceComparison{}

	r.AddReference(recallX, recallY, cmp)

	if r.AxisRecallX == nil || r.AxisRecallX.ReferenceCount != 1 {
		t.Fatalf("expected AxisRecallX to be populated, got %+v", r.AxisRecallX)
	}
	found := false
	for _, w := range r.Warnings {
		if w.Code == validate.WarnReferenceMissingPosition {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a %s warning after AddReference, got %v", validate.WarnReferenceMissingPosition, r.Warnings)
	}
}
