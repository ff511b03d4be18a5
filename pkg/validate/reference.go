package validate

import (
	"fmt"
	"math"
	"sort"

	"structuralign/pkg/config"
	"structuralign/pkg/model"
)

// ReferenceElement is one named object from a previously-produced reference
// model, supplied via --reference-model for drift comparison. Vertices are
// index-aligned against the matching output element's own vertex order —
// matching is by name and position, never by geometry re-derivation.
type ReferenceElement struct {
	Name     string
	Kind     model.Kind
	Vertices []model.Vertex
}

// OutputElement is one named aligned object from this run's own output,
// compared against a ReferenceElement of the same name.
type OutputElement struct {
	Name     string
	Kind     model.Kind
	Vertices []model.Vertex
}

// ObjectComparison is the per-object outcome of a reference comparison.
type ObjectComparison struct {
	Name              string
	Kind              model.Kind
	OutputVertices    int
	ReferenceVertices int
	Compared          int
	Matched           int
	MatchRate         float64 // percent, 0-100
	MaxDisplacement   float64
	MeanDisplacement  float64
}

// TypeBreakdown aggregates ObjectComparison rows by Kind.
type TypeBreakdown struct {
	Objects          int
	VerticesCompared int
	VerticesMatched  int
	MatchRate        float64 // percent, 0-100
}

// ReferenceComparison is the complete outcome of comparing this run's
// output against a reference model, grounded on the reference_comparator's
// ComparisonResult.
type ReferenceComparison struct {
	Tolerance float64

	OutputObjectCount    int
	ReferenceObjectCount int
	CommonObjects        int
	OutputOnlyNames      []string
	ReferenceOnlyNames   []string

	TotalVerticesCompared int
	VerticesMatched       int
	OverallMatchRate      float64 // percent, 0-100

	MeanDisplacement   float64
	MedianDisplacement float64
	P95Displacement    float64
	MaxDisplacement    float64

	TypeBreakdown map[model.Kind]TypeBreakdown
	Objects       []ObjectComparison

	Warnings []Warning
}

// WarnObjectCountDrift is the object-count-drift warning code of spec.md
// §7. WarnReferenceMissingPosition (the per-axis-position counterpart) is
// defined in axis_reference.go, which compares actual axis positions
// rather than object vertex displacement.
const (
	WarnObjectCountDrift = "OBJECT_COUNT_DRIFT"
)

// CompareWithReference compares this run's output elements against a
// previously-produced reference model, index-matching vertices within
// same-named objects and reporting recall and per-kind object-count drift.
//
// Grounded on reference_comparator.py: compare_with_reference. Objects
// present in only one side are recorded, not compared; vertex comparison is
// positional (index i of output vs index i of reference) up to the shorter
// of the two counts, matching the original's min(len(out), len(ref)) policy.
func CompareWithReference(output []OutputElement, reference []ReferenceElement, cfg config.Config) ReferenceComparison {
	result := ReferenceComparison{
		Tolerance:     cfg.ReferenceMatchRadius,
		TypeBreakdown: make(map[model.Kind]TypeBreakdown),
	}

	outByName := indexByName(output)
	refByName := make(map[string]ReferenceElement, len(reference))
	for _, r := range reference {
		refByName[r.Name] = r
	}

	result.OutputObjectCount = len(outByName)
	result.ReferenceObjectCount = len(refByName)

	var outOnly, refOnly, common []string
	for name := range outByName {
		if _, ok := refByName[name]; ok {
			common = append(common, name)
		} else {
			outOnly = append(outOnly, name)
		}
	}
	for name := range refByName {
		if _, ok := outByName[name]; !ok {
			refOnly = append(refOnly, name)
		}
	}
	sort.Strings(outOnly)
	sort.Strings(refOnly)
	sort.Strings(common)

	result.OutputOnlyNames = outOnly
	result.ReferenceOnlyNames = refOnly
	result.CommonObjects = len(common)

	type typeAccum struct {
		objects, compared, matched int
	}
	typeStats := make(map[model.Kind]*typeAccum)
	outCountByKind := make(map[model.Kind]int)
	refCountByKind := make(map[model.Kind]int)
	for _, o := range output {
		outCountByKind[o.Kind]++
	}
	for _, r := range reference {
		refCountByKind[r.Kind]++
	}

	var allDisplacements []float64

	for _, name := range common {
		out := outByName[name]
		ref := refByName[name]

		st, ok := typeStats[out.Kind]
		if !ok {
			st = &typeAccum{}
			typeStats[out.Kind] = st
		}
		st.objects++

		oc := ObjectComparison{
			Name:              name,
			Kind:              out.Kind,
			OutputVertices:    len(out.Vertices),
			ReferenceVertices: len(ref.Vertices),
		}

		n := min(len(out.Vertices), len(ref.Vertices))
		oc.Compared = n

		var sum, max float64
		for i := 0; i < n; i++ {
			d := distance3D(out.Vertices[i], ref.Vertices[i])
			allDisplacements = append(allDisplacements, d)
			sum += d
			if d > max {
				max = d
			}
			st.compared++
			if d <= cfg.ReferenceMatchRadius {
				oc.Matched++
				st.matched++
			}
		}
		if n > 0 {
			oc.MatchRate = round1(float64(oc.Matched) / float64(n) * 100)
			oc.MeanDisplacement = round6(sum / float64(n))
			oc.MaxDisplacement = round6(max)
		} else {
			oc.MatchRate = 100.0
		}

		result.Objects = append(result.Objects, oc)
	}

	result.TotalVerticesCompared = len(allDisplacements)
	if len(allDisplacements) > 0 {
		matched := 0
		for _, d := range allDisplacements {
			if d <= cfg.ReferenceMatchRadius {
				matched++
			}
		}
		result.VerticesMatched = matched
		result.OverallMatchRate = round1(float64(matched) / float64(len(allDisplacements)) * 100)

		sorted := append([]float64(nil), allDisplacements...)
		sort.Float64s(sorted)
		n := len(sorted)
		result.MeanDisplacement = round6(sum64(sorted) / float64(n))
		if n%2 == 1 {
			result.MedianDisplacement = round6(sorted[n/2])
		} else {
			result.MedianDisplacement = round6((sorted[n/2-1] + sorted[n/2]) / 2)
		}
		p95Idx := min(int(float64(n)*0.95), n-1)
		result.P95Displacement = round6(sorted[p95Idx])
		result.MaxDisplacement = round6(sorted[n-1])
	}

	for kind, st := range typeStats {
		tb := TypeBreakdown{Objects: st.objects, VerticesCompared: st.compared, VerticesMatched: st.matched}
		if st.compared > 0 {
			tb.MatchRate = round1(float64(st.matched) / float64(st.compared) * 100)
		}
		result.TypeBreakdown[kind] = tb
	}

	result.Warnings = buildReferenceWarnings(outCountByKind, refCountByKind)

	return result
}

// buildReferenceWarnings raises OBJECT_COUNT_DRIFT for any kind whose
// output count differs from the reference count by more than 10%.
func buildReferenceWarnings(outByKind, refByKind map[model.Kind]int) []Warning {
	var warnings []Warning

	kinds := make(map[model.Kind]struct{})
	for k := range outByKind {
		kinds[k] = struct{}{}
	}
	for k := range refByKind {
		kinds[k] = struct{}{}
	}
	sortedKinds := make([]model.Kind, 0, len(kinds))
	for k := range kinds {
		sortedKinds = append(sortedKinds, k)
	}
	sort.Slice(sortedKinds, func(i, j int) bool { return sortedKinds[i] < sortedKinds[j] })

	for _, k := range sortedKinds {
		refCount := refByKind[k]
		outCount := outByKind[k]
		if refCount == 0 {
			continue // nothing to drift against
		}
		drift := math.Abs(float64(outCount-refCount)) / float64(refCount)
		if drift > 0.10 {
			warnings = append(warnings, Warning{
				Code: WarnObjectCountDrift,
				Message: fmt.Sprintf("%s count drifted %.1f%% (output %d, reference %d)",
					k, drift*100, outCount, refCount),
			})
		}
	}

	return warnings
}

func indexByName(elements []OutputElement) map[string]OutputElement {
	out := make(map[string]OutputElement, len(elements))
	for _, e := range elements {
		out[e.Name] = e // last instance wins, matching the original's duplicate-name policy
	}
	return out
}

func distance3D(a, b model.Vertex) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func sum64(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
