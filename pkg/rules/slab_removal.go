package rules

import (
	"sort"

	"structuralign/pkg/model"
)

// removeSlabs is Rule 3: every SLAB whose aligned vertex set has
// max(z) <= roofZThreshold is removed; slabs above that are kept as the
// roof. Each removed slab's aligned XY footprint is captured, keyed by
// its matched floor level, for Rule 4 to consolidate.
func removeSlabs(elements []AlignedElement, roofZThreshold float64, ladder model.FloorLadder) ([]model.ObjectEdit, map[float64][]boundingRect) {
	footprints := make(map[float64][]boundingRect)
	var edits []model.ObjectEdit

	// Deterministic iteration order: by element ID ascending.
	slabs := make([]AlignedElement, 0)
	for _, ae := range elements {
		if ae.Element.Kind == model.KindSlab {
			slabs = append(slabs, ae)
		}
	}
	sort.Slice(slabs, func(i, j int) bool { return slabs[i].Element.ID < slabs[j].Element.ID })

	for _, ae := range slabs {
		if len(ae.Aligned) == 0 {
			continue
		}
		maxZ := ae.Aligned[0].AlignedZ
		rect := boundingRect{
			xMin: ae.Aligned[0].AlignedX, xMax: ae.Aligned[0].AlignedX,
			yMin: ae.Aligned[0].AlignedY, yMax: ae.Aligned[0].AlignedY,
		}
		for _, av := range ae.Aligned[1:] {
			if av.AlignedZ > maxZ {
				maxZ = av.AlignedZ
			}
			rect.xMin = min(rect.xMin, av.AlignedX)
			rect.xMax = max(rect.xMax, av.AlignedX)
			rect.yMin = min(rect.yMin, av.AlignedY)
			rect.yMax = max(rect.yMax, av.AlignedY)
		}

		if maxZ > roofZThreshold {
			continue // keep as roof
		}

		edits = append(edits, model.ObjectEdit{Op: model.EditRemove, RemoveElementID: ae.Element.ID, Rule: 3})

		sum := 0.0
		for _, av := range ae.Aligned {
			sum += av.AlignedZ
		}
		rect.z = matchFloor(sum/float64(len(ae.Aligned)), ladder, 0.5)
		footprints[rect.z] = append(footprints[rect.z], rect)
	}

	return edits, footprints
}
