package plot

import (
	"fmt"

	"github.com/jwebster45206/story-crafter/pkg/dice"
	"github.com/jwebster45206/story-crafter/pkg/generr"
	"github.com/jwebster45206/story-crafter/pkg/rangetable"
	"github.com/jwebster45206/story-crafter/pkg/sampler"
)

// PlotPoint is an immutable catalogue entry that can fill a beat.
type PlotPoint struct {
	ID          string           `json:"key"`
	Name        string           `json:"name"`
	Category    Category         `json:"category"`
	Characters  int              `json:"characters"` // 0, 1 or 2 character slots
	Description string           `json:"description,omitempty"`
	Ranges      [AxisCount][]int `json:"-"`
}

func (p *PlotPoint) Key() string { return p.ID }

func (p *PlotPoint) Values(axis int) []int {
	if axis < 0 || axis >= AxisCount {
		return nil
	}
	return p.Ranges[axis]
}

// MetaPlotPoint is a single-axis catalogue entry rolled when a beat
// resolves to a Meta plot point.
type MetaPlotPoint struct {
	ID     string     `json:"key"`
	Name   string     `json:"name"`
	Action MetaAction `json:"action"`
	Range  []int      `json:"-"`
}

func (m *MetaPlotPoint) Key() string { return m.ID }

func (m *MetaPlotPoint) Values(axis int) []int {
	if axis != 0 {
		return nil
	}
	return m.Range
}

// Tables bundles the read-only plot tables shared by every story.
type Tables struct {
	Plot  *rangetable.Table[*PlotPoint]
	Meta  *rangetable.Table[*MetaPlotPoint]
	Blank *PlotPoint // sentinel used when a Concluding beat is downgraded
}

// NewTables builds both tables and checks that every axis can produce a
// structural beat and that a Blank sentinel exists.
func NewTables(points []*PlotPoint, metas []*MetaPlotPoint) (*Tables, error) {
	for _, p := range points {
		if p.Characters < 0 || p.Characters > 2 {
			return nil, generr.Newf(generr.CodeInvalidCatalogueEntry, "character count %d outside 0..2", p.Characters).
				With("catalogue", "plot points").With("entry", p.ID)
		}
	}

	if err := uniqueKeys("plot points", points); err != nil {
		return nil, err
	}
	if err := uniqueKeys("meta plot points", metas); err != nil {
		return nil, err
	}

	plotTable, err := rangetable.Build("plot points", points, AxisCount, rangetable.StandardDomain)
	if err != nil {
		return nil, fmt.Errorf("build plot point table: %w", err)
	}
	metaTable, err := rangetable.Build("meta plot points", metas, 1, rangetable.StandardDomain)
	if err != nil {
		return nil, fmt.Errorf("build meta plot point table: %w", err)
	}

	for _, a := range Axes {
		if !plotTable.Any(int(a), func(p *PlotPoint) bool { return p.Category.Structural() }) {
			return nil, generr.New(generr.CodeNoStructuralBeat, "axis has no structural plot point").
				With("catalogue", "plot points").With("axis", a)
		}
	}

	var blank *PlotPoint
	for _, p := range points {
		if p.Category == Blank {
			blank = p
			break
		}
	}
	if blank == nil {
		return nil, generr.New(generr.CodeNoBlankSentinel, "no Blank plot point in catalogue").With("catalogue", "plot points")
	}

	return &Tables{Plot: plotTable, Meta: metaTable, Blank: blank}, nil
}

func uniqueKeys[T interface{ Key() string }](catalogue string, entries []T) error {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		k := e.Key()
		if seen[k] {
			return generr.Newf(generr.CodeInvalidCatalogueEntry, "duplicate key %q", k).
				With("catalogue", catalogue).With("entry", k)
		}
		seen[k] = true
	}
	return nil
}

// SampleMeta rolls on the meta plot point table.
func (t *Tables) SampleMeta(src dice.Source) (*MetaPlotPoint, error) {
	return sampler.SampleAxis(t.Meta, 0, src)
}
