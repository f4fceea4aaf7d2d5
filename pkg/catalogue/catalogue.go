// Package catalogue loads the YAML data files that feed the plot,
// character and actor generators, and builds their tables.
package catalogue

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/story-crafter/pkg/actor"
	"github.com/jwebster45206/story-crafter/pkg/character"
	"github.com/jwebster45206/story-crafter/pkg/generr"
	"github.com/jwebster45206/story-crafter/pkg/plot"
)

// File names inside a catalogue directory.
const (
	PlotPointsFile     = "plot_points.yaml"
	MetaPlotPointsFile = "meta_plot_points.yaml"
	CharactersFile     = "characters.yaml"
	ActorsFile         = "actors.yaml"
)

// Files lists every file a catalogue directory must hold.
var Files = []string{PlotPointsFile, MetaPlotPointsFile, CharactersFile, ActorsFile}

//go:embed data/*.yaml
var embedded embed.FS

// Catalogue is a loaded, validated set of tables. It is read-only once
// built and may be shared by every generation run.
type Catalogue struct {
	PlotPoints     []*plot.PlotPoint
	MetaPlotPoints []*plot.MetaPlotPoint
	Attributes     character.AttributeSet
	Actors         *actor.Inputs

	Plot       *plot.Tables
	Characters *character.Tables
}

type plotPointDoc struct {
	Key         string            `yaml:"key"`
	Name        string            `yaml:"name"`
	Category    string            `yaml:"category"`
	Characters  int               `yaml:"characters"`
	Description string            `yaml:"description"`
	Ranges      map[string]string `yaml:"ranges"`
}

type metaPlotPointDoc struct {
	Key    string `yaml:"key"`
	Name   string `yaml:"name"`
	Action string `yaml:"action"`
	Range  string `yaml:"range"`
}

type attributeDoc struct {
	Name   string `yaml:"name"`
	Range  string `yaml:"range"`
	Reroll bool   `yaml:"reroll"`
}

type charactersDoc struct {
	Identities  []attributeDoc `yaml:"identities"`
	Descriptors []attributeDoc `yaml:"descriptors"`
	Goals       []attributeDoc `yaml:"goals"`
	Motivations []attributeDoc `yaml:"motivations"`
	Focuses     []attributeDoc `yaml:"focuses"`
	Specials    []attributeDoc `yaml:"specials"`
}

type actorsDoc struct {
	Arcs   []actor.Arc            `yaml:"arcs"`
	Sides  map[string][]actor.Arc `yaml:"sides"`
	Traits []actor.Trait          `yaml:"traits"`
	Names  actor.NameSet          `yaml:"names"`
}

// Default returns the catalogue compiled into the binary.
func Default() (*Catalogue, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("open embedded catalogue: %w", err)
	}
	return Load(sub)
}

// LoadDir loads a catalogue from a directory on disk.
func LoadDir(dir string) (*Catalogue, error) {
	return Load(os.DirFS(dir))
}

// Load reads every catalogue file from fsys and builds the tables.
// Unknown YAML fields are rejected so typos surface as errors.
func Load(fsys fs.FS) (*Catalogue, error) {
	var (
		points []plotPointDoc
		metas  []metaPlotPointDoc
		chars  charactersDoc
		actors actorsDoc
	)
	if err := decodeFile(fsys, PlotPointsFile, &points); err != nil {
		return nil, err
	}
	if err := decodeFile(fsys, MetaPlotPointsFile, &metas); err != nil {
		return nil, err
	}
	if err := decodeFile(fsys, CharactersFile, &chars); err != nil {
		return nil, err
	}
	if err := decodeFile(fsys, ActorsFile, &actors); err != nil {
		return nil, err
	}

	c := &Catalogue{}
	var err error
	if c.PlotPoints, err = convertPlotPoints(points); err != nil {
		return nil, err
	}
	if c.MetaPlotPoints, err = convertMetaPlotPoints(metas); err != nil {
		return nil, err
	}
	if c.Attributes, err = convertAttributes(chars); err != nil {
		return nil, err
	}
	c.Actors = &actor.Inputs{
		Arcs:   actors.Arcs,
		Sides:  actors.Sides,
		Traits: actors.Traits,
		Names:  actors.Names,
	}

	if c.Plot, err = plot.NewTables(c.PlotPoints, c.MetaPlotPoints); err != nil {
		return nil, err
	}
	if c.Characters, err = character.NewTables(c.Attributes); err != nil {
		return nil, err
	}
	if err := checkActors(c.Actors); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeFile(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return generr.Newf(generr.CodeInvalidCatalogueEntry, "decode %s", name).With("file", name).Wrap(err)
	}
	return nil
}

func convertPlotPoints(docs []plotPointDoc) ([]*plot.PlotPoint, error) {
	out := make([]*plot.PlotPoint, 0, len(docs))
	for _, d := range docs {
		if d.Key == "" {
			return nil, entryError(PlotPointsFile, d.Name, "plot point has no key")
		}
		category, err := plot.ParseCategory(d.Category)
		if err != nil {
			return nil, entryError(PlotPointsFile, d.Key, "%v", err)
		}
		p := &plot.PlotPoint{
			ID:          d.Key,
			Name:        d.Name,
			Category:    category,
			Characters:  d.Characters,
			Description: d.Description,
		}
		for name, expr := range d.Ranges {
			axis, err := plot.ParseAxis(name)
			if err != nil {
				return nil, entryError(PlotPointsFile, d.Key, "%v", err)
			}
			if p.Ranges[axis], err = ParseRange(expr); err != nil {
				return nil, entryError(PlotPointsFile, d.Key, "%v", err)
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func convertMetaPlotPoints(docs []metaPlotPointDoc) ([]*plot.MetaPlotPoint, error) {
	out := make([]*plot.MetaPlotPoint, 0, len(docs))
	for _, d := range docs {
		action, err := plot.ParseMetaAction(d.Action)
		if err != nil {
			return nil, entryError(MetaPlotPointsFile, d.Key, "%v", err)
		}
		r, err := ParseRange(d.Range)
		if err != nil {
			return nil, entryError(MetaPlotPointsFile, d.Key, "%v", err)
		}
		out = append(out, &plot.MetaPlotPoint{ID: d.Key, Name: d.Name, Action: action, Range: r})
	}
	return out, nil
}

func convertAttributes(doc charactersDoc) (character.AttributeSet, error) {
	byKind := map[character.Kind][]attributeDoc{
		character.KindIdentity:   doc.Identities,
		character.KindDescriptor: doc.Descriptors,
		character.KindGoal:       doc.Goals,
		character.KindMotivation: doc.Motivations,
		character.KindFocus:      doc.Focuses,
		character.KindSpecial:    doc.Specials,
	}

	set := character.AttributeSet{}
	for kind, docs := range byKind {
		if len(docs) == 0 {
			continue
		}
		attrs := make([]*character.Attribute, 0, len(docs))
		for _, d := range docs {
			r, err := ParseRange(d.Range)
			if err != nil {
				return nil, entryError(CharactersFile, d.Name, "%s: %v", kind, err)
			}
			attrs = append(attrs, &character.Attribute{Name: d.Name, Range: r, RerollFlag: d.Reroll})
		}
		set[kind] = attrs
	}
	return set, nil
}

func checkActors(in *actor.Inputs) error {
	if len(in.Arcs) == 0 {
		return generr.New(generr.CodeEmptyCandidateSet, "no arcs").With("file", ActorsFile)
	}
	if len(in.Traits) == 0 {
		return generr.New(generr.CodeEmptyCandidateSet, "no traits").With("file", ActorsFile)
	}
	if len(in.Sides) == 0 {
		return generr.New(generr.CodeEmptyCandidateSet, "no sides").With("file", ActorsFile)
	}
	for _, side := range in.SideNames() {
		if n := len(in.Sides[side]); n < actor.MinSideArcs {
			return generr.Newf(generr.CodeUndersizedSideArcs, "side %q has %d arcs, %d needed", side, n, actor.MinSideArcs).
				With("file", ActorsFile).With("side", side)
		}
	}
	if len(in.Names.Female) == 0 || len(in.Names.Male) == 0 || len(in.Names.Last) == 0 {
		return generr.New(generr.CodeEmptyCandidateSet, "every name list needs at least one name").With("file", ActorsFile)
	}
	return nil
}

func entryError(file, entry, format string, args ...any) *generr.Error {
	return generr.Newf(generr.CodeInvalidCatalogueEntry, format, args...).With("file", file).With("entry", entry)
}
