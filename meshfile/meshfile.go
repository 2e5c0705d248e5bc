// Package meshfile reads mesh descriptions from YAML and applies them to a
// gekkomesh.Mesh through its setters.
//
//	label: quad
//	positions: [[-1, -1, 0], [1, -1, 0], [1, 1, 0], [-1, 1, 0]]
//	colors: [tomato, gold, [0, 0.5, 1], [1, 1, 1, 0.5]]
//	uvs:
//	  0: [[0, 1], [1, 1], [1, 0], [0, 0]]
//	indices:
//	  format: uint16
//	  values: [0, 1, 2, 0, 2, 3]
package meshfile

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"slices"

	"github.com/gekko3d/gekkomesh"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid mesh file")

type File struct {
	Label     string               `yaml:"label,omitempty"`
	Positions [][3]float32         `yaml:"positions"`
	Normals   [][3]float32         `yaml:"normals,omitempty"`
	Colors    []Color              `yaml:"colors,omitempty"`
	Tangents  [][4]float32         `yaml:"tangents,omitempty"`
	Weights   [][4]float32         `yaml:"weights,omitempty"`
	Joints    [][4]float32         `yaml:"joints,omitempty"`
	UVs       map[int][][2]float32 `yaml:"uvs,omitempty"`
	Indices   *Indices             `yaml:"indices,omitempty"`
}

// Indices lists the index values and their width. Format defaults to uint32.
type Indices struct {
	Format string   `yaml:"format,omitempty"`
	Values []uint32 `yaml:"values"`
}

// Color is an RGBA color written either as a CSS color name or as a list
// of three or four components in [0, 1].
type Color mgl32.Vec4

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		named, ok := colornames.Map[value.Value]
		if !ok {
			return fmt.Errorf("line %d: unknown color %q: %w", value.Line, value.Value, ErrInvalid)
		}
		*c = Color(gekkomesh.ColorVec(named))
		return nil
	case yaml.SequenceNode:
		var comps []float32
		if err := value.Decode(&comps); err != nil {
			return err
		}
		switch len(comps) {
		case 3:
			*c = Color{comps[0], comps[1], comps[2], 1}
		case 4:
			*c = Color{comps[0], comps[1], comps[2], comps[3]}
		default:
			return fmt.Errorf("line %d: color needs 3 or 4 components, got %d: %w", value.Line, len(comps), ErrInvalid)
		}
		return nil
	}
	return fmt.Errorf("line %d: color must be a name or a list: %w", value.Line, ErrInvalid)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse mesh file: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("parse mesh file: %w", err)
	}
	return &f, nil
}

// validate checks that every listed attribute has one value per position.
func (f *File) validate() error {
	n := len(f.Positions)
	if n == 0 {
		return fmt.Errorf("no positions: %w", ErrInvalid)
	}
	lengths := []struct {
		name string
		set  bool
		len  int
	}{
		{"normals", f.Normals != nil, len(f.Normals)},
		{"colors", f.Colors != nil, len(f.Colors)},
		{"tangents", f.Tangents != nil, len(f.Tangents)},
		{"weights", f.Weights != nil, len(f.Weights)},
		{"joints", f.Joints != nil, len(f.Joints)},
	}
	for _, l := range lengths {
		if l.set && l.len != n {
			return fmt.Errorf("%s: %d values for %d positions: %w", l.name, l.len, n, ErrInvalid)
		}
	}
	for _, ch := range f.uvChannels() {
		if _, ok := gekkomesh.UVSlot(ch); !ok {
			return fmt.Errorf("uv channel %d: %w", ch, ErrInvalid)
		}
		if got := len(f.UVs[ch]); got != n {
			return fmt.Errorf("uv%d: %d values for %d positions: %w", ch, got, n, ErrInvalid)
		}
	}
	return nil
}

func (f *File) uvChannels() []int {
	return slices.Sorted(maps.Keys(f.UVs))
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func vec3s(in [][3]float32) []mgl32.Vec3 {
	if in == nil {
		return nil
	}
	out := make([]mgl32.Vec3, len(in))
	for i, v := range in {
		out[i] = mgl32.Vec3(v)
	}
	return out
}

func vec4s(in [][4]float32) []mgl32.Vec4 {
	if in == nil {
		return nil
	}
	out := make([]mgl32.Vec4, len(in))
	for i, v := range in {
		out[i] = mgl32.Vec4(v)
	}
	return out
}

func vec2s(in [][2]float32) []mgl32.Vec2 {
	out := make([]mgl32.Vec2, len(in))
	for i, v := range in {
		out[i] = mgl32.Vec2(v)
	}
	return out
}

// IndexData converts the index list into the declared width. Values that
// do not fit the width are an error.
func (ix *Indices) IndexData() (*gekkomesh.IndexData, error) {
	limit := uint32(math.MaxUint32)
	switch ix.Format {
	case "uint8":
		limit = math.MaxUint8
	case "uint16":
		limit = math.MaxUint16
	case "", "uint32":
	default:
		return nil, fmt.Errorf("index format %q: %w", ix.Format, ErrInvalid)
	}
	for i, v := range ix.Values {
		if v > limit {
			return nil, fmt.Errorf("index %d = %d does not fit %s: %w", i, v, ix.Format, ErrInvalid)
		}
	}

	switch ix.Format {
	case "uint8":
		out := make([]uint8, len(ix.Values))
		for i, v := range ix.Values {
			out[i] = uint8(v)
		}
		return gekkomesh.Indices8(out), nil
	case "uint16":
		out := make([]uint16, len(ix.Values))
		for i, v := range ix.Values {
			out[i] = uint16(v)
		}
		return gekkomesh.Indices16(out), nil
	}
	return gekkomesh.Indices32(append([]uint32(nil), ix.Values...)), nil
}

// Apply sets every attribute of the file on m. Slots the file does not
// mention are left as they are, except that positions are always replaced.
// The file is checked before anything is set, so an invalid file leaves m
// untouched.
func (f *File) Apply(m *gekkomesh.Mesh) error {
	if err := f.validate(); err != nil {
		return err
	}
	var indices *gekkomesh.IndexData
	if f.Indices != nil {
		var err error
		if indices, err = f.Indices.IndexData(); err != nil {
			return err
		}
	}
	if err := m.SetPositions(vec3s(f.Positions)); err != nil {
		return err
	}
	if f.Normals != nil {
		if err := m.SetNormals(vec3s(f.Normals)); err != nil {
			return err
		}
	}
	if f.Colors != nil {
		colors := make([]mgl32.Vec4, len(f.Colors))
		for i, c := range f.Colors {
			colors[i] = mgl32.Vec4(c)
		}
		if err := m.SetColors(colors); err != nil {
			return err
		}
	}
	if f.Tangents != nil {
		if err := m.SetTangents(vec4s(f.Tangents)); err != nil {
			return err
		}
	}
	if f.Weights != nil {
		if err := m.SetWeights(vec4s(f.Weights)); err != nil {
			return err
		}
	}
	if f.Joints != nil {
		if err := m.SetJoints(vec4s(f.Joints)); err != nil {
			return err
		}
	}
	for _, ch := range f.uvChannels() {
		if err := m.SetUVs(ch, vec2s(f.UVs[ch])); err != nil {
			return err
		}
	}
	if indices != nil {
		if err := m.SetIndices(indices); err != nil {
			return err
		}
	}
	return nil
}
