package gekkomesh

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/colornames"
)

func triangle() []mgl32.Vec3 {
	return []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
}

func TestMesh_NewMesh(t *testing.T) {
	m := NewMesh(&fakeDevice{}, &fakeBinder{})

	assert.NotEmpty(t, m.ID())
	assert.Equal(t, "mesh-"+m.ID(), m.Label())
	assert.True(t, m.Accessible())
	assert.Equal(t, 0, m.VertexCount())
	assert.True(t, m.Present().Empty())

	require.PanicsWithValue(t, "NewMesh: device is nil", func() {
		NewMesh(nil, &fakeBinder{})
	})
	require.PanicsWithValue(t, "NewMesh: binder is nil", func() {
		NewMesh(&fakeDevice{}, nil)
	})
}

func TestMesh_SetPositionsChangesCount(t *testing.T) {
	m, _, _ := newTestMesh()
	require.NoError(t, m.Synchronize(false))

	require.NoError(t, m.SetPositions(triangle()))
	assert.Equal(t, 3, m.VertexCount())
	assert.True(t, m.countChanged)
	assert.True(t, m.structureChanged)
	assert.True(t, m.Dirty().Has(SlotPosition))

	require.NoError(t, m.Synchronize(false))
	assert.False(t, m.countChanged)
	assert.False(t, m.structureChanged)

	// same length, new values
	require.NoError(t, m.SetPositions([]mgl32.Vec3{{2, 2, 2}, {3, 3, 3}, {4, 4, 4}}))
	assert.False(t, m.countChanged)
	assert.False(t, m.structureChanged)
	assert.Equal(t, SlotsOf(SlotPosition), m.Dirty())
}

func TestMesh_LengthMismatchLeavesStateUntouched(t *testing.T) {
	m, _, _ := newTestMesh()
	require.NoError(t, m.SetPositions(triangle()))
	normals := []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	require.NoError(t, m.SetNormals(normals))
	require.NoError(t, m.Synchronize(false))

	tests := []struct {
		name string
		set  func() error
	}{
		{"normals", func() error { return m.SetNormals(make([]mgl32.Vec3, 2)) }},
		{"colors", func() error { return m.SetColors(make([]mgl32.Vec4, 4)) }},
		{"tangents", func() error { return m.SetTangents(make([]mgl32.Vec4, 0)) }},
		{"weights", func() error { return m.SetWeights(make([]mgl32.Vec4, 1)) }},
		{"joints", func() error { return m.SetJoints(make([]mgl32.Vec4, 5)) }},
		{"uv5", func() error { return m.SetUVs(5, make([]mgl32.Vec2, 2)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set()
			require.ErrorIs(t, err, ErrLengthMismatch)

			got, err := m.Normals()
			require.NoError(t, err)
			assert.Equal(t, normals, got)
			assert.True(t, m.Dirty().Empty())
			assert.False(t, m.structureChanged)
			assert.Equal(t, SlotsOf(SlotPosition, SlotNormal), m.Present())
		})
	}
}

func TestMesh_PresenceTransitions(t *testing.T) {
	m, _, _ := newTestMesh()
	require.NoError(t, m.SetPositions(triangle()))
	require.NoError(t, m.Synchronize(false))

	require.NoError(t, m.SetColors(SolidColors(colornames.Orange, 3)))
	assert.True(t, m.structureChanged)
	require.NoError(t, m.Synchronize(false))

	require.NoError(t, m.SetColors(SolidColors(colornames.Teal, 3)))
	assert.False(t, m.structureChanged, "replacing values keeps the structure")
	require.NoError(t, m.Synchronize(false))

	require.NoError(t, m.SetColors(nil))
	assert.True(t, m.structureChanged)
	assert.False(t, m.Present().Has(SlotColor))

	colors, err := m.Colors()
	require.NoError(t, err)
	assert.Nil(t, colors)
}

func TestMesh_UVChannels(t *testing.T) {
	m, _, _ := newTestMesh()
	require.NoError(t, m.SetPositions(triangle()))

	uvs := []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}}
	require.NoError(t, m.SetUVs(7, uvs))
	assert.True(t, m.Present().Has(SlotUV7))

	got, err := m.UVs(7)
	require.NoError(t, err)
	assert.Equal(t, uvs, got)

	require.ErrorIs(t, m.SetUVs(8, uvs), ErrInvalidChannel)
	require.ErrorIs(t, m.SetUVs(-1, uvs), ErrInvalidChannel)
	_, err = m.UVs(8)
	require.ErrorIs(t, err, ErrInvalidChannel)
}

func TestMesh_MarkUnset(t *testing.T) {
	m, _, _ := newTestMesh()
	require.NoError(t, m.SetPositions(triangle()))
	require.NoError(t, m.Synchronize(false))

	require.ErrorIs(t, m.MarkUnset(SlotNormal, 0), ErrSlotAbsent)
	require.ErrorIs(t, m.MarkUnset(SlotPosition, 0, 3), ErrVertexOutOfRange)
	assert.Nil(t, m.positions.holes, "a failed call marks nothing")
	assert.True(t, m.Dirty().Empty())

	require.NoError(t, m.MarkUnset(SlotPosition, 1))
	assert.Equal(t, []bool{false, true, false}, m.positions.holes)
	assert.True(t, m.Dirty().Has(SlotPosition))

	require.NoError(t, m.SetPositions(triangle()))
	assert.Nil(t, m.positions.holes)
}

func TestMesh_Bounds(t *testing.T) {
	m, _, _ := newTestMesh()

	b, err := m.Bounds()
	require.NoError(t, err)
	assert.True(t, b.Empty())

	require.NoError(t, m.SetPositions([]mgl32.Vec3{{-1, 2, 0}, {3, -4, 5}, {100, 100, 100}}))
	require.NoError(t, m.MarkUnset(SlotPosition, 2))

	b, err = m.Bounds()
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{-1, -4, 0}, b.Min)
	assert.Equal(t, mgl32.Vec3{3, 2, 5}, b.Max)
	assert.Equal(t, mgl32.Vec3{1, -1, 2.5}, b.Center())
	assert.Equal(t, mgl32.Vec3{4, 6, 5}, b.Size())
}

func TestMesh_Indices(t *testing.T) {
	m, _, _ := newTestMesh()

	got, err := m.Indices()
	require.NoError(t, err)
	assert.Nil(t, got)

	idx := Indices16([]uint16{0, 1, 2})
	require.NoError(t, m.SetIndices(idx))
	assert.True(t, m.indicesDirty)

	got, err = m.Indices()
	require.NoError(t, err)
	assert.Same(t, idx, got)
	assert.Equal(t, IndexFormatUint16, got.Format())
	assert.Equal(t, 6, got.ByteLength())
	assert.Equal(t, uint32(2), got.At(2))
}

func TestMesh_AccessorsFailAfterRelease(t *testing.T) {
	m, _, _ := newTestMesh()
	require.NoError(t, m.SetPositions(triangle()))
	require.NoError(t, m.SetIndices(Indices8([]uint8{0, 1, 2})))
	require.NoError(t, m.Synchronize(true))
	assert.False(t, m.Accessible())

	calls := map[string]func() error{
		"SetPositions": func() error { return m.SetPositions(triangle()) },
		"SetNormals":   func() error { return m.SetNormals(nil) },
		"SetColors":    func() error { return m.SetColors(nil) },
		"SetTangents":  func() error { return m.SetTangents(nil) },
		"SetWeights":   func() error { return m.SetWeights(nil) },
		"SetJoints":    func() error { return m.SetJoints(nil) },
		"SetUVs":       func() error { return m.SetUVs(0, nil) },
		"SetIndices":   func() error { return m.SetIndices(nil) },
		"MarkUnset":    func() error { return m.MarkUnset(SlotPosition, 0) },
		"Synchronize":  func() error { return m.Synchronize(false) },
		"Positions":    func() error { _, err := m.Positions(); return err },
		"Normals":      func() error { _, err := m.Normals(); return err },
		"Colors":       func() error { _, err := m.Colors(); return err },
		"Tangents":     func() error { _, err := m.Tangents(); return err },
		"Weights":      func() error { _, err := m.Weights(); return err },
		"Joints":       func() error { _, err := m.Joints(); return err },
		"UVs":          func() error { _, err := m.UVs(0); return err },
		"Indices":      func() error { _, err := m.Indices(); return err },
		"Interleaved":  func() error { _, err := m.Interleaved(); return err },
		"Bounds":       func() error { _, err := m.Bounds(); return err },
	}
	for name, call := range calls {
		assert.ErrorIs(t, call(), ErrInvalidState, name)
	}
}

func TestMesh_DebugLogging(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewWriterLogger(&out, &errOut, "meshes", true)
	m := NewMesh(&fakeDevice{}, &fakeBinder{}, WithLogger(logger), WithLabel("quad"), WithID("fixed"))
	assert.Equal(t, "fixed", m.ID())

	require.NoError(t, m.SetPositions(triangle()))
	require.NoError(t, m.Synchronize(false))

	assert.Contains(t, out.String(), "[meshes] DEBUG: mesh quad: new layout {position}, stride 3, 3 vertices")
	assert.Empty(t, errOut.String())

	logger.SetDebug(false)
	out.Reset()
	require.NoError(t, m.SetPositions(triangle()))
	require.NoError(t, m.Synchronize(false))
	assert.False(t, strings.Contains(out.String(), "DEBUG"))
}
