package gekkomesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// channel is the type-erased view of one attribute slot used by the packer.
type channel interface {
	isPresent() bool
	length() int
	markHole(i int)
	pack(dst []float32, stride, offset int)
	drop()
}

// attribute is the optional container of one slot. present is the
// discriminant; values may be an empty non-nil slice on an empty mesh.
type attribute[V any] struct {
	values  []V
	holes   []bool
	present bool
	put     func(dst []float32, v V)
}

func (a *attribute[V]) isPresent() bool { return a.present }
func (a *attribute[V]) length() int     { return len(a.values) }

func (a *attribute[V]) markHole(i int) {
	if a.holes == nil {
		a.holes = make([]bool, len(a.values))
	}
	a.holes[i] = true
}

// pack writes every defined vertex of the slot. Holes keep the bytes that
// are already in dst.
func (a *attribute[V]) pack(dst []float32, stride, offset int) {
	for i, v := range a.values {
		if a.holes != nil && a.holes[i] {
			continue
		}
		a.put(dst[stride*i+offset:], v)
	}
}

func (a *attribute[V]) drop() {
	a.values, a.holes, a.present = nil, nil, false
}

func putVec2(dst []float32, v mgl32.Vec2) { copy(dst[:2], v[:]) }
func putVec3(dst []float32, v mgl32.Vec3) { copy(dst[:3], v[:]) }
func putVec4(dst []float32, v mgl32.Vec4) { copy(dst[:4], v[:]) }

// Mesh owns the vertex attributes and indices of one renderable mesh and
// the GPU buffers they are packed into.
//
// A Mesh is not safe for concurrent use. Setters take ownership of the
// arrays they are given; mutate a stored array only by setting it again.
type Mesh struct {
	id    string
	label string
	log   Logger

	device BufferDevice
	binder Binder

	positions attribute[mgl32.Vec3]
	normals   attribute[mgl32.Vec3]
	colors    attribute[mgl32.Vec4]
	tangents  attribute[mgl32.Vec4]
	weights   attribute[mgl32.Vec4]
	joints    attribute[mgl32.Vec4]
	uvs       [MaxUVChannels]attribute[mgl32.Vec2]
	indices   *IndexData

	vertexCount int

	// state of the last successful vertex build
	layout      []VertexElement
	stride      int
	flat        []float32
	vertexBytes []byte
	indexBytes  []byte

	vertexBuffer     Buffer
	vertexUsage      BufferUsage
	indexBuffer      Buffer
	boundIndexFormat IndexFormat

	dirty            SlotSet
	indicesDirty     bool
	countChanged     bool
	structureChanged bool
	accessible       bool
}

type Option func(*Mesh)

func WithLogger(logger Logger) Option {
	return func(m *Mesh) {
		if logger != nil {
			m.log = logger
		}
	}
}

// WithLabel sets the name used in logs and GPU buffer labels.
func WithLabel(label string) Option {
	return func(m *Mesh) { m.label = label }
}

func WithID(id string) Option {
	return func(m *Mesh) { m.id = id }
}

// NewMesh creates an empty, accessible mesh whose buffers are created on
// device and bound through binder.
func NewMesh(device BufferDevice, binder Binder, opts ...Option) *Mesh {
	if device == nil {
		panic("NewMesh: device is nil")
	}
	if binder == nil {
		panic("NewMesh: binder is nil")
	}
	m := &Mesh{
		id:               uuid.NewString(),
		log:              NewNopLogger(),
		device:           device,
		binder:           binder,
		structureChanged: true,
		accessible:       true,
	}
	m.positions.put = putVec3
	m.normals.put = putVec3
	m.colors.put = putVec4
	m.tangents.put = putVec4
	m.weights.put = putVec4
	m.joints.put = putVec4
	for i := range m.uvs {
		m.uvs[i].put = putVec2
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.label == "" {
		m.label = "mesh-" + m.id
	}
	m.log = Scoped(m.log, "mesh "+m.label)
	return m
}

func (m *Mesh) ID() string    { return m.id }
func (m *Mesh) Label() string { return m.label }

// Accessible reports whether CPU-side data can still be read and written.
func (m *Mesh) Accessible() bool { return m.accessible }

func (m *Mesh) VertexCount() int { return m.vertexCount }

func (m *Mesh) channel(slot Slot) channel {
	switch slot {
	case SlotPosition:
		return &m.positions
	case SlotNormal:
		return &m.normals
	case SlotColor:
		return &m.colors
	case SlotTangent:
		return &m.tangents
	case SlotWeight:
		return &m.weights
	case SlotJoint:
		return &m.joints
	}
	if slot >= SlotUV0 && slot <= SlotUV7 {
		return &m.uvs[slot-SlotUV0]
	}
	return nil
}

// Present returns the set of slots that currently hold an array.
func (m *Mesh) Present() SlotSet {
	var s SlotSet
	for slot := Slot(0); slot < slotCount; slot++ {
		if m.channel(slot).isPresent() {
			s = s.With(slot)
		}
	}
	return s
}

// Dirty returns the slots whose values changed since the last synchronization.
func (m *Mesh) Dirty() SlotSet { return m.dirty }

func (m *Mesh) checkAccess(op string) error {
	if !m.accessible {
		return fmt.Errorf("%s %s: %w", op, m.label, ErrInvalidState)
	}
	return nil
}

func setAttribute[V any](m *Mesh, slot Slot, a *attribute[V], values []V) error {
	if err := m.checkAccess("set " + slot.String()); err != nil {
		return err
	}
	if values != nil && len(values) != m.vertexCount {
		return fmt.Errorf("set %s on %s: %d values for %d vertices: %w",
			slot, m.label, len(values), m.vertexCount, ErrLengthMismatch)
	}
	present := values != nil
	if present != a.present {
		m.structureChanged = true
	}
	a.values, a.holes, a.present = values, nil, present
	m.dirty = m.dirty.With(slot)
	return nil
}

func getAttribute[V any](m *Mesh, slot Slot, a *attribute[V]) ([]V, error) {
	if err := m.checkAccess("get " + slot.String()); err != nil {
		return nil, err
	}
	return a.values, nil
}

// SetPositions replaces the positions and with them the vertex count.
// Other present slots must be set again with matching lengths before the
// next Synchronize.
func (m *Mesh) SetPositions(positions []mgl32.Vec3) error {
	if err := m.checkAccess("set position"); err != nil {
		return err
	}
	if len(positions) != m.vertexCount {
		m.vertexCount = len(positions)
		m.countChanged = true
		m.structureChanged = true
	}
	present := positions != nil
	if present != m.positions.present {
		m.structureChanged = true
	}
	m.positions.values, m.positions.holes, m.positions.present = positions, nil, present
	m.dirty = m.dirty.With(SlotPosition)
	return nil
}

func (m *Mesh) SetNormals(normals []mgl32.Vec3) error {
	return setAttribute(m, SlotNormal, &m.normals, normals)
}

func (m *Mesh) SetColors(colors []mgl32.Vec4) error {
	return setAttribute(m, SlotColor, &m.colors, colors)
}

// SetTangents sets the tangents; W carries the bitangent handedness.
func (m *Mesh) SetTangents(tangents []mgl32.Vec4) error {
	return setAttribute(m, SlotTangent, &m.tangents, tangents)
}

func (m *Mesh) SetWeights(weights []mgl32.Vec4) error {
	return setAttribute(m, SlotWeight, &m.weights, weights)
}

func (m *Mesh) SetJoints(joints []mgl32.Vec4) error {
	return setAttribute(m, SlotJoint, &m.joints, joints)
}

// SetUVs sets texture coordinate channel 0..7.
func (m *Mesh) SetUVs(channel int, uvs []mgl32.Vec2) error {
	slot, ok := UVSlot(channel)
	if !ok {
		return fmt.Errorf("set uv%d on %s: %w", channel, m.label, ErrInvalidChannel)
	}
	return setAttribute(m, slot, &m.uvs[channel], uvs)
}

func (m *Mesh) Positions() ([]mgl32.Vec3, error) {
	return getAttribute(m, SlotPosition, &m.positions)
}

func (m *Mesh) Normals() ([]mgl32.Vec3, error) {
	return getAttribute(m, SlotNormal, &m.normals)
}

func (m *Mesh) Colors() ([]mgl32.Vec4, error) {
	return getAttribute(m, SlotColor, &m.colors)
}

func (m *Mesh) Tangents() ([]mgl32.Vec4, error) {
	return getAttribute(m, SlotTangent, &m.tangents)
}

func (m *Mesh) Weights() ([]mgl32.Vec4, error) {
	return getAttribute(m, SlotWeight, &m.weights)
}

func (m *Mesh) Joints() ([]mgl32.Vec4, error) {
	return getAttribute(m, SlotJoint, &m.joints)
}

func (m *Mesh) UVs(channel int) ([]mgl32.Vec2, error) {
	slot, ok := UVSlot(channel)
	if !ok {
		return nil, fmt.Errorf("get uv%d on %s: %w", channel, m.label, ErrInvalidChannel)
	}
	return getAttribute(m, slot, &m.uvs[channel])
}

// MarkUnset marks vertices of a present slot as undefined. The packer skips
// them, so their interleaved bytes keep their previous contents. Setting the
// slot again clears all marks.
func (m *Mesh) MarkUnset(slot Slot, vertices ...int) error {
	if err := m.checkAccess("unset " + slot.String()); err != nil {
		return err
	}
	ch := m.channel(slot)
	if ch == nil || !ch.isPresent() {
		return fmt.Errorf("unset %s on %s: %w", slot, m.label, ErrSlotAbsent)
	}
	for _, v := range vertices {
		if v < 0 || v >= ch.length() {
			return fmt.Errorf("unset %s on %s: vertex %d of %d: %w", slot, m.label, v, ch.length(), ErrVertexOutOfRange)
		}
	}
	for _, v := range vertices {
		ch.markHole(v)
	}
	m.dirty = m.dirty.With(slot)
	return nil
}

// SetIndices replaces the index data; nil removes it.
func (m *Mesh) SetIndices(indices *IndexData) error {
	if err := m.checkAccess("set indices"); err != nil {
		return err
	}
	m.indices = indices
	m.indicesDirty = true
	return nil
}

func (m *Mesh) Indices() (*IndexData, error) {
	if err := m.checkAccess("get indices"); err != nil {
		return nil, err
	}
	return m.indices, nil
}
