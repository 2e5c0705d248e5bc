package gekkomesh

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Synchronize packs the changed attributes and indices into the GPU buffers.
//
// When the set of present slots or the vertex count changed since the last
// call, the layout is planned again and a new vertex buffer replaces the
// old one. Otherwise only the dirty slots are repacked into the existing
// interleaved array, which is then uploaded in full.
//
// With releaseAfter set, all CPU-side arrays are dropped once the upload
// succeeded and the mesh becomes inaccessible for good.
func (m *Mesh) Synchronize(releaseAfter bool) error {
	if err := m.checkAccess("synchronize"); err != nil {
		return err
	}
	present := m.Present()
	if err := m.validateLengths(present); err != nil {
		return err
	}

	usage := UsageDynamic
	if releaseAfter {
		usage = UsageStatic
	}

	if err := m.syncVertices(present, usage); err != nil {
		return err
	}
	if err := m.syncIndices(usage); err != nil {
		if releaseAfter {
			m.dropStaticVertices()
		}
		return err
	}

	if releaseAfter {
		m.releaseCPU()
	}
	return nil
}

func (m *Mesh) validateLengths(present SlotSet) error {
	for slot := Slot(0); slot < slotCount; slot++ {
		if !present.Has(slot) {
			continue
		}
		if n := m.channel(slot).length(); n != m.vertexCount {
			return fmt.Errorf("synchronize %s: %s has %d values for %d vertices: %w",
				m.label, slot, n, m.vertexCount, ErrLengthMismatch)
		}
	}
	return nil
}

func (m *Mesh) needsRebuild() bool {
	return m.structureChanged || m.countChanged || (m.vertexBuffer == nil && m.vertexCount > 0)
}

func (m *Mesh) syncVertices(present SlotSet, usage BufferUsage) error {
	if m.needsRebuild() {
		return m.rebuildVertices(present, usage)
	}
	if m.dirty.Empty() {
		return nil
	}

	m.packSlots(m.flat, m.layout, m.stride, m.dirty)
	if m.vertexBuffer != nil {
		m.vertexBytes = appendFloats(m.vertexBytes[:0], m.flat)
		if err := m.vertexBuffer.SetData(m.vertexBytes); err != nil {
			// the next call starts over from a fresh buffer
			m.structureChanged = true
			return fmt.Errorf("failed to update %s vertex buffer: %w", m.label, err)
		}
	}
	m.log.Debugf("repacked %v", m.dirty)
	m.dirty = 0
	return nil
}

// rebuildVertices plans a new layout, packs every present slot into a new
// interleaved array and replaces the GPU vertex buffer. Mesh state only
// changes once the new buffer exists.
func (m *Mesh) rebuildVertices(present SlotSet, usage BufferUsage) error {
	layout, stride := PlanLayout(present)
	flat := make([]float32, stride*m.vertexCount)
	m.packSlots(flat, layout, stride, present)

	var buf Buffer
	if len(flat) > 0 {
		m.vertexBytes = appendFloats(m.vertexBytes[:0], flat)
		var err error
		buf, err = m.device.CreateBuffer(BufferDescriptor{
			Label: m.label + "-vertices",
			Bind:  BindVertex,
			Usage: usage,
			Data:  m.vertexBytes,
		})
		if err != nil {
			return fmt.Errorf("failed to create %s vertex buffer: %w", m.label, err)
		}
	}

	if m.vertexBuffer != nil {
		m.vertexBuffer.Release()
	}
	m.vertexBuffer = buf
	m.vertexUsage = usage
	m.binder.BindVertexBuffer(layout, buf, stride*floatSize)

	m.layout, m.stride, m.flat = layout, stride, flat
	m.dirty = 0
	m.countChanged = false
	m.structureChanged = false
	m.log.Debugf("new layout %v, stride %d, %d vertices", present, stride, m.vertexCount)
	return nil
}

// dropStaticVertices frees a static vertex buffer left behind by a failed
// Synchronize(true). The mesh is still accessible, so the next call must
// build a dynamic buffer from scratch.
func (m *Mesh) dropStaticVertices() {
	if m.vertexBuffer == nil || m.vertexUsage != UsageStatic {
		return
	}
	m.binder.BindVertexBuffer(nil, nil, 0)
	m.vertexBuffer.Release()
	m.vertexBuffer = nil
	m.structureChanged = true
	m.log.Debugf("static vertex buffer dropped after failed synchronize")
}

// packSlots writes the slots in which into flat according to layout.
func (m *Mesh) packSlots(flat []float32, layout []VertexElement, stride int, which SlotSet) {
	for _, e := range layout {
		if !which.Has(e.Slot) {
			continue
		}
		m.channel(e.Slot).pack(flat, stride, e.ElementOffset())
	}
}

func (m *Mesh) syncIndices(usage BufferUsage) error {
	if m.indices == nil || m.indices.Len() == 0 {
		if m.indexBuffer != nil {
			m.binder.BindIndexBuffer(nil, IndexFormatNone)
			m.indexBuffer.Release()
			m.indexBuffer = nil
			m.boundIndexFormat = IndexFormatNone
			m.log.Debugf("index buffer released")
		}
		m.indicesDirty = false
		return nil
	}

	format := m.indices.Format()
	if m.indexBuffer == nil || m.indexBuffer.ByteLength() != m.indices.ByteLength() {
		m.indexBytes = m.indices.appendBytes(m.indexBytes[:0])
		buf, err := m.device.CreateBuffer(BufferDescriptor{
			Label: m.label + "-indices",
			Bind:  BindIndex,
			Usage: usage,
			Data:  m.indexBytes,
		})
		if err != nil {
			return fmt.Errorf("failed to create %s index buffer: %w", m.label, err)
		}
		if m.indexBuffer != nil {
			m.indexBuffer.Release()
		}
		m.indexBuffer = buf
		m.binder.BindIndexBuffer(buf, format)
		m.boundIndexFormat = format
		m.indicesDirty = false
		m.log.Debugf("new index buffer, %d x %v", m.indices.Len(), format)
		return nil
	}

	if !m.indicesDirty {
		return nil
	}
	m.indexBytes = m.indices.appendBytes(m.indexBytes[:0])
	if err := m.indexBuffer.SetData(m.indexBytes); err != nil {
		return fmt.Errorf("failed to update %s index buffer: %w", m.label, err)
	}
	if m.boundIndexFormat != format {
		m.binder.BindIndexBuffer(m.indexBuffer, format)
		m.boundIndexFormat = format
	}
	m.indicesDirty = false
	return nil
}

// releaseCPU drops every CPU-side array. GPU buffers stay bound.
func (m *Mesh) releaseCPU() {
	for slot := Slot(0); slot < slotCount; slot++ {
		m.channel(slot).drop()
	}
	m.indices = nil
	m.flat = nil
	m.vertexBytes = nil
	m.indexBytes = nil
	m.accessible = false
	m.log.Debugf("CPU data released")
}

// Release unbinds and frees the GPU buffers. CPU-side data is kept, so an
// accessible mesh can be synchronized again later.
func (m *Mesh) Release() {
	if m.vertexBuffer != nil {
		m.binder.BindVertexBuffer(nil, nil, 0)
		m.vertexBuffer.Release()
		m.vertexBuffer = nil
	}
	if m.indexBuffer != nil {
		m.binder.BindIndexBuffer(nil, IndexFormatNone)
		m.indexBuffer.Release()
		m.indexBuffer = nil
		m.boundIndexFormat = IndexFormatNone
	}
	m.structureChanged = true
	m.indicesDirty = true
}

// Layout returns the element layout of the last synchronization.
func (m *Mesh) Layout() []VertexElement {
	return append([]VertexElement(nil), m.layout...)
}

// Stride returns the number of float32 elements per interleaved vertex.
func (m *Mesh) Stride() int { return m.stride }

// Interleaved returns the packed vertex array of the last synchronization.
func (m *Mesh) Interleaved() ([]float32, error) {
	if err := m.checkAccess("get interleaved data"); err != nil {
		return nil, err
	}
	return m.flat, nil
}

func (m *Mesh) VertexBuffer() Buffer { return m.vertexBuffer }
func (m *Mesh) IndexBuffer() Buffer  { return m.indexBuffer }

func appendFloats(dst []byte, src []float32) []byte {
	for _, v := range src {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}
