package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/gekkomesh"
)

var ErrUnsupportedIndexFormat = errors.New("index format not supported by WebGPU")

// ShaderLocation returns the vertex shader input location of a slot:
// position 0, normal 1, color 2, tangent 3, weight 4, joint 5, uv0..uv7 6..13.
func ShaderLocation(slot gekkomesh.Slot) uint32 { return uint32(slot) }

func vertexFormat(f gekkomesh.VertexFormat) wgpu.VertexFormat {
	switch f {
	case gekkomesh.FormatFloat32x2:
		return wgpu.VertexFormatFloat32x2
	case gekkomesh.FormatFloat32x3:
		return wgpu.VertexFormatFloat32x3
	case gekkomesh.FormatFloat32x4:
		return wgpu.VertexFormatFloat32x4
	}
	return wgpu.VertexFormatUndefined
}

func indexFormat(f gekkomesh.IndexFormat) (wgpu.IndexFormat, error) {
	switch f {
	case gekkomesh.IndexFormatUint16:
		return wgpu.IndexFormatUint16, nil
	case gekkomesh.IndexFormatUint32:
		return wgpu.IndexFormatUint32, nil
	}
	return wgpu.IndexFormatUndefined, fmt.Errorf("%v: %w", f, ErrUnsupportedIndexFormat)
}

// VertexBufferLayout converts a mesh layout into a WebGPU vertex buffer layout.
func VertexBufferLayout(elements []gekkomesh.VertexElement, strideBytes int) wgpu.VertexBufferLayout {
	attributes := make([]wgpu.VertexAttribute, 0, len(elements))
	for _, e := range elements {
		attributes = append(attributes, wgpu.VertexAttribute{
			ShaderLocation: ShaderLocation(e.Slot),
			Offset:         uint64(e.Offset),
			Format:         vertexFormat(e.Format),
		})
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(strideBytes),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attributes,
	}
}

// Bindings receives the buffers of one mesh and binds them to a render pass.
// It implements gekkomesh.Binder.
type Bindings struct {
	elements      []gekkomesh.VertexElement
	strideBytes   int
	vertex        *Buffer
	index         *Buffer
	indexFormat   gekkomesh.IndexFormat
	layoutVersion int
}

func (b *Bindings) BindVertexBuffer(elements []gekkomesh.VertexElement, buf gekkomesh.Buffer, strideBytes int) {
	if !sameLayout(b.elements, elements) || b.strideBytes != strideBytes {
		b.layoutVersion++
	}
	b.elements = append(b.elements[:0], elements...)
	b.strideBytes = strideBytes
	b.vertex, _ = buf.(*Buffer)
}

func (b *Bindings) BindIndexBuffer(buf gekkomesh.Buffer, format gekkomesh.IndexFormat) {
	b.index, _ = buf.(*Buffer)
	b.indexFormat = format
	if b.index == nil {
		b.indexFormat = gekkomesh.IndexFormatNone
	}
}

func sameLayout(a, b []gekkomesh.VertexElement) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// LayoutVersion changes every time a different vertex layout is bound, so
// pipelines built from Layout can be recreated.
func (b *Bindings) LayoutVersion() int { return b.layoutVersion }

func (b *Bindings) Layout() wgpu.VertexBufferLayout {
	return VertexBufferLayout(b.elements, b.strideBytes)
}

// VertexCount returns the number of vertices in the bound buffer.
func (b *Bindings) VertexCount() uint32 {
	if b.vertex == nil || b.strideBytes == 0 {
		return 0
	}
	return uint32(b.vertex.ByteLength() / b.strideBytes)
}

// IndexCount returns the number of indices in the bound buffer.
func (b *Bindings) IndexCount() uint32 {
	if b.index == nil || b.indexFormat.Size() == 0 {
		return 0
	}
	return uint32(b.index.ByteLength() / b.indexFormat.Size())
}

// Draw binds the buffers to the pass and issues one draw call. Nothing is
// drawn while no vertex buffer is bound.
func (b *Bindings) Draw(pass *wgpu.RenderPassEncoder) error {
	if b.vertex == nil || b.vertex.Raw() == nil {
		return nil
	}
	pass.SetVertexBuffer(0, b.vertex.Raw(), 0, wgpu.WholeSize)

	if b.index == nil || b.index.Raw() == nil {
		pass.Draw(b.VertexCount(), 1, 0, 0)
		return nil
	}
	format, err := indexFormat(b.indexFormat)
	if err != nil {
		return err
	}
	pass.SetIndexBuffer(b.index.Raw(), format, 0, wgpu.WholeSize)
	pass.DrawIndexed(b.IndexCount(), 1, 0, 0, 0)
	return nil
}
