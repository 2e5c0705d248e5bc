package gekkomesh

import (
	"errors"
	"fmt"
)

type fakeBuffer struct {
	label    string
	bind     BindFlag
	usage    BufferUsage
	data     []byte
	writes   int
	released bool
	failSet  error
}

func (b *fakeBuffer) ByteLength() int { return len(b.data) }

func (b *fakeBuffer) SetData(data []byte) error {
	if b.failSet != nil {
		return b.failSet
	}
	if b.released {
		return errors.New("write to released buffer")
	}
	if len(data) != len(b.data) {
		return fmt.Errorf("write of %d bytes to %d byte buffer", len(data), len(b.data))
	}
	copy(b.data, data)
	b.writes++
	return nil
}

func (b *fakeBuffer) Release() { b.released = true }

type fakeDevice struct {
	created    []*fakeBuffer
	failCreate error
	failIndex  error
}

func (d *fakeDevice) CreateBuffer(desc BufferDescriptor) (Buffer, error) {
	if d.failCreate != nil {
		return nil, d.failCreate
	}
	if d.failIndex != nil && desc.Bind == BindIndex {
		return nil, d.failIndex
	}
	b := &fakeBuffer{
		label: desc.Label,
		bind:  desc.Bind,
		usage: desc.Usage,
		data:  append([]byte(nil), desc.Data...),
	}
	d.created = append(d.created, b)
	return b, nil
}

func (d *fakeDevice) count(bind BindFlag) int {
	n := 0
	for _, b := range d.created {
		if b.bind == bind {
			n++
		}
	}
	return n
}

type fakeBinder struct {
	elements    []VertexElement
	vertex      Buffer
	strideBytes int
	index       Buffer
	format      IndexFormat
	vertexBinds int
	indexBinds  int
}

func (b *fakeBinder) BindVertexBuffer(elements []VertexElement, buf Buffer, strideBytes int) {
	b.elements, b.vertex, b.strideBytes = elements, buf, strideBytes
	b.vertexBinds++
}

func (b *fakeBinder) BindIndexBuffer(buf Buffer, format IndexFormat) {
	b.index, b.format = buf, format
	b.indexBinds++
}

func newTestMesh() (*Mesh, *fakeDevice, *fakeBinder) {
	dev := &fakeDevice{}
	binder := &fakeBinder{}
	return NewMesh(dev, binder, WithLabel("test")), dev, binder
}
