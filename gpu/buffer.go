package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/gekkomesh"
)

var (
	ErrBufferReleased = errors.New("buffer was released")
	ErrStaticBuffer   = errors.New("static buffer cannot be rewritten")
	ErrSizeMismatch   = errors.New("data size does not match buffer size")
)

// copyAlignment is the WebGPU alignment of buffer sizes and queue writes.
const copyAlignment = 4

// Device creates mesh buffers on a WebGPU device.
type Device struct {
	Device *wgpu.Device
	queue  *wgpu.Queue
	log    gekkomesh.Logger
}

func NewDevice(device *wgpu.Device, logger gekkomesh.Logger) *Device {
	return &Device{
		Device: device,
		queue:  device.GetQueue(),
		log:    gekkomesh.Scoped(logger, "gpu"),
	}
}

func bufferUsage(bind gekkomesh.BindFlag, usage gekkomesh.BufferUsage) wgpu.BufferUsage {
	var u wgpu.BufferUsage
	switch bind {
	case gekkomesh.BindVertex:
		u = wgpu.BufferUsageVertex
	case gekkomesh.BindIndex:
		u = wgpu.BufferUsageIndex
	}
	if usage == gekkomesh.UsageDynamic {
		u |= wgpu.BufferUsageCopyDst
	}
	return u
}

// alignedSize rounds n up to the copy alignment.
func alignedSize(n int) int {
	if r := n % copyAlignment; r != 0 {
		n += copyAlignment - r
	}
	return n
}

// padded returns data extended with zeros to the copy alignment, reusing
// scratch when data is not aligned already.
func padded(data []byte, scratch []byte) ([]byte, []byte) {
	size := alignedSize(len(data))
	if size == len(data) {
		return data, scratch
	}
	if cap(scratch) < size {
		scratch = make([]byte, size)
	}
	scratch = scratch[:size]
	n := copy(scratch, data)
	clear(scratch[n:])
	return scratch, scratch
}

func (d *Device) CreateBuffer(desc gekkomesh.BufferDescriptor) (gekkomesh.Buffer, error) {
	if len(desc.Data) == 0 {
		return nil, fmt.Errorf("failed to create %s buffer %q: empty contents", desc.Bind, desc.Label)
	}
	b := &Buffer{
		queue:  d.queue,
		label:  desc.Label,
		length: len(desc.Data),
		static: desc.Usage == gekkomesh.UsageStatic,
	}
	var contents []byte
	contents, b.scratch = padded(desc.Data, nil)

	buf, err := d.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    desc.Label,
		Contents: contents,
		Usage:    bufferUsage(desc.Bind, desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s buffer %q: %w", desc.Bind, desc.Label, err)
	}
	b.buf = buf
	d.log.Debugf("created %s buffer %q, %d bytes", desc.Bind, desc.Label, len(contents))
	return b, nil
}

// Buffer is a vertex or index buffer owned by one mesh.
type Buffer struct {
	buf     *wgpu.Buffer
	queue   *wgpu.Queue
	label   string
	length  int
	static  bool
	scratch []byte
}

// ByteLength returns the logical size, before alignment padding.
func (b *Buffer) ByteLength() int { return b.length }

func (b *Buffer) Label() string { return b.label }

// Raw returns the underlying WebGPU buffer, nil once released.
func (b *Buffer) Raw() *wgpu.Buffer { return b.buf }

func (b *Buffer) SetData(data []byte) error {
	if b.buf == nil {
		return fmt.Errorf("write %q: %w", b.label, ErrBufferReleased)
	}
	if b.static {
		return fmt.Errorf("write %q: %w", b.label, ErrStaticBuffer)
	}
	if len(data) != b.length {
		return fmt.Errorf("write %q: %d bytes into %d: %w", b.label, len(data), b.length, ErrSizeMismatch)
	}
	var contents []byte
	contents, b.scratch = padded(data, b.scratch)
	return b.queue.WriteBuffer(b.buf, 0, contents)
}

func (b *Buffer) Release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
	b.scratch = nil
}
