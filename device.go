package gekkomesh

// BindFlag tells the device what a buffer is bound as.
type BindFlag uint8

const (
	BindVertex BindFlag = iota + 1
	BindIndex
)

func (b BindFlag) String() string {
	switch b {
	case BindVertex:
		return "vertex"
	case BindIndex:
		return "index"
	}
	return "unknown"
}

// BufferUsage is an update frequency hint for a new buffer.
type BufferUsage uint8

const (
	// UsageDynamic buffers may be rewritten with SetData.
	UsageDynamic BufferUsage = iota
	// UsageStatic buffers are written once at creation.
	UsageStatic
)

type BufferDescriptor struct {
	Label string
	Bind  BindFlag
	Usage BufferUsage
	Data  []byte // initial contents, also defines the size
}

// Buffer is a GPU buffer exclusively owned by one mesh.
type Buffer interface {
	ByteLength() int
	// SetData overwrites the whole buffer.
	SetData(data []byte) error
	Release()
}

type BufferDevice interface {
	CreateBuffer(desc BufferDescriptor) (Buffer, error)
}

// VertexBinder receives the vertex layout of a mesh. A nil buffer clears the binding.
type VertexBinder interface {
	BindVertexBuffer(elements []VertexElement, buf Buffer, strideBytes int)
}

// IndexBinder receives the index buffer of a mesh. IndexFormatNone clears the binding.
type IndexBinder interface {
	BindIndexBuffer(buf Buffer, format IndexFormat)
}

// Binder receives both vertex and index bindings.
type Binder interface {
	VertexBinder
	IndexBinder
}
