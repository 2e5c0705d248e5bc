package gekkomesh

import "fmt"

// VertexFormat is the component format of one interleaved element.
type VertexFormat uint8

const (
	FormatFloat32x2 VertexFormat = iota + 2
	FormatFloat32x3
	FormatFloat32x4
)

// floatSize is the byte size of one packed component.
const floatSize = 4

// Components returns the number of float32 components of the format.
func (f VertexFormat) Components() int { return int(f) }

// Size returns the byte size of the format.
func (f VertexFormat) Size() int { return int(f) * floatSize }

func (f VertexFormat) String() string {
	switch f {
	case FormatFloat32x2:
		return "float32x2"
	case FormatFloat32x3:
		return "float32x3"
	case FormatFloat32x4:
		return "float32x4"
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// VertexElement describes where one slot lives inside an interleaved vertex.
type VertexElement struct {
	Slot   Slot
	Offset int // bytes from the start of the vertex record
	Format VertexFormat
	Stream int // always 0, all slots share one buffer
}

// ElementOffset returns the offset in float32 elements.
func (e VertexElement) ElementOffset() int { return e.Offset / floatSize }

// layoutOrder is the packing order of the slots inside a vertex record.
var layoutOrder = [slotCount]Slot{
	SlotPosition, SlotNormal, SlotColor, SlotWeight, SlotJoint, SlotTangent,
	SlotUV0, SlotUV1, SlotUV2, SlotUV3, SlotUV4, SlotUV5, SlotUV6, SlotUV7,
}

var slotFormats = [slotCount]VertexFormat{
	SlotPosition: FormatFloat32x3,
	SlotNormal:   FormatFloat32x3,
	SlotColor:    FormatFloat32x4,
	SlotTangent:  FormatFloat32x4,
	SlotWeight:   FormatFloat32x4,
	SlotJoint:    FormatFloat32x4,
	SlotUV0:      FormatFloat32x2,
	SlotUV1:      FormatFloat32x2,
	SlotUV2:      FormatFloat32x2,
	SlotUV3:      FormatFloat32x2,
	SlotUV4:      FormatFloat32x2,
	SlotUV5:      FormatFloat32x2,
	SlotUV6:      FormatFloat32x2,
	SlotUV7:      FormatFloat32x2,
}

// FormatOf returns the packed format of a slot.
func FormatOf(slot Slot) VertexFormat { return slotFormats[slot] }

// PlanLayout computes the interleaved layout for the given present slots.
// Position is always placed first at offset 0, whether or not it is in present.
// The returned stride counts float32 elements per vertex.
func PlanLayout(present SlotSet) ([]VertexElement, int) {
	present = present.With(SlotPosition)

	n := 0
	for _, slot := range layoutOrder {
		if present.Has(slot) {
			n++
		}
	}

	elements := make([]VertexElement, 0, n)
	stride := 0
	for _, slot := range layoutOrder {
		if !present.Has(slot) {
			continue
		}
		format := slotFormats[slot]
		elements = append(elements, VertexElement{
			Slot:   slot,
			Offset: stride * floatSize,
			Format: format,
		})
		stride += format.Components()
	}
	return elements, stride
}
