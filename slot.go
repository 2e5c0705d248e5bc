package gekkomesh

import (
	"strconv"
	"strings"
)

// Slot names one per-vertex attribute channel.
type Slot uint8

const (
	SlotPosition Slot = iota
	SlotNormal
	SlotColor
	SlotTangent
	SlotWeight
	SlotJoint
	SlotUV0
	SlotUV1
	SlotUV2
	SlotUV3
	SlotUV4
	SlotUV5
	SlotUV6
	SlotUV7

	slotCount
)

// MaxUVChannels is the number of texture coordinate channels a mesh can carry.
const MaxUVChannels = 8

var slotNames = [slotCount]string{
	"position", "normal", "color", "tangent", "weight", "joint",
	"uv0", "uv1", "uv2", "uv3", "uv4", "uv5", "uv6", "uv7",
}

func (s Slot) String() string {
	if s < slotCount {
		return slotNames[s]
	}
	return "slot(" + strconv.Itoa(int(s)) + ")"
}

// UVSlot returns the slot of the given texture coordinate channel.
func UVSlot(channel int) (Slot, bool) {
	if channel < 0 || channel >= MaxUVChannels {
		return 0, false
	}
	return SlotUV0 + Slot(channel), true
}

// SlotSet is a bit set of slots. It records both which slots are present
// and which slots changed since the last synchronization.
type SlotSet uint16

// AllSlots contains every slot.
const AllSlots SlotSet = 1<<slotCount - 1

func SlotsOf(slots ...Slot) SlotSet {
	var s SlotSet
	for _, slot := range slots {
		s = s.With(slot)
	}
	return s
}

func (s SlotSet) Has(slot Slot) bool { return s&(1<<slot) != 0 }

func (s SlotSet) With(slot Slot) SlotSet { return s | 1<<slot }

func (s SlotSet) Without(slot Slot) SlotSet { return s &^ (1 << slot) }

func (s SlotSet) Empty() bool { return s == 0 }

func (s SlotSet) String() string {
	if s == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for slot := Slot(0); slot < slotCount; slot++ {
		if !s.Has(slot) {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		b.WriteString(slot.String())
		first = false
	}
	b.WriteByte('}')
	return b.String()
}
