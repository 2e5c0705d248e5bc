package gekkomesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanLayout_AllCombinations(t *testing.T) {
	optional := AllSlots.Without(SlotPosition)
	for bits := SlotSet(0); bits <= AllSlots; bits++ {
		if bits&^optional != 0 {
			continue
		}
		present := bits.With(SlotPosition)
		elements, stride := PlanLayout(present)

		require.NotEmpty(t, elements)
		assert.Equal(t, SlotPosition, elements[0].Slot)
		assert.Equal(t, 0, elements[0].Offset)
		assert.Equal(t, FormatFloat32x3, elements[0].Format)

		next := 0
		for _, e := range elements {
			require.True(t, present.Has(e.Slot), "unexpected slot %v", e.Slot)
			require.Equal(t, next, e.Offset, "gap or overlap before %v in %v", e.Slot, present)
			assert.Equal(t, 0, e.Stream)
			next = e.Offset + e.Format.Size()
		}
		assert.Equal(t, next, stride*floatSize)
	}
}

func TestPlanLayout_Order(t *testing.T) {
	elements, stride := PlanLayout(SlotsOf(SlotUV1, SlotTangent, SlotJoint, SlotWeight, SlotColor, SlotNormal, SlotUV0))

	var order []Slot
	for _, e := range elements {
		order = append(order, e.Slot)
	}
	assert.Equal(t, []Slot{SlotPosition, SlotNormal, SlotColor, SlotWeight, SlotJoint, SlotTangent, SlotUV0, SlotUV1}, order)
	assert.Equal(t, 3+3+4+4+4+4+2+2, stride)
}

func TestPlanLayout_Scenarios(t *testing.T) {
	tests := []struct {
		name    string
		present SlotSet
		offsets []int
		stride  int
	}{
		{"position only", SlotsOf(SlotPosition), []int{0}, 3},
		{"position implied", 0, []int{0}, 3},
		{"normal", SlotsOf(SlotPosition, SlotNormal), []int{0, 12}, 6},
		{"sparse uvs", SlotsOf(SlotPosition, SlotUV3, SlotUV7), []int{0, 12, 20}, 7},
		{"tangent is four wide", SlotsOf(SlotPosition, SlotTangent, SlotUV0), []int{0, 12, 28}, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			elements, stride := PlanLayout(tt.present)
			var offsets []int
			for _, e := range elements {
				offsets = append(offsets, e.Offset)
			}
			assert.Equal(t, tt.offsets, offsets)
			assert.Equal(t, tt.stride, stride)
		})
	}
}

func TestSlotSet_String(t *testing.T) {
	assert.Equal(t, "{}", SlotSet(0).String())
	assert.Equal(t, "{position,color,uv2}", SlotsOf(SlotUV2, SlotColor, SlotPosition).String())
	assert.Equal(t, "slot(42)", Slot(42).String())
}
