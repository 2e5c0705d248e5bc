package gekkomesh

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// ColorVec converts c to a straight alpha RGBA vector in [0, 1].
func ColorVec(c color.Color) mgl32.Vec4 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return mgl32.Vec4{
		float32(n.R) / 255,
		float32(n.G) / 255,
		float32(n.B) / 255,
		float32(n.A) / 255,
	}
}

// SolidColors returns n copies of c, for use with SetColors.
func SolidColors(c color.Color, n int) []mgl32.Vec4 {
	v := ColorVec(c)
	out := make([]mgl32.Vec4, n)
	for i := range out {
		out[i] = v
	}
	return out
}
