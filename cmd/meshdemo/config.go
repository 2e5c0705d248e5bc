package main

import (
	"flag"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type Config struct {
	Width    int
	Height   int
	Title    string
	MeshPath string // empty selects the built-in quad
	Debug    bool
}

// withDefaults fills zero fields with sensible defaults.
func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = 1280
	}
	if c.Height <= 0 {
		c.Height = 720
	}
	if c.Title == "" {
		c.Title = "Gekko Mesh"
	}
	return c
}

func parseFlags(args []string) (Config, error) {
	fs := flag.NewFlagSet("meshdemo", flag.ContinueOnError)
	var c Config
	fs.IntVar(&c.Width, "width", 0, "window width")
	fs.IntVar(&c.Height, "height", 0, "window height")
	fs.StringVar(&c.MeshPath, "mesh", "", "YAML mesh file to draw")
	fs.BoolVar(&c.Debug, "debug", false, "log buffer updates")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return c.withDefaults(), nil
}

// animateColors rotates the palette around the vertices, blending between
// neighbours by the fractional part of phase.
func animateColors(palette []mgl32.Vec4, phase float64, dst []mgl32.Vec4) []mgl32.Vec4 {
	n := len(palette)
	dst = dst[:0]
	if n == 0 {
		return dst
	}
	whole, frac := math.Modf(phase)
	shift := int(whole) % n
	if shift < 0 {
		shift += n
	}
	if frac < 0 {
		frac++
		shift = (shift + n - 1) % n
	}
	t := float32(frac)
	for i := range palette {
		a := palette[(i+shift)%n]
		b := palette[(i+shift+1)%n]
		dst = append(dst, a.Mul(1-t).Add(b.Mul(t)))
	}
	return dst
}
