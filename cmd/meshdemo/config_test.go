package main

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, Config{Width: 1280, Height: 720, Title: "Gekko Mesh"}, cfg)

	cfg, err = parseFlags([]string{"-width", "640", "-mesh", "cube.yaml", "-debug"})
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 720, cfg.Height)
	assert.Equal(t, "cube.yaml", cfg.MeshPath)
	assert.True(t, cfg.Debug)

	_, err = parseFlags([]string{"-bogus"})
	assert.Error(t, err)
}

func TestAnimateColors(t *testing.T) {
	palette := []mgl32.Vec4{{1, 0, 0, 1}, {0, 1, 0, 1}, {0, 0, 1, 1}}

	got := animateColors(palette, 0, nil)
	assert.Equal(t, palette, got)

	got = animateColors(palette, 1, got)
	assert.Equal(t, []mgl32.Vec4{{0, 1, 0, 1}, {0, 0, 1, 1}, {1, 0, 0, 1}}, got)

	got = animateColors(palette, 3.5, got)
	assert.Equal(t, mgl32.Vec4{0.5, 0.5, 0, 1}, got[0])

	got = animateColors(palette, -0.5, got)
	assert.Equal(t, mgl32.Vec4{0.5, 0, 0.5, 1}, got[0])

	assert.Empty(t, animateColors(nil, 2, nil))
}

func TestLoadMesh_BuiltIn(t *testing.T) {
	f, err := loadMesh("")
	require.NoError(t, err)
	assert.Equal(t, "demo-quad", f.Label)
	assert.Len(t, f.Positions, 4)
	assert.Len(t, f.Colors, 4)
}
