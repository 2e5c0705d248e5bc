package main

import (
	_ "embed"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/gekkomesh"
	"github.com/gekko3d/gekkomesh/gpu"
	"github.com/gekko3d/gekkomesh/meshfile"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/colornames"
)

//go:embed shader.wgsl
var shaderWGSL string

//go:embed quad.yaml
var quadYAML []byte

func init() {
	runtime.LockOSThread()
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	logger := gekkomesh.NewDefaultLogger("meshdemo", cfg.Debug)
	if err := run(cfg, logger); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func loadMesh(path string) (*meshfile.File, error) {
	if path == "" {
		return meshfile.Parse(quadYAML)
	}
	return meshfile.Load(path)
}

type renderer struct {
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	config   *wgpu.SurfaceConfiguration
	shader   *wgpu.ShaderModule
	pipeline *wgpu.RenderPipeline
	// layout version the pipeline was built for
	pipelineVersion int
}

func newRenderer(window *glfw.Window) (*renderer, error) {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(nil)
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}

	width, height := window.GetFramebufferSize()
	caps := surface.GetCapabilities(adapter)
	config := &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, config)

	shader, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "meshdemo",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaderWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("create shader: %w", err)
	}

	return &renderer{
		surface:         surface,
		adapter:         adapter,
		device:          device,
		queue:           device.GetQueue(),
		config:          config,
		shader:          shader,
		pipelineVersion: -1,
	}, nil
}

func (r *renderer) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.config.Width = uint32(width)
	r.config.Height = uint32(height)
	r.surface.Configure(r.adapter, r.device, r.config)
}

// ensurePipeline rebuilds the pipeline when the mesh was bound with a new layout.
func (r *renderer) ensurePipeline(bindings *gpu.Bindings) error {
	if r.pipeline != nil && r.pipelineVersion == bindings.LayoutVersion() {
		return nil
	}
	if r.pipeline != nil {
		r.pipeline.Release()
		r.pipeline = nil
	}
	pipeline, err := r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "meshdemo",
		Vertex: wgpu.VertexState{
			Module:     r.shader,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{bindings.Layout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     r.shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    r.config.Format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	r.pipeline = pipeline
	r.pipelineVersion = bindings.LayoutVersion()
	return nil
}

func (r *renderer) frame(bindings *gpu.Bindings) error {
	if err := r.ensurePipeline(bindings); err != nil {
		return err
	}
	next, err := r.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := next.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0},
			},
		},
	})
	defer pass.Release()

	pass.SetPipeline(r.pipeline)
	if err := bindings.Draw(pass); err != nil {
		return err
	}
	if err := pass.End(); err != nil {
		return err
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer cmd.Release()

	r.queue.Submit(cmd)
	r.surface.Present()
	return nil
}

func (r *renderer) release() {
	if r.pipeline != nil {
		r.pipeline.Release()
	}
	r.shader.Release()
	r.device.Release()
	r.adapter.Release()
	r.surface.Release()
}

// run opens the window and draws the mesh until it is closed.
// Keys: U toggles a second uv channel, F freezes the mesh (CPU data released).
func run(cfg Config, logger gekkomesh.Logger) error {
	file, err := loadMesh(cfg.MeshPath)
	if err != nil {
		return err
	}

	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return err
	}
	defer window.Destroy()

	r, err := newRenderer(window)
	if err != nil {
		return err
	}
	defer r.release()

	bindings := &gpu.Bindings{}
	mesh := gekkomesh.NewMesh(gpu.NewDevice(r.device, logger), bindings,
		gekkomesh.WithLogger(logger), gekkomesh.WithLabel(file.Label))
	defer mesh.Release()

	if err := file.Apply(mesh); err != nil {
		return err
	}
	palette, err := mesh.Colors()
	if err != nil {
		return err
	}
	if palette == nil {
		palette = gekkomesh.SolidColors(colornames.White, mesh.VertexCount())
		if err := mesh.SetColors(palette); err != nil {
			return err
		}
	}
	palette = append([]mgl32.Vec4(nil), palette...)

	var toggleUV, freeze bool
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyU:
			toggleUV = true
		case glfw.KeyF:
			freeze = true
		}
	})
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		r.resize(width, height)
	})

	start := time.Now()
	var colors []mgl32.Vec4
	for !window.ShouldClose() {
		glfw.PollEvents()

		if mesh.Accessible() {
			colors = animateColors(palette, time.Since(start).Seconds(), colors)
			if err := mesh.SetColors(colors); err != nil {
				return err
			}
			if toggleUV {
				if err := toggleSecondUV(mesh); err != nil {
					return err
				}
				toggleUV = false
			}
			if err := mesh.Synchronize(freeze); err != nil {
				return err
			}
			if freeze {
				logger.Infof("mesh %s frozen, CPU data released", mesh.Label())
			}
		}

		if err := r.frame(bindings); err != nil {
			return err
		}
	}
	return nil
}

// toggleSecondUV adds a planar uv1 channel derived from the positions, or
// removes it when present.
func toggleSecondUV(mesh *gekkomesh.Mesh) error {
	if mesh.Present().Has(gekkomesh.SlotUV1) {
		return mesh.SetUVs(1, nil)
	}
	positions, err := mesh.Positions()
	if err != nil {
		return err
	}
	uvs := make([]mgl32.Vec2, len(positions))
	for i, p := range positions {
		uvs[i] = mgl32.Vec2{p.X()*0.5 + 0.5, 0.5 - p.Y()*0.5}
	}
	return mesh.SetUVs(1, uvs)
}
