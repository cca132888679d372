package raster

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/strandworks/strand-go/common"
	"github.com/strandworks/strand-go/engine/camera"
	"github.com/strandworks/strand-go/engine/hair"
	"github.com/strandworks/strand-go/engine/light"
	"github.com/strandworks/strand-go/engine/shading"
)

type rasterBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode          wgpu.PresentMode
	clearColor           wgpu.Color
	forceFallbackAdapter bool

	// Strand mesh state, populated by Attach.
	positionBuffer *wgpu.Buffer
	tangentBuffer  *wgpu.Buffer
	indexBuffer    *wgpu.Buffer
	indexCount     int

	// Frame uniform buffers, written once per frame (model once per draw).
	cameraBuffer *wgpu.Buffer
	lightBuffer  *wgpu.Buffer
	paramsBuffer *wgpu.Buffer
	modelBuffer  *wgpu.Buffer

	// Occlusion textures, recreated when staged dimensions change.
	shadowTexture *wgpu.Texture
	shadowView    *wgpu.TextureView
	shadowExtent  wgpu.Extent3D
	volumeTexture *wgpu.Texture
	volumeView    *wgpu.TextureView
	volumeExtent  wgpu.Extent3D

	hairPipeline    *wgpu.RenderPipeline
	cameraLayout    *wgpu.BindGroupLayout
	frameLayout     *wgpu.BindGroupLayout
	modelLayout     *wgpu.BindGroupLayout
	cameraBindGroup *wgpu.BindGroup
	frameBindGroup  *wgpu.BindGroup
	modelBindGroup  *wgpu.BindGroup

	// Fullscreen blit state for presenting a CPU-produced framebuffer.
	blitPipeline  *wgpu.RenderPipeline
	blitLayout    *wgpu.BindGroupLayout
	blitTexture   *wgpu.Texture
	blitView      *wgpu.TextureView
	blitSampler   *wgpu.Sampler
	blitBindGroup *wgpu.BindGroup
	blitExtent    wgpu.Extent3D

	// Frame state held between BeginFrame and Present.
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

// Backend drives the rasterized strand pipeline: it owns the WebGPU device,
// the swapchain, the strand vertex/index buffers, the per-frame uniform
// buffers, and the two occlusion textures the fragment stage samples (the
// deep shadow map array and the density volume). It also exposes a fullscreen
// blit path so a CPU-produced framebuffer can be presented through the same
// swapchain.
type Backend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
	Instance() *wgpu.Instance
	Adapter() *wgpu.Adapter
	Surface() *wgpu.Surface

	// ConfigureSurface is a wrapper for boilerplate logic required when calling ConfigureSurface on a surface.
	// This is required when the surface size changes, such as when the window is resized.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// Attach uploads the strand geometry's packed buffers and builds the
	// render pipeline. Call after ConfigureSurface; calling again replaces the
	// previously attached geometry.
	//
	// Parameters:
	//   - g: the built strand geometry to upload
	//
	// Returns:
	//   - error: a *ResourceBindingError if the surface is not configured or a buffer is empty
	Attach(g *hair.Geometry) error

	// UploadCamera writes the per-frame camera uniform.
	//
	// Parameters:
	//   - u: the GPU-aligned camera state
	UploadCamera(u camera.GPUCameraUniform)

	// UploadLight writes the per-frame light uniform.
	//
	// Parameters:
	//   - u: the GPU-aligned light state
	UploadLight(u light.GPULight)

	// UploadShadingParams writes the per-frame shading parameter uniform.
	//
	// Parameters:
	//   - u: the GPU-aligned material, toggle, and volume placement bundle
	UploadShadingParams(u shading.GPUShadingParams)

	// UploadShadowMap validates and uploads staged deep shadow map texels to
	// the r32float 2d array texture bound at the shadow slot. The texture is
	// recreated when the staged dimensions change.
	//
	// Parameters:
	//   - staging: the layer-major staged texels
	//
	// Returns:
	//   - error: a *ResourceBindingError if the staging data is malformed
	UploadShadowMap(staging common.TextureStagingData) error

	// UploadDensityVolume validates and uploads staged density texels to the
	// r8unorm 3d texture bound at the volume slot. The texture is recreated
	// when the staged dimensions change.
	//
	// Parameters:
	//   - staging: the staged voxel densities
	//
	// Returns:
	//   - error: a *ResourceBindingError if the staging data is malformed
	UploadDensityVolume(staging common.TextureStagingData) error

	// BeginFrame acquires the next swapchain texture, creates a command encoder, and begins
	// the main render pass. Must be paired with EndFrame after all draw invocations.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// DrawHair encodes the strand draw within the current render pass. The
	// occlusion textures must both have been uploaded; an absent binding is
	// fatal for the frame and reported rather than drawn with garbage data.
	//
	// The model uniform is written on the queue timeline, so issue one DrawHair
	// per frame; a second call in the same frame would see the last write only.
	//
	// Parameters:
	//   - model: the object-to-world transform for this draw
	//
	// Returns:
	//   - error: a *ResourceBindingError if a required resource is missing
	DrawHair(model mgl32.Mat4) error

	// Blit encodes a fullscreen draw of an rgba8 CPU framebuffer within the
	// current render pass. Used to present the ray traced image through the
	// same swapchain the rasterizer renders to.
	//
	// Parameters:
	//   - pixels: tightly packed rgba8 texels, row-major
	//   - width: framebuffer width in pixels
	//   - height: framebuffer height in pixels
	//
	// Returns:
	//   - error: a *ResourceBindingError if the pixel data does not cover width x height
	Blit(pixels []byte, width, height uint32) error

	// EndFrame ends the current render pass and submits the command buffer to the GPU.
	// Does not present the surface — call Present() after EndFrame to display the frame.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after EndFrame.
	Present()

	// Release frees all GPU resources held by the backend.
	Release()
}

var _ Backend = &rasterBackendImpl{}

// NewBackend creates a rasterization backend for the given surface. Locks the
// calling goroutine to its OS thread; all subsequent backend calls must come
// from the same goroutine.
//
// Parameters:
//   - surfaceDescriptor: the platform surface to render to
//   - options: optional configuration overrides
//
// Returns:
//   - Backend: the initialized backend
func NewBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...BackendOption) Backend {
	runtime.LockOSThread()
	b := &rasterBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		clearColor:  wgpu.Color{R: 0.02, G: 0.02, B: 0.02, A: 1.0},
	}
	for _, opt := range options {
		opt(b)
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		panic(err)
	}
	b.adapter = a

	limits := wgpu.DefaultLimits()

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Strand Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		panic(err)
	}
	b.device = d
	b.queue = d.GetQueue()

	return b
}

func (b *rasterBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := CachedCapabilities(b.surface, b.adapter)
	b.surfaceFormat = &capabilities.SurfaceFormats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	// The color attachment View is set per-frame to the swapchain view.
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       nil,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: b.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

func (b *rasterBackendImpl) Attach(g *hair.Geometry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surfaceFormat == nil {
		return &ResourceBindingError{Resource: "surface", Reason: "not configured — call ConfigureSurface first"}
	}
	if g.SegmentCount() == 0 {
		return &ResourceBindingError{Resource: "strand geometry", Reason: "no segments to draw"}
	}

	if err := b.ensureUniformBuffers(); err != nil {
		return err
	}
	if b.hairPipeline == nil {
		if err := b.createHairPipeline(); err != nil {
			return err
		}
	}

	b.releaseMeshBuffers()

	positionData := g.PositionThicknessBytes()
	tangentData := g.TangentBytes()
	indexData := g.SegmentIndexBytes()

	positionBuffer, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Strand Position Buffer",
		Size:  uint64(len(positionData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	b.queue.WriteBuffer(positionBuffer, 0, positionData)

	tangentBuffer, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Strand Tangent Buffer",
		Size:  uint64(len(tangentData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		positionBuffer.Release()
		return err
	}
	b.queue.WriteBuffer(tangentBuffer, 0, tangentData)

	indexBuffer, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Strand Index Buffer",
		Size:  uint64(len(indexData)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		positionBuffer.Release()
		tangentBuffer.Release()
		return err
	}
	b.queue.WriteBuffer(indexBuffer, 0, indexData)

	b.positionBuffer = positionBuffer
	b.tangentBuffer = tangentBuffer
	b.indexBuffer = indexBuffer
	b.indexCount = len(indexData) / 4

	return nil
}

func (b *rasterBackendImpl) UploadCamera(u camera.GPUCameraUniform) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cameraBuffer == nil {
		return
	}
	b.queue.WriteBuffer(b.cameraBuffer, 0, u.Marshal())
}

func (b *rasterBackendImpl) UploadLight(u light.GPULight) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.lightBuffer == nil {
		return
	}
	b.queue.WriteBuffer(b.lightBuffer, 0, u.Marshal())
}

func (b *rasterBackendImpl) UploadShadingParams(u shading.GPUShadingParams) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.paramsBuffer == nil {
		return
	}
	b.queue.WriteBuffer(b.paramsBuffer, 0, u.Marshal())
}

func (b *rasterBackendImpl) UploadShadowMap(staging common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := validateShadowStaging(staging); err != nil {
		return err
	}

	extent := wgpu.Extent3D{
		Width:              staging.Width,
		Height:             staging.Height,
		DepthOrArrayLayers: staging.Depth,
	}
	if b.shadowTexture == nil || extent != b.shadowExtent {
		if b.shadowView != nil {
			b.shadowView.Release()
			b.shadowView = nil
		}
		if b.shadowTexture != nil {
			b.shadowTexture.Release()
			b.shadowTexture = nil
		}
		tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "Deep Shadow Map Texture",
			Size:          extent,
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        common.DeepShadowMapFormat,
			Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		})
		if err != nil {
			return err
		}
		view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
			Label:           "Deep Shadow Map View",
			Format:          common.DeepShadowMapFormat,
			Dimension:       wgpu.TextureViewDimension2DArray,
			MipLevelCount:   1,
			ArrayLayerCount: staging.Depth,
			Aspect:          wgpu.TextureAspectAll,
		})
		if err != nil {
			tex.Release()
			return err
		}
		b.shadowTexture = tex
		b.shadowView = view
		b.shadowExtent = extent
		b.invalidateFrameBindGroup()
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  b.shadowTexture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		staging.Texels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  staging.Width * staging.BytesPerTexel,
			RowsPerImage: staging.Height,
		},
		&extent,
	)

	return nil
}

func (b *rasterBackendImpl) UploadDensityVolume(staging common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := validateVolumeStaging(staging); err != nil {
		return err
	}

	extent := wgpu.Extent3D{
		Width:              staging.Width,
		Height:             staging.Height,
		DepthOrArrayLayers: staging.Depth,
	}
	if b.volumeTexture == nil || extent != b.volumeExtent {
		if b.volumeView != nil {
			b.volumeView.Release()
			b.volumeView = nil
		}
		if b.volumeTexture != nil {
			b.volumeTexture.Release()
			b.volumeTexture = nil
		}
		tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "Density Volume Texture",
			Size:          extent,
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension3D,
			Format:        common.DensityVolumeFormat,
			Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		})
		if err != nil {
			return err
		}
		view, err := tex.CreateView(nil)
		if err != nil {
			tex.Release()
			return err
		}
		b.volumeTexture = tex
		b.volumeView = view
		b.volumeExtent = extent
		b.invalidateFrameBindGroup()
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  b.volumeTexture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		staging.Texels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  staging.Width * staging.BytesPerTexel,
			RowsPerImage: staging.Height,
		},
		&extent,
	)

	return nil
}

func (b *rasterBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Defensive: if a previous frame's surface texture is still held, avoid
	// attempting to acquire another one. This prevents wgpu-native validation
	// errors like "Surface image is already acquired" when frames overlap.
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.renderPassDescriptor.ColorAttachments[0].View = view
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *rasterBackendImpl) DrawHair(model mgl32.Mat4) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return &ResourceBindingError{Resource: "frame", Reason: "no render pass active — call BeginFrame first"}
	}
	if b.indexBuffer == nil {
		return &ResourceBindingError{Resource: "strand geometry", Reason: "not attached"}
	}
	if b.shadowView == nil {
		return &ResourceBindingError{Resource: "deep shadow map", Reason: "not uploaded"}
	}
	if b.volumeView == nil {
		return &ResourceBindingError{Resource: "density volume", Reason: "not uploaded"}
	}
	if err := b.ensureFrameBindGroup(); err != nil {
		return err
	}

	uniform := BuildGPUModelUniform(model)
	b.queue.WriteBuffer(b.modelBuffer, 0, uniform.Marshal())

	b.framePass.SetPipeline(b.hairPipeline)
	b.framePass.SetBindGroup(0, b.cameraBindGroup, nil)
	b.framePass.SetBindGroup(1, b.frameBindGroup, nil)
	b.framePass.SetBindGroup(2, b.modelBindGroup, nil)
	b.framePass.SetVertexBuffer(0, b.positionBuffer, 0, wgpu.WholeSize)
	b.framePass.SetVertexBuffer(1, b.tangentBuffer, 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(b.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(b.indexCount), 1, 0, 0, 0)

	return nil
}

func (b *rasterBackendImpl) Blit(pixels []byte, width, height uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return &ResourceBindingError{Resource: "frame", Reason: "no render pass active — call BeginFrame first"}
	}
	if want := int(width * height * 4); len(pixels) != want {
		return &ResourceBindingError{
			Resource: "blit framebuffer",
			Reason:   fmt.Sprintf("pixel bytes %d do not cover %dx%d (%d)", len(pixels), width, height, want),
		}
	}

	if b.blitPipeline == nil {
		if err := b.createBlitPipeline(); err != nil {
			return err
		}
	}

	extent := wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1}
	if b.blitTexture == nil || extent != b.blitExtent {
		if b.blitBindGroup != nil {
			b.blitBindGroup.Release()
			b.blitBindGroup = nil
		}
		if b.blitView != nil {
			b.blitView.Release()
			b.blitView = nil
		}
		if b.blitTexture != nil {
			b.blitTexture.Release()
			b.blitTexture = nil
		}
		tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "Blit Texture",
			Size:          extent,
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        wgpu.TextureFormatRGBA8Unorm,
			Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		})
		if err != nil {
			return err
		}
		view, err := tex.CreateView(nil)
		if err != nil {
			tex.Release()
			return err
		}
		bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "Blit Bind Group",
			Layout: b.blitLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, TextureView: view},
				{Binding: 1, Sampler: b.blitSampler},
			},
		})
		if err != nil {
			view.Release()
			tex.Release()
			return err
		}
		b.blitTexture = tex
		b.blitView = view
		b.blitBindGroup = bindGroup
		b.blitExtent = extent
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  b.blitTexture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&extent,
	)

	b.framePass.SetPipeline(b.blitPipeline)
	b.framePass.SetBindGroup(0, b.blitBindGroup, nil)
	b.framePass.Draw(3, 1, 0, 0)

	return nil
}

func (b *rasterBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}

	b.framePass.End()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.framePass = nil
		b.frameSurface = nil
		b.frameView = nil
		return
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.framePass = nil
}

func (b *rasterBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *rasterBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.invalidateFrameBindGroup()
	if b.cameraBindGroup != nil {
		b.cameraBindGroup.Release()
		b.cameraBindGroup = nil
	}
	if b.modelBindGroup != nil {
		b.modelBindGroup.Release()
		b.modelBindGroup = nil
	}
	b.releaseMeshBuffers()

	for _, buf := range []**wgpu.Buffer{&b.cameraBuffer, &b.lightBuffer, &b.paramsBuffer, &b.modelBuffer} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}
	for _, view := range []**wgpu.TextureView{&b.shadowView, &b.volumeView, &b.blitView, &b.depthTextureView} {
		if *view != nil {
			(*view).Release()
			*view = nil
		}
	}
	for _, tex := range []**wgpu.Texture{&b.shadowTexture, &b.volumeTexture, &b.blitTexture} {
		if *tex != nil {
			(*tex).Release()
			*tex = nil
		}
	}
	if b.blitBindGroup != nil {
		b.blitBindGroup.Release()
		b.blitBindGroup = nil
	}
	if b.blitSampler != nil {
		b.blitSampler.Release()
		b.blitSampler = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
}

func (b *rasterBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *rasterBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *rasterBackendImpl) Instance() *wgpu.Instance {
	return b.instance
}

func (b *rasterBackendImpl) Adapter() *wgpu.Adapter {
	return b.adapter
}

func (b *rasterBackendImpl) Surface() *wgpu.Surface {
	return b.surface
}

func (b *rasterBackendImpl) releaseMeshBuffers() {
	if b.positionBuffer != nil {
		b.positionBuffer.Release()
		b.positionBuffer = nil
	}
	if b.tangentBuffer != nil {
		b.tangentBuffer.Release()
		b.tangentBuffer = nil
	}
	if b.indexBuffer != nil {
		b.indexBuffer.Release()
		b.indexBuffer = nil
	}
	b.indexCount = 0
}

func (b *rasterBackendImpl) invalidateFrameBindGroup() {
	if b.frameBindGroup != nil {
		b.frameBindGroup.Release()
		b.frameBindGroup = nil
	}
}

func (b *rasterBackendImpl) ensureUniformBuffers() error {
	type uniformSpec struct {
		target **wgpu.Buffer
		label  string
		size   uint64
	}
	specs := []uniformSpec{
		{&b.cameraBuffer, "Camera Uniform Buffer", 80},
		{&b.lightBuffer, "Light Uniform Buffer", 112},
		{&b.paramsBuffer, "Shading Params Buffer", 96},
		{&b.modelBuffer, "Model Uniform Buffer", 64},
	}
	for _, spec := range specs {
		if *spec.target != nil {
			continue
		}
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: spec.label,
			Size:  spec.size,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		*spec.target = buf
	}
	return nil
}

// ensureFrameBindGroup rebuilds the group(1) bind group after an occlusion
// texture was recreated. Caller holds the mutex and has verified both views
// are present.
func (b *rasterBackendImpl) ensureFrameBindGroup() error {
	if b.frameBindGroup != nil {
		return nil
	}
	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Frame Bind Group",
		Layout: b.frameLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.lightBuffer, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: b.paramsBuffer, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 2, TextureView: b.shadowView},
			{Binding: 3, TextureView: b.volumeView},
		},
	})
	if err != nil {
		return err
	}
	b.frameBindGroup = bindGroup
	return nil
}

func (b *rasterBackendImpl) createHairPipeline() error {
	source := camera.GPUCameraUniformSource +
		light.GPULightSource +
		shading.GPUShadingParamsSource +
		GPUModelUniformSource +
		hairShaderSource

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Strand Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return err
	}

	cameraLayout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Camera Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return err
	}
	frameLayout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Frame Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
					ViewDimension: wgpu.TextureViewDimension2DArray,
				},
			},
			{
				Binding:    3,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension3D,
				},
			},
		},
	})
	if err != nil {
		return err
	}
	modelLayout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Model Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return err
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Strand Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{cameraLayout, frameLayout, modelLayout},
	})
	if err != nil {
		return err
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Strand Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: 16,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},
					},
				},
				{
					ArrayStride: 12,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyLineList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return err
	}

	cameraBindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Camera Bind Group",
		Layout: cameraLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.cameraBuffer, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return err
	}
	modelBindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Model Bind Group",
		Layout: modelLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.modelBuffer, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return err
	}

	b.hairPipeline = created
	b.cameraLayout = cameraLayout
	b.frameLayout = frameLayout
	b.modelLayout = modelLayout
	b.cameraBindGroup = cameraBindGroup
	b.modelBindGroup = modelBindGroup

	return nil
}

func (b *rasterBackendImpl) createBlitPipeline() error {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Blit Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: blitShaderSource,
		},
	})
	if err != nil {
		return err
	}

	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Blit Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return err
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Blit Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return err
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Blit Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
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
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: false,
			DepthCompare:      wgpu.CompareFunctionAlways,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return err
	}

	sampler, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Blit Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0.0,
		LodMaxClamp:   32.0,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return err
	}

	b.blitPipeline = created
	b.blitLayout = layout
	b.blitSampler = sampler

	return nil
}
