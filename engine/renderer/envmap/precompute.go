package envmap

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/penumbra3d/penumbra/common"
	"github.com/penumbra3d/penumbra/engine/camera"
	"github.com/penumbra3d/penumbra/engine/model"
	"github.com/penumbra3d/penumbra/engine/texture"
)

// cubeGeometry holds the raw cube buffers the convolution passes draw. The
// passes only need positions, so the buffers skip the mesh bind-group setup.
type cubeGeometry struct {
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   uint32
}

func newCubeGeometry(device *wgpu.Device, queue *wgpu.Queue) (*cubeGeometry, error) {
	cube := model.NewCube("EnvMap Cube")
	vertexData := common.SliceToBytes(cube.Vertices())
	indexData := common.SliceToBytes(cube.Indices())

	vertexBuffer, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "EnvMap Cube Vertex Buffer",
		Size:             uint64(len(vertexData)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("envmap: failed to create cube vertex buffer: %w", err)
	}
	queue.WriteBuffer(vertexBuffer, 0, vertexData)

	indexBuffer, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "EnvMap Cube Index Buffer",
		Size:             uint64(len(indexData)),
		Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		vertexBuffer.Release()
		return nil, fmt.Errorf("envmap: failed to create cube index buffer: %w", err)
	}
	queue.WriteBuffer(indexBuffer, 0, indexData)

	return &cubeGeometry{
		vertexBuffer: vertexBuffer,
		indexBuffer:  indexBuffer,
		indexCount:   cube.IndexCount(),
	}, nil
}

func (c *cubeGeometry) release() {
	c.indexBuffer.Release()
	c.vertexBuffer.Release()
}

// generateMipmaps fills every mip level above 0 by blitting from the level
// above it, layer by layer. The whole chain is one submission.
func generateMipmaps(device *wgpu.Device, queue *wgpu.Queue, pipes *pipelines, t texture.Texture) error {
	blit, ok := pipes.blit[t.Format()]
	if !ok {
		return fmt.Errorf("envmap: no blit pipeline for format %v", t.Format())
	}
	if t.MipLevelCount() < 2 {
		return nil
	}

	encoder, err := device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("envmap: failed to create mipmap encoder: %w", err)
	}
	defer encoder.Release()

	var cleanup []interface{ Release() }
	defer func() {
		for _, r := range cleanup {
			r.Release()
		}
	}()

	for level := uint32(1); level < t.MipLevelCount(); level++ {
		for layer := uint32(0); layer < t.Depth(); layer++ {
			srcView, err := t.FaceView(level-1, layer)
			if err != nil {
				return err
			}
			cleanup = append(cleanup, srcView)
			dstView, err := t.FaceView(level, layer)
			if err != nil {
				return err
			}
			cleanup = append(cleanup, dstView)

			bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
				Label:  "Blit Bind Group",
				Layout: pipes.blitLayout,
				Entries: []wgpu.BindGroupEntry{
					{Binding: 0, TextureView: srcView},
					{Binding: 1, Sampler: t.Sampler()},
				},
			})
			if err != nil {
				return fmt.Errorf("envmap: failed to create blit bind group: %w", err)
			}
			cleanup = append(cleanup, bindGroup)

			pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
				ColorAttachments: []wgpu.RenderPassColorAttachment{
					{
						View:       dstView,
						LoadOp:     wgpu.LoadOpClear,
						StoreOp:    wgpu.StoreOpStore,
						ClearValue: wgpu.Color{A: 1.0},
					},
				},
			})
			pass.SetPipeline(blit)
			pass.SetBindGroup(0, bindGroup, nil)
			pass.Draw(3, 1, 0, 0)
			pass.End()
		}
	}

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("envmap: failed to finish mipmap encoder: %w", err)
	}
	defer commandBuffer.Release()
	queue.Submit(commandBuffer)
	return nil
}

// renderIrradiance convolves the base cubemap into the irradiance target's
// top mip, one pass per face.
func (e *environmentMap) renderIrradiance(device *wgpu.Device, queue *wgpu.Queue, pipes *pipelines, cubeCamera camera.CubeCamera, envBindGroup *wgpu.BindGroup, cube *cubeGeometry) error {
	encoder, err := device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("envmap: failed to create irradiance encoder: %w", err)
	}
	defer encoder.Release()

	var views []*wgpu.TextureView
	defer func() {
		for _, v := range views {
			v.Release()
		}
	}()

	for face := uint32(0); face < 6; face++ {
		faceView, err := e.irradiance.FaceView(0, face)
		if err != nil {
			return err
		}
		views = append(views, faceView)

		pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{
				{
					View:       faceView,
					LoadOp:     wgpu.LoadOpClear,
					StoreOp:    wgpu.StoreOpStore,
					ClearValue: wgpu.Color{A: 1.0},
				},
			},
		})
		pass.SetPipeline(pipes.irradiance)
		pass.SetBindGroup(0, cubeCamera.BindGroup(face), nil)
		pass.SetBindGroup(1, envBindGroup, nil)
		pass.SetVertexBuffer(0, cube.vertexBuffer, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(cube.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(cube.indexCount, 1, 0, 0, 0)
		pass.End()
	}

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("envmap: failed to finish irradiance encoder: %w", err)
	}
	defer commandBuffer.Release()
	queue.Submit(commandBuffer)
	return nil
}

// prefilterRoughness maps a prefilter mip level to the roughness the GGX
// convolution integrates at that level: level/6, saturating at 1.
func prefilterRoughness(level uint32) float32 {
	roughness := float32(level) / 6.0
	if roughness > 1.0 {
		return 1.0
	}
	return roughness
}

// renderPrefiltered fills every mip level of the prefilter target. The
// roughness write and the level's passes are submitted per level so the
// uniform value is in place when the level draws.
func (e *environmentMap) renderPrefiltered(device *wgpu.Device, queue *wgpu.Queue, pipes *pipelines, cubeCamera camera.CubeCamera, envBindGroup *wgpu.BindGroup, cube *cubeGeometry) error {
	for level := uint32(0); level < e.prefiltered.MipLevelCount(); level++ {
		roughness := prefilterRoughness(level)
		var data [4]byte
		binary.LittleEndian.PutUint32(data[:], math.Float32bits(roughness))
		queue.WriteBuffer(e.precalcBuffer, 0, data[:])

		encoder, err := device.CreateCommandEncoder(nil)
		if err != nil {
			return fmt.Errorf("envmap: failed to create prefilter encoder: %w", err)
		}

		var views []*wgpu.TextureView
		for face := uint32(0); face < 6; face++ {
			faceView, err := e.prefiltered.FaceView(level, face)
			if err != nil {
				for _, v := range views {
					v.Release()
				}
				encoder.Release()
				return err
			}
			views = append(views, faceView)

			pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
				ColorAttachments: []wgpu.RenderPassColorAttachment{
					{
						View:       faceView,
						LoadOp:     wgpu.LoadOpClear,
						StoreOp:    wgpu.StoreOpStore,
						ClearValue: wgpu.Color{A: 1.0},
					},
				},
			})
			pass.SetPipeline(pipes.prefilter)
			pass.SetBindGroup(0, cubeCamera.BindGroup(face), nil)
			pass.SetBindGroup(1, envBindGroup, nil)
			pass.SetVertexBuffer(0, cube.vertexBuffer, 0, wgpu.WholeSize)
			pass.SetIndexBuffer(cube.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
			pass.DrawIndexed(cube.indexCount, 1, 0, 0, 0)
			pass.End()
		}

		commandBuffer, err := encoder.Finish(nil)
		if err != nil {
			for _, v := range views {
				v.Release()
			}
			encoder.Release()
			return fmt.Errorf("envmap: failed to finish prefilter encoder: %w", err)
		}
		queue.Submit(commandBuffer)
		commandBuffer.Release()
		encoder.Release()
		for _, v := range views {
			v.Release()
		}
	}
	return nil
}

// renderBRDFLUT fills the BRDF integration table with a single fullscreen pass.
func renderBRDFLUT(device *wgpu.Device, queue *wgpu.Queue, pipes *pipelines, target texture.Texture) error {
	encoder, err := device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("envmap: failed to create brdf lut encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       target.View(),
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{A: 1.0},
			},
		},
	})
	pass.SetPipeline(pipes.brdfLUT)
	pass.Draw(3, 1, 0, 0)
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("envmap: failed to finish brdf lut encoder: %w", err)
	}
	defer commandBuffer.Release()
	queue.Submit(commandBuffer)
	return nil
}
