package headless

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	stdmath "math"

	"github.com/anthonynsimon/bild/transform"

	"github.com/spaghettifunk/nehe/engine/core"
	"github.com/spaghettifunk/nehe/engine/gpu"
)

// ErrInjected is the default error returned by an injected fault.
var ErrInjected = errors.New("injected device failure")

// Operation names for device calls that have no copy pass counterpart.
const (
	OpWaitAndAcquireSwapchainTexture = "WaitAndAcquireSwapchainTexture"
	OpBeginRenderPass                = "BeginRenderPass"
	OpEndRenderPass                  = "EndRenderPass"
	OpPushVertexUniformData          = "PushVertexUniformData"
	OpSetVSync                       = "SetVSync"
	OpCancelCommandBuffer            = "CancelCommandBuffer"
)

type buffer struct {
	usage gpu.BufferUsage
	data  []byte
}

type texture struct {
	info   gpu.TextureCreateInfo
	levels [][]byte
}

type transfer struct {
	data   []byte
	mapped bool
}

type commandState int

const (
	commandRecording commandState = iota
	commandSubmitted
	commandCancelled
)

// command is one recorded operation. It is checked against the device at
// submission and returns the effect to apply once every command has passed.
type command func() (func(), error)

type commandBuffer struct {
	state commandState
	// open is the copy scope or render pass currently recording, or 0.
	open uint64
	ops  []command
}

// apply records an operation that cannot fail at execution.
func (cb *commandBuffer) apply(effect func()) {
	cb.ops = append(cb.ops, func() (func(), error) { return effect, nil })
}

type fault struct {
	at  int
	err error
}

// Stats counts device activity since creation.
type Stats struct {
	Submitted       int
	Cancelled       int
	LiveBuffers     int
	LiveTextures    int
	LiveTransfers   int
	MipmapsRecorded int
}

/**
 * @brief An in-memory gpu.RenderDevice. Commands are recorded as closures and
 * executed in order when their command buffer is submitted. Every command is
 * checked before any takes effect, so a failed submission changes nothing.
 * Handles are never reused.
 */
type Device struct {
	nextID uint64

	buffers   map[gpu.Buffer]*buffer
	textures  map[gpu.Texture]*texture
	transfers map[gpu.TransferBuffer]*transfer
	commands  map[gpu.CommandBuffer]*commandBuffer
	scopes    map[uint64]gpu.CommandBuffer

	transferIDs []gpu.TransferBuffer
	releases    map[uint64]int
	released    []uint64
	calls       map[string]int
	faults      map[string][]fault
	trace       []string
	stats       Stats

	swapchain       gpu.Texture
	swapchainFormat gpu.TextureFormat
	width, height   uint32
	vsync           bool
	uniforms        map[uint32][]byte
	closed          bool
}

// NewDevice creates a device whose swapchain is width x height pixels.
func NewDevice(width, height uint32) *Device {
	d := &Device{
		buffers:         make(map[gpu.Buffer]*buffer),
		textures:        make(map[gpu.Texture]*texture),
		transfers:       make(map[gpu.TransferBuffer]*transfer),
		commands:        make(map[gpu.CommandBuffer]*commandBuffer),
		scopes:          make(map[uint64]gpu.CommandBuffer),
		releases:        make(map[uint64]int),
		calls:           make(map[string]int),
		faults:          make(map[string][]fault),
		uniforms:        make(map[uint32][]byte),
		swapchainFormat: gpu.TextureFormatB8G8R8A8Unorm,
		vsync:           true,
	}
	d.Resize(width, height)
	return d
}

func (d *Device) id() uint64 {
	d.nextID++
	return d.nextID
}

// enter records a call to op and returns the injected fault for it, if any.
func (d *Device) enter(op string) error {
	d.calls[op]++
	d.trace = append(d.trace, op)
	pending := d.faults[op]
	for i, f := range pending {
		if f.at == d.calls[op] {
			d.faults[op] = append(pending[:i:i], pending[i+1:]...)
			return f.err
		}
	}
	return nil
}

// FailOn makes the nth call to op from now on fail with ErrInjected.
func (d *Device) FailOn(op string, nth int) {
	d.FailOnWith(op, nth, ErrInjected)
}

func (d *Device) FailOnWith(op string, nth int, err error) {
	d.faults[op] = append(d.faults[op], fault{at: d.calls[op] + nth, err: err})
}

// Calls returns how many times op has been called.
func (d *Device) Calls(op string) int {
	return d.calls[op]
}

// Trace returns the names of every device call in order.
func (d *Device) Trace() []string {
	return append([]string(nil), d.trace...)
}

func (d *Device) ResetTrace() {
	d.trace = nil
}

// ReleaseCount returns how many times the handle with the given id was
// released. Anything other than 0 or 1 is a bug in the caller.
func (d *Device) ReleaseCount(id uint64) int {
	return d.releases[id]
}

func (d *Device) release(id uint64) {
	d.releases[id]++
	d.released = append(d.released, id)
}

// Released returns the ids of every released handle in release order.
func (d *Device) Released() []uint64 {
	return append([]uint64(nil), d.released...)
}

// TransferBuffers returns every transfer buffer handle created, live or not,
// in creation order.
func (d *Device) TransferBuffers() []gpu.TransferBuffer {
	return append([]gpu.TransferBuffer(nil), d.transferIDs...)
}

func (d *Device) Stats() Stats {
	s := d.stats
	s.LiveBuffers = len(d.buffers)
	s.LiveTextures = len(d.textures)
	s.LiveTransfers = len(d.transfers)
	return s
}

// Resize recreates the swapchain texture. A zero size simulates a minimised
// window.
func (d *Device) Resize(width, height uint32) {
	if d.swapchain.Valid() {
		delete(d.textures, d.swapchain)
		d.swapchain = 0
	}
	d.width, d.height = width, height
	if width == 0 || height == 0 {
		return
	}
	d.swapchain = gpu.Texture(d.id())
	d.textures[d.swapchain] = newTexture(gpu.TextureCreateInfo{
		Format:    d.swapchainFormat,
		Usage:     gpu.TextureUsageColorTarget,
		Width:     width,
		Height:    height,
		NumLevels: 1,
		Name:      "swapchain",
	})
}

func newTexture(info gpu.TextureCreateInfo) *texture {
	t := &texture{info: info, levels: make([][]byte, info.NumLevels)}
	bpp := info.Format.BytesPerPixel()
	for i := range t.levels {
		w, h := levelSize(info.Width, info.Height, uint32(i))
		t.levels[i] = make([]byte, w*h*bpp)
	}
	return t
}

func levelSize(width, height, level uint32) (uint32, uint32) {
	return max(width>>level, 1), max(height>>level, 1)
}

func (d *Device) CreateBuffer(usage gpu.BufferUsage, size uint32) (gpu.Buffer, error) {
	if err := d.enter(gpu.OpCreateBuffer); err != nil {
		return 0, err
	}
	if size == 0 {
		return 0, fmt.Errorf("zero sized buffer")
	}
	b := gpu.Buffer(d.id())
	d.buffers[b] = &buffer{usage: usage, data: make([]byte, size)}
	return b, nil
}

func (d *Device) ReleaseBuffer(b gpu.Buffer) {
	d.release(uint64(b))
	delete(d.buffers, b)
}

func (d *Device) CreateTexture(info gpu.TextureCreateInfo) (gpu.Texture, error) {
	if err := d.enter(gpu.OpCreateTexture); err != nil {
		return 0, err
	}
	if info.Width == 0 || info.Height == 0 {
		return 0, fmt.Errorf("invalid texture size %dx%d", info.Width, info.Height)
	}
	if info.Format.BytesPerPixel() == 0 {
		return 0, fmt.Errorf("unsupported texture format %s", info.Format)
	}
	if info.NumLevels == 0 {
		info.NumLevels = 1
	}
	if info.NumLevels > gpu.MipLevelCount(info.Width, info.Height) {
		return 0, fmt.Errorf("%d levels exceed the mip chain of a %dx%d texture", info.NumLevels, info.Width, info.Height)
	}
	if info.Format.IsDepth() && info.Usage&gpu.TextureUsageDepthStencilTarget == 0 {
		return 0, fmt.Errorf("depth format %s without depth target usage", info.Format)
	}
	t := gpu.Texture(d.id())
	d.textures[t] = newTexture(info)
	return t, nil
}

func (d *Device) ReleaseTexture(t gpu.Texture) {
	d.release(uint64(t))
	if t == d.swapchain {
		return
	}
	delete(d.textures, t)
}

func (d *Device) CreateTransferBuffer(size uint32) (gpu.TransferBuffer, error) {
	if err := d.enter(gpu.OpCreateTransferBuffer); err != nil {
		return 0, err
	}
	if size == 0 {
		return 0, fmt.Errorf("zero sized transfer buffer")
	}
	t := gpu.TransferBuffer(d.id())
	d.transferIDs = append(d.transferIDs, t)
	d.transfers[t] = &transfer{data: make([]byte, size)}
	return t, nil
}

func (d *Device) MapTransferBuffer(t gpu.TransferBuffer) ([]byte, error) {
	if err := d.enter(gpu.OpMapTransferBuffer); err != nil {
		return nil, err
	}
	tb, ok := d.transfers[t]
	if !ok {
		return nil, fmt.Errorf("transfer buffer %d is not live", t)
	}
	if tb.mapped {
		return nil, fmt.Errorf("transfer buffer %d is already mapped", t)
	}
	tb.mapped = true
	return tb.data, nil
}

func (d *Device) UnmapTransferBuffer(t gpu.TransferBuffer) {
	if tb, ok := d.transfers[t]; ok {
		tb.mapped = false
	}
}

func (d *Device) ReleaseTransferBuffer(t gpu.TransferBuffer) {
	d.release(uint64(t))
	delete(d.transfers, t)
}

func (d *Device) AcquireCommandBuffer() (gpu.CommandBuffer, error) {
	if err := d.enter(gpu.OpAcquireCommandBuffer); err != nil {
		return 0, err
	}
	if d.closed {
		return 0, fmt.Errorf("device is closed")
	}
	cmd := gpu.CommandBuffer(d.id())
	d.commands[cmd] = &commandBuffer{}
	return cmd, nil
}

func (d *Device) recording(cmd gpu.CommandBuffer) (*commandBuffer, error) {
	cb, ok := d.commands[cmd]
	if !ok {
		return nil, fmt.Errorf("command buffer %d does not exist", cmd)
	}
	if cb.state != commandRecording {
		return nil, fmt.Errorf("command buffer %d is not recording", cmd)
	}
	return cb, nil
}

// open starts a copy scope or render pass on cmd.
func (d *Device) open(cmd gpu.CommandBuffer) (uint64, error) {
	cb, err := d.recording(cmd)
	if err != nil {
		return 0, err
	}
	if cb.open != 0 {
		return 0, fmt.Errorf("command buffer %d already has pass %d open", cmd, cb.open)
	}
	id := d.id()
	cb.open = id
	d.scopes[id] = cmd
	return id, nil
}

// inScope returns the command buffer recording scope.
func (d *Device) inScope(scope uint64) (*commandBuffer, error) {
	cmd, ok := d.scopes[scope]
	if !ok {
		return nil, fmt.Errorf("pass %d is not open", scope)
	}
	cb, err := d.recording(cmd)
	if err != nil {
		return nil, err
	}
	if cb.open != scope {
		return nil, fmt.Errorf("pass %d is not open", scope)
	}
	return cb, nil
}

func (d *Device) close(scope uint64) error {
	cb, err := d.inScope(scope)
	if err != nil {
		return err
	}
	cb.open = 0
	delete(d.scopes, scope)
	return nil
}

func (d *Device) BeginCopyPass(cmd gpu.CommandBuffer) (gpu.CopyScope, error) {
	if err := d.enter(gpu.OpBeginCopyPass); err != nil {
		return 0, err
	}
	id, err := d.open(cmd)
	return gpu.CopyScope(id), err
}

// source returns the first size bytes of a live transfer buffer.
func (d *Device) source(src gpu.TransferBuffer, size uint32, missing string) ([]byte, error) {
	tb, ok := d.transfers[src]
	if !ok {
		return nil, fmt.Errorf("transfer buffer %d %s", src, missing)
	}
	if uint32(len(tb.data)) < size {
		return nil, fmt.Errorf("transfer buffer %d holds %d bytes, %d requested", src, len(tb.data), size)
	}
	return tb.data[:size], nil
}

func (d *Device) UploadToBuffer(scope gpu.CopyScope, src gpu.TransferBuffer, dst gpu.Buffer, size uint32) error {
	if err := d.enter(gpu.OpUploadToBuffer); err != nil {
		return err
	}
	cb, err := d.inScope(uint64(scope))
	if err != nil {
		return err
	}
	if _, err := d.destinationBuffer(dst, size, "is not live"); err != nil {
		return err
	}
	if _, err := d.source(src, size, "is not live"); err != nil {
		return err
	}
	cb.ops = append(cb.ops, func() (func(), error) {
		data, err := d.source(src, size, "was released before execution")
		if err != nil {
			return nil, err
		}
		b, err := d.destinationBuffer(dst, size, "was released before execution")
		if err != nil {
			return nil, err
		}
		return func() { copy(b.data, data) }, nil
	})
	return nil
}

func (d *Device) destinationBuffer(dst gpu.Buffer, size uint32, missing string) (*buffer, error) {
	b, ok := d.buffers[dst]
	if !ok {
		return nil, fmt.Errorf("buffer %d %s", dst, missing)
	}
	if uint32(len(b.data)) < size {
		return nil, fmt.Errorf("buffer %d holds %d bytes, %d uploaded", dst, len(b.data), size)
	}
	return b, nil
}

func (d *Device) destinationTexture(dst gpu.Texture, width, height uint32, missing string) (*texture, error) {
	t, ok := d.textures[dst]
	if !ok {
		return nil, fmt.Errorf("texture %d %s", dst, missing)
	}
	if width > t.info.Width || height > t.info.Height {
		return nil, fmt.Errorf("upload of %dx%d exceeds texture %d of %dx%d", width, height, dst, t.info.Width, t.info.Height)
	}
	return t, nil
}

func (d *Device) UploadToTexture(scope gpu.CopyScope, src gpu.TransferBuffer, dst gpu.Texture, width, height uint32) error {
	if err := d.enter(gpu.OpUploadToTexture); err != nil {
		return err
	}
	cb, err := d.inScope(uint64(scope))
	if err != nil {
		return err
	}
	t, err := d.destinationTexture(dst, width, height, "is not live")
	if err != nil {
		return err
	}
	if _, err := d.source(src, width*height*t.info.Format.BytesPerPixel(), "is not live"); err != nil {
		return err
	}
	cb.ops = append(cb.ops, func() (func(), error) {
		t, err := d.destinationTexture(dst, width, height, "was released before execution")
		if err != nil {
			return nil, err
		}
		bpp := t.info.Format.BytesPerPixel()
		data, err := d.source(src, width*height*bpp, "was released before execution")
		if err != nil {
			return nil, err
		}
		return func() {
			rowBytes := width * bpp
			pitch := t.info.Width * bpp
			for y := uint32(0); y < height; y++ {
				copy(t.levels[0][y*pitch:y*pitch+rowBytes], data[y*rowBytes:])
			}
		}, nil
	})
	return nil
}

func (d *Device) EndCopyPass(scope gpu.CopyScope) error {
	if err := d.enter(gpu.OpEndCopyPass); err != nil {
		return err
	}
	return d.close(uint64(scope))
}

func (d *Device) GenerateMipmaps(cmd gpu.CommandBuffer, tex gpu.Texture) error {
	if err := d.enter(gpu.OpGenerateMipmaps); err != nil {
		return err
	}
	cb, err := d.recording(cmd)
	if err != nil {
		return err
	}
	if cb.open != 0 {
		return fmt.Errorf("mipmaps cannot be generated inside pass %d", cb.open)
	}
	t, ok := d.textures[tex]
	if !ok {
		return fmt.Errorf("texture %d is not live", tex)
	}
	if t.info.Usage&gpu.TextureUsageColorTarget == 0 {
		return fmt.Errorf("texture %d is not a colour target", tex)
	}
	d.stats.MipmapsRecorded++
	cb.ops = append(cb.ops, func() (func(), error) {
		t, ok := d.textures[tex]
		if !ok {
			return nil, fmt.Errorf("texture %d was released before execution", tex)
		}
		return t.generateMipmaps, nil
	})
	return nil
}

// generateMipmaps fills each level by linear filtering of the one above.
// Only 8-bit four channel formats carry data; other levels stay zeroed.
func (t *texture) generateMipmaps() {
	switch t.info.Format {
	case gpu.TextureFormatR8G8B8A8Unorm, gpu.TextureFormatB8G8R8A8Unorm:
	default:
		return
	}
	for level := uint32(1); level < t.info.NumLevels; level++ {
		pw, ph := levelSize(t.info.Width, t.info.Height, level-1)
		w, h := levelSize(t.info.Width, t.info.Height, level)
		src := &image.RGBA{
			Pix:    t.levels[level-1],
			Stride: int(pw) * 4,
			Rect:   image.Rect(0, 0, int(pw), int(ph)),
		}
		dst := transform.Resize(src, int(w), int(h), transform.Linear)
		copy(t.levels[level], dst.Pix)
	}
}

func (d *Device) SubmitCommandBuffer(cmd gpu.CommandBuffer) error {
	if err := d.enter(gpu.OpSubmitCommandBuffer); err != nil {
		return err
	}
	cb, err := d.recording(cmd)
	if err != nil {
		return err
	}
	if cb.open != 0 {
		return fmt.Errorf("command buffer %d submitted with pass %d open", cmd, cb.open)
	}
	cb.state = commandSubmitted
	delete(d.commands, cmd)

	effects := make([]func(), 0, len(cb.ops))
	for _, op := range cb.ops {
		effect, err := op()
		if err != nil {
			return err
		}
		effects = append(effects, effect)
	}
	for _, effect := range effects {
		effect()
	}
	d.stats.Submitted++
	return nil
}

func (d *Device) CancelCommandBuffer(cmd gpu.CommandBuffer) {
	// Cancelling cannot fail, injected faults are only counted.
	_ = d.enter(OpCancelCommandBuffer)
	cb, ok := d.commands[cmd]
	if !ok || cb.state != commandRecording {
		return
	}
	if cb.open != 0 {
		delete(d.scopes, cb.open)
	}
	cb.state = commandCancelled
	delete(d.commands, cmd)
	d.stats.Cancelled++
}

func (d *Device) SwapchainTextureFormat() gpu.TextureFormat {
	return d.swapchainFormat
}

func (d *Device) SetVSync(enabled bool) error {
	if err := d.enter(OpSetVSync); err != nil {
		return err
	}
	d.vsync = enabled
	return nil
}

func (d *Device) VSync() bool {
	return d.vsync
}

func (d *Device) WaitAndAcquireSwapchainTexture(cmd gpu.CommandBuffer) (gpu.Texture, uint32, uint32, error) {
	if err := d.enter(OpWaitAndAcquireSwapchainTexture); err != nil {
		return 0, 0, 0, err
	}
	if _, err := d.recording(cmd); err != nil {
		return 0, 0, 0, err
	}
	if !d.swapchain.Valid() {
		return 0, 0, 0, nil
	}
	return d.swapchain, d.width, d.height, nil
}

func (d *Device) BeginRenderPass(cmd gpu.CommandBuffer, color gpu.ColorTargetInfo, depth *gpu.DepthStencilTargetInfo) (gpu.RenderPass, error) {
	if err := d.enter(OpBeginRenderPass); err != nil {
		return 0, err
	}
	ct, ok := d.textures[color.Texture]
	if !ok || ct.info.Usage&gpu.TextureUsageColorTarget == 0 {
		return 0, fmt.Errorf("texture %d is not a colour target", color.Texture)
	}
	var dt *texture
	if depth != nil {
		dt, ok = d.textures[depth.Texture]
		if !ok || dt.info.Usage&gpu.TextureUsageDepthStencilTarget == 0 {
			return 0, fmt.Errorf("texture %d is not a depth target", depth.Texture)
		}
		if dt.info.Width != ct.info.Width || dt.info.Height != ct.info.Height {
			return 0, fmt.Errorf("depth target %dx%d does not match colour target %dx%d",
				dt.info.Width, dt.info.Height, ct.info.Width, ct.info.Height)
		}
	}
	id, err := d.open(cmd)
	if err != nil {
		return 0, err
	}
	cb := d.commands[cmd]
	if color.Clear {
		texel := encodeColor(ct.info.Format, color.ClearColor.X, color.ClearColor.Y, color.ClearColor.Z, color.ClearColor.W)
		cb.apply(func() { fill(ct.levels[0], texel) })
	}
	if depth != nil && depth.Clear {
		texel := encodeDepth(dt.info.Format, depth.ClearDepth)
		cb.apply(func() { fill(dt.levels[0], texel) })
	}
	return gpu.RenderPass(id), nil
}

func (d *Device) EndRenderPass(pass gpu.RenderPass) error {
	if err := d.enter(OpEndRenderPass); err != nil {
		return err
	}
	return d.close(uint64(pass))
}

func (d *Device) PushVertexUniformData(cmd gpu.CommandBuffer, slot uint32, data []byte) error {
	if err := d.enter(OpPushVertexUniformData); err != nil {
		return err
	}
	cb, err := d.recording(cmd)
	if err != nil {
		return err
	}
	snapshot := append([]byte(nil), data...)
	cb.apply(func() { d.uniforms[slot] = snapshot })
	return nil
}

// VertexUniform returns the last uniform data executed for slot.
func (d *Device) VertexUniform(slot uint32) []byte {
	return d.uniforms[slot]
}

func (d *Device) WaitIdle() error {
	return nil
}

// Close releases every remaining resource. It reports resources the caller
// leaked, which the harness logs.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	leaked := len(d.buffers) + len(d.transfers)
	for t := range d.textures {
		if t != d.swapchain {
			leaked++
		}
	}
	d.buffers = map[gpu.Buffer]*buffer{}
	d.textures = map[gpu.Texture]*texture{}
	d.transfers = map[gpu.TransferBuffer]*transfer{}
	if leaked > 0 {
		core.LogWarn("headless device closed with %d live resources", leaked)
	}
	return nil
}

// ReadBuffer returns a copy of a buffer's contents.
func (d *Device) ReadBuffer(b gpu.Buffer) ([]byte, error) {
	buf, ok := d.buffers[b]
	if !ok {
		return nil, fmt.Errorf("buffer %d is not live", b)
	}
	return append([]byte(nil), buf.data...), nil
}

// ReadTexture returns a copy of one mip level, rows tightly packed.
func (d *Device) ReadTexture(t gpu.Texture, level uint32) ([]byte, error) {
	tex, ok := d.textures[t]
	if !ok {
		return nil, fmt.Errorf("texture %d is not live", t)
	}
	if level >= uint32(len(tex.levels)) {
		return nil, fmt.Errorf("texture %d has no level %d", t, level)
	}
	return append([]byte(nil), tex.levels[level]...), nil
}

// TextureInfo returns the creation parameters of a live texture.
func (d *Device) TextureInfo(t gpu.Texture) (gpu.TextureCreateInfo, bool) {
	tex, ok := d.textures[t]
	if !ok {
		return gpu.TextureCreateInfo{}, false
	}
	return tex.info, true
}

// BufferUsage returns the usage flags of a live buffer.
func (d *Device) BufferUsage(b gpu.Buffer) (gpu.BufferUsage, bool) {
	buf, ok := d.buffers[b]
	if !ok {
		return 0, false
	}
	return buf.usage, true
}

func (d *Device) Swapchain() gpu.Texture {
	return d.swapchain
}

func fill(dst, texel []byte) {
	if len(texel) == 0 {
		return
	}
	for i := 0; i+len(texel) <= len(dst); i += len(texel) {
		copy(dst[i:], texel)
	}
}

func unorm8(f float32) byte {
	return byte(stdmath.Round(float64(min(max(f, 0), 1)) * 255))
}

func encodeColor(format gpu.TextureFormat, r, g, b, a float32) []byte {
	switch format {
	case gpu.TextureFormatR8G8B8A8Unorm:
		return []byte{unorm8(r), unorm8(g), unorm8(b), unorm8(a)}
	case gpu.TextureFormatB8G8R8A8Unorm:
		return []byte{unorm8(b), unorm8(g), unorm8(r), unorm8(a)}
	case gpu.TextureFormatR32G32B32A32Float:
		out := make([]byte, 16)
		for i, c := range []float32{r, g, b, a} {
			binary.NativeEndian.PutUint32(out[i*4:], stdmath.Float32bits(c))
		}
		return out
	}
	return nil
}

func encodeDepth(format gpu.TextureFormat, depth float32) []byte {
	depth = min(max(depth, 0), 1)
	switch format {
	case gpu.TextureFormatD16Unorm:
		out := make([]byte, 2)
		binary.NativeEndian.PutUint16(out, uint16(stdmath.Round(float64(depth)*0xFFFF)))
		return out
	case gpu.TextureFormatD24UnormS8Uint:
		out := make([]byte, 4)
		binary.NativeEndian.PutUint32(out, uint32(stdmath.Round(float64(depth)*0xFFFFFF)))
		return out
	case gpu.TextureFormatD32Float:
		out := make([]byte, 4)
		binary.NativeEndian.PutUint32(out, stdmath.Float32bits(depth))
		return out
	case gpu.TextureFormatD32FloatS8Uint:
		out := make([]byte, 8)
		binary.NativeEndian.PutUint32(out, stdmath.Float32bits(depth))
		return out
	}
	return nil
}
