// Package libretro declares the slice of the libretro ABI this frontend
// consumes. Cores are external collaborators loaded elsewhere; the
// frontend only ever talks to the Core interface and the callback
// aggregates below.
package libretro

import "unsafe"

// MemoryType selects a memory region exposed by a core.
type MemoryType int

const (
	MemorySaveRAM MemoryType = iota
	MemoryRTC
)

// Joypad button IDs, matching RETRO_DEVICE_ID_JOYPAD_*.
const (
	JoypadB = iota
	JoypadY
	JoypadSelect
	JoypadStart
	JoypadUp
	JoypadDown
	JoypadLeft
	JoypadRight
	JoypadA
	JoypadX
	JoypadL
	JoypadR
	JoypadL2
	JoypadR2
	JoypadL3
	JoypadR3
)

const (
	DeviceJoypad = 1
	DeviceAnalog = 5
)

// Analog stick indices used by InputState queries; within a stick,
// id 0 is the X axis and id 1 the Y axis.
const (
	AnalogLeft = iota
	AnalogRight
)

type PixelFormat int

const (
	PixelFormat0RGB1555 PixelFormat = iota
	PixelFormatXRGB8888
	PixelFormatRGB565
)

// BPP returns bytes per pixel of the format.
func (f PixelFormat) BPP() int {
	if f == PixelFormatXRGB8888 {
		return 4
	}
	return 2
}

type HWContextType int

const (
	HWContextNone HWContextType = iota
	HWContextOpenGL
	HWContextOpenGLES2
	HWContextOpenGLCore
	HWContextOpenGLES3
)

// HWRenderCallback is the contract negotiated through SET_HW_RENDER.
// The core fills the requirements and the reset/destroy hooks; the
// frontend fills Framebuffer and ProcAddress before ContextReset runs.
type HWRenderCallback struct {
	ContextType HWContextType
	Depth       bool
	Stencil     bool
	MaxWidth    uint
	MaxHeight   uint

	ContextReset   func()
	ContextDestroy func()

	Framebuffer func() uint32
	ProcAddress func(sym string) unsafe.Pointer
}

// Frame is one video refresh from the core. HW marks the
// RETRO_HW_FRAME_BUFFER_VALID sentinel: the pixels live in the
// frontend-provided FBO, Data is nil.
type Frame struct {
	Data  []byte
	W, H  uint
	Pitch int
	HW    bool
}

type Geometry struct {
	BaseW, BaseH uint
	MaxW, MaxH   uint
	AspectRatio  float64
}

type Timing struct {
	FPS        float64
	SampleRate float64
}

type SystemAVInfo struct {
	Geometry Geometry
	Timing   Timing
}

type SystemInfo struct {
	Name    string
	Version string
	// system tag, e.g. "GB"
	Tag             string
	ValidExtensions string
	NeedFullPath    bool
}

// InputDescriptor is one row of the core's declared input layout.
type InputDescriptor struct {
	Port, Device, Index, ID uint
	Description             string
}

// GameInfo hands a ROM to the core. Data is nil when the core wants
// the full path instead of the blob.
type GameInfo struct {
	Path string
	Data []byte
}

// Environment is implemented by the frontend; cores call into it.
type Environment interface {
	// SetHWRender accepts or declines a hardware rendering context.
	SetHWRender(cb *HWRenderCallback) bool
	SetPixelFormat(f PixelFormat) bool
	SetInputDescriptors(desc []InputDescriptor)
	SetGeometry(g Geometry)
	SetSystemAVInfo(av SystemAVInfo)
	// Variable resolves a core option by key.
	Variable(key string) (string, bool)
	// Message shows text for the given number of frames.
	Message(text string, frames int)
	SetRotation(rot uint) bool
}

// Callbacks is the frontend-supplied AV/input surface.
type Callbacks struct {
	OnVideo    func(f Frame)
	OnAudio    func(samples []int16) // interleaved stereo
	InputPoll  func()
	InputState func(port, device, index, id uint) int16
}

// DiskControl is the disk-control extension for multi-disc cores.
type DiskControl interface {
	SetEjectState(ejected bool) bool
	EjectState() bool
	ImageIndex() uint
	SetImageIndex(index uint) bool
	NumImages() uint
	ReplaceImageIndex(index uint, game GameInfo) bool
}

// Core is the loaded libretro runtime.
type Core interface {
	Init(env Environment, cb Callbacks) error
	Deinit()
	SystemInfo() SystemInfo
	AVInfo() SystemAVInfo
	LoadGame(game GameInfo) error
	UnloadGame()
	Run()
	Reset()
	SerializeSize() uint
	Serialize() ([]byte, error)
	Unserialize(data []byte) error
	MemorySize(t MemoryType) uint
	// MemoryData returns a live view over the core's memory region,
	// or nil when unsupported.
	MemoryData(t MemoryType) []byte
	// DiskControl returns nil when the core has no disk interface.
	DiskControl() DiskControl
}
