package vulkan

import (
	"fmt"
	"runtime"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/nehe/engine/core"
)

const validationLayer = "VK_LAYER_KHRONOS_validation"

/**
 * @brief The window a device presents to.
 */
type Window interface {
	// InstanceProcAddr returns vkGetInstanceProcAddr as loaded by the
	// windowing library.
	InstanceProcAddr() unsafe.Pointer
	RequiredInstanceExtensions() []string
	CreateSurface(instance vk.Instance) (vk.Surface, error)
	// FramebufferSize is the drawable size in pixels.
	FramebufferSize() (int32, int32)
}

func createInstance(context *Context, window Window, appName string, debug bool) error {
	procAddr := window.InstanceProcAddr()
	if procAddr == nil {
		return fmt.Errorf("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)
	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to initialize vk: %w", err)
	}

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   safeString(appName),
		PEngineName:        safeString("NeHe"),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	extensions := append([]string{}, window.RequiredInstanceExtensions()...)
	if runtime.GOOS == "darwin" {
		extensions = append(extensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}

	var layers []string
	if debug {
		extensions = append(extensions, vk.ExtDebugReportExtensionName)
		if hasInstanceLayer(validationLayer) {
			layers = append(layers, validationLayer)
		} else {
			core.LogWarn("Validation layer %s is not installed, continuing without it.", validationLayer)
		}
	}
	for _, e := range extensions {
		core.LogDebug("Required instance extension: %s", e)
	}

	createInfo.EnabledExtensionCount = uint32(len(extensions))
	createInfo.PpEnabledExtensionNames = safeStrings(extensions)
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = safeStrings(layers)

	if err := check("vkCreateInstance", vk.CreateInstance(&createInfo, context.Allocator, &context.Instance)); err != nil {
		return err
	}
	if err := vk.InitInstance(context.Instance); err != nil {
		return err
	}
	core.LogInfo("Vulkan Instance created.")

	if debug {
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: debugCallback,
		}
		var callback vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(context.Instance, &debugCreateInfo, context.Allocator, &callback)); err != nil {
			core.LogWarn("vkCreateDebugReportCallback failed with %s", err)
		} else {
			context.debugReport = callback
		}
	}

	surface, err := window.CreateSurface(context.Instance)
	if err != nil {
		return fmt.Errorf("vulkan surface creation failed: %w", err)
	}
	context.Surface = surface
	core.LogDebug("Vulkan surface created.")
	return nil
}

func hasInstanceLayer(name string) bool {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success || count == 0 {
		return false
	}
	available := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, available); res != vk.Success {
		return false
	}
	for i := range available {
		available[i].Deref()
		if cString(available[i].LayerName[:]) == name {
			return true
		}
	}
	return false
}

func destroyInstance(context *Context) {
	if context.Surface != vk.NullSurface {
		vk.DestroySurface(context.Instance, context.Surface, context.Allocator)
		context.Surface = vk.NullSurface
	}
	if context.debugReport != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(context.Instance, context.debugReport, context.Allocator)
		context.debugReport = vk.NullDebugReportCallback
	}
	if context.Instance != nil {
		vk.DestroyInstance(context.Instance, context.Allocator)
		context.Instance = nil
	}
}
