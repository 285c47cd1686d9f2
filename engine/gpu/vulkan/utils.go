package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/nehe/engine/core"
)

// ResultString names a VkResult, optionally with its description from the
// registry.
func ResultString(result vk.Result, extended bool) string {
	name, desc := "VK_ERROR_UNKNOWN", "An unknown error has occurred."
	switch result {
	case vk.Success:
		name, desc = "VK_SUCCESS", "Command successfully completed."
	case vk.NotReady:
		name, desc = "VK_NOT_READY", "A fence or query has not yet completed."
	case vk.Timeout:
		name, desc = "VK_TIMEOUT", "A wait operation has not completed in the specified time."
	case vk.Incomplete:
		name, desc = "VK_INCOMPLETE", "A return array was too small for the result."
	case vk.Suboptimal:
		name, desc = "VK_SUBOPTIMAL_KHR", "The swapchain no longer matches the surface properties exactly."
	case vk.ErrorOutOfHostMemory:
		name, desc = "VK_ERROR_OUT_OF_HOST_MEMORY", "A host memory allocation has failed."
	case vk.ErrorOutOfDeviceMemory:
		name, desc = "VK_ERROR_OUT_OF_DEVICE_MEMORY", "A device memory allocation has failed."
	case vk.ErrorInitializationFailed:
		name, desc = "VK_ERROR_INITIALIZATION_FAILED", "Initialization of an object could not be completed."
	case vk.ErrorDeviceLost:
		name, desc = "VK_ERROR_DEVICE_LOST", "The logical or physical device has been lost."
	case vk.ErrorMemoryMapFailed:
		name, desc = "VK_ERROR_MEMORY_MAP_FAILED", "Mapping of a memory object has failed."
	case vk.ErrorLayerNotPresent:
		name, desc = "VK_ERROR_LAYER_NOT_PRESENT", "A requested layer is not present or could not be loaded."
	case vk.ErrorExtensionNotPresent:
		name, desc = "VK_ERROR_EXTENSION_NOT_PRESENT", "A requested extension is not supported."
	case vk.ErrorFeatureNotPresent:
		name, desc = "VK_ERROR_FEATURE_NOT_PRESENT", "A requested feature is not supported."
	case vk.ErrorIncompatibleDriver:
		name, desc = "VK_ERROR_INCOMPATIBLE_DRIVER", "The requested version of Vulkan is not supported by the driver."
	case vk.ErrorTooManyObjects:
		name, desc = "VK_ERROR_TOO_MANY_OBJECTS", "Too many objects of the type have already been created."
	case vk.ErrorFormatNotSupported:
		name, desc = "VK_ERROR_FORMAT_NOT_SUPPORTED", "A requested format is not supported on this device."
	case vk.ErrorSurfaceLost:
		name, desc = "VK_ERROR_SURFACE_LOST_KHR", "A surface is no longer available."
	case vk.ErrorNativeWindowInUse:
		name, desc = "VK_ERROR_NATIVE_WINDOW_IN_USE_KHR", "The requested window is already in use."
	case vk.ErrorOutOfDate:
		name, desc = "VK_ERROR_OUT_OF_DATE_KHR", "The surface has changed and the swapchain must be recreated."
	}
	if extended {
		return name + " " + desc
	}
	return name
}

/** @brief A failed Vulkan call. */
type ResultError struct {
	Call   string
	Result vk.Result
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Call, ResultString(e.Result, false))
}

// check turns a VkResult into an error naming the call.
func check(call string, result vk.Result) error {
	if result == vk.Success {
		return nil
	}
	return &ResultError{Call: call, Result: result}
}

// safeString returns s terminated by a NUL as goki/vulkan expects for
// C strings.
func safeString(s string) string {
	if len(s) == 0 || s[len(s)-1] != 0 {
		return s + "\x00"
	}
	return s
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = safeString(s)
	}
	return out
}

// cString reads a fixed size NUL terminated name as returned in property
// structs.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func debugCallback(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogDebug("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
