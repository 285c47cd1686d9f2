package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/nehe/engine/core"
)

const portabilitySubset = "VK_KHR_portability_subset"

type queueFamilies struct {
	graphics int32
	present  int32
}

type candidate struct {
	device   vk.PhysicalDevice
	families queueFamilies
	discrete bool
	name     string
}

// selectPhysicalDevice picks the first discrete GPU that can draw to the
// surface, falling back to any GPU that can.
func selectPhysicalDevice(context *Context) error {
	var count uint32
	if err := check("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(context.Instance, &count, nil)); err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("no devices which support Vulkan were found")
	}
	devices := make([]vk.PhysicalDevice, count)
	if err := check("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(context.Instance, &count, devices)); err != nil {
		return err
	}

	var chosen *candidate
	for _, device := range devices {
		c, ok := meetsRequirements(device, context.Surface)
		if !ok {
			continue
		}
		if chosen == nil || (c.discrete && !chosen.discrete) {
			chosen = &c
		}
	}
	if chosen == nil {
		return fmt.Errorf("no physical devices were found which meet the requirements")
	}

	context.PhysicalDevice = chosen.device
	context.GraphicsQueueIndex = uint32(chosen.families.graphics)
	context.PresentQueueIndex = uint32(chosen.families.present)
	vk.GetPhysicalDeviceProperties(chosen.device, &context.Properties)
	context.Properties.Deref()
	context.Properties.Limits.Deref()
	vk.GetPhysicalDeviceMemoryProperties(chosen.device, &context.Memory)
	context.Memory.Deref()

	version := vk.Version(context.Properties.ApiVersion)
	core.LogInfo("Selected device: '%s' (discrete: %t).", chosen.name, chosen.discrete)
	core.LogInfo("Vulkan API version: %d.%d.%d", version.Major(), version.Minor(), version.Patch())
	for i := uint32(0); i < context.Memory.MemoryHeapCount; i++ {
		heap := context.Memory.MemoryHeaps[i]
		heap.Deref()
		gib := float64(heap.Size) / 1024 / 1024 / 1024
		if vk.MemoryHeapFlagBits(heap.Flags)&vk.MemoryHeapDeviceLocalBit != 0 {
			core.LogDebug("Local GPU memory: %.2f GiB", gib)
		} else {
			core.LogDebug("Shared System memory: %.2f GiB", gib)
		}
	}
	return nil
}

func meetsRequirements(device vk.PhysicalDevice, surface vk.Surface) (candidate, bool) {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(device, &properties)
	properties.Deref()
	c := candidate{
		device:   device,
		families: queueFamilies{graphics: -1, present: -1},
		discrete: properties.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu,
		name:     cString(properties.DeviceName[:]),
	}

	var familyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &familyCount, nil)
	families := make([]vk.QueueFamilyProperties, familyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &familyCount, families)
	for i := range families {
		families[i].Deref()
		graphics := vk.QueueFlagBits(families[i].QueueFlags)&vk.QueueGraphicsBit != 0
		var present vk.Bool32
		if res := vk.GetPhysicalDeviceSurfaceSupport(device, uint32(i), surface, &present); res != vk.Success {
			return c, false
		}
		// Prefer one family for both so the swapchain images are not shared.
		if graphics && present == vk.True {
			c.families = queueFamilies{graphics: int32(i), present: int32(i)}
			break
		}
		if graphics && c.families.graphics < 0 {
			c.families.graphics = int32(i)
		}
		if present == vk.True && c.families.present < 0 {
			c.families.present = int32(i)
		}
	}
	if c.families.graphics < 0 || c.families.present < 0 {
		core.LogDebug("Device '%s' lacks a graphics or present queue, skipping.", c.name)
		return c, false
	}

	extensions, err := deviceExtensions(device)
	if err != nil || !extensions[vk.KhrSwapchainExtensionName] {
		core.LogDebug("Device '%s' does not support swapchains, skipping.", c.name)
		return c, false
	}

	var support swapchainSupport
	if err := support.query(device, surface); err != nil || len(support.formats) == 0 || len(support.presentModes) == 0 {
		core.LogDebug("Required swapchain support not present on '%s', skipping.", c.name)
		return c, false
	}
	return c, true
}

func deviceExtensions(device vk.PhysicalDevice) (map[string]bool, error) {
	var count uint32
	if err := check("vkEnumerateDeviceExtensionProperties", vk.EnumerateDeviceExtensionProperties(device, "", &count, nil)); err != nil {
		return nil, err
	}
	available := make([]vk.ExtensionProperties, count)
	if count > 0 {
		if err := check("vkEnumerateDeviceExtensionProperties", vk.EnumerateDeviceExtensionProperties(device, "", &count, available)); err != nil {
			return nil, err
		}
	}
	names := make(map[string]bool, count)
	for i := range available {
		available[i].Deref()
		names[cString(available[i].ExtensionName[:])] = true
	}
	return names, nil
}

func createLogicalDevice(context *Context) error {
	indices := []uint32{context.GraphicsQueueIndex}
	if context.PresentQueueIndex != context.GraphicsQueueIndex {
		indices = append(indices, context.PresentQueueIndex)
	}
	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(indices))
	for i, index := range indices {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: index,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	available, err := deviceExtensions(context.PhysicalDevice)
	if err != nil {
		return err
	}
	extensions := []string{vk.KhrSwapchainExtensionName}
	if available[portabilitySubset] {
		core.LogInfo("Adding required extension '%s'.", portabilitySubset)
		extensions = append(extensions, portabilitySubset)
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
	}
	if err := check("vkCreateDevice", vk.CreateDevice(context.PhysicalDevice, &deviceCreateInfo, context.Allocator, &context.LogicalDevice)); err != nil {
		return err
	}
	core.LogInfo("Logical device created.")

	vk.GetDeviceQueue(context.LogicalDevice, context.GraphicsQueueIndex, 0, &context.GraphicsQueue)
	vk.GetDeviceQueue(context.LogicalDevice, context.PresentQueueIndex, 0, &context.PresentQueue)

	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: context.GraphicsQueueIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	if err := check("vkCreateCommandPool", vk.CreateCommandPool(context.LogicalDevice, &poolCreateInfo, context.Allocator, &context.GraphicsCommandPool)); err != nil {
		return err
	}
	core.LogDebug("Graphics command pool created.")
	return nil
}

func destroyLogicalDevice(context *Context) {
	if context.LogicalDevice == nil {
		return
	}
	if context.GraphicsCommandPool != nil {
		vk.DestroyCommandPool(context.LogicalDevice, context.GraphicsCommandPool, context.Allocator)
		context.GraphicsCommandPool = nil
	}
	vk.DestroyDevice(context.LogicalDevice, context.Allocator)
	context.LogicalDevice = nil
	context.GraphicsQueue = nil
	context.PresentQueue = nil
	context.PhysicalDevice = nil
}
