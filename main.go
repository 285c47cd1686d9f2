/*
Runs one of the NeHe lessons, either in a window on a Vulkan device or
headless against the in-memory device.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/nehe/engine"
	"github.com/spaghettifunk/nehe/engine/assets"
	"github.com/spaghettifunk/nehe/engine/core"
	"github.com/spaghettifunk/nehe/engine/gpu"
	"github.com/spaghettifunk/nehe/engine/gpu/headless"
	"github.com/spaghettifunk/nehe/engine/gpu/vulkan"
	"github.com/spaghettifunk/nehe/engine/platform"
	"github.com/spaghettifunk/nehe/lessons"
)

func main() {
	var (
		lessonName = flag.String("lesson", "lesson1", "lesson to run")
		configPath = flag.String("config", "", "TOML file overriding the lesson's settings")
		headlessOn = flag.Bool("headless", false, "render with the in-memory device")
		frames     = flag.Int("frames", 0, "stop after this many frames")
		dataDir    = flag.String("data", "", "resource directory")
		debug      = flag.Bool("debug", false, "enable the Vulkan validation layers")
		list       = flag.Bool("list", false, "print the available lessons")
	)
	flag.Parse()

	if *list {
		for _, name := range lessons.Names() {
			fmt.Println(name)
		}
		return
	}

	lesson, err := lessons.New(*lessonName)
	if err != nil {
		fatal(err)
	}
	config := lesson.Config()
	if *configPath != "" {
		if err := engine.LoadConfig(*configPath, &config); err != nil {
			fatal(err)
		}
	}
	if *headlessOn {
		config.Headless = true
	}
	if *frames > 0 {
		config.MaxFrames = *frames
	}
	if *dataDir != "" {
		config.DataDir = *dataDir
	}
	if err := core.SetLogLevel(config.LogLevel); err != nil {
		fatal(err)
	}

	if err := run(lesson, config, *debug); err != nil {
		fatal(err)
	}
}

func run(lesson engine.Lesson, config engine.AppConfig, debug bool) error {
	// Lessons without resources still run when the data directory is missing.
	var loader gpu.ImageLoader
	index, err := assets.NewIndex(config.DataDir)
	if err != nil {
		core.LogWarn("resources unavailable: %s", err)
	} else {
		defer index.Close()
		loader = assets.NewImageLoader(index)
	}

	events := core.NewEventQueue()

	var (
		device gpu.RenderDevice
		window engine.Window
	)
	if config.Headless {
		d := headless.NewDevice(uint32(config.Width), uint32(config.Height))
		device, window = d, headless.NewWindow(d, events)
	} else {
		w, err := platform.NewWindow(config.Title, config.Width, config.Height, events)
		if err != nil {
			return err
		}
		defer w.Close()
		d, err := vulkan.NewDevice(w, config.Title, debug, config.VSync)
		if err != nil {
			return err
		}
		device, window = d, w
	}
	defer func() {
		if err := device.Close(); err != nil {
			core.LogWarn("device close: %s", err)
		}
	}()

	runner, err := engine.NewRunner(lesson, config, device, window, loader, events)
	if err != nil {
		return err
	}
	defer runner.Shutdown()

	if err := runner.Initialize(); err != nil {
		return err
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer signal.Stop(sigCh)
	defer watchSignals(sigCh, runner.Stop)()

	return runner.Run()
}

// watchSignals calls stop on the first signal received on sigCh. The
// returned function ends the watch and waits for its goroutine to exit.
func watchSignals(sigCh <-chan os.Signal, stop func()) func() {
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-sigCh:
			stop()
		case <-done:
		}
	}()
	return func() {
		close(done)
		<-exited
	}
}

func fatal(err error) {
	core.LogError("%s", err)
	os.Exit(1)
}
