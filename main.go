package main

import (
	"runtime"

	"github.com/hoppxi/displayconfig/internal/cmd"
)

func init() {
	// CoreGraphics delivers reconfiguration callbacks on the main run loop.
	runtime.LockOSThread()
}

func main() {
	cmd.Execute()
}
