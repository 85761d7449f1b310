// Package thread pins GL and SDL work to the main OS thread.
// See: https://github.com/golang/go/wiki/LockOSThread
package thread

import (
	"github.com/faiface/mainthread"
)

// Wrap hands the main goroutine over to the mainthread scheduler.
// Everything touching the window, the GL context, or thread affinity
// must go through Main.
func Wrap(f func()) { mainthread.Run(f) }

// Main calls f on the main thread and blocks until it returns.
func Main(f func()) { mainthread.Call(f) }
