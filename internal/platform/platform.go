// Package platform detects the execution environment once per process.
//
// TalkBack cares about exactly one unusual environment: WSL, where the
// process runs on a Linux kernel but audio must be routed through the
// Windows host. The kernel release string of a WSL build carries a
// "microsoft" marker, which is the detection Microsoft itself documents.
package platform

import (
	"os"
	"runtime"
	"strings"
	"sync"
)

// Facts describes the environment the process runs in. It is computed once
// and treated as immutable; callers receive a copy and pass it down
// explicitly instead of re-reading ambient state.
type Facts struct {
	// IsWindows is true when running natively on Windows.
	IsWindows bool

	// IsWSL is true when running on a WSL kernel. Audio playback must then
	// be forwarded to the Windows host.
	IsWSL bool

	// OS is the runtime GOOS value ("windows", "linux", "darwin", ...).
	OS string
}

// HostBridge reports whether a Windows host is reachable for PowerShell
// invocation and audio playback, either natively or through WSL interop.
func (f Facts) HostBridge() bool {
	return f.IsWindows || f.IsWSL
}

const osReleasePath = "/proc/sys/kernel/osrelease"

var (
	once  sync.Once
	facts Facts
)

// Detect returns the environment facts for this process. The probe runs on
// first use and the result is reused for the process lifetime.
func Detect() Facts {
	once.Do(func() {
		release := ""
		if b, err := os.ReadFile(osReleasePath); err == nil {
			release = string(b)
		}
		facts = detect(runtime.GOOS, release)
	})
	return facts
}

// detect derives Facts from a GOOS value and a kernel release string.
// Split out so tests can exercise the classification directly.
func detect(goos, kernelRelease string) Facts {
	f := Facts{OS: goos}
	switch goos {
	case "windows":
		f.IsWindows = true
	case "linux":
		f.IsWSL = strings.Contains(strings.ToLower(kernelRelease), "microsoft")
	}
	return f
}
