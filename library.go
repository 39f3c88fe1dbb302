package ndi

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"

	log "github.com/sirupsen/logrus"
)

// RuntimeDirEnv names the directory searched first for the NDI runtime.
const RuntimeDirEnv = "NDI_RUNTIME_DIR_V6"

var (
	libOnce sync.Once
	lib     *funcTable
	libErr  error
)

// library returns the process-wide function table, loading and
// initializing the NDI runtime on first use. A failure is cached: every
// later call returns the same error and nothing is retried.
func library() (*funcTable, error) {
	libOnce.Do(func() {
		lib, libErr = loadLibrary()
		if libErr != nil {
			logger().WithError(libErr).Error("NDI library unavailable")
			return
		}
		logger().Debug("NDI library initialized")
	})
	return lib, libErr
}

// Initialize loads and initializes the NDI runtime. Calling it is optional,
// every constructor does the same on first use, but it lets a program fail
// fast at startup.
func Initialize() error {
	_, err := library()
	return err
}

// IsAvailable reports whether the NDI runtime could be loaded.
func IsAvailable() bool {
	return Initialize() == nil
}

// Version returns the NDI SDK version string.
func Version() (string, error) {
	t, err := library()
	if err != nil {
		return "", err
	}
	return tableVersion(t)
}

// IsSupportedCPU reports whether the NDI runtime supports this CPU.
func IsSupportedCPU() (bool, error) {
	t, err := library()
	if err != nil {
		return false, err
	}
	if t.isSupportedCPU == nil {
		return false, missingSymbol("is_supported_CPU")
	}
	return t.isSupportedCPU(), nil
}

func tableVersion(t *funcTable) (string, error) {
	if t.version == nil {
		return "", missingSymbol("version")
	}
	p := t.version()
	if p == nil {
		return "", nullPointer("version")
	}
	// The version string is owned by the library and never freed.
	return goStringLossy(p), nil
}

func loadLibrary() (*funcTable, error) {
	name, err := libraryName(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return nil, &LoadError{Path: runtime.GOOS + "/" + runtime.GOARCH, Err: err}
	}
	path := locateLibrary(name, librarySearchDirs(runtime.GOOS, os.Getenv(RuntimeDirEnv)))

	logger().WithField("path", path).Debug("Loading NDI library")
	handle, err := openLibrary(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	ptr, err := loadV5(handle)
	if err != nil {
		return nil, err
	}
	if ptr == nil {
		return nil, ErrLoadV5Failed
	}

	t := bindFuncTable(readTableSlots(ptr, tableSlots))
	if err := initFuncTable(t); err != nil {
		return nil, err
	}
	return t, nil
}

// libraryName selects the NDI runtime file for a platform. Platforms the
// SDK does not ship for fail instead of guessing.
func libraryName(goos, goarch string) (string, error) {
	switch goos {
	case "darwin":
		return "libndi.dylib", nil
	case "linux", "android", "freebsd", "netbsd", "openbsd", "dragonfly", "solaris", "illumos", "aix":
		return "libndi.so.6", nil
	case "windows":
		switch goarch {
		case "amd64":
			return "Processing.NDI.Lib.x64.dll", nil
		case "386":
			return "Processing.NDI.Lib.x86.dll", nil
		}
	}
	return "", ErrUnsupportedPlatform
}

// librarySearchDirs lists the directories checked for the runtime, in
// order. runtimeDir is the value of NDI_RUNTIME_DIR_V6.
func librarySearchDirs(goos, runtimeDir string) []string {
	var dirs []string
	if runtimeDir != "" {
		if goos == "windows" {
			dirs = append(dirs, filepath.Join(runtimeDir, "lib"))
		} else {
			dirs = append(dirs, runtimeDir)
		}
	}
	if goos != "windows" {
		dirs = append(dirs, "/usr/local/lib")
		if goos != "darwin" {
			dirs = append(dirs, "/usr/lib")
		}
	}
	return dirs
}

// locateLibrary returns the first dir/name that exists. If none does, the
// bare name is returned and the OS loader does the lookup.
func locateLibrary(name string, dirs []string) string {
	for _, dir := range dirs {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	logger().WithFields(log.Fields{
		"name": name,
		"dirs": dirs,
	}).Trace("NDI library not found in search dirs, using OS default resolution")
	return name
}
