package target

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultName is the executable looked up when no target path is configured.
const DefaultName = "fuzz_driver"

// Resolve turns a configured target into an absolute executable path.
//
// An empty path looks for DefaultName next to the running executable, then in
// the working directory, then on $PATH. A bare name is looked up on $PATH and
// then in the working directory. Anything with a separator is used as given.
func Resolve(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		var candidates []string
		if exe, err := os.Executable(); err == nil {
			candidates = append(candidates, filepath.Join(filepath.Dir(exe), DefaultName))
		}
		candidates = append(candidates, DefaultName)
		for _, c := range candidates {
			if abs, err := checkExecutable(c); err == nil {
				return abs, nil
			}
		}
		if found, err := exec.LookPath(DefaultName); err == nil {
			return checkExecutable(found)
		}
		return "", &Error{Op: "resolve", Path: DefaultName, Err: fmt.Errorf("not found next to ringfuzz, in the working directory or on $PATH")}
	}

	if !strings.ContainsRune(path, '/') && !strings.ContainsRune(path, filepath.Separator) {
		if found, err := exec.LookPath(path); err == nil {
			return checkExecutable(found)
		}
	}
	return checkExecutable(path)
}

func checkExecutable(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &Error{Op: "resolve", Path: path, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &Error{Op: "resolve", Path: abs, Err: os.ErrNotExist}
		}
		return "", &Error{Op: "resolve", Path: abs, Err: err}
	}
	if info.IsDir() {
		return "", &Error{Op: "resolve", Path: abs, Err: errors.New("is a directory")}
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return "", &Error{Op: "resolve", Path: abs, Err: os.ErrPermission}
	}
	return abs, nil
}
