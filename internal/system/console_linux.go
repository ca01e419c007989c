package system

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// KD console modes from linux/kd.h
const (
	kdText     = 0x00
	kdGraphics = 0x01
	kdSetMode  = 0x4B3A // KDSETMODE ioctl
)

var consolePaths = []string{"/dev/tty", "/dev/tty0"}

// GraphicsConsole switches the active virtual terminal to graphics mode and
// hides the cursor so a framebuffer image is not overdrawn by console text.
// The returned function restores text mode. Failures are logged, not fatal.
func GraphicsConsole(l Logger) (restore func()) {
	if err := setConsoleMode(kdGraphics); err != nil {
		ttyError(l, "KD_GRAPHICS failed: %v", err)
	}
	if err := writeVT("\x1b[?25l"); err != nil {
		ttyError(l, "hide cursor failed: %v", err)
	}
	return func() {
		if err := writeVT("\x1b[?25h"); err != nil {
			ttyError(l, "show cursor failed: %v", err)
		}
		if err := setConsoleMode(kdText); err != nil {
			ttyError(l, "KD_TEXT failed: %v", err)
		}
	}
}

func setConsoleMode(mode int) error {
	var lastErr error
	for _, p := range consolePaths {
		fd, err := unix.Open(p, unix.O_RDONLY, 0)
		if err != nil {
			lastErr = fmt.Errorf("open %s: %w", p, err)
			continue
		}
		err = unix.IoctlSetInt(fd, kdSetMode, mode)
		unix.Close(fd)
		if err != nil {
			lastErr = fmt.Errorf("KDSETMODE %d on %s: %w", mode, p, err)
			continue
		}
		return nil
	}
	return lastErr
}

func writeVT(s string) error {
	var lastErr error
	for _, p := range consolePaths {
		f, err := os.OpenFile(p, os.O_WRONLY, 0)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = f.WriteString(s)
		f.Close()
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("write VT failed: %v", lastErr)
}

func ttyError(l Logger, format string, args ...interface{}) {
	if l != nil {
		l.Errorf("tty", format, args...)
	}
}
