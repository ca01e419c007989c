//go:build !linux

package system

// GraphicsConsole is a no-op outside Linux.
func GraphicsConsole(l Logger) (restore func()) {
	return func() {}
}
