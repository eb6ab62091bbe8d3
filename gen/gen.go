//go:build !wasm

// Package gen writes schema builder functions for tagged model structs.
package gen

// Gen is the code generator handler for the schemagen tool.
type Gen struct {
	logFn   func(messages ...any)
	rootDir string
}

// NewGen creates a new Gen handler with rootDir defaulting to ".".
func NewGen() *Gen {
	return &Gen{rootDir: "."}
}

// SetLog sets the log function for warnings and informational messages.
// If not set, messages are silently discarded.
func (g *Gen) SetLog(fn func(messages ...any)) {
	g.logFn = fn
}

// SetRootDir sets the root directory that Run() will scan.
func (g *Gen) SetRootDir(dir string) {
	g.rootDir = dir
}

func (g *Gen) log(messages ...any) {
	if g.logFn != nil {
		g.logFn(messages...)
	}
}
