package btctl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

func ensureParentDir(path string) error {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil
	}
	dir := filepath.Dir(p)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// writeOutput writes data to path, creating parent directories. An empty path is a no-op.
func writeOutput(path string, data []byte) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := ensureParentDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func render(fn func(*bytes.Buffer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
