package cookies

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// snapshot copies a SQLite cookie store, with its -wal and -shm companions
// when present, into a temporary directory so a running browser holding the
// database lock does not get in the way. The returned cleanup removes the
// copy and must always be called.
func snapshot(src string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "warpsess-cookies-*")
	if err != nil {
		return "", nil, fmt.Errorf("cookies: create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	dst := filepath.Join(dir, filepath.Base(src))
	if err := copyFile(src, dst); err != nil {
		cleanup()
		return "", nil, err
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if _, err := os.Stat(src + suffix); err == nil {
			// best effort; the main file alone is a consistent snapshot
			// of everything checkpointed
			_ = copyFile(src+suffix, dst+suffix)
		}
	}
	return dst, cleanup, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("cookies: open %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("cookies: create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("cookies: copy %s: %w", src, err)
	}
	return out.Close()
}
