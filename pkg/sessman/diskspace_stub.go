//go:build !linux && !darwin && !freebsd && !openbsd && !windows

package sessman

func checkDiskSpace(path string, requiredBytes int64) error {
	return nil
}
