//go:build linux || darwin || freebsd || openbsd

package sessman

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

// checkDiskSpace fails when the filesystem holding path has less than
// requiredBytes available. Unknown sizes and unreadable filesystems pass.
func checkDiskSpace(path string, requiredBytes int64) error {
	if requiredBytes <= 0 {
		return nil
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return nil
	}
	available := uint64(stat.Bavail) * uint64(stat.Bsize)
	if available < uint64(requiredBytes) {
		return fmt.Errorf("%w: required %s, available %s",
			ErrInsufficientDiskSpace,
			humanize.IBytes(uint64(requiredBytes)),
			humanize.IBytes(available))
	}
	return nil
}
