//go:build windows

package sessman

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/windows"
)

// checkDiskSpace fails when the volume holding path has less than
// requiredBytes available to the caller.
func checkDiskSpace(path string, requiredBytes int64) error {
	if requiredBytes <= 0 {
		return nil
	}
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil
	}
	var available, total, free uint64
	if err := windows.GetDiskFreeSpaceEx(p, &available, &total, &free); err != nil {
		return nil
	}
	if available < uint64(requiredBytes) {
		return fmt.Errorf("%w: required %s, available %s",
			ErrInsufficientDiskSpace,
			humanize.IBytes(uint64(requiredBytes)),
			humanize.IBytes(available))
	}
	return nil
}
