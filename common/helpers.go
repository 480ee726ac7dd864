package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/ricochet2200/go-disk-usage/du"
)

// MinFreeBytes is what an output directory should keep free before a chart,
// dump or archive is written into it.
const MinFreeBytes = 50 * 1024 * 1024

func HumanBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.Bytes(uint64(-n))
	}
	return humanize.Bytes(uint64(n))
}

func HumanCount(n int) string {
	return humanize.Comma(int64(n))
}

// OutputDir returns the directory a file path will be written into.
func OutputDir(path string) string {
	return filepath.Dir(path)
}

// CheckFreeSpace fails when dir has less than want bytes available.
func CheckFreeSpace(dir string, want uint64) error {
	if _, err := os.Stat(dir); err != nil {
		return err
	}
	usage := du.NewDiskUsage(dir)
	free := usage.Available()
	if free < want {
		return fmt.Errorf("%s has %s free, want at least %s", dir, humanize.Bytes(free), humanize.Bytes(want))
	}
	return nil
}
