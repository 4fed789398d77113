package checkpoint

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// RotateCompressed copies the checkpoint at path into a timestamped
// gzip-compressed snapshot alongside it, stamp formatted by the caller so a
// finished run's record survives past the next run's overwrite of the live
// checkpoint file. It is a best-effort archival step: a missing source file
// is not an error.
func RotateCompressed(path, stamp string) error {
	src, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checkpoint: rotate: open: %w", err)
	}
	defer src.Close()

	dstPath := fmt.Sprintf("%s.%s.gz", path, stamp)
	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("checkpoint: rotate: create %q: %w", dstPath, err)
	}
	defer dst.Close()

	gw := gzip.NewWriter(dst)
	if _, err := io.Copy(gw, src); err != nil {
		gw.Close()
		return fmt.Errorf("checkpoint: rotate: compress: %w", err)
	}
	return gw.Close()
}
