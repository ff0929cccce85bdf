package jobs

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/faxbot/faxbot/internal/storage"
)

// downloadToLocal copies a stored object to a local path, for handing
// to the subprocess-based document processor, which needs a real file
// path rather than an io.Reader.
func downloadToLocal(ctx context.Context, store storage.Provider, storedPath, localPath string) error {
	src, err := store.Open(ctx, storedPath)
	if err != nil {
		return fmt.Errorf("failed to open stored artifact: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local work file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy artifact to local work file: %w", err)
	}
	return nil
}

// openAndRemove opens path for reading and unlinks it immediately —
// on POSIX the file descriptor keeps the data available until closed,
// so the caller gets a self-cleaning temp file.
func openAndRemove(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open work file: %w", err)
	}
	_ = os.Remove(path)
	return f, nil
}

func removeQuiet(path string) {
	_ = os.Remove(path)
}
