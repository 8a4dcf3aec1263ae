package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cerrors "github.com/r3d91ll/tempchart/pkg/errors"
)

// Default file locations.
const (
	DefaultDir  = "PDF"
	DefaultName = "test.pdf"
)

// FileSink writes artifacts to <Root>/<Dir>/<Name>, replacing any previous
// file of the same name.
type FileSink struct {
	// Root is the base directory. Empty means DownloadsDir().
	Root string

	// Dir is created under Root when missing. Empty means DefaultDir.
	Dir string

	// Name overrides Artifact.Name when set.
	Name string
}

// NewFileSink returns a sink rooted at root with the default directory.
func NewFileSink(root string) *FileSink {
	return &FileSink{Root: root, Dir: DefaultDir}
}

// DownloadsDir resolves the user's downloads directory: XDG_DOWNLOAD_DIR
// when set, otherwise ~/Downloads.
func DownloadsDir() (string, error) {
	if dir := os.Getenv("XDG_DOWNLOAD_DIR"); dir != "" {
		return expandHome(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", cerrors.IOWrap(err, cerrors.ErrOutputRootUnknown, "cannot determine downloads directory")
	}
	return filepath.Join(home, "Downloads"), nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", cerrors.IOWrap(err, cerrors.ErrOutputRootUnknown, "cannot expand home directory").
			WithContext("path", path)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Path returns the destination path for an artifact without touching the
// filesystem.
func (s *FileSink) Path(a Artifact) (string, error) {
	root := s.Root
	if root == "" {
		var err error
		if root, err = DownloadsDir(); err != nil {
			return "", err
		}
	} else {
		var err error
		if root, err = expandHome(root); err != nil {
			return "", err
		}
	}
	dir := s.Dir
	if dir == "" {
		dir = DefaultDir
	}
	name := s.Name
	if name == "" {
		name = a.Name
	}
	if name == "" {
		name = DefaultName
	}
	return filepath.Join(root, dir, filepath.Base(name)), nil
}

// Write implements Sink. The directory is created if absent; the file is
// written to a temporary sibling and renamed into place.
func (s *FileSink) Write(ctx context.Context, a Artifact) (string, error) {
	path, err := s.Path(a)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", cerrors.IOWrap(err, cerrors.ErrOutputDirCreateFailed, "failed to create output directory").
			WithContext("path", dir)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return "", writeFailed(err, path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", writeFailed(err, path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", writeFailed(err, path)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return "", writeFailed(err, path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", writeFailed(err, path)
	}
	return path, nil
}

func writeFailed(err error, path string) error {
	return cerrors.IOWrap(err, cerrors.ErrOutputWriteFailed, fmt.Sprintf("failed to write %s", filepath.Base(path))).
		WithContext("path", path)
}
