// Package bundle packs captured evidence into a single compressed archive
// for handoff: a zstd-compressed tarball of the screenshots directory,
// optionally with the sector index alongside.
package bundle

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Info summarizes a written bundle.
type Info struct {
	Path  string
	Files int
	Bytes int64 // uncompressed payload size
}

// Write archives every regular file under srcDir into a .tar.zst at dst.
// extra paths (like the sector index) are added at the archive root.
func Write(dst, srcDir string, extra ...string) (*Info, error) {
	f, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("create bundle %s: %w", dst, err)
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return nil, fmt.Errorf("create zstd writer: %w", err)
	}
	tw := tar.NewWriter(zw)

	info := &Info{Path: dst}

	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		return addFile(tw, path, filepath.ToSlash(rel), info)
	})
	if walkErr != nil {
		tw.Close()
		zw.Close()
		return nil, fmt.Errorf("walk %s: %w", srcDir, walkErr)
	}

	for _, path := range extra {
		if err := addFile(tw, path, filepath.Base(path), info); err != nil {
			tw.Close()
			zw.Close()
			return nil, err
		}
	}

	if err := tw.Close(); err != nil {
		zw.Close()
		return nil, fmt.Errorf("close tar: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zstd: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close bundle: %w", err)
	}

	return info, nil
}

func addFile(tw *tar.Writer, path, name string, info *Info) error {
	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	hdr, err := tar.FileInfoHeader(stat, "")
	if err != nil {
		return fmt.Errorf("header for %s: %w", path, err)
	}
	hdr.Name = name

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write header %s: %w", name, err)
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer src.Close()

	n, err := io.Copy(tw, src)
	if err != nil {
		return fmt.Errorf("archive %s: %w", name, err)
	}

	info.Files++
	info.Bytes += n
	return nil
}
