package installer

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/xi2/xz"

	"armory/internal/logger"
)

// payloadSuffixes are the compressed payload kinds the wordlist expansion
// recognizes, longest suffix first so .tar.gz wins over .gz.
var payloadSuffixes = []string{
	".tar.gz", ".tar.bz2", ".tar.xz", ".tar.zst", ".tgz", ".tar",
	".zip", ".7z",
	".gz", ".bz2", ".xz",
}

// expansionTarget returns the path an archive expands to and whether the file
// is a recognized payload at all. Bare compressed files expand to the name
// without the suffix (rockyou.txt.gz → rockyou.txt); multi-file archives
// expand into a directory of that name. Target existence is the idempotency
// probe: present means already expanded, skip.
func expansionTarget(src string) (string, bool) {
	for _, suffix := range payloadSuffixes {
		if strings.HasSuffix(src, suffix) && len(src) > len(suffix) {
			return strings.TrimSuffix(src, suffix), true
		}
	}
	return "", false
}

// expandArchive expands one payload next to itself. The source file is kept;
// re-runs skip it through the expansionTarget probe.
func expandArchive(src string) error {
	target, ok := expansionTarget(src)
	if !ok {
		return fmt.Errorf("unsupported archive format: %s", src)
	}
	switch {
	case strings.HasSuffix(src, ".zip"):
		logger.Debug("[DEBUG] expanding zip %s\n", src)
		return extractZip(src, target)
	case strings.HasSuffix(src, ".7z"):
		logger.Debug("[DEBUG] expanding 7z %s\n", src)
		return extract7z(src, target)
	case strings.HasSuffix(src, ".tar"), strings.HasSuffix(src, ".tar.gz"), strings.HasSuffix(src, ".tgz"),
		strings.HasSuffix(src, ".tar.bz2"), strings.HasSuffix(src, ".tar.xz"), strings.HasSuffix(src, ".tar.zst"):
		logger.Debug("[DEBUG] expanding tarball %s\n", src)
		return extractTar(src, target)
	default:
		logger.Debug("[DEBUG] decompressing %s\n", src)
		return decompressFile(src, target)
	}
}

// extractTar unpacks a tar archive, compressed or not, into destDir. Only
// directories and regular files are materialized; entries whose names escape
// the destination are skipped.
func extractTar(src, destDir string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	var reader io.Reader = f
	switch {
	case strings.HasSuffix(src, ".tar.gz"), strings.HasSuffix(src, ".tgz"):
		gr, err := pgzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gr.Close()
		reader = gr
	case strings.HasSuffix(src, ".tar.bz2"):
		reader = bzip2.NewReader(f)
	case strings.HasSuffix(src, ".tar.xz"):
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return err
		}
		reader = xzr
	case strings.HasSuffix(src, ".tar.zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return err
		}
		defer zr.Close()
		reader = zr.IOReadCloser()
	}

	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if !filepath.IsLocal(hdr.Name) {
			logger.Warn("[WARN] Skipping archive entry escaping destination: %s\n", hdr.Name)
			continue
		}
		target := filepath.Join(destDir, hdr.Name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr); err != nil {
				return err
			}
		}
	}
	return nil
}

// extractZip unpacks a .zip archive into destDir.
func extractZip(src, destDir string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if !filepath.IsLocal(f.Name) {
			logger.Warn("[WARN] Skipping archive entry escaping destination: %s\n", f.Name)
			continue
		}
		target := filepath.Join(destDir, f.Name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		err = writeEntry(target, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// extract7z unpacks a .7z archive into destDir.
func extract7z(src, destDir string) error {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open 7z archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if !filepath.IsLocal(f.Name) {
			logger.Warn("[WARN] Skipping archive entry escaping destination: %s\n", f.Name)
			continue
		}
		target := filepath.Join(destDir, f.Name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, f.Mode()); err != nil {
				return err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		err = writeEntry(target, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// decompressFile inflates a bare .gz/.bz2/.xz file into target.
func decompressFile(src, target string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	var reader io.Reader
	switch {
	case strings.HasSuffix(src, ".gz"):
		gr, err := pgzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gr.Close()
		reader = gr
	case strings.HasSuffix(src, ".bz2"):
		reader = bzip2.NewReader(f)
	case strings.HasSuffix(src, ".xz"):
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return err
		}
		reader = xzr
	default:
		return fmt.Errorf("unsupported compression: %s", src)
	}
	return writeEntry(target, reader)
}

// writeEntry creates the parent directory and streams one file into place.
func writeEntry(target string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}
