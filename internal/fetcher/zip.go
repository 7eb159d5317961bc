package fetcher

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ExtractZip unpacks archivePath into destDir and returns the extracted file
// paths. Entries that would escape destDir are rejected.
func ExtractZip(archivePath, destDir string) ([]string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open zip %s", archivePath)
	}
	defer func() { _ = r.Close() }()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "fetcher: create dir %s", destDir)
	}

	var extracted []string
	for _, f := range r.File {
		dest := filepath.Join(destDir, f.Name)
		if !strings.HasPrefix(dest, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return nil, eris.Errorf("fetcher: zip entry %q escapes destination", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return nil, eris.Wrapf(err, "fetcher: create dir %s", dest)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil, eris.Wrapf(err, "fetcher: create dir for %s", dest)
		}
		if err := extractFile(f, dest); err != nil {
			return nil, err
		}
		extracted = append(extracted, dest)
	}
	return extracted, nil
}

func extractFile(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return eris.Wrapf(err, "fetcher: open zip entry %s", f.Name)
	}
	defer func() { _ = rc.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return eris.Wrapf(err, "fetcher: create %s", dest)
	}
	_, err = io.Copy(out, rc)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return eris.Wrapf(err, "fetcher: extract %s", dest)
	}
	return nil
}
