// Package fetcher downloads source datasets over HTTP and FTP and unpacks
// zip archives. The HOLC grade polygons and indicator tables are published
// as zipped downloads on HTTP and FTP mirrors.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Fetcher retrieves a remote file as a stream.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// Download fetches rawURL with the fetcher matching its scheme and writes
// the body to destPath, creating parent directories as needed.
func Download(ctx context.Context, rawURL, destPath string, httpf *HTTPFetcher, ftpf *FTPFetcher) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return eris.Wrapf(err, "fetcher: parse url %s", rawURL)
	}

	var f Fetcher
	switch u.Scheme {
	case "http", "https":
		f = httpf
	case "ftp":
		f = ftpf
	default:
		return eris.Errorf("fetcher: unsupported scheme %q", u.Scheme)
	}

	body, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return eris.Wrapf(err, "fetcher: create dir for %s", destPath)
	}
	out, err := os.Create(destPath)
	if err != nil {
		return eris.Wrapf(err, "fetcher: create %s", destPath)
	}
	n, err := io.Copy(out, body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return eris.Wrapf(err, "fetcher: write %s", destPath)
	}

	zap.L().Info("fetcher: downloaded dataset",
		zap.String("url", rawURL),
		zap.String("dest", destPath),
		zap.Int64("bytes", n),
	)
	return nil
}
