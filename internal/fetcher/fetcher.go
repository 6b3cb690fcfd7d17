// Package fetcher retrieves the reference dataset from local files and
// HTTP/FTP sources and parses CSV and XLSX tabular data.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Open returns a reader for the dataset source. Supported sources are
// local paths, http(s):// URLs, and ftp:// URLs. The caller must close
// the returned ReadCloser.
func Open(ctx context.Context, source string, timeout time.Duration) (io.ReadCloser, error) {
	u, err := url.Parse(source)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 { // bare paths and Windows drives
		f, openErr := os.Open(source)
		if openErr != nil {
			return nil, eris.Wrapf(openErr, "fetcher: open %s", source)
		}
		return f, nil
	}

	switch u.Scheme {
	case "file":
		f, openErr := os.Open(u.Path)
		if openErr != nil {
			return nil, eris.Wrapf(openErr, "fetcher: open %s", u.Path)
		}
		return f, nil
	case "http", "https":
		return NewHTTPFetcher(HTTPOptions{Timeout: timeout}).Download(ctx, source)
	case "ftp":
		return NewFTPFetcher(FTPOptions{Timeout: timeout}).Download(ctx, source)
	default:
		return nil, eris.Errorf("fetcher: unsupported source scheme %q", u.Scheme)
	}
}

// FormatFor infers the tabular format from the source extension when the
// configured format is empty.
func FormatFor(source, configured string) string {
	if configured != "" {
		return strings.ToLower(configured)
	}
	if strings.HasSuffix(strings.ToLower(source), ".xlsx") {
		return "xlsx"
	}
	return "csv"
}
