package sessman

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/warpdl/warpsess/pkg/logger"
)

// TransferMode is how a download body is moved to disk.
type TransferMode int

const (
	// TransferBuffered reads the whole body and writes it at once.
	TransferBuffered TransferMode = iota
	// TransferStreamed copies the body in STREAM_CHUNK_SIZE chunks.
	TransferStreamed
)

func (m TransferMode) String() string {
	if m == TransferStreamed {
		return "streamed"
	}
	return "buffered"
}

type DownloaderOpts struct {
	// Fs defaults to the OS filesystem.
	Fs       afero.Fs
	Handlers *Handlers
	Logger   logger.Logger
	// ChunkSize defaults to STREAM_CHUNK_SIZE.
	ChunkSize int
}

// Downloader fetches files through an established session.
type Downloader struct {
	fs        afero.Fs
	handlers  *Handlers
	l         logger.Logger
	chunkSize int
	diskSpace func(path string, requiredBytes int64) error
}

func NewDownloader(opts *DownloaderOpts) *Downloader {
	if opts == nil {
		opts = &DownloaderOpts{}
	}
	d := &Downloader{
		fs:        opts.Fs,
		handlers:  opts.Handlers,
		l:         opts.Logger,
		chunkSize: opts.ChunkSize,
		diskSpace: func(string, int64) error { return nil },
	}
	if d.fs == nil {
		d.fs = afero.NewOsFs()
	}
	if _, ok := d.fs.(*afero.OsFs); ok {
		d.diskSpace = checkDiskSpace
	}
	if d.l == nil {
		d.l = logger.NewNopLogger()
	}
	if d.handlers == nil {
		d.handlers = &Handlers{}
	}
	d.handlers.setDefault(d.l)
	if d.chunkSize <= 0 {
		d.chunkSize = int(STREAM_CHUNK_SIZE)
	}
	return d
}

// Download stores rawURL inside destFolder and returns the file path. An
// empty fileName is derived from the response. Responses announcing at
// least streamThresholdMB mebibytes are streamed, smaller or unannounced
// ones are buffered; streamThresholdMB <= 0 selects
// DEF_STREAM_THRESHOLD_MB. HTML responses are refused since they usually
// mean the session is no longer authorized.
func (d *Downloader) Download(s Requester, rawURL, destFolder, fileName string, streamThresholdMB int64) (string, error) {
	fi, err := d.fs.Stat(destFolder)
	if err != nil || !fi.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrInvalidTarget, destFolder)
	}
	head, err := s.Head(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: HEAD %s: %v", ErrTransfer, rawURL, err)
	}
	head.Body.Close()
	if head.StatusCode < 200 || head.StatusCode > 299 {
		return "", fmt.Errorf("%w: HEAD %s: %s", ErrTransfer, rawURL, head.Status)
	}
	if ct := head.Header.Get("Content-Type"); strings.Contains(strings.ToLower(ct), "html") {
		return "", fmt.Errorf("%w: %s has content type %s", ErrNotDownloadable, rawURL, ct)
	}
	if fileName == "" {
		fileName = resolveFileName(rawURL, head.Header.Get("Content-Disposition"))
	}
	size := contentLength(head)
	if streamThresholdMB <= 0 {
		streamThresholdMB = DEF_STREAM_THRESHOLD_MB
	}
	mode := TransferBuffered
	if size >= 0 && size >= streamThresholdMB*MB {
		mode = TransferStreamed
	}
	path := filepath.Join(filepath.Clean(destFolder), fileName)
	d.l.Info("%s: %s transfer to %s", rawURL, mode, path)
	d.handlers.TransferStartHandler(fileName, mode, size)

	var written int64
	if mode == TransferStreamed {
		written, err = d.stream(s, rawURL, path, fileName, size)
	} else {
		written, err = d.buffer(s, rawURL, path, fileName)
	}
	if err != nil {
		d.handlers.ErrorHandler(fileName, err)
		return "", err
	}
	d.handlers.DownloadCompleteHandler(fileName, written)
	return path, nil
}

func contentLength(resp *http.Response) int64 {
	cl := resp.Header.Get("Content-Length")
	if cl == "" {
		return resp.ContentLength
	}
	n, err := strconv.ParseInt(cl, 10, 64)
	if err != nil {
		return -1
	}
	return n
}

func (d *Downloader) get(s Requester, rawURL string) (*http.Response, error) {
	resp, err := s.Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrTransfer, rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: GET %s: %s", ErrTransfer, rawURL, resp.Status)
	}
	return resp, nil
}

func (d *Downloader) buffer(s Requester, rawURL, path, fileName string) (int64, error) {
	resp, err := d.get(s, rawURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: read body: %v", ErrTransfer, err)
	}
	if err := afero.WriteFile(d.fs, path, data, 0644); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	d.handlers.DownloadProgressHandler(fileName, len(data))
	return int64(len(data)), nil
}

func (d *Downloader) stream(s Requester, rawURL, path, fileName string, size int64) (int64, error) {
	if err := d.diskSpace(filepath.Dir(path), size); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrTransfer, err)
	}
	resp, err := d.get(s, rawURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	f, err := d.fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	defer f.Close()

	buf := make([]byte, d.chunkSize)
	var total int64
	for {
		n, rerr := readChunk(resp.Body, buf)
		if n > 0 {
			if _, err := f.Write(buf[:n]); err != nil {
				return total, fmt.Errorf("%w: %v", ErrTransfer, err)
			}
			total += int64(n)
			d.handlers.DownloadProgressHandler(fileName, n)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return total, fmt.Errorf("%w: read body: %v", ErrTransfer, rerr)
		}
	}
	if err := f.Close(); err != nil {
		return total, fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	return total, nil
}

// readChunk fills buf unless the body ends first. Unlike io.ReadFull it
// keeps a truncated body distinguishable from a clean end.
func readChunk(r io.Reader, buf []byte) (int, error) {
	var n int
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
