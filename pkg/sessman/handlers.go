package sessman

import "github.com/warpdl/warpsess/pkg/logger"

type (
	// TransferStartHandlerFunc is called once the transfer mode of a download
	// is known. size is -1 when the server did not announce a length.
	TransferStartHandlerFunc func(fileName string, mode TransferMode, size int64)
	// DownloadProgressHandlerFunc is called after every write to disk with
	// the number of bytes written.
	DownloadProgressHandlerFunc func(fileName string, nwrite int)
	// DownloadCompleteHandlerFunc is called with the total number of bytes
	// written once the file is closed.
	DownloadCompleteHandlerFunc func(fileName string, twrite int64)
	// ErrorHandlerFunc is called when a transfer fails after it started.
	ErrorHandlerFunc func(fileName string, err error)
)

type Handlers struct {
	TransferStartHandler    TransferStartHandlerFunc
	DownloadProgressHandler DownloadProgressHandlerFunc
	DownloadCompleteHandler DownloadCompleteHandlerFunc
	ErrorHandler            ErrorHandlerFunc
}

func (h *Handlers) setDefault(l logger.Logger) {
	if h.TransferStartHandler == nil {
		h.TransferStartHandler = func(fileName string, mode TransferMode, size int64) {}
	}
	if h.DownloadProgressHandler == nil {
		h.DownloadProgressHandler = func(fileName string, nwrite int) {}
	}
	if h.DownloadCompleteHandler == nil {
		h.DownloadCompleteHandler = func(fileName string, twrite int64) {}
	}
	if h.ErrorHandler == nil {
		h.ErrorHandler = func(fileName string, err error) {
			l.Error("%s: %v", fileName, err)
		}
	}
}
