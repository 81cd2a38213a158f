package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/warpdl/warpsess/cmd/common"
	"github.com/warpdl/warpsess/pkg/sessman"
)

var dlFlags = append([]cli.Flag{
	cli.StringFlag{
		Name:  "file-name, o",
		Usage: "explicitly set the name of file (determined automatically if not specified)",
	},
	cli.StringFlag{
		Name:  "download-path, l",
		Usage: "set the path where downloaded file should be saved",
	},
	cli.Int64Flag{
		Name:  "stream-threshold",
		Usage: "size in MiB from which files are streamed to disk",
		Value: sessman.DEF_STREAM_THRESHOLD_MB,
	},
}, sessionFlags...)

// progressOutput is where download bars are drawn.
var progressOutput io.Writer = os.Stdout

func download(ctx *cli.Context) (err error) {
	page := ctx.Args().Get(0)
	url := strings.TrimSpace(ctx.Args().Get(1))
	if page == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if page == "" || url == "" {
		return common.PrintErrWithCmdHelp(
			ctx,
			errors.New("a page name and a url are required"),
		)
	}
	dlPath := ctx.String("download-path")
	if dlPath == "" {
		dlPath, err = os.Getwd()
		if err != nil {
			common.PrintRuntimeErr(ctx, "download", "getwd", err)
			return ErrReported
		}
	}
	l := newLogger()
	defer l.Close()

	s, _, err := establish(ctx, page, l)
	if err != nil {
		common.PrintRuntimeErr(ctx, "download", "login", err)
		return ErrReported
	}

	p := mpb.New(mpb.WithOutput(progressOutput), mpb.WithWidth(64))
	var bar *mpb.Bar
	d := sessman.NewDownloader(&sessman.DownloaderOpts{
		Logger: l,
		Handlers: &sessman.Handlers{
			TransferStartHandler: func(fileName string, mode sessman.TransferMode, size int64) {
				fmt.Fprintf(progressOutput, "%s: %s transfer of %s\n", page, mode, fileName)
				bar = common.InitBar(p, fileName, size)
			},
			DownloadProgressHandler: func(_ string, nwrite int) {
				bar.IncrBy(nwrite)
			},
			DownloadCompleteHandler: func(_ string, twrite int64) {
				// buffered transfers report everything at once
				bar.SetCurrent(twrite)
				bar.SetTotal(-1, true)
			},
			ErrorHandler: func(fileName string, err error) {
				l.Error("%s: %s: %v", page, fileName, err)
				if bar != nil {
					bar.Abort(false)
				}
			},
		},
	})
	path, err := d.Download(s, url, dlPath, ctx.String("file-name"), ctx.Int64("stream-threshold"))
	p.Wait()
	if err != nil {
		common.PrintRuntimeErr(ctx, "download", "transfer", err)
		return ErrReported
	}
	fmt.Fprintf(progressOutput, "%s: saved %s\n", page, path)
	return nil
}
