// Package cmd implements the warpsess command line interface.
package cmd

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/urfave/cli"
	"github.com/warpdl/warpsess/cmd/common"
)

// ErrReported is returned by commands that already printed their error;
// the caller should only set the exit status.
var ErrReported = errors.New("error already reported")

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

func Execute(args []string, bArgs BuildArgs) error {
	app := cli.App{
		Name:                  "warpsess",
		HelpName:              "warpsess",
		Usage:                 "Keeps logged in sessions for downloads.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "warpsess <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Commands: []cli.Command{
			{
				Name:                   "login",
				Usage:                  "log in to a page or reuse its stored session",
				UsageText:              "login <page> [flags]",
				Description:            LoginDescription,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				OnUsageError:           common.UsageErrorCallback,
				Action:                 login,
				Flags:                  sessionFlags,
				UseShortOptionHandling: true,
			},
			{
				Name:                   "download",
				Aliases:                []string{"d"},
				Usage:                  "download a file with a logged in session",
				UsageText:              "download <page> <url> [flags]",
				Description:            DownloadDescription,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				OnUsageError:           common.UsageErrorCallback,
				Action:                 download,
				Flags:                  dlFlags,
				UseShortOptionHandling: true,
			},
			{
				Name:  "session",
				Usage: "inspect or remove stored sessions",
				Subcommands: []cli.Command{
					{
						Name:               "info",
						Aliases:            []string{"i"},
						Usage:              "show the stored session of a page",
						UsageText:          "session info <page>",
						Description:        SessionInfoDescription,
						CustomHelpTemplate: CMD_HELP_TEMPL,
						OnUsageError:       common.UsageErrorCallback,
						Action:             sessionInfo,
						Flags:              sessInfoFlags,
					},
					{
						Name:               "evict",
						Aliases:            []string{"rm"},
						Usage:              "delete the stored session of a page",
						UsageText:          "session evict <page>",
						Description:        SessionEvictDescription,
						CustomHelpTemplate: CMD_HELP_TEMPL,
						OnUsageError:       common.UsageErrorCallback,
						Action:             sessionEvict,
						Flags:              sessFlags,
					},
				},
			},
			{
				Name:               "check",
				Aliases:            []string{"c"},
				Usage:              "check that a url is reachable",
				UsageText:          "check <url> [flags]",
				Description:        CheckDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             check,
				Flags:              checkFlags,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of warpsess",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		Action:      common.Help,
		HideHelp:    true,
		HideVersion: true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
