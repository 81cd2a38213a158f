package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"
	"github.com/warpdl/warpsess/cmd/common"
	"github.com/warpdl/warpsess/pkg/sessman"
)

func login(ctx *cli.Context) error {
	page := ctx.Args().First()
	if page == "" {
		return common.PrintErrWithCmdHelp(
			ctx,
			errors.New("no page name provided"),
		)
	} else if page == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	l := newLogger()
	defer l.Close()
	_, res, err := establish(ctx, page, l)
	if err != nil {
		action := "establish"
		if errors.Is(err, sessman.ErrLoginExhausted) {
			action = "authenticate"
		}
		common.PrintRuntimeErr(ctx, "login", action, err)
		return ErrReported
	}
	switch {
	case res.Reused:
		fmt.Printf("%s: reusing stored session\n", page)
	case len(res.Attempts) == 0:
		fmt.Printf("%s: logged in with imported cookies\n", page)
	default:
		fmt.Printf("%s: logged in after %d attempt(s)\n", page, len(res.Attempts))
	}
	return nil
}
