package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"
	"github.com/warpdl/warpsess/cmd/common"
	"github.com/warpdl/warpsess/pkg/sessman"
)

var (
	sessFlags = []cli.Flag{sessionDirFlag}

	sessInfoFlags = append([]cli.Flag{
		cli.IntFlag{
			Name:  "timeout, t",
			Usage: "maximum session age in minutes used to report expiry, 0 never expires",
			Value: DEF_TIMEOUT_MINUTES,
		},
	}, sessFlags...)

	// now is swapped in tests.
	now = time.Now
)

func sessionPage(ctx *cli.Context) (string, error) {
	page := ctx.Args().First()
	if page == "" {
		return "", errors.New("no page name provided")
	}
	return page, nil
}

func sessionInfo(ctx *cli.Context) error {
	page, err := sessionPage(ctx)
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	store := sessman.NewSessionStore(&sessman.StoreOpts{Now: now})
	slot := sessman.SlotPath(sessionFolder(ctx, page))
	age, err := store.AgeOf(slot)
	if errors.Is(err, sessman.ErrNotFound) {
		fmt.Printf("%s: no stored session (%s)\n", page, slot)
		return nil
	}
	if err != nil {
		common.PrintRuntimeErr(ctx, "session", "info", err)
		return ErrReported
	}
	var size int64
	if fi, err := store.Fs().Stat(slot); err == nil {
		size = fi.Size()
	}
	t := now()
	written := t.Add(-age)
	fmt.Printf(`
%s
Path`+"\t"+`: %s
Size`+"\t"+`: %s
Saved`+"\t"+`: %s (%s)
Age`+"\t"+`: %s
`,
		common.Beaut("Session "+page, 40),
		slot,
		humanize.IBytes(uint64(size)),
		written.Format(time.RFC1123),
		humanize.RelTime(written, t, "ago", "from now"),
		sessman.FormatAge(age),
	)
	if timeout := ctx.Int("timeout"); timeout > 0 {
		expiry := written.Add(time.Duration(timeout) * time.Minute)
		state := "expires"
		if !expiry.After(t) {
			state = "expired"
		}
		fmt.Printf("Expiry\t: %s %s\n", state, humanize.RelTime(expiry, t, "ago", "from now"))
	}
	fmt.Println()
	return nil
}

func sessionEvict(ctx *cli.Context) error {
	page, err := sessionPage(ctx)
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	store := sessman.NewSessionStore(nil)
	slot := sessman.SlotPath(sessionFolder(ctx, page))
	if err := store.Evict(slot); err != nil {
		common.PrintRuntimeErr(ctx, "session", "evict", err)
		return ErrReported
	}
	fmt.Printf("%s: session removed\n", page)
	return nil
}
