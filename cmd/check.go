package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli"
	"github.com/warpdl/warpsess/cmd/common"
	"github.com/warpdl/warpsess/pkg/sessman"
)

var checkFlags = []cli.Flag{
	cli.StringSliceFlag{
		Name:  "proxy, x",
		Usage: "proxy url as <scheme>://host:port[@user:pass], repeatable",
	},
	cli.StringFlag{
		Name:  "user-agent",
		Usage: "user agent or one of warpsess, firefox, chrome (default: warpsess)",
	},
	cli.DurationFlag{
		Name:  "request-timeout",
		Usage: "give up on the request after this long",
		Value: 30 * time.Second,
	},
}

func check(ctx *cli.Context) error {
	url := strings.TrimSpace(ctx.Args().First())
	if url == "" {
		return common.PrintErrWithCmdHelp(
			ctx,
			errors.New("no url provided"),
		)
	}
	proxies, err := sessman.ParseProxyURLs(ctx.StringSlice("proxy"))
	if err != nil {
		common.PrintRuntimeErr(ctx, "check", "parse_proxy", err)
		return ErrReported
	}
	s, err := sessman.NewSession(&sessman.SessionOpts{
		Proxies:   proxies,
		UserAgent: getUserAgent(ctx.String("user-agent")),
		Timeout:   ctx.Duration("request-timeout"),
	})
	if err != nil {
		common.PrintRuntimeErr(ctx, "check", "new_session", err)
		return ErrReported
	}
	if !sessman.IsServerConnection(s, url) {
		fmt.Printf("%s: unreachable via %s\n", url, describeProxies(proxies))
		return ErrReported
	}
	fmt.Printf("%s: reachable via %s\n", url, describeProxies(proxies))
	return nil
}

func describeProxies(pc sessman.ProxyConfig) string {
	if len(pc) == 0 {
		return "direct connection"
	}
	return pc.String()
}
