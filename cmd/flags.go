package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli"
	"github.com/warpdl/warpsess/common"
	"github.com/warpdl/warpsess/internal/cookies"
	"github.com/warpdl/warpsess/internal/loginform"
	"github.com/warpdl/warpsess/internal/loginscript"
	"github.com/warpdl/warpsess/pkg/credman"
	"github.com/warpdl/warpsess/pkg/credman/keyring"
	"github.com/warpdl/warpsess/pkg/logger"
	"github.com/warpdl/warpsess/pkg/sessman"
)

var sessionFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "login-url",
		Usage: "page holding the login form",
	},
	cli.StringFlag{
		Name:  "test-url",
		Usage: "page that shows the test string when logged in (default: login url)",
	},
	cli.StringFlag{
		Name:  "test-string",
		Usage: "text found on the test page only when logged in",
	},
	cli.StringFlag{
		Name:  "user, u",
		Usage: "login user name",
	},
	cli.StringFlag{
		Name:   "password, p",
		Usage:  "login password (falls back to the system keyring)",
		EnvVar: common.PasswordEnv,
	},
	cli.BoolFlag{
		Name:  "save-password",
		Usage: "store the password in the system keyring after a successful login",
	},
	cli.IntFlag{
		Name:  "timeout, t",
		Usage: "maximum session age in minutes, 0 never expires",
		Value: DEF_TIMEOUT_MINUTES,
	},
	cli.IntFlag{
		Name:  "max-tries",
		Usage: "login attempts before giving up",
		Value: sessman.DEF_MAX_LOGIN_TRIES,
	},
	cli.IntFlag{
		Name:  "cooldown",
		Usage: "pause between failed login attempts in milliseconds",
		Value: DEF_COOLDOWN_MS,
	},
	cli.StringSliceFlag{
		Name:  "proxy, x",
		Usage: "proxy url as <scheme>://host:port[@user:pass], repeatable",
	},
	cli.StringFlag{
		Name:  "user-agent",
		Usage: "user agent or one of warpsess, firefox, chrome (default: warpsess)",
	},
	cli.BoolFlag{
		Name:  "force, f",
		Usage: "log in again even if the stored session still works",
	},
	cli.StringFlag{
		Name:  "form-script",
		Usage: "javascript file that fills in the login form",
	},
	cli.StringFlag{
		Name:  "cookies-from",
		Usage: "browser cookie store (firefox, chrome or cookies.txt) to seed a new session from",
	},
	cli.BoolFlag{
		Name:  "encrypt",
		Usage: "encrypt the stored session",
	},
	sessionDirFlag,
}

var sessionDirFlag = cli.StringFlag{
	Name:   "session-dir",
	Usage:  "folder holding the session (default: <config>/sessions/<page>)",
	EnvVar: common.SessionDirEnv,
}

// passwordStore is the keyring part used by the commands.
type passwordStore interface {
	Get(page, user string) (string, error)
	Set(page, user, password string) error
}

var (
	newLogger = defaultLogger

	secrets passwordStore = keyring.NewSecrets()

	recordSealer = func() (sessman.Sealer, error) {
		return credman.NewManager(common.ConfigDir()).Sealer()
	}
)

// defaultLogger logs to stderr and, when LogFileEnv is set, to that file.
func defaultLogger() logger.Logger {
	console := logger.NewSlogLogger(os.Stderr)
	path := os.Getenv(logger.LogFileEnv)
	if path == "" {
		return console
	}
	fl, err := logger.OpenFile(path)
	if err != nil {
		console.Warning("log file disabled: %v", err)
		return console
	}
	return logger.NewMultiLogger(console, fl)
}

// sessionFolder is the record folder of page.
func sessionFolder(ctx *cli.Context, page string) string {
	if dir := ctx.String("session-dir"); dir != "" {
		return dir
	}
	return common.SessionFolder(page)
}

func sessionStore(ctx *cli.Context) (*sessman.SessionStore, error) {
	opts := &sessman.StoreOpts{}
	if ctx.Bool("encrypt") {
		sealer, err := recordSealer()
		if err != nil {
			return nil, err
		}
		opts.Sealer = sealer
	}
	return sessman.NewSessionStore(opts), nil
}

func formCollaborator(script string, l logger.Logger) (sessman.FormCollaborator, error) {
	fallback := loginform.New()
	if script == "" {
		return fallback, nil
	}
	return loginscript.Open(script, fallback, l)
}

// lookupPassword returns the password flag, or the keyring entry of page
// and user.
func lookupPassword(ctx *cli.Context, page, user string, l logger.Logger) string {
	if pw := ctx.String("password"); pw != "" {
		return pw
	}
	if user == "" {
		return ""
	}
	pw, err := secrets.Get(page, user)
	if err != nil {
		if !keyring.IsNotFound(err) {
			l.Warning("%s: reading keyring: %v", page, err)
		}
		return ""
	}
	return pw
}

// loginOptions turns the session flags into controller options for page.
func loginOptions(ctx *cli.Context, page string, l logger.Logger) (*sessman.LoginOpts, error) {
	if page == "" {
		return nil, errors.New("no page name provided")
	}
	if strings.ContainsAny(page, `/\`) {
		return nil, fmt.Errorf("page name %q must not contain path separators", page)
	}
	loginURL := strings.TrimSpace(ctx.String("login-url"))
	if loginURL == "" {
		return nil, errors.New("--login-url is required")
	}
	form, err := formCollaborator(ctx.String("form-script"), l)
	if err != nil {
		return nil, err
	}
	store, err := sessionStore(ctx)
	if err != nil {
		return nil, err
	}
	user := ctx.String("user")
	opts := &sessman.LoginOpts{
		PageName:              page,
		LoginURL:              loginURL,
		LoginTestURL:          ctx.String("test-url"),
		LoginTestString:       ctx.String("test-string"),
		Username:              user,
		Password:              lookupPassword(ctx, page, user, l),
		Folder:                sessionFolder(ctx, page),
		SessionTimeoutMinutes: ctx.Int("timeout"),
		MaxLoginTries:         ctx.Int("max-tries"),
		LoginCooldown:         time.Duration(ctx.Int("cooldown")) * time.Millisecond,
		ProxyURLs:             ctx.StringSlice("proxy"),
		UserAgent:             getUserAgent(ctx.String("user-agent")),
		ForceLogin:            ctx.Bool("force"),
		Form:                  form,
		Store:                 store,
		Logger:                l,
	}
	if ctx.Int("cooldown") == 0 {
		// an explicit 0 means no pause
		opts.LoginCooldown = -1
	}
	if src := ctx.String("cookies-from"); src != "" {
		opts.Seed = func(s *sessman.Session) error {
			n, err := cookies.Seed(s, src, loginURL)
			if err != nil {
				return err
			}
			l.Info("%s: seeded %d cookies from %s", page, n, src)
			return nil
		}
	}
	return opts, nil
}

// establish runs the login state machine for page and returns the ready
// session.
func establish(ctx *cli.Context, page string, l logger.Logger) (*sessman.Session, *sessman.LoginResult, error) {
	opts, err := loginOptions(ctx, page, l)
	if err != nil {
		return nil, nil, err
	}
	c, err := sessman.NewLoginController(opts)
	if err != nil {
		return nil, nil, err
	}
	res, err := c.Run()
	if err != nil {
		return nil, res, err
	}
	if err := res.Err(); err != nil {
		return nil, res, err
	}
	if ctx.Bool("save-password") && ctx.String("password") != "" && opts.Username != "" {
		if err := secrets.Set(page, opts.Username, opts.Password); err != nil {
			l.Warning("%s: saving password: %v", page, err)
		}
	}
	return c.Session(), res, nil
}
