package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/lehigh-university-libraries/pustak/internal/api"
	"github.com/lehigh-university-libraries/pustak/internal/config"
	"github.com/lehigh-university-libraries/pustak/internal/confirm"
	"github.com/lehigh-university-libraries/pustak/internal/render"
	"github.com/lehigh-university-libraries/pustak/internal/session"
	"github.com/lehigh-university-libraries/pustak/internal/storage"
	"github.com/spf13/cobra"
)

// app is what every command shares: configuration, the API client, and the
// session restored from disk.
type app struct {
	configPath string
	verbose    bool
	assumeYes  bool
	plain      bool

	cfg     *config.Config
	client  *api.Client
	state   *storage.Store
	session *session.Store

	in  *bufio.Reader
	out io.Writer
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	level := cfg.Log.SlogLevel()
	if a.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

	a.cfg = cfg
	a.client = api.New(cfg.API, api.WithLogger(slog.Default()))
	a.state = storage.New(cfg.State.File)
	a.session = session.NewStore(a.client, a.state, slog.Default())
	a.session.Restore(cmd.Context())
	a.in = bufio.NewReader(cmd.InOrStdin())
	a.out = cmd.OutOrStdout()
	return nil
}

func (a *app) renderer() (*render.Renderer, error) {
	return render.New(80, a.plain || !isTerminal(a.out))
}

func (a *app) requireUser() (session.Session, error) {
	s := a.session.Current()
	return s, session.RequireUser(s)
}

func (a *app) requireAdmin() (session.Session, error) {
	s := a.session.Current()
	return s, session.RequireAdmin(s)
}

// confirm asks on the terminal unless --yes was given.
func (a *app) confirm(ctx context.Context, p *confirm.Pending) error {
	return confirm.Ask(ctx, a.in, a.out, p, a.assumeYes)
}

// prompt reads one line, used when a required value was not passed as a flag.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) println(s string) {
	fmt.Fprintln(a.out, s)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(f.Fd())
}

// optionalID turns a zero flag value into "unset".
func optionalID(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
