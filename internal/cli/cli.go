// Package cli implements the portfolioctl subcommands on top of the portfolio service.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"portfolioapi/internal/bootstrap"
	"portfolioapi/internal/config"
	"portfolioapi/internal/notify"
	"portfolioapi/internal/service"
)

// Opener returns a portfolio service whose notifications go to n, and a closer for its storage.
type Opener func(ctx context.Context, n notify.Notifier) (service.PortfolioService, io.Closer, error)

// App carries what every subcommand needs.
type App struct {
	Stdout io.Writer
	Stderr io.Writer
	Title  string
	Open   Opener
}

// NewApp opens the storage backend selected by cfg.
func NewApp(cfg *config.AppConfig, logger *slog.Logger) *App {
	return &App{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Title:  cfg.PreviewTitle,
		Open: func(ctx context.Context, n notify.Notifier) (service.PortfolioService, io.Closer, error) {
			slot, closer, err := bootstrap.OpenSlot(ctx, cfg, logger)
			if err != nil {
				return nil, nil, err
			}
			svc, err := service.NewPortfolioService(ctx, slot,
				service.WithNotifier(n),
				service.WithLogger(logger),
				service.WithEncodeTimeout(cfg.UploadTimeout()),
			)
			if err != nil {
				closer.Close()
				return nil, nil, err
			}
			return svc, closer, nil
		},
	}
}

// Register adds every portfolioctl subcommand to c.
func Register(c *subcommands.Commander, app *App) {
	c.Register(&uploadCmd{app: app}, "files")
	c.Register(&replaceCmd{app: app}, "files")
	c.Register(&deleteCmd{app: app}, "files")
	c.Register(&clearCmd{app: app}, "files")
	c.Register(&exportCmd{app: app}, "files")

	c.Register(&showCmd{app: app}, "view")
	c.Register(&statsCmd{app: app}, "view")
	c.Register(&previewCmd{app: app}, "view")
}

// run opens the service, calls fn and reports its error on Stderr.
func (a *App) run(ctx context.Context, fn func(svc service.PortfolioService) error) subcommands.ExitStatus {
	svc, closer, err := a.Open(ctx, notify.NotifierFunc(a.printNotification))
	if err != nil {
		fmt.Fprintln(a.Stderr, "error:", err)
		return subcommands.ExitFailure
	}
	defer closer.Close()

	if err := fn(svc); err != nil {
		a.printError(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (a *App) printNotification(_ context.Context, n notify.Notification) {
	mark := "✓"
	if n.Variant == notify.VariantDestructive {
		mark = "✗"
	}
	fmt.Fprintf(a.Stderr, "%s %s: %s\n", mark, n.Title, n.Description)
}

// printError prints err unless it was already announced as a destructive notification.
func (a *App) printError(err error) {
	var opErr *service.OperationError
	if errors.As(err, &opErr) {
		return
	}
	fmt.Fprintln(a.Stderr, "error:", err)
}

func (a *App) printMarkdown(md string) error {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(a.Stdout, out)
	return err
}
