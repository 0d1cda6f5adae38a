package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/subcommands"

	"portfolioapi/internal/model"
	"portfolioapi/internal/service"
)

// openUpload opens path and resolves its media type. mediaType overrides detection when set.
func openUpload(path, mediaType string) (service.Upload, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return service.Upload{}, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return service.Upload{}, nil, err
	}
	if info.IsDir() {
		f.Close()
		return service.Upload{}, nil, fmt.Errorf("%s is a directory", path)
	}

	if mediaType == "" {
		mt, err := mimetype.DetectReader(f)
		if err != nil {
			f.Close()
			return service.Upload{}, nil, fmt.Errorf("detect type of %s: %w", path, err)
		}
		if _, err := f.Seek(0, 0); err != nil {
			f.Close()
			return service.Upload{}, nil, err
		}
		mediaType, _, _ = strings.Cut(mt.String(), ";")
	}

	return service.Upload{
		Name:      filepath.Base(path),
		MediaType: strings.ToLower(strings.TrimSpace(mediaType)),
		Size:      info.Size(),
		Body:      f,
	}, f.Close, nil
}

type uploadCmd struct {
	app       *App
	category  string
	mediaType string
}

func (*uploadCmd) Name() string     { return "upload" }
func (*uploadCmd) Synopsis() string { return "upload files into the portfolio" }
func (*uploadCmd) Usage() string {
	return `portfolioctl upload -c <profile|resume|project> [-type <media type>] <file>...

  Validates, encodes and stores the files. Profile and resume take exactly one
  file and replace the current one. Project files are appended in order.
`
}

func (p *uploadCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.category, "c", "", "Category: profile, resume or project.")
	f.StringVar(&p.mediaType, "type", "", "Media type to declare instead of detecting it from the content.")
}

func (p *uploadCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	category, err := model.ParseCategory(p.category)
	if err != nil {
		fmt.Fprintln(p.app.Stderr, err)
		return subcommands.ExitUsageError
	}
	paths := f.Args()
	if len(paths) == 0 || (category.Singleton() && len(paths) > 1) {
		fmt.Fprint(p.app.Stderr, p.Usage())
		return subcommands.ExitUsageError
	}

	return p.app.run(ctx, func(svc service.PortfolioService) error {
		for _, path := range paths {
			u, closeFn, err := openUpload(path, p.mediaType)
			if err != nil {
				return err
			}
			rec, err := svc.Upload(ctx, u, category)
			closeFn()
			if err != nil {
				return err
			}
			fmt.Fprintln(p.app.Stdout, rec.ID)
		}
		return nil
	})
}

type replaceCmd struct {
	app       *App
	category  string
	id        string
	mediaType string
}

func (*replaceCmd) Name() string     { return "replace" }
func (*replaceCmd) Synopsis() string { return "replace a file in the portfolio" }
func (*replaceCmd) Usage() string {
	return `portfolioctl replace -c <profile|resume|project> [-id <project id>] [-type <media type>] <file>

  With -id, overwrites that project in place and keeps its position.
  An unknown project id leaves the portfolio unchanged.
`
}

func (p *replaceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.category, "c", "", "Category: profile, resume or project.")
	f.StringVar(&p.id, "id", "", "Id of the project file to overwrite.")
	f.StringVar(&p.mediaType, "type", "", "Media type to declare instead of detecting it from the content.")
}

func (p *replaceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	category, err := model.ParseCategory(p.category)
	if err != nil {
		fmt.Fprintln(p.app.Stderr, err)
		return subcommands.ExitUsageError
	}
	if f.NArg() != 1 {
		fmt.Fprint(p.app.Stderr, p.Usage())
		return subcommands.ExitUsageError
	}

	return p.app.run(ctx, func(svc service.PortfolioService) error {
		u, closeFn, err := openUpload(f.Arg(0), p.mediaType)
		if err != nil {
			return err
		}
		defer closeFn()

		rec, err := svc.Replace(ctx, u, category, p.id)
		if err != nil {
			return err
		}
		if rec == nil {
			fmt.Fprintf(p.app.Stderr, "no project with id %q, nothing replaced\n", p.id)
			return nil
		}
		fmt.Fprintln(p.app.Stdout, rec.ID)
		return nil
	})
}

type deleteCmd struct {
	app      *App
	category string
	id       string
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete a file from the portfolio" }
func (*deleteCmd) Usage() string {
	return `portfolioctl delete -c <profile|resume|project> [-id <project id>]
`
}

func (p *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.category, "c", "", "Category: profile, resume or project.")
	f.StringVar(&p.id, "id", "", "Id of the project file to delete.")
}

func (p *deleteCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	category, err := model.ParseCategory(p.category)
	if err != nil {
		fmt.Fprintln(p.app.Stderr, err)
		return subcommands.ExitUsageError
	}
	if category == model.Project && p.id == "" {
		fmt.Fprintln(p.app.Stderr, "-id is required for project files")
		return subcommands.ExitUsageError
	}

	return p.app.run(ctx, func(svc service.PortfolioService) error {
		return svc.Delete(ctx, p.id, category)
	})
}

type clearCmd struct {
	app *App
	yes bool
}

func (*clearCmd) Name() string     { return "clear" }
func (*clearCmd) Synopsis() string { return "remove every file from the portfolio" }
func (*clearCmd) Usage() string {
	return `portfolioctl clear -y
`
}

func (p *clearCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.yes, "y", false, "Confirm removal of all files.")
}

func (p *clearCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !p.yes {
		fmt.Fprintln(p.app.Stderr, "refusing to clear the portfolio without -y")
		return subcommands.ExitUsageError
	}
	return p.app.run(ctx, func(svc service.PortfolioService) error {
		return svc.ClearAll(ctx)
	})
}

type exportCmd struct {
	app *App
	id  string
	out string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the decoded content of a stored file" }
func (*exportCmd) Usage() string {
	return `portfolioctl export -id <file id> [-o <path>]

  Writes the file to <path>, or to its original name in the current directory.
`
}

func (p *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.id, "id", "", "Id of the file to export.")
	f.StringVar(&p.out, "o", "", "Output path. Defaults to the stored file name.")
}

func (p *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.id == "" {
		fmt.Fprint(p.app.Stderr, p.Usage())
		return subcommands.ExitUsageError
	}

	return p.app.run(ctx, func(svc service.PortfolioService) error {
		rec, data, err := svc.Content(ctx, p.id)
		if errors.Is(err, service.ErrFileNotFound) {
			return fmt.Errorf("no file with id %q", p.id)
		}
		if err != nil {
			return err
		}
		out := p.out
		if out == "" {
			out = filepath.Base(rec.Name)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(p.app.Stdout, "%s (%s)\n", out, humanize.IBytes(uint64(len(data))))
		return nil
	})
}
