package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"

	"portfolioapi/internal/model"
	"portfolioapi/internal/preview"
	"portfolioapi/internal/service"
)

type showCmd struct {
	app     *App
	asJSON  bool
	content bool
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "list the stored files" }
func (*showCmd) Usage() string {
	return `portfolioctl show [-json [-content]]
`
}

func (p *showCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.asJSON, "json", false, "Print the stored record as JSON.")
	f.BoolVar(&p.content, "content", false, "With -json, keep the data URIs.")
}

func (p *showCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return p.app.run(ctx, func(svc service.PortfolioService) error {
		rec := svc.Files()
		if p.asJSON {
			if !p.content {
				stripContent(rec)
			}
			enc := json.NewEncoder(p.app.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		}

		w := tabwriter.NewWriter(p.app.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CATEGORY\tID\tNAME\tTYPE\tSIZE\tUPLOADED")
		for _, f := range filesOf(rec) {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				f.Category, f.ID, f.Name, f.MediaType,
				humanize.IBytes(uint64(max(f.SizeBytes, 0))), humanize.Time(f.UploadedAt))
		}
		return w.Flush()
	})
}

func filesOf(rec *model.PortfolioRecord) []model.FileRecord {
	var out []model.FileRecord
	if rec.Profile != nil {
		out = append(out, *rec.Profile)
	}
	if rec.Resume != nil {
		out = append(out, *rec.Resume)
	}
	return append(out, rec.Projects...)
}

func stripContent(rec *model.PortfolioRecord) {
	if rec.Profile != nil {
		rec.Profile.Content = ""
	}
	if rec.Resume != nil {
		rec.Resume.Content = ""
	}
	for i := range rec.Projects {
		rec.Projects[i].Content = ""
	}
}

type statsCmd struct {
	app *App
}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "print portfolio completion" }
func (*statsCmd) Usage() string {
	return `portfolioctl stats
`
}

func (*statsCmd) SetFlags(*flag.FlagSet) {}

func (p *statsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return p.app.run(ctx, func(svc service.PortfolioService) error {
		s := svc.Files().Stats()
		fmt.Fprintf(p.app.Stdout, "profile picture: %s\n", yesNo(s.HasProfile))
		fmt.Fprintf(p.app.Stdout, "resume:          %s\n", yesNo(s.HasResume))
		fmt.Fprintf(p.app.Stdout, "projects:        %d\n", s.ProjectCount)
		fmt.Fprintf(p.app.Stdout, "total files:     %d\n", s.TotalFiles)
		fmt.Fprintf(p.app.Stdout, "completion:      %d%%\n", s.CompletionPercent)
		return nil
	})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

type previewCmd struct {
	app  *App
	html bool
	raw  bool
	out  string
}

func (*previewCmd) Name() string     { return "preview" }
func (*previewCmd) Synopsis() string { return "render the portfolio" }
func (*previewCmd) Usage() string {
	return `portfolioctl preview [-raw | -html [-o <path>]]

  Renders the portfolio in the terminal. -raw prints the Markdown source.
  -html writes a self-contained page with the images inlined.
`
}

func (p *previewCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.html, "html", false, "Render a standalone HTML page.")
	f.BoolVar(&p.raw, "raw", false, "Print Markdown without terminal styling.")
	f.StringVar(&p.out, "o", "", "With -html, write the page to this path instead of stdout.")
}

func (p *previewCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return p.app.run(ctx, func(svc service.PortfolioService) error {
		rec := svc.Files()
		if p.html {
			page, err := preview.HTML(rec, preview.Options{Title: p.app.Title, InlineImages: true})
			if err != nil {
				return err
			}
			if p.out != "" {
				return os.WriteFile(p.out, []byte(page), 0o644)
			}
			_, err = fmt.Fprint(p.app.Stdout, page)
			return err
		}

		md, err := preview.Markdown(rec, preview.Options{Title: p.app.Title})
		if err != nil {
			return err
		}
		if p.raw {
			_, err = fmt.Fprint(p.app.Stdout, md)
			return err
		}
		return p.app.printMarkdown(md)
	})
}
