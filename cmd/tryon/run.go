package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"hairfluencer/internal/bootstrap"
	"hairfluencer/internal/domain"
	"hairfluencer/internal/photo"
	"hairfluencer/internal/pipeline"
	"hairfluencer/internal/present"
	"hairfluencer/internal/progress"
)

type runOptions struct {
	style      string
	photo      string
	out        string
	comparison bool
}

func runCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Apply a hairstyle to a photo",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.style == "" || opts.photo == "" {
				return cmd.Help()
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runTryOn(ctx, cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.style, "style", "s", "", "Hairstyle id (see 'tryon styles')")
	cmd.Flags().StringVarP(&opts.photo, "photo", "p", "", "Photo path, file:// or http(s) URL, or data URI")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write the edited photo here instead of the export target")
	cmd.Flags().BoolVar(&opts.comparison, "comparison", false, "Also write a before/after zip")
	return cmd
}

func runTryOn(ctx context.Context, cmd *cobra.Command, opts runOptions) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	stdout := cmd.OutOrStdout()

	cat, closeCatalog, err := bootstrap.Catalog(ctx, cfg, &logger)
	if err != nil {
		return err
	}
	defer closeCatalog()

	style, err := cat.Get(ctx, opts.style)
	if err != nil {
		return fmt.Errorf("unknown hairstyle %q", opts.style)
	}

	gate := bootstrap.Gate(cfg)
	presenter, err := bootstrap.Presenter(cfg, gate, &logger, nil)
	if err != nil {
		return err
	}
	c, err := bootstrap.Factory(cfg, &logger, nil)("cli")
	if err != nil {
		return err
	}

	if err := c.Select(style); err != nil {
		return err
	}
	notice, err := c.AcquirePhoto(ctx, photo.GallerySource{Ref: domain.PhotoRef(opts.photo), Gate: gate})
	if err != nil {
		return err
	}
	if notice != nil {
		fmt.Fprintln(stdout, noticeLine(notice))
		return errors.New("photo not available")
	}

	fmt.Fprintln(stdout, headerLine(style))
	_, err = c.Process(ctx, progress.SinkFunc(func(cp progress.Checkpoint) {
		fmt.Fprintln(stdout, checkpointLine(cp))
	}))
	if err != nil {
		if ctx.Err() != nil {
			return errors.New("cancelled")
		}
		if f := c.Failure(); f != nil {
			fmt.Fprintln(stdout, failureLine(f))
			return errors.New(f.Kind)
		}
		return err
	}

	state := c.Snapshot()
	mode := present.ModeResult
	if opts.comparison {
		mode = present.ModeComparison
	}
	fmt.Fprintln(stdout, viewLine(present.Render(state, mode)))

	var location string
	if opts.out != "" {
		location, err = writeImage(ctx, presenter, state, opts.out)
	} else {
		location, err = export(ctx, presenter, state)
	}
	if err != nil {
		if n := pipeline.NoticeFor(err); n != nil {
			fmt.Fprintln(stdout, noticeLine(n))
		}
		return fmt.Errorf("%s: %w", present.SaveFailedMessage, err)
	}
	fmt.Fprintln(stdout, savedLine(location))

	if opts.comparison {
		archive, name, err := presenter.Bundle(ctx, state)
		if err != nil {
			return err
		}
		path := filepath.Join(filepath.Dir(location), name)
		if err := os.WriteFile(path, archive, 0o644); err != nil {
			return err
		}
		fmt.Fprintln(stdout, savedLine(path))
	}
	return nil
}

func writeImage(ctx context.Context, p *present.Presenter, state domain.SessionState, out string) (string, error) {
	data, _, err := p.Image(ctx, state)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return "", err
	}
	return out, nil
}

// export goes through the configured exporter. Download style receipts are
// written to the working directory.
func export(ctx context.Context, p *present.Presenter, state domain.SessionState) (string, error) {
	rec, err := p.Save(ctx, state)
	if err != nil {
		return "", err
	}
	if rec.Data == nil {
		return rec.Location, nil
	}
	name := strings.TrimSpace(rec.Filename)
	if err := os.WriteFile(name, rec.Data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}
