package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/mmcdole/pdiview/internal/adapter"
	"github.com/mmcdole/pdiview/internal/adapter/source"
	"github.com/mmcdole/pdiview/internal/domain"
	"github.com/mmcdole/pdiview/internal/imaging"
	"github.com/mmcdole/pdiview/internal/records"
	"github.com/mmcdole/pdiview/internal/service"
	"github.com/mmcdole/pdiview/internal/store"
	"github.com/mmcdole/pdiview/internal/tui"
	"github.com/mmcdole/pdiview/internal/tui/styles"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// Frames kept decoded in memory
const frameCacheSize = 96

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:          "pdiview [flags]",
		Short:        "Browse an AGFA IHE-PDI medical records export in the terminal",
		Version:      Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default "+adapter.GetConfigPath()+"/config.yaml)")
	flags.String("base", "", "bundle directory or http(s) URL")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.Bool("no-cache", false, "do not persist fetched documents")
	flags.Bool("clear-cache", false, "remove the document cache before starting")

	rootCmd.AddCommand(studiesCmd())
	rootCmd.AddCommand(seriesCmd())
	rootCmd.AddCommand(urlsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the wired services shared by every command
type app struct {
	cfg     *adapter.Config
	logger  *slog.Logger
	source  *source.CachedSource
	index   *service.IndexService
	images  *service.ImageService
	frames  *imaging.FrameLoader
	opener  *service.OpenerService
	loader  *records.Loader
	closers []io.Closer
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := adapter.LoadConfig(configFile, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, logCloser, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger, logCloser = adapter.NullLogger(), io.NopCloser(nil)
	}
	slog.SetDefault(logger)
	a := &app{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	logger.Info("starting pdiview", "version", Version, "base", cfg.Data.Base)

	if clearCache, _ := cmd.Flags().GetBool("clear-cache"); clearCache {
		if err := adapter.ClearCache(cfg.Cache.Dir); err != nil {
			return nil, err
		}
		logger.Info("cache cleared", "dir", cfg.Cache.Dir)
	}

	origin, err := source.NewSource(&source.SourceConfig{
		Base:     cfg.Data.Base,
		Timeout:  cfg.Data.Timeout,
		RetryMax: cfg.Data.Retries,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}

	docs, err := store.NewDocumentStore(cfg.CacheDir(), cfg.Data.Base)
	if err != nil {
		// The viewer works without persistence
		logger.Warn("document cache unavailable, using memory", "error", err)
		docs, _ = store.NewDocumentStore("", "")
	}
	a.closers = append(a.closers, docs)

	a.source = source.NewCachedSource(origin, docs, logger)
	a.index = service.NewIndexService(a.source, cfg.Data.IndexFile, logger)
	resolver := service.NewSeriesResolver(a.index, a.source, cfg.Viewer.ResolveWorkers, logger)
	a.images = service.NewImageService(resolver, cfg.Data.ImagePrefix, logger)
	a.frames = imaging.NewFrameLoader(a.source, frameCacheSize, logger)
	a.loader = records.NewLoader(a.source, cfg.Data.FeedFile, cfg.Data.ReportsDir, logger)

	launcher := adapter.NewLauncher(cfg.Player.Command, cfg.Player.Args, logger)
	a.opener = service.NewOpenerService(launcher, a.source, logger)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
}

func runTUI(cmd *cobra.Command) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal; use the studies, series or urls commands")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	model := tui.NewModel(a.loader, a.index, a.images, a.frames, a.opener, tui.Options{
		PlayInterval: a.cfg.Viewer.PlayInterval,
		CompactWidth: a.cfg.UI.CompactWidth,
		DefaultTab:   a.cfg.UI.DefaultTab,
		Logger:       a.logger,
		Cache:        a.source,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	a.logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	a.logger.Info("shutting down")
	return nil
}

func studiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "studies",
		Short: "List the studies and series in the bundle index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			studies := a.index.Studies(ctx)
			if len(studies) == 0 {
				return fmt.Errorf("no studies found in %s", a.source.Locate(a.cfg.Data.IndexFile))
			}

			t := newTable("Accession", "Date", "Title", "Series", "Images")
			total := 0
			for _, s := range studies {
				images := 0
				for _, se := range s.Series {
					images += se.ImageCount
				}
				total += images
				t.Row(s.Accession, s.Date, s.Title, strconv.Itoa(len(s.Series)), humanize.Comma(int64(images)))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			fmt.Fprintf(cmd.OutOrStdout(), "%d studies, %s images\n", len(studies), humanize.Comma(int64(total)))
			return nil
		},
	}
}

func seriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "series <accession>",
		Short: "Resolve a study's series, newest SerNr first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			series, err := loadSeries(cmd, a, args[0])
			if err != nil {
				return err
			}

			t := newTable("SerNr", "Title", "Frames", "First frame", "Source")
			for _, s := range series {
				origin := "index"
				if s.Resolved {
					origin = "detail page"
				}
				first := "-"
				if !s.Frames.Empty() {
					first = s.Frames.Images[0]
				}
				t.Row(s.SeriesID, s.Title, humanize.Comma(int64(s.Frames.Len())), first, origin)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}
}

func urlsCmd() *cobra.Command {
	var thumbs bool
	cmd := &cobra.Command{
		Use:   "urls <accession> [serNr]",
		Short: "Print the frame locations of a study or one of its series",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			series, err := loadSeries(cmd, a, args[0])
			if err != nil {
				return err
			}

			found := false
			for _, s := range series {
				if len(args) == 2 && s.SeriesID != args[1] {
					continue
				}
				found = true
				paths := s.Frames.Images
				if thumbs {
					paths = s.Frames.Thumbnails
				}
				for _, p := range paths {
					fmt.Fprintln(cmd.OutOrStdout(), a.source.Locate(p))
				}
			}
			if !found {
				return fmt.Errorf("study %s has no series %s", args[0], args[1])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&thumbs, "thumbs", false, "print thumbnail paths instead of full images")
	return cmd
}

func loadSeries(cmd *cobra.Command, a *app, accession string) ([]domain.LoadedSeries, error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	series, err := a.images.Load(ctx, accession)
	if err != nil {
		return nil, fmt.Errorf("study %s: %w", accession, err)
	}
	return series, nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.DimGray)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.AccentStyle.Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}
