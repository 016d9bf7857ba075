package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"nefconv/internal/config"
	"nefconv/internal/logging"
	"nefconv/internal/processor"
	"nefconv/internal/tui"
)

var (
	convertQuality     int
	convertWorkers     int
	convertResize      bool
	convertWidth       int
	convertHeight      int
	convertPreviewSize int
	convertExts        []string
	convertPlain       bool
	convertLogFile     string
	convertLogLevel    string
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <input_dir> <output_dir>",
	Short: "Convert every raw file in a folder to JPEG",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd, args[0], args[1])
		if err != nil {
			return err
		}
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return err
		}

		names, err := processor.ListSourceFiles(cfg.InputDir, cfg.Extensions)
		if err != nil {
			return err
		}

		logger, err := logging.New(logging.Options{
			Level:   convertLogLevel,
			File:    convertLogFile,
			Console: convertPlain,
		})
		if err != nil {
			return err
		}
		defer logger.Close()

		sched, err := processor.NewScheduler(cfg, processor.Options{Logger: logger.Logger})
		if err != nil {
			return err
		}

		token := processor.NewToken()
		stop := cancelOnSignal(cmd.Context(), token)
		defer stop()

		ch := processor.NewChannel()
		var summary processor.Summary
		if convertPlain {
			if err := ch.Subscribe(logEvents(logger.Logger)); err != nil {
				return err
			}
			summary, err = sched.Run(processor.Items(names), token, ch)
			ch.Close()
		} else {
			summary, err = runWithTUI(sched, processor.Items(names), token, ch)
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, tui.RenderSummary(tui.SummaryRows(summary)))
		fmt.Fprintf(os.Stdout, "Converted files written to: %s\n", cfg.OutputDir)
		return nil
	},
}

// resolveConfig layers defaults, NEFCONV_* environment variables and the
// flags the user actually set, then validates the result.
func resolveConfig(cmd *cobra.Command, inputDir, outputDir string) (config.Config, error) {
	cfg, err := config.FromEnv(config.Default())
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("quality") {
		cfg.Quality = convertQuality
	}
	if flags.Changed("workers") {
		cfg.Workers = convertWorkers
	}
	if flags.Changed("width") {
		cfg.Width = convertWidth
	}
	if flags.Changed("height") {
		cfg.Height = convertHeight
	}
	if flags.Changed("preview-size") {
		cfg.PreviewWidth = convertPreviewSize
		cfg.PreviewHeight = convertPreviewSize
	}
	if flags.Changed("ext") {
		cfg.Extensions = nil
		for _, ext := range convertExts {
			cfg.Extensions = append(cfg.Extensions, config.NormalizeExt(ext))
		}
	}
	cfg.Resize = convertResize

	cfg.InputDir, err = filepath.Abs(inputDir)
	if err != nil {
		return cfg, err
	}
	cfg.OutputDir, err = filepath.Abs(outputDir)
	if err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if err := cfg.ValidatePaths(cfg.InputDir, cfg.OutputDir); err != nil {
		return cfg, err
	}
	info, err := os.Stat(cfg.InputDir)
	if err != nil {
		return cfg, err
	}
	if !info.IsDir() {
		return cfg, &config.Error{Field: "input directory", Value: cfg.InputDir, Reason: "not a directory"}
	}
	return cfg, nil
}

// cancelOnSignal sets token on SIGINT or SIGTERM until the returned stop
// function is called.
func cancelOnSignal(parent context.Context, token *processor.Token) func() {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	finished := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			if parent.Err() == nil {
				token.Set()
			}
		case <-finished:
		}
	}()
	return func() {
		close(finished)
		cancel()
	}
}

func runWithTUI(sched *processor.Scheduler, items []processor.WorkItem, token *processor.Token, ch *processor.Channel) (processor.Summary, error) {
	program := tea.NewProgram(tui.NewModel(token.Set))
	if err := ch.Subscribe(tui.Forward(program)); err != nil {
		return processor.Summary{}, err
	}

	uiDone := make(chan error, 1)
	go func() {
		_, err := program.Run()
		uiDone <- err
	}()

	summary, err := sched.Run(items, token, ch)
	ch.Close()
	program.Send(tui.DoneMsg{})
	if uiErr := <-uiDone; uiErr != nil && err == nil {
		err = uiErr
	}
	return summary, err
}

// logEvents renders the event stream as log lines for --plain runs.
func logEvents(logger *log.Logger) func(processor.Event) {
	return func(e processor.Event) {
		switch e := e.(type) {
		case processor.Status:
			switch {
			case strings.HasPrefix(e.Message, "Error"):
				logger.Error(e.Message)
			case e.Message == processor.MsgAborted:
				logger.Warn(e.Message)
			default:
				logger.Info(e.Message)
			}
		case processor.Progress:
			logger.Info(e.String())
		case processor.Preview:
			logger.Debug("preview ready", "file", e.Name, "bytes", len(e.Image))
		}
	}
}

func bindConvertFlags(c *cobra.Command) {
	defaults := config.Default()
	c.Flags().IntVarP(&convertQuality, "quality", "q", defaults.Quality, "JPEG quality (1-100)")
	c.Flags().IntVarP(&convertWorkers, "workers", "j", defaults.Workers, "number of parallel workers")
	c.Flags().BoolVar(&convertResize, "resize", false, "resize output to exactly --width x --height")
	c.Flags().IntVar(&convertWidth, "width", defaults.Width, "output width when resizing")
	c.Flags().IntVar(&convertHeight, "height", defaults.Height, "output height when resizing")
	c.Flags().IntVar(&convertPreviewSize, "preview-size", defaults.PreviewWidth, "bounding box for preview thumbnails")
	c.Flags().StringSliceVarP(&convertExts, "ext", "e", defaults.Extensions, "source file extensions")
	c.Flags().BoolVar(&convertPlain, "plain", false, "log events to the console instead of the interactive view")
	c.Flags().StringVar(&convertLogFile, "log-file", "", "append logs to this file")
	c.Flags().StringVar(&convertLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func init() {
	bindConvertFlags(convertCmd)
	rootCmd.AddCommand(convertCmd)
}
