package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/slack-go/slack"
	"github.com/spf13/cobra"
	"github.com/tartampluch/go-celebrations/internal/chat"
	"github.com/tartampluch/go-celebrations/internal/config"
	"github.com/tartampluch/go-celebrations/internal/directory"
	"github.com/tartampluch/go-celebrations/internal/engine"
	"github.com/tartampluch/go-celebrations/internal/scheduler"
	"github.com/tartampluch/go-celebrations/internal/server"
	"golang.org/x/sync/errgroup"
)

// main is the application entry point.
// It delegates execution to runMain so that deferred calls (like closing
// the log file) run before the process terminates.
func main() {
	os.Exit(runMain())
}

// options holds the values of the persistent CLI flags.
type options struct {
	debug      bool
	configPath string
	dryRun     bool
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var logCloser io.Closer
	defer func() {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	}()

	opts := &options{}
	root := newRootCmd(opts, func() {
		logCloser = setupLogging(opts.debug)
		logStartupInfo()
	})

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// newRootCmd builds the command tree. The root command behaves like "run".
func newRootCmd(opts *options, initLogging func()) *cobra.Command {
	root := &cobra.Command{
		Use:           config.CmdRoot,
		Short:         config.CmdDescRoot,
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			initLogging()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd.Context(), opts)
		},
	}
	root.SetVersionTemplate(versionLine())

	flags := root.PersistentFlags()
	flags.BoolVar(&opts.debug, config.FlagDebug, false, config.FlagDescDebug)
	flags.StringVar(&opts.configPath, config.FlagConfig, "", config.FlagDescConfig)
	flags.BoolVar(&opts.dryRun, config.FlagDryRun, false, config.FlagDescDryRun)

	root.AddCommand(
		&cobra.Command{
			Use:   config.CmdRun,
			Short: config.CmdDescRun,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runOnce(cmd.Context(), opts)
			},
		},
		&cobra.Command{
			Use:   config.CmdServe,
			Short: config.CmdDescServe,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context(), opts)
			},
		},
	)
	return root
}

// runOnce executes a single pipeline pass.
func runOnce(ctx context.Context, opts *options) error {
	settings, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	pipeline, err := newPipeline(ctx, settings)
	if err != nil {
		return err
	}

	_, err = pipeline.Run(ctx, newRunConfig(settings, opts.dryRun))
	return err
}

// serve runs the pipeline on the configured schedule and exposes the latest digest.
func serve(ctx context.Context, opts *options) error {
	settings, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	pipeline, err := newPipeline(ctx, settings)
	if err != nil {
		return err
	}

	srv := server.NewDigestServer(settings.ServerPort, pipeline.Formatter.NoNotices())
	cfg := newRunConfig(settings, opts.dryRun)

	sched, err := scheduler.New(settings.RunSchedule, func(ctx context.Context) error {
		notices, err := pipeline.Run(ctx, cfg)
		if err != nil {
			return err
		}
		srv.Update(notices)
		return nil
	})
	if err != nil {
		return err
	}
	defer sched.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })
	g.Go(func() error { return sched.Start(gctx) })
	return g.Wait()
}

// newPipeline wires the collaborators selected by settings.
func newPipeline(ctx context.Context, s *config.Settings) (*engine.Pipeline, error) {
	formatter, err := engine.NewFormatter(s.NoticeLanguage, s.IncludeDuration)
	if err != nil {
		return nil, err
	}

	fetcher := engine.NewHTTPFetcher()

	var dir engine.DirectorySource
	switch s.DirectoryMode {
	case config.DirectoryModeVCard:
		dir = &directory.VCardSource{
			Path:    s.DirectoryVCardPath,
			URL:     s.DirectoryVCardURL,
			User:    s.FeedUsername,
			Pass:    s.FeedPassword,
			Fetcher: fetcher,
		}
	default:
		if dir, err = directory.NewGoogleSource(ctx, s.GoogleCredentials, s.DirectorySubject); err != nil {
			return nil, err
		}
	}

	var chatOpts []slack.Option
	if s.ChatAPIURL != "" {
		chatOpts = append(chatOpts, slack.OptionAPIURL(strings.TrimSuffix(s.ChatAPIURL, "/")+"/"))
	}
	client := chat.New(s.ChatAPIToken, s.BotUsername, s.RosterChannel, chatOpts...)

	return &engine.Pipeline{
		Clock:     engine.RealClock{},
		Fetcher:   fetcher,
		Directory: dir,
		Roster:    client,
		Sink:      client,
		Formatter: formatter,
		Reporter:  engine.LogReporter{},
	}, nil
}

// newRunConfig maps the resolved settings onto the values of one run.
func newRunConfig(s *config.Settings, dryRun bool) engine.RunConfig {
	return engine.RunConfig{
		AnniversaryFeedURL: s.AnniversaryFeedURL,
		BirthdayFeedURL:    s.BirthdayFeedURL,
		FeedUser:           s.FeedUsername,
		FeedPass:           s.FeedPassword,
		OffsetDays:         s.TargetOffsetDays,
		DirectoryDomains:   s.DirectoryDomains,
		Channel:            s.NotifyChannel,
		StrictSummaries:    s.StrictSummaries,
		DryRun:             dryRun,
	}
}

// versionLine renders the build information printed by --version.
func versionLine() string {
	return fmt.Sprintf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		config.Commit,
		config.Date,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger.
func setupLogging(debugMode bool) io.Closer {
	writers := []io.Writer{os.Stdout}
	var logFile *os.File

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
