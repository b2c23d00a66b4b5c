package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/top5/internal/services"
	"github.com/desertthunder/top5/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	spotify     services.Service
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	errOutput   io.Writer
	input       io.Reader
	openBrowser func(url string) error
	quiet       bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config   // used instead of the --config file when set
	Spotify     services.Service // used instead of connecting with stored tokens when set
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	ErrOutput   io.Writer // prompts when Output carries a JSON report
	Input       io.Reader
	OpenBrowser func(url string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}

	return &Runner{
		config:      opts.Config,
		spotify:     opts.Spotify,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		errOutput:   opts.ErrOutput,
		input:       opts.Input,
		openBrowser: opts.OpenBrowser,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){buildCommand, authCommand, configCommand} {
		commands = append(commands, fn(r))
	}

	return commands
}

// setVerbosity applies the global --verbose and --quiet flags.
func (r *Runner) setVerbosity(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	switch {
	case cmd.Bool("verbose") && cmd.Bool("quiet"):
		return ctx, fmt.Errorf("%w: --verbose and --quiet are mutually exclusive", shared.ErrInvalidArgument)
	case cmd.Bool("verbose"):
		shared.SetLogLevel(r.logger, log.DebugLevel)
	case cmd.Bool("quiet"):
		shared.SetLogLevel(r.logger, log.WarnLevel)
		r.quiet = true
	}
	return ctx, nil
}

// loadConfig returns the injected config or reads --config, then applies environment overrides.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, string, error) {
	path := cmd.String("config")
	if path == "" {
		path = "config.toml"
	}

	config := r.config
	if config == nil {
		var err error
		if config, err = shared.LoadConfigOrDefault(path); err != nil {
			return nil, path, err
		}
		config.ApplyEnv(os.Getenv)
	}
	return config, path, nil
}

// oauthContext makes the oauth2 package use the runner's HTTP client for token requests and as the API transport.
func (r *Runner) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)
}

// connect returns the injected service or an authenticated Spotify client built from stored tokens.
//
// Refreshed tokens are written back to configPath.
func (r *Runner) connect(ctx context.Context, config *shared.Config, configPath string) (services.Service, error) {
	if r.spotify != nil {
		return r.spotify, nil
	}

	token := config.Credentials.Spotify.Token()
	if token == nil {
		return nil, fmt.Errorf("%w: no token in %s, run `top5 auth` first", shared.ErrNotAuthenticated, configPath)
	}

	svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map(),
		services.WithRequestsPerSecond(config.Client.RequestsPerSecond))
	if err != nil {
		return nil, fmt.Errorf("failed to create Spotify service: %w", err)
	}

	svc.SetTokenRefreshCallback(func(t *oauth2.Token) {
		if t.AccessToken == token.AccessToken {
			return
		}
		if err := config.Credentials.Spotify.Update(t); err != nil {
			r.logger.Warn("failed to update token", "error", err)
			return
		}
		if err := shared.SaveConfig(configPath, config); err != nil {
			r.logger.Warn("failed to save refreshed token", "error", err)
			return
		}
		r.logger.Debug("refreshed token saved", "path", configPath)
	})

	if err := svc.OAuthenticate(r.oauthContext(ctx), token); err != nil {
		return nil, err
	}
	return svc, nil
}

// explain adds operator hints to errors that have an obvious fix.
func explain(err error) error {
	switch {
	case errors.Is(err, shared.ErrTokenExpired):
		return fmt.Errorf("%w (run `top5 auth` to authorize again)", err)
	default:
		return err
	}
}

// syncWriter serializes writes from the progress printer and the confirmation prompt.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
