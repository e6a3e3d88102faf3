package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/cryptonaut/internal/buildinfo"
	"github.com/dmitrijs2005/cryptonaut/internal/client"
	"github.com/dmitrijs2005/cryptonaut/internal/common"
	"github.com/dmitrijs2005/cryptonaut/internal/config"
	"github.com/dmitrijs2005/cryptonaut/internal/logging"
	"github.com/dmitrijs2005/cryptonaut/internal/netx"
	"github.com/dmitrijs2005/cryptonaut/internal/services"
	"github.com/google/uuid"
)

const (
	DefaultLogFile = "cryptonaut.log"

	rescueKeyPrompt = "Enter system rescue key: "
)

// Options are the command-line inputs of one run.
type Options struct {
	Target     string
	ConfigPath string
	Debug      bool
	LogFile    string
}

type connectFunc func(ctx context.Context, opts client.Options) (client.Client, error)

type App struct {
	out     io.Writer
	prompt  io.Writer
	connect connectFunc
}

// NewApp returns an App printing the summary to out and prompts to prompt.
func NewApp(out, prompt io.Writer) *App {
	return &App{
		out:    out,
		prompt: prompt,
		connect: func(ctx context.Context, opts client.Options) (client.Client, error) {
			return client.Connect(ctx, opts)
		},
	}
}

// Run executes a complete distribution run. Every error is logged before it
// is returned.
func (a *App) Run(ctx context.Context, opts Options) error {
	if opts.LogFile == "" {
		opts.LogFile = DefaultLogFile
	}

	logger, err := logging.New(logging.Options{Debug: opts.Debug, FilePath: opts.LogFile})
	if err != nil {
		return err
	}
	defer logger.Close()

	log := logger.With("run_id", uuid.NewString())
	log.Info(ctx, "cryptonaut started", "version", buildinfo.Version, "target", opts.Target)

	if err := a.run(ctx, log, opts); err != nil {
		log.Error(ctx, "cryptonaut failed", "error", err)
		return err
	}

	log.Info(ctx, "cryptonaut finished")
	return nil
}

func (a *App) run(ctx context.Context, log logging.Logger, opts Options) error {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	baseURL, path, err := netx.SplitURL(opts.Target)
	if err != nil {
		return err
	}
	log.Debug(ctx, "target split", "base_url", baseURL, "path", path)

	secret, err := a.rescueSecret(cfg)
	if err != nil {
		return fmt.Errorf("read rescue key: %w", err)
	}
	defer common.WipeByteArray(secret)

	c, err := a.connect(ctx, client.Options{
		BaseURL:      baseURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RefreshToken: cfg.RefreshToken,
		UserAgent:    buildinfo.UserAgent(),
		Timeout:      cfg.Timeout,
		Logger:       log,
	})
	if err != nil {
		return err
	}
	defer c.Close()

	svc := services.NewKeyService(c, log, services.Options{MaxBatches: cfg.MaxBatches})

	scope, err := svc.Resolve(ctx, path)
	if err != nil {
		return err
	}

	report, err := svc.Distribute(ctx, scope, secret)
	if err != nil {
		return err
	}

	RenderReport(a.out, baseURL+path, report)
	return nil
}

func (a *App) rescueSecret(cfg *config.Config) ([]byte, error) {
	if cfg.RescueKey != "" {
		return []byte(cfg.RescueKey), nil
	}
	return GetPassword(a.prompt, rescueKeyPrompt)
}
