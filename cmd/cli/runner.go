package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/akeren/launchwait/config"
	"github.com/akeren/launchwait/internal/log"
	"github.com/akeren/launchwait/pkg/waitlistclient"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

// Runner holds the dependencies shared by every command action.
type Runner struct {
	logger     *log.Logger
	output     io.Writer
	httpClient *http.Client
	openDB     func(logger *log.Logger, cfg *config.DBConfig) (*gorm.DB, error)
}

type RunnerOpts struct {
	Logger     *log.Logger
	Output     io.Writer
	HTTPClient *http.Client
}

func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = log.NewLoggerWithWriter(os.Stderr)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &Runner{
		logger:     opts.Logger,
		output:     opts.Output,
		httpClient: opts.HTTPClient,
		openDB:     config.NewDatabase,
	}
}

func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:     "launchwait",
		Usage:    "Operate the launchwait waitlist service",
		Writer:   r.output,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range []func(*Runner) *cli.Command{migrateCommand, joinCommand, countCommand} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) client(cmd *cli.Command) *waitlistclient.Client {
	return waitlistclient.New(cmd.String("server"), r.httpClient)
}

func (r *Runner) Run(ctx context.Context, args []string) error {
	return r.app().Run(ctx, args)
}

func serverFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "Base URL of the waitlist service",
		Value:   waitlistclient.DefaultBaseURL,
		Sources: cli.EnvVars("WAITLIST_BASE_URL"),
	}
}
