package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/akeren/launchwait/pkg/waitlistclient"
	"github.com/urfave/cli/v3"
)

var errJoinFailed = errors.New("join failed")

func joinCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "join",
		Usage: "Add an email address to the waitlist",
		Flags: []cli.Flag{
			serverFlag(),
			&cli.StringFlag{
				Name:     "email",
				Aliases:  []string{"e"},
				Usage:    "Address to register",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Optional display name",
			},
			&cli.StringFlag{
				Name:  "interest",
				Usage: "general, beta, partnership or early-access",
			},
			&cli.StringFlag{
				Name:  "state",
				Usage: "File that remembers a successful join (default: user config dir)",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Ignore the remembered join and ask the server again",
			},
		},
		Action: r.Join,
	}
}

func (r *Runner) Join(ctx context.Context, cmd *cli.Command) error {
	statePath := cmd.String("state")
	if statePath == "" {
		var err error
		if statePath, err = waitlistclient.DefaultStatePath(); err != nil {
			return err
		}
	}

	store := waitlistclient.NewFileSubscriptionStore(statePath)
	if cmd.Bool("force") {
		if err := store.Clear(); err != nil {
			return err
		}
	}

	form := waitlistclient.NewForm(r.client(cmd), store)
	form.SetFields(cmd.String("email"), cmd.String("name"), cmd.String("interest"))

	outcome := form.Submit(ctx)
	r.logger.Info("Waitlist submission finished", "outcome", outcome.Kind.String(), "status", outcome.Status)
	if outcome.Err != nil {
		r.logger.Warn("Waitlist submission error", "error", outcome.Err.Error())
	}

	fmt.Fprintln(r.output, form.Message())

	if form.State() != waitlistclient.StateSuccess {
		return fmt.Errorf("%w: %s", errJoinFailed, outcome.Kind)
	}
	return nil
}
