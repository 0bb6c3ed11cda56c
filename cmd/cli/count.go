package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func countCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "count",
		Usage:  "Print the number of people on the waitlist",
		Flags:  []cli.Flag{serverFlag()},
		Action: r.Count,
	}
}

func (r *Runner) Count(ctx context.Context, cmd *cli.Command) error {
	count, err := r.client(cmd).Count(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(r.output, count)
	return nil
}
