package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gigpilot/gigpilot/internal/app"
	"github.com/gigpilot/gigpilot/internal/transactions"
)

// errNoDatabase is returned when a record would only live in memory.
var errNoDatabase = errors.New("database.enabled is false, the work log would not persist")

type logOptions struct {
	userID string
	income float64
	hours  float64
	at     string
}

func newLogCmd(root *rootOptions) *cobra.Command {
	opts := &logOptions{}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record a completed shift in the work log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLog(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.userID, "user", "u", "", "rider user id")
	cmd.Flags().Float64Var(&opts.income, "income", 0, "income earned in the shift")
	cmd.Flags().Float64Var(&opts.hours, "hours", 0, "hours worked in the shift")
	cmd.Flags().StringVar(&opts.at, "at", "", "shift end time (RFC3339, default now)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("income")
	_ = cmd.MarkFlagRequired("hours")

	return cmd
}

func runLog(cmd *cobra.Command, root *rootOptions, opts *logOptions) error {
	loggedAt := time.Now()
	if opts.at != "" {
		t, err := time.Parse(time.RFC3339, opts.at)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
		loggedAt = t
	}

	rec := transactions.Record{Income: opts.income, HoursWorked: opts.hours, LoggedAt: loggedAt}
	if err := rec.Validate(); err != nil {
		return err
	}

	cfg, logger, err := root.load(cmd)
	if err != nil {
		return err
	}
	if !cfg.Database.Enabled {
		return errNoDatabase
	}

	engine, err := app.Build(cmd.Context(), cfg, logger, app.Options{})
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.History.Add(cmd.Context(), opts.userID, rec); err != nil {
		return fmt.Errorf("recording shift: %w", err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "logged %.2f over %.2fh for %s\n", rec.Income, rec.HoursWorked, opts.userID)
	return err
}
