package main

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gigpilot/gigpilot/internal/app"
	"github.com/gigpilot/gigpilot/internal/geo"
)

type predictOptions struct {
	userID  string
	lat     float64
	lon     float64
	offline bool
}

func newPredictCmd(root *rootOptions) *cobra.Command {
	opts := &predictOptions{}

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the best earning opportunity for a rider",
		Long: `Predict runs one opportunity prediction and prints it as indented JSON.

Without --lat and --lon the configured default origin is used. With
--offline no provider, database or advisor is contacted and every signal
takes its default.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			origin, err := originFromFlags(cmd, opts)
			if err != nil {
				return err
			}
			return runPredict(cmd, root, opts, origin)
		},
	}

	cmd.Flags().StringVarP(&opts.userID, "user", "u", "", "rider user id")
	cmd.Flags().Float64Var(&opts.lat, "lat", 0, "origin latitude")
	cmd.Flags().Float64Var(&opts.lon, "lon", 0, "origin longitude")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "skip every network collaborator")
	_ = cmd.MarkFlagRequired("user")
	cmd.MarkFlagsRequiredTogether("lat", "lon")

	return cmd
}

func originFromFlags(cmd *cobra.Command, opts *predictOptions) (*geo.Coordinate, error) {
	if !cmd.Flags().Changed("lat") {
		return nil, nil
	}
	origin := geo.Coordinate{Lat: opts.lat, Lon: opts.lon}
	if err := origin.Validate(); err != nil {
		return nil, err
	}
	return &origin, nil
}

func runPredict(cmd *cobra.Command, root *rootOptions, opts *predictOptions, origin *geo.Coordinate) error {
	if strings.TrimSpace(opts.userID) == "" {
		return errors.New("--user must not be blank")
	}

	cfg, logger, err := root.load(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Scout.RequestTimeout)
	defer cancel()

	engine, err := app.Build(ctx, cfg, logger, app.Options{Offline: opts.offline})
	if err != nil {
		return err
	}
	defer engine.Close()

	result, err := engine.Orchestrator.Predict(ctx, opts.userID, origin)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
