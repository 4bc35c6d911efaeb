package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ringfuzz/internal/script"
)

func newGenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Print one generated session without running a target",
		Long: `Print one generated session to stdout exactly as the fuzz loop would send it.
The same seed and geometry always produce the same session.`,
		Args: cobra.NoArgs,
		RunE: runGen,
	}
	addSessionFlags(cmd)
	cmd.Flags().String("config", "", "path to ringfuzz.toml (default: search upwards)")
	return cmd
}

func runGen(cmd *cobra.Command, args []string) error {
	rep := newReporter(cmd)
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	warnings, err := cfg.Validate()
	if err != nil {
		return err
	}
	for _, w := range warnings {
		rep.Warn(w)
	}
	seed := campaignSeed(cfg)
	s, err := script.BuildSession(script.NewGenerator(script.NewSeededSource(seed)), cfg.Geometry(), cfg.Session.Length)
	if err != nil {
		return err
	}
	if !quiet(cmd) {
		fmt.Fprintf(cmd.ErrOrStderr(), "ringfuzz: seed %d\n", seed)
	}
	_, err = cmd.OutOrStdout().Write(s.Bytes())
	return err
}
