package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"recipefeeder/internal/application/common/slogger"
	"recipefeeder/internal/config"

	"github.com/spf13/cobra"
)

// newFeedCmd creates the feed command: one full feeding run from the given
// cursor, printing the result (including the resume cursor) as JSON.
func newFeedCmd() *cobra.Command {
	var (
		cursor       string
		profileName  string
		profilesFile string
	)

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Run one feeding invocation",
		Long: `Run one full feeding invocation: scan the recipe key space from the
given cursor, find recipes missing an embedding, and enqueue them onto
the embedding work queue.

The command is stateless. It prints the run result as JSON, including
the next cursor; persist that cursor (e.g. in the cron log) and pass it
back with --cursor on the next invocation to make progress. Losing the
cursor restarts the scan from the beginning, which is safe but wasteful.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFeed(cmd.Context(), cursor, profileName, profilesFile)
		},
	}

	cmd.Flags().StringVar(&cursor, "cursor", "", "Resume cursor from the previous invocation")
	cmd.Flags().StringVar(&profileName, "profile", "", "Feed profile name to apply")
	cmd.Flags().StringVar(&profilesFile, "profiles-file", "", "Path to the YAML feed profiles file")
	return cmd
}

func runFeed(ctx context.Context, cursor, profileName, profilesFile string) error {
	cfg := GetConfig()

	feederCfg, err := resolveFeederConfig(cfg.Feeder, profileName, profilesFile)
	if err != nil {
		return err
	}

	slogger.Info(ctx, "Starting feeding run", slogger.Fields{
		"target_queue_count": feederCfg.TargetQueueCount,
		"max_cycles":         feederCfg.MaxCycles,
		"cursor":             cursor,
	})

	deps, err := buildFeederDependencies(ctx, cfg, feederCfg)
	if err != nil {
		return err
	}
	defer deps.close()

	result, runErr := deps.feeder.RunFull(ctx, cursor)
	if result != nil {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if encodeErr := encoder.Encode(result); encodeErr != nil {
			return encodeErr
		}
	}
	return runErr
}

func resolveFeederConfig(base config.FeederConfig, profileName, profilesFile string) (config.FeederConfig, error) {
	if profileName == "" {
		return base, nil
	}
	if profilesFile == "" {
		return config.FeederConfig{}, fmt.Errorf("--profile requires --profiles-file")
	}

	profiles, err := config.LoadFeedProfiles(profilesFile)
	if err != nil {
		return config.FeederConfig{}, err
	}
	profile, ok := profiles[profileName]
	if !ok {
		return config.FeederConfig{}, fmt.Errorf("unknown feed profile %q", profileName)
	}
	return profile.Apply(base)
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	rootCmd.AddCommand(newFeedCmd())
}
