package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hoanghai1803/newsdash/internal/app"
	"github.com/hoanghai1803/newsdash/internal/client"
	"github.com/hoanghai1803/newsdash/internal/config"
)

// env is shared by every subcommand once the root pre-run has loaded config.
type env struct {
	configPath string
	apiURL     string
	jsonOut    bool

	cfg    *config.Config
	client *client.Client
}

func newRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:   "newsdash",
		Short: "IT news dashboard",
		Long: `newsdash serves the news dashboard API and queries the news API
from the terminal.

Example usage:
  newsdash serve                          # Run the dashboard API on localhost
  newsdash articles --search AI --page 2  # Filtered, paginated article table
  newsdash keywords --limit 20            # Top keywords
  newsdash network --out network.png      # Draw the keyword network
  newsdash collect --max-feeds 5          # Trigger a collection run`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load()
		},
	}

	root.PersistentFlags().StringVar(&e.configPath, "config", "config.toml", "path to config file")
	root.PersistentFlags().StringVar(&e.apiURL, "api-url", "", "news API base URL (overrides config)")
	root.PersistentFlags().BoolVar(&e.jsonOut, "json", false, "output as JSON")

	root.AddCommand(
		newServeCmd(e),
		newArticlesCmd(e),
		newFacetsCmd(e),
		newKeywordsCmd(e),
		newCategoriesCmd(e),
		newStatsCmd(e),
		newNetworkCmd(e),
		newCollectCmd(e),
		newFavoriteCmd(e),
		newCollectionsCmd(e),
	)
	return root
}

func (e *env) load() error {
	cfg, err := config.Load(e.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if e.apiURL != "" {
		cfg.API.BaseURL = e.apiURL
	}
	if err := app.SetupLogging(cfg.Log.Level); err != nil {
		return err
	}

	e.cfg = cfg
	e.client = client.New(cfg.API)
	return nil
}

// emit writes v as JSON when --json is set, otherwise calls render.
func (e *env) emit(w io.Writer, v any, render func()) error {
	if e.jsonOut {
		return writeJSON(w, v)
	}
	render()
	return nil
}
