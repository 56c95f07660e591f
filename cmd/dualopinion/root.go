package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dusk-indust/dualopinion/internal/config"
	"github.com/dusk-indust/dualopinion/internal/logging"
	"github.com/dusk-indust/dualopinion/internal/opinion"
)

// cli holds state shared by all subcommands. Flags and DUALOPINION_*
// environment variables override values from dualopinion.yml.
type cli struct {
	v         *viper.Viper
	cfg       *config.ProjectConfig
	logger    *zap.Logger
	newLogger func(verbose bool) (*zap.Logger, error)
}

func newCLI() *cli {
	return &cli{v: viper.New(), newLogger: logging.New}
}

func newRootCommand(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "dualopinion",
		Short: "Ask two personas the same question, compare their opinions and merge them",
		Long: `dualopinion asks two personas with different reasoning styles the same
question, shows where their opinions agree and disagree, and consolidates
them by your preference: keep opinion A, keep opinion B, or merge both.

Examples:
  dualopinion ask "I feel tired every afternoon"
  dualopinion ask --prefer merge "I feel tired every afternoon"
  dualopinion personas
  dualopinion serve mcp
  dualopinion serve http --addr :8080`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.String("project-root", ".", "directory containing dualopinion.yml")
	pf.String("personas", "", "YAML personas file replacing the built-in personas")
	pf.String("persona-db", "", "Kuzu database directory for personas")
	pf.StringSlice("styles", nil, "reasoning styles used to pick the persona pair, in order")
	pf.Float64("min-confidence", 0, "merge threshold below which unique topics are dropped")
	pf.Int("cache-size", 0, "number of generated opinions to cache")
	pf.BoolP("verbose", "v", false, "enable debug logging")
	_ = c.v.BindPFlags(pf)

	c.v.SetEnvPrefix("DUALOPINION")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	root.AddCommand(newAskCommand(c))
	root.AddCommand(newPersonasCommand(c))
	root.AddCommand(newServeCommand(c))
	root.AddCommand(newVersionCommand())
	return root
}

// setup loads the project config, applies overrides and builds the logger.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	dir := c.v.GetString("project-root")
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	// Paths in the config file are relative to the project root.
	if cfg.PersonasFile != "" && !filepath.IsAbs(cfg.PersonasFile) {
		cfg.PersonasFile = filepath.Join(dir, cfg.PersonasFile)
	}
	if cfg.PersonaDB != "" && !filepath.IsAbs(cfg.PersonaDB) {
		cfg.PersonaDB = filepath.Join(dir, cfg.PersonaDB)
	}

	if c.v.IsSet("personas") {
		cfg.PersonasFile = c.v.GetString("personas")
	}
	if c.v.IsSet("persona-db") {
		cfg.PersonaDB = c.v.GetString("persona-db")
	}
	if c.v.IsSet("styles") {
		cfg.PreferredStyles = c.v.GetStringSlice("styles")
	}
	if c.v.IsSet("min-confidence") {
		v := c.v.GetFloat64("min-confidence")
		cfg.MinConfidence = &v
	}
	if c.v.IsSet("cache-size") {
		cfg.CacheSize = c.v.GetInt("cache-size")
	}
	if c.v.IsSet("verbose") {
		cfg.Verbose = c.v.GetBool("verbose")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.cfg = cfg

	logger, err := c.newLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	c.logger = logger.With(zap.String("command", cmd.Name()))
	return nil
}

// userError leads with a sentence the person asking can act on and keeps
// the underlying error for diagnosis.
func userError(err error) error {
	if _, ok := opinion.KindOf(err); !ok {
		return err
	}
	return fmt.Errorf("%s (%w)", opinion.UserMessage(err), err)
}
