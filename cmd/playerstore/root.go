package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ironvale/playerstore/internal/account"
	"github.com/ironvale/playerstore/internal/config"
	"github.com/ironvale/playerstore/internal/logging"
	"github.com/ironvale/playerstore/internal/store"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the playerstore CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playerstore",
		Short: "Playerstore - file-backed player persistence",
		Long: `Playerstore manages the on-disk account state of a game world:
auth records, player saves, ban lists, and the user-id counter.`,
	}

	def := config.Default()

	pf := cmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path")
	pf.String("data-dir", def.DataDir, "data directory root")
	pf.String("log-format", def.Logging.Format, "log format (json or text)")
	pf.String("log-level", def.Logging.Level, "log level (debug, info, warn, error)")
	pf.Bool("metrics", def.Observability.Enabled, "serve metrics while running")
	pf.String("metrics-addr", def.Observability.Addr, "metrics listen address")

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewBanCmd())
	cmd.AddCommand(NewUnbanCmd())
	cmd.AddCommand(NewRightsCmd())
	cmd.AddCommand(NewWhoisCmd())
	cmd.AddCommand(NewPasswdCmd())
	cmd.AddCommand(NewDeleteCmd())

	return cmd
}

// loadConfig resolves the effective configuration for a subcommand.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configFile
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path, cmd.Root().PersistentFlags())
}

// rawSave carries player record bytes through maintenance commands
// without interpreting them.
type rawSave struct {
	data []byte
}

func (r *rawSave) MarshalBinary() ([]byte, error) { return r.data, nil }

func (r *rawSave) UnmarshalBinary(data []byte) error {
	r.data = append([]byte(nil), data...)
	return nil
}

func rawSaveFactory(_ account.Identity) account.PlayerSave {
	return &rawSave{}
}

// buildService wires the account service from configuration. The returned
// service is initialized and ready.
func buildService(cfg *config.Config) (*account.Service, *slog.Logger, error) {
	logger := logging.Setup("playerstore", version, cfg.Logging.Format, cfg.Logging.Level, nil)

	paths := store.NewPaths(cfg.DataDir)
	svc, err := account.NewService(account.Config{
		Paths:   paths,
		Files:   store.New(logger, nil),
		NewSave: rawSaveFactory,
		Logger:  logger,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := svc.Init(); err != nil {
		return nil, nil, err
	}
	return svc, logger, nil
}
