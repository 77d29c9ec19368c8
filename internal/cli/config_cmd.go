package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/adbdial/internal/config"
	"github.com/rileyhilliard/adbdial/internal/errors"
	"github.com/rileyhilliard/adbdial/internal/ui"
	"github.com/spf13/cobra"
)

var (
	configInitForce  bool
	configInitGlobal bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the adbdial config file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Print the configuration adbdial would use right now: the config file it
finds (or defaults), with ADBDIAL_* environment overrides applied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShow(cmd.OutOrStdout())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .adbdial.yaml",
	Long: `Create .adbdial.yaml in the current directory with every setting at its
default, ready to edit.

Examples:
  adbdial config init
  adbdial config init --global
  adbdial config init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configInitPath(configInitGlobal)
		if err != nil {
			return err
		}
		return configInit(cmd.OutOrStdout(), path, configInitForce)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd)

	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")
	configInitCmd.Flags().BoolVar(&configInitGlobal, "global", false, "write ~/.config/adbdial/config.yaml instead")
}

func configShow(w io.Writer) error {
	cfg, path, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}

	if path == "" {
		fmt.Fprintln(w, "# no config file found, showing defaults")
	} else {
		fmt.Fprintf(w, "# %s\n", path)
	}
	_, err = w.Write(data)
	return err
}

func configInitPath(global bool) (string, error) {
	if !global {
		return config.ConfigFileName, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Can't find your home directory",
			"Run without --global to write .adbdial.yaml here instead")
	}
	return filepath.Join(home, config.GlobalConfigDir, config.GlobalConfigFile), nil
}

func configInit(w io.Writer, path string, force bool) error {
	if err := config.WriteDefault(path, force); err != nil {
		return err
	}
	fmt.Fprintln(w, ui.SuccessStyle().Render(ui.SymbolSuccess+" Wrote "+path))
	return nil
}
