package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rhaphazard/browserid/internal/buildinfo"
	"github.com/rhaphazard/browserid/internal/logging"
)

// global flags
var (
	cfgFile      string
	verifierAddr string
)

const VerifierAddrKey = "addr"

var rootCmd = &cobra.Command{
	Use:   "browserid",
	Short: fmt.Sprintf("BrowserID assertion verifier (version: %s, commit: %s)", buildinfo.Version, buildinfo.CommitHash),
	Long: `browserid verifies federated identity assertions: bundles of a signed
certificate chain plus a signed token claiming an email address and an
intended audience. It decides whether the named principal authorized use of
their identity for exactly that audience, and whether the issuing authority
is entitled to vouch for that principal.`,
	Version: buildinfo.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init()
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal().Err(err).Msg("execution failed")
		os.Exit(1)
	}
}

func init() {
	// setup pre-flag logger
	logging.InitDefault()

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "browserid.yaml",
		"Path to the verifier configuration file")

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = viper.BindPFlag(logging.LevelKey, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console, json)")
	_ = viper.BindPFlag(logging.FormatKey, rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.PersistentFlags().Bool("no-color", false, "Disable color output")
	_ = viper.BindPFlag(logging.NoColorKey, rootCmd.PersistentFlags().Lookup("no-color"))

	rootCmd.PersistentFlags().StringVar(&verifierAddr, "server", "", "Address of a remote verifier server")
	_ = viper.BindPFlag(VerifierAddrKey, rootCmd.PersistentFlags().Lookup("server"))

	viper.SetEnvPrefix("BROWSERID")
	viper.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	viper.AutomaticEnv()
}
