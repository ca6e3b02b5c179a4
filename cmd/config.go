package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rhaphazard/browserid/internal/config"
	"github.com/rhaphazard/browserid/internal/keys"
	"github.com/rhaphazard/browserid/internal/policy"
	"github.com/rhaphazard/browserid/internal/resolver"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `validate loads the configuration, compiles the acceptance policy and
builds the resolver registry, reporting the first problem it finds. It does
not start a server or touch the network.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		hostKey, err := keys.LoadPublicKeyPEM(cfg.Keys.Public)
		if err != nil {
			return fmt.Errorf("loading host public key: %w", err)
		}

		if _, err := resolver.Build(cfg.Resolvers, cfg.Host, hostKey, cfg.Trust.AllowPrimaries); err != nil {
			return fmt.Errorf("building resolver registry: %w", err)
		}

		if _, err := policy.Compile(cfg.Policy.Expr); err != nil {
			return fmt.Errorf("compiling acceptance policy: %w", err)
		}

		fmt.Printf("%s %s\n", pass("OK"), cfgFile)
		fmt.Printf("  %s %s\n", faint("host:     "), cfg.Host)
		fmt.Printf("  %s %d\n", faint("resolvers:"), len(cfg.Resolvers))
		fmt.Printf("  %s %t\n", faint("primaries:"), cfg.Trust.AllowPrimaries)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
}
