package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rhaphazard/browserid/internal/buildinfo"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show build information",
	Long: `info prints the local build information, or the remote server's when
--server is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := buildinfo.GetBuildInfo()

		if viper.GetString(VerifierAddrKey) != "" {
			c, err := getClient()
			if err != nil {
				return err
			}
			remote, correlation, err := c.Info(cmd.Context())
			if err != nil {
				return fmt.Errorf("info request (correlation %s): %w", correlation, err)
			}
			info = *remote
		}

		fmt.Printf("%s %s\n", faint("service:"), bold(info.Service))
		fmt.Printf("%s %s\n", faint("version:"), info.Version)
		fmt.Printf("%s %s\n", faint("commit: "), info.CommitHash)
		fmt.Printf("%s %s\n", faint("about:  "), info.About)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
