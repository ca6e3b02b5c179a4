package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rhaphazard/browserid/internal/bundle"
	"github.com/rhaphazard/browserid/internal/keys"
)

var inspectFile string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Decode a bundle without verifying it",
	Long: `inspect unpacks a wire-format bundle and prints its certificate chain and
assertion. No signature is checked and no issuer key is resolved; the output
shows what the bundle claims, not whether the claims hold.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		wire, err := readInput(inspectFile)
		if err != nil {
			return err
		}

		b, err := bundle.Decode(wire)
		if err != nil {
			return fmt.Errorf("decoding bundle: %w", err)
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.SetStyle(table.StyleLight)
		tw.AppendHeader(table.Row{"#", "Issuer", "Principal", "Subject Key", "Expires"})
		for i, cert := range b.Certificates {
			tw.AppendRow(table.Row{
				i + 1,
				cert.Issuer,
				cert.Principal.Email,
				truncate(keys.EncodePublicKey(cert.PublicKey).Key, 24),
				cert.Expires.Format("2006-01-02 15:04:05 MST"),
			})
		}
		tw.Render()

		fmt.Println()
		fmt.Printf("%s %s\n", bold("Assertion"), faint("(unverified)"))
		fmt.Printf("  %s %s\n", faint("audience:"), b.Assertion.Audience)
		fmt.Printf("  %s %s\n", faint("expires: "), b.Assertion.Expires.Format("2006-01-02 15:04:05 MST"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&inspectFile, "file", "f", "-",
		"Bundle file to inspect ('-' for stdin)")
}
