package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rhaphazard/browserid/internal/keys"
)

var (
	keygenOutDir string
	keygenForce  bool
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a host keypair",
	Long: `keygen creates an Ed25519 keypair for the verifier host and writes it as
PEM files (private.pem, public.pem). The public key is what the host
publishes in its support document and what relying parties trust.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		privPath := filepath.Join(keygenOutDir, "private.pem")
		pubPath := filepath.Join(keygenOutDir, "public.pem")

		if !keygenForce {
			for _, path := range []string{privPath, pubPath} {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%q already exists (use --force to overwrite)", path)
				}
			}
		}

		pub, priv, err := keys.Generate()
		if err != nil {
			return err
		}
		if err := keys.WritePrivateKeyPEM(privPath, priv); err != nil {
			return err
		}
		if err := keys.WritePublicKeyPEM(pubPath, pub); err != nil {
			return err
		}

		fmt.Printf("%s %s\n", faint("private key:"), privPath)
		fmt.Printf("%s %s\n", faint("public key: "), pubPath)
		fmt.Printf("%s %s\n", faint("key (claim):"), keys.EncodePublicKey(pub).Key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)

	keygenCmd.Flags().StringVarP(&keygenOutDir, "out-dir", "o", ".",
		"Directory to write the keypair into")
	keygenCmd.Flags().BoolVar(&keygenForce, "force", false,
		"Overwrite existing key files")
}
