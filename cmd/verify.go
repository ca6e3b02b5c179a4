package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rhaphazard/browserid/internal/api"
	"github.com/rhaphazard/browserid/internal/config"
	"github.com/rhaphazard/browserid/internal/core"
	"github.com/rhaphazard/browserid/internal/keys"
	"github.com/rhaphazard/browserid/internal/resolver"
	"github.com/rhaphazard/browserid/internal/service"
	"github.com/rhaphazard/browserid/internal/verifier"
)

var (
	verifyFile     string
	verifyAudience string
	verifyJSON     bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a single assertion bundle",
	Long: `verify checks one wire-format bundle against an audience. With --server
set, the bundle is sent to a remote verifier; otherwise verification runs
locally using the resolvers from the configuration file.

The exit code reflects the verdict: 0 for okay, 1 for failure.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		wire, err := readInput(verifyFile)
		if err != nil {
			return err
		}

		if viper.GetString(VerifierAddrKey) != "" {
			return verifyRemote(cmd, wire)
		}
		return verifyLocal(cmd, wire)
	},
}

func verifyLocal(cmd *cobra.Command, wire string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	hostKey, err := keys.LoadPublicKeyPEM(cfg.Keys.Public)
	if err != nil {
		return fmt.Errorf("loading host public key: %w", err)
	}

	registry, err := resolver.Build(cfg.Resolvers, cfg.Host, hostKey, cfg.Trust.AllowPrimaries)
	if err != nil {
		return fmt.Errorf("building resolver registry: %w", err)
	}

	v := verifier.New(cfg.Host, registry)
	result, err := v.Verify(cmd.Context(), wire, verifyAudience)
	if err != nil {
		if core.KindOf(err) == "" {
			return err
		}
		printVerdict(false, service.Reason(err), nil)
		os.Exit(1)
	}

	printVerdict(true, "", result)
	return nil
}

func verifyRemote(cmd *cobra.Command, wire string) error {
	c, err := getClient()
	if err != nil {
		return err
	}

	resp, correlation, err := c.Verify(cmd.Context(), wire, verifyAudience)
	if err != nil {
		return fmt.Errorf("verify request (correlation %s): %w", correlation, err)
	}

	if resp.Status != api.StatusOkay {
		printVerdict(false, resp.Reason, nil)
		os.Exit(1)
	}
	printVerdict(true, "", &core.VerificationResult{
		Email:    resp.Email,
		Audience: resp.Audience,
		Issuer:   resp.Issuer,
	})
	return nil
}

func printVerdict(okay bool, reason string, result *core.VerificationResult) {
	if verifyJSON {
		out := map[string]any{"status": "failure"}
		if okay {
			out = map[string]any{"status": "okay", "result": result}
		} else if reason != "" {
			out["reason"] = reason
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return
	}

	if !okay {
		fmt.Printf("%s %s\n", fail("FAIL"), reason)
		return
	}
	fmt.Printf("%s %s\n", pass("OKAY"), bold(result.Email))
	fmt.Printf("  %s %s\n", faint("audience:"), result.Audience)
	fmt.Printf("  %s %s\n", faint("issuer:  "), result.Issuer)
	if !result.Expires.IsZero() {
		fmt.Printf("  %s %s\n", faint("expires: "), result.Expires.Format("2006-01-02 15:04:05 MST"))
	}
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVarP(&verifyFile, "file", "f", "-",
		"Bundle file to verify ('-' for stdin)")
	verifyCmd.Flags().StringVarP(&verifyAudience, "audience", "a", "",
		"Audience to verify the assertion against")
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false,
		"Print the verdict as JSON")
	_ = verifyCmd.MarkFlagRequired("audience")
}
