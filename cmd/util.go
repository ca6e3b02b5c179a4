package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/viper"

	"github.com/rhaphazard/browserid/pkg/client"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
	pass  = color.New(color.FgGreen, color.Bold).SprintFunc()
	fail  = color.New(color.FgRed, color.Bold).SprintFunc()
)

func getClient() (*client.Client, error) {
	server := viper.GetString(VerifierAddrKey)
	if server == "" {
		return nil, fmt.Errorf("server address not configured (use --server or set BROWSERID_ADDR)")
	}
	return client.New(server), nil
}

// readInput reads a bundle from a file, or from stdin when path is "-".
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return trimmed(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %q: %w", path, err)
	}
	return trimmed(data), nil
}

func trimmed(data []byte) string {
	s := string(data)
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r' || s[len(s)-1] == ' ') {
		s = s[:len(s)-1]
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
