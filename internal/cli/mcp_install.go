package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// mcpClients maps client names to their config file below the home dir
var mcpClients = map[string]string{
	"windsurf": ".codeium/windsurf/mcp_config.json",
	"cursor":   ".cursor/mcp.json",
	"claude":   ".claude.json",
}

// MCPInstallCmd returns the mcp-install command
func MCPInstallCmd() *cobra.Command {
	var clients []string
	var home string

	cmd := &cobra.Command{
		Use:   "mcp-install",
		Short: "Register 'laradoc serve' in the MCP configuration of your editors",
		Long: `Add a laradoc entry to the mcpServers section of each client's MCP config.
Other servers in the file are kept. Supported clients: ` + strings.Join(clientNames(), ", "),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			bin, err := os.Executable()
			if err != nil {
				return fmt.Errorf("cannot locate the laradoc binary: %w", err)
			}
			if home == "" {
				if home, err = os.UserHomeDir(); err != nil {
					return fmt.Errorf("cannot locate the home directory: %w", err)
				}
			}

			basePath, err := filepath.Abs(app.Config.Project.BasePath)
			if err != nil {
				return err
			}
			entry := mcpServerEntry(bin, basePath)

			ok := color.New(color.FgGreen).SprintFunc()
			for _, client := range clients {
				rel, known := mcpClients[client]
				if !known {
					return fmt.Errorf("unknown MCP client %q, expected one of %s", client, strings.Join(clientNames(), ", "))
				}
				path := filepath.Join(home, rel)
				if err := configureMCPClient(path, entry); err != nil {
					app.Log.Warn("⚠️  %s: %v", client, err)
					continue
				}
				app.printf("%s MCP config updated for %s: %s\n", ok("✓"), client, path)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&clients, "client", []string{"windsurf", "cursor"}, "Clients to configure")
	cmd.Flags().StringVar(&home, "home", "", "Home directory holding the client configs (default: the user's home)")

	return cmd
}

func mcpServerEntry(bin, basePath string) map[string]interface{} {
	return map[string]interface{}{
		"command": bin,
		"args":    []string{"serve", "--path", basePath},
	}
}

// configureMCPClient merges entry into the mcpServers section of the
// JSON config at path, creating the file when needed
func configureMCPClient(path string, entry map[string]interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create directory for %s: %w", path, err)
	}

	config := map[string]interface{}{}
	if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
		if err := json.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("could not parse config at %s: %w", path, err)
		}
	}

	servers, _ := config["mcpServers"].(map[string]interface{})
	if servers == nil {
		servers = map[string]interface{}{}
	}
	servers["laradoc"] = entry
	config["mcpServers"] = servers

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("could not write MCP config: %w", err)
	}
	return nil
}

func clientNames() []string {
	names := make([]string, 0, len(mcpClients))
	for name := range mcpClients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
