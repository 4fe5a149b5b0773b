package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/watchfire-io/studiobar/internal/config"
	"github.com/watchfire-io/studiobar/internal/studio"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save API credentials",
	Long: `Save the user id, teamspace id and API key used to call the studio API.

The API key is stored in the OS keychain when one is available and in
~/.studiobar/settings.yaml otherwise. Press Enter to keep a current value.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		if err := config.DeleteAPIKey(settings); err != nil {
			return err
		}
		fmt.Println("API key removed.")
		return nil
	},
}

func init() {
	loginCmd.AddCommand(logoutCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)
	settings.Credentials.UserID = prompt(reader, "User ID", settings.Credentials.UserID)
	settings.Credentials.TeamspaceID = prompt(reader, "Teamspace ID", settings.Credentials.TeamspaceID)

	apiKey, err := readSecret(reader, "API key")
	if err != nil {
		return err
	}
	if apiKey == "" {
		apiKey, err = config.LoadAPIKey(settings)
		if err != nil {
			return err
		}
	}

	creds := studio.Credentials{
		UserID:      settings.Credentials.UserID,
		APIKey:      apiKey,
		TeamspaceID: settings.Credentials.TeamspaceID,
	}
	if err := creds.Validate(); err != nil {
		return fmt.Errorf("%w: user id, teamspace id and API key are all required", err)
	}

	if settings.Studio.Name != "" {
		client := studio.NewClient(studio.Config{BaseURL: settings.API.BaseURL, Credentials: creds})
		if _, err := client.ResolveTarget(cmd.Context(), settings.Studio.Name); err != nil && studio.IsAuth(err) {
			return fmt.Errorf("credentials rejected: %w", err)
		}
	}

	if err := config.StoreAPIKey(settings, apiKey); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	if settings.Credentials.APIKey != "" {
		fmt.Println(styleWarning.Render("No keychain available; the API key is stored in settings.yaml."))
	}
	fmt.Println(styleSuccess.Render("Credentials saved."))
	return nil
}

// prompt reads one line, keeping current on empty input.
func prompt(reader *bufio.Reader, label, current string) string {
	if current != "" {
		fmt.Printf("%s [%s]: ", label, current)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	return line
}

// readSecret reads a line without echo when stdin is a terminal.
func readSecret(reader *bufio.Reader, label string) (string, error) {
	fmt.Printf("%s (hidden, Enter to keep): ", label)

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, _ := reader.ReadString('\n')
		return strings.TrimSpace(line), nil
	}

	secret, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", label, err)
	}
	return strings.TrimSpace(string(secret)), nil
}
