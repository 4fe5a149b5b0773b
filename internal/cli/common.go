package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/watchfire-io/studiobar/internal/config"
	"github.com/watchfire-io/studiobar/internal/models"
	"github.com/watchfire-io/studiobar/internal/studio"
)

// errNoStudio is returned when neither --studio nor studio.name is set.
var errNoStudio = errors.New("no studio selected: pass --studio or run `studioctl use <name>`")

// session bundles what most commands need.
type session struct {
	settings *models.Settings
	client   *studio.Client
	name     string
}

// openSession loads settings and credentials and builds an API client.
// requireStudio controls whether a studio name must be known.
func openSession(requireStudio bool) (*session, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	creds, err := loadCredentials(settings)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(studioFlag)
	if name == "" {
		name = settings.Studio.Name
	}
	if requireStudio && name == "" {
		return nil, errNoStudio
	}

	client := studio.NewClient(studio.Config{
		BaseURL:     settings.API.BaseURL,
		Credentials: creds,
	})
	return &session{settings: settings, client: client, name: name}, nil
}

// loadCredentials combines settings with the stored API key.
func loadCredentials(settings *models.Settings) (studio.Credentials, error) {
	key, err := config.LoadAPIKey(settings)
	if err != nil {
		return studio.Credentials{}, err
	}
	return studio.Credentials{
		UserID:      settings.Credentials.UserID,
		APIKey:      key,
		TeamspaceID: settings.Credentials.TeamspaceID,
	}, nil
}

// explain adds a next step to errors the user can fix.
func explain(err error) error {
	switch {
	case studio.IsAuth(err):
		return fmt.Errorf("%w\nRun `studioctl login` to update your credentials", err)
	case studio.IsNotFound(err):
		return fmt.Errorf("%w\nCheck the name with `studioctl use <name>`", err)
	default:
		return err
	}
}

// machineTypes converts the configured list.
func machineTypes(settings *models.Settings) []studio.Machine {
	out := make([]studio.Machine, 0, len(settings.Studio.MachineTypes))
	for _, m := range settings.Studio.MachineTypes {
		out = append(out, studio.Machine(m))
	}
	return out
}
