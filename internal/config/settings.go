package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/zalando/go-keyring"

	"github.com/watchfire-io/studiobar/internal/models"
)

// KeyringService is the OS keychain service the API key is stored under.
const KeyringService = "studiobar"

// LoadSettings loads settings from ~/.studiobar/settings.yaml.
// If the file doesn't exist, returns default settings.
func LoadSettings() (*models.Settings, error) {
	path, err := SettingsFile()
	if err != nil {
		return nil, err
	}
	s, err := LoadYAMLOrDefault(path, models.NewSettings)
	if err != nil {
		return nil, err
	}
	s.Normalize()
	return s, nil
}

// SaveSettings saves settings to ~/.studiobar/settings.yaml. The file may
// hold a fallback API key, so it is private to the user.
func SaveSettings(settings *models.Settings) error {
	path, err := SettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings, 0600)
}

// LoadAPIKey returns the API key for userID from the OS keychain, falling
// back to the settings file when the keychain has no entry or is unavailable.
func LoadAPIKey(settings *models.Settings) (string, error) {
	userID := settings.Credentials.UserID
	if userID == "" {
		return settings.Credentials.APIKey, nil
	}

	key, err := keyring.Get(KeyringService, userID)
	switch {
	case err == nil:
		return key, nil
	case errors.Is(err, keyring.ErrNotFound):
		return settings.Credentials.APIKey, nil
	default:
		if settings.Credentials.APIKey != "" {
			log.Printf("[config] Keychain unavailable, using key from settings file: %v", err)
			return settings.Credentials.APIKey, nil
		}
		return "", fmt.Errorf("failed to read API key from keychain: %w", err)
	}
}

// StoreAPIKey saves the API key for the configured user. The keychain is
// preferred; the key is written to the settings file only when the keychain
// refuses it. settings is updated in place and saved.
func StoreAPIKey(settings *models.Settings, apiKey string) error {
	userID := settings.Credentials.UserID
	if userID == "" {
		return errors.New("user id is required to store an API key")
	}

	if err := keyring.Set(KeyringService, userID, apiKey); err != nil {
		log.Printf("[config] Keychain unavailable, storing key in settings file: %v", err)
		settings.Credentials.APIKey = apiKey
	} else {
		settings.Credentials.APIKey = ""
	}
	return SaveSettings(settings)
}

// DeleteAPIKey removes the stored key for the configured user from both places.
func DeleteAPIKey(settings *models.Settings) error {
	if userID := settings.Credentials.UserID; userID != "" {
		if err := keyring.Delete(KeyringService, userID); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to delete API key from keychain: %w", err)
		}
	}
	settings.Credentials.APIKey = ""
	return SaveSettings(settings)
}
