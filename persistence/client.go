package persistence

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
)

// ClientStore handles persistent storage of the client UUID sent with tune
// requests
type ClientStore struct {
	filepath string
}

// NewClientStore creates a ClientStore under the XDG data directory
func NewClientStore() (*ClientStore, error) {
	filepath, err := xdg.DataFile("corecast/client_id")
	if err != nil {
		return nil, fmt.Errorf("failed to get data file path: %w", err)
	}
	return &ClientStore{filepath: filepath}, nil
}

// NewClientStoreAt creates a ClientStore backed by an explicit file
func NewClientStoreAt(path string) *ClientStore {
	return &ClientStore{filepath: path}
}

// Path returns the backing file
func (cs *ClientStore) Path() string {
	return cs.filepath
}

// Load retrieves the stored client ID
func (cs *ClientStore) Load() (string, error) {
	file, err := os.Open(cs.filepath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	contents, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(contents)), nil
}

// Save stores the client ID to disk
func (cs *ClientStore) Save(id string) error {
	file, err := os.Create(cs.filepath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = fmt.Fprintf(file, "%s\n", id)
	return err
}

// LoadOrCreate returns the stored client ID, generating and saving a fresh
// UUID when none exists or the stored one does not parse.
func (cs *ClientStore) LoadOrCreate() (string, error) {
	id, err := cs.Load()
	switch {
	case err == nil:
		if _, perr := uuid.Parse(id); perr == nil {
			return id, nil
		}
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("failed to read client id: %w", err)
	}

	id = uuid.NewString()
	if err := cs.Save(id); err != nil {
		return "", fmt.Errorf("failed to save client id: %w", err)
	}
	return id, nil
}
