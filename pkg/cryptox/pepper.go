package cryptox

import (
	"log/slog"
	"os"
	"sync"
)

var (
	pepperMu   sync.Mutex
	pepper     string
	pepperFile = "pepper"
)

// SetPepperPath sets the file the pepper is read from (or created in). It
// must be called before the first hash is computed.
func SetPepperPath(file string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	pepperFile = file
	pepper = ""
}

// LoadPepper eagerly loads the pepper so a bad path fails at startup rather
// than on the first login.
func LoadPepper() error {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	return loadPepperLocked()
}

// GetPepper returns the server-wide pepper appended to every password before
// hashing.
func GetPepper() string {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	if pepper != "" {
		return pepper
	}
	if err := loadPepperLocked(); err != nil {
		slog.Error("failed to load or generate pepper", slog.Any("err", err))
		os.Exit(1)
	}
	return pepper
}

func loadPepperLocked() error {
	b, err := LoadOrCreateFile(pepperFile, func() ([]byte, error) {
		return RandomSecret(keyLength)
	})
	if err != nil {
		return err
	}
	pepper = string(b)
	return nil
}
