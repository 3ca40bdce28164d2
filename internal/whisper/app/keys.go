package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/whisper/pkg/jwtx"
)

// InitKeys loads the signing keys named in cfg.
//
// With a key file, the key is read from disk (or generated and written on
// first start), so tokens survive restarts. Without one the key only lives
// in memory and every token dies with the process.
func InitKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	if cfg.KeyFile == "" {
		km, err := jwtx.NewEphemeralKeyManager(cfg.Algorithm, cfg.Issuer)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ephemeral key manager: %w", err)
		}
		logger.Warn("no key file configured, tokens will not survive a restart",
			"algorithm", km.Algorithm(),
			"kid", km.ActiveKID(),
		)
		return km, nil
	}

	km, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{
		Algorithm:       cfg.Algorithm,
		Issuer:          cfg.Issuer,
		KeyFile:         cfg.KeyFile,
		RetiredKeyFiles: cfg.RetiredKeyFiles,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize key manager: %w", err)
	}

	logger.Info("signing keys loaded",
		"algorithm", km.Algorithm(),
		"kid", km.ActiveKID(),
		"verify_only", len(cfg.RetiredKeyFiles),
		"issuer", km.Issuer(),
	)
	return km, nil
}
