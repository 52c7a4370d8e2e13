package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Loader reads a compact catalogue document from some source.
type Loader interface {
	// Load reads and decodes the compact document at src.
	Load(ctx context.Context, src string) ([]CompactProduct, error)
}

// fileLoader implements Loader for local JSON files.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based catalogue loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "seed-loader").Logger(),
	}
}

// Load reads a compact catalogue JSON file.
func (l *fileLoader) Load(ctx context.Context, src string) ([]CompactProduct, error) {
	l.logger.Info().Str("file", src).Msg("loading compact catalogue file")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(src)
	if err != nil {
		l.logger.Error().Err(err).Str("file", src).Msg("failed to read catalogue file")
		return nil, fmt.Errorf("failed to read catalogue file %s: %w", src, err)
	}

	products, err := decodeCompact(data)
	if err != nil {
		l.logger.Error().Err(err).Str("file", src).Msg("failed to decode catalogue file")
		return nil, fmt.Errorf("failed to decode catalogue file %s: %w", src, err)
	}

	l.logger.Info().
		Str("file", src).
		Int("products", len(products)).
		Msg("compact catalogue loaded")

	return products, nil
}

func decodeCompact(data []byte) ([]CompactProduct, error) {
	var products []CompactProduct
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	return products, nil
}
