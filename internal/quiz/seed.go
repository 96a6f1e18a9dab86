package quiz

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed seed/quizzes.json
var defaultSeed []byte

// DefaultSeed returns the bundled quiz set used on first run.
func DefaultSeed() ([]Quiz, error) {
	return decodeSeed(defaultSeed)
}

// LoadSeed reads a seed file, falling back to the bundled set when path is empty.
func LoadSeed(path string) ([]Quiz, error) {
	if path == "" {
		return DefaultSeed()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return decodeSeed(data)
}

func decodeSeed(data []byte) ([]Quiz, error) {
	var quizzes []Quiz
	if err := json.Unmarshal(data, &quizzes); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return quizzes, nil
}
