package config

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty names one of the AI opponent's tuning tiers.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties returns the tiers from easiest to hardest.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// ParseDifficulty resolves a tier name. The empty string selects medium.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyMedium, "":
		return DifficultyMedium, nil
	case DifficultyHard:
		return DifficultyHard, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (want easy, medium or hard)", s)
	}
}

// DefaultTiers returns the built-in tuning table. Harder tiers aim better,
// look further ahead and stay closer to the center when defending.
func DefaultTiers() map[Difficulty]Tier {
	return map[Difficulty]Tier{
		DifficultyEasy: {
			Interval:        time.Second,
			Imperfection:    60,
			PredictionDepth: 1,
			DefensiveOffset: 60,
		},
		DifficultyMedium: {
			Interval:        time.Second,
			Imperfection:    30,
			PredictionDepth: 2,
			DefensiveOffset: 40,
		},
		DifficultyHard: {
			Interval:        time.Second,
			Imperfection:    10,
			PredictionDepth: 4,
			DefensiveOffset: 20,
		},
	}
}
