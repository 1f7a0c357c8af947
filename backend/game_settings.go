package main

type PlayerType int

const (
	PlayerHuman PlayerType = iota
	PlayerAI
)

type GameSettings struct {
	WhiteType  PlayerType `json:"-"`
	BlackType  PlayerType `json:"-"`
	Difficulty string     `json:"difficulty"`
}

func DefaultGameSettings() GameSettings {
	return GameSettings{
		WhiteType:  PlayerHuman,
		BlackType:  PlayerAI,
		Difficulty: "normal",
	}
}

// DepthForDifficulty maps a difficulty tier to a search depth; unknown
// tiers fall back to the configured default.
func DepthForDifficulty(difficulty string) int {
	switch difficulty {
	case "easy":
		return 2
	case "normal":
		return 3
	case "hard":
		return 4
	default:
		return GetConfig().AiDepth
	}
}
