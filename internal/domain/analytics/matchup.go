package analytics

// Difficulty grades an opponent's defense for the stat being bet.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ClassifyMatchup maps a defensive rank (1 = best defense) to a difficulty.
// Ranks 25 and worse are easy, 15 through 24 medium, better than 15 hard.
// An unknown rank (<= 0) is medium.
func ClassifyMatchup(rank int) Difficulty {
	switch {
	case rank <= 0:
		return DifficultyMedium
	case rank >= 25:
		return DifficultyEasy
	case rank >= 15:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

func (d Difficulty) adjustment() float64 {
	switch d {
	case DifficultyEasy:
		return 10
	case DifficultyHard:
		return -10
	default:
		return 0
	}
}
