package model

import "time"

// GameLog records one answered card outside of homework.
type GameLog struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"log_id,string"`
	UserID     uint64    `gorm:"index;not null" json:"user_id,string"`
	TermID     uint64    `gorm:"not null" json:"term_id,string"`
	DatasetID  uint64    `gorm:"not null" json:"dataset_id,string"`
	WasCorrect bool      `gorm:"not null" json:"was_correct"`
	Attempts   int       `gorm:"not null;default:1" json:"attempts"`
	Source     string    `gorm:"size:20;not null;default:'game'" json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}

func (GameLog) TableName() string {
	return "game_logs"
}

type UserStats struct {
	UserID           uint64    `gorm:"primaryKey;autoIncrement:false" json:"-"`
	LanguagePairCode string    `gorm:"primaryKey;size:21" json:"language_pair_code"`
	Wins             int       `gorm:"not null;default:0" json:"wins"`
	Losses           int       `gorm:"not null;default:0" json:"losses"`
	CurrentStreak    int       `gorm:"not null;default:0" json:"current_streak"`
	BestStreak       int       `gorm:"not null;default:0" json:"best_streak"`
	UpdatedAt        time.Time `json:"-"`
}

func (UserStats) TableName() string {
	return "user_stats"
}

// Record applies one game outcome: a win extends the streak, a loss resets it.
func (s *UserStats) Record(correct bool) {
	if correct {
		s.Wins++
		s.CurrentStreak++
		if s.CurrentStreak > s.BestStreak {
			s.BestStreak = s.CurrentStreak
		}
		return
	}
	s.Losses++
	s.CurrentStreak = 0
}
