package models

import "gorm.io/gorm"

const (
	MaxHearts          = 5
	PointsPerChallenge = 10
)

// UserProgress is the single per-user gameplay row: which course is active,
// how many hearts and points the learner holds, and the denormalized display
// fields shown on the leaderboard.
type UserProgress struct {
	gorm.Model
	UserID         uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	ActiveCourseID *uint  `json:"active_course_id"`
	Hearts         int    `gorm:"not null;default:5" json:"hearts"`
	Points         int    `gorm:"not null;default:0" json:"points"`
	UserName       string `json:"user_name"`
	UserImageSrc   string `json:"user_image_src"`
}

// ChallengeProgress records one completion attempt for a (user, challenge)
// pair. Its mere existence marks later attempts on the challenge as practice.
type ChallengeProgress struct {
	gorm.Model
	UserID      uint `gorm:"not null;index:idx_challenge_progress_user_challenge" json:"user_id"`
	ChallengeID uint `gorm:"not null;index:idx_challenge_progress_user_challenge" json:"challenge_id"`
	Completed   bool `gorm:"not null;default:false" json:"completed"`
}
