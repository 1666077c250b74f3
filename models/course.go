package models

import "gorm.io/gorm"

// Challenge types: SELECT shows the question directly, ASSIST asks the
// learner to pick the meaning of the prompt.
const (
	ChallengeTypeSelect = "SELECT"
	ChallengeTypeAssist = "ASSIST"
)

type Course struct {
	gorm.Model
	Title    string `gorm:"not null" json:"title"`
	ImageSrc string `json:"image_src"`
	Units    []Unit `gorm:"constraint:OnDelete:CASCADE" json:"units,omitempty"`
}

type Unit struct {
	gorm.Model
	CourseID    uint     `gorm:"not null;index" json:"course_id"`
	Title       string   `gorm:"not null" json:"title"`
	Description string   `json:"description"`
	Order       int      `gorm:"not null" json:"order"`
	Lessons     []Lesson `gorm:"constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
}

type Lesson struct {
	gorm.Model
	UnitID     uint        `gorm:"not null;index" json:"unit_id"`
	Title      string      `gorm:"not null" json:"title"`
	Order      int         `gorm:"not null" json:"order"`
	Challenges []Challenge `gorm:"constraint:OnDelete:CASCADE" json:"challenges,omitempty"`
}

type Challenge struct {
	gorm.Model
	LessonID uint                `gorm:"not null;index" json:"lesson_id"`
	Type     string              `gorm:"not null" json:"type"`
	Question string              `gorm:"not null" json:"question"`
	Order    int                 `gorm:"not null" json:"order"`
	Options  []ChallengeOption   `gorm:"constraint:OnDelete:CASCADE" json:"options,omitempty"`
	Progress []ChallengeProgress `gorm:"constraint:OnDelete:CASCADE" json:"progress,omitempty"`
}

type ChallengeOption struct {
	gorm.Model
	ChallengeID uint   `gorm:"not null;index" json:"challenge_id"`
	Text        string `gorm:"not null" json:"text"`
	Correct     bool   `gorm:"not null" json:"correct"`
	ImageSrc    string `json:"image_src"`
	AudioSrc    string `json:"audio_src"`
}

// Completed reports whether every progress row for this challenge is marked
// completed. Re-attempts can leave more than one row per (user, challenge)
// pair; completion requires unanimity. No rows means not completed.
func (ch *Challenge) Completed() bool {
	if len(ch.Progress) == 0 {
		return false
	}
	for _, p := range ch.Progress {
		if !p.Completed {
			return false
		}
	}
	return true
}

// Completed reports whether every challenge in the lesson is completed.
// A lesson with no challenges counts as incomplete.
func (l *Lesson) Completed() bool {
	if len(l.Challenges) == 0 {
		return false
	}
	for i := range l.Challenges {
		if !l.Challenges[i].Completed() {
			return false
		}
	}
	return true
}
