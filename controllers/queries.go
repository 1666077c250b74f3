package controllers

import (
	"errors"
	"fmt"
	"math"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lingo/middleware"
	"lingo/models"
)

// Shared read paths over the gameplay tables. Reads that several handlers
// resolve while assembling one response go through the request cache so a
// single request always sees one consistent snapshot.

func getUserProgress(c *fiber.Ctx, db *gorm.DB, userID uint) (*models.UserProgress, error) {
	v, err := middleware.Cache(c).Memo(fmt.Sprintf("userProgress:%d", userID), func() (interface{}, error) {
		var progress models.UserProgress
		if err := db.Where("user_id = ?", userID).First(&progress).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return (*models.UserProgress)(nil), nil
			}
			return nil, err
		}
		return &progress, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.UserProgress), nil
}

func getUserSubscription(c *fiber.Ctx, db *gorm.DB, userID uint) (*models.UserSubscription, error) {
	v, err := middleware.Cache(c).Memo(fmt.Sprintf("userSubscription:%d", userID), func() (interface{}, error) {
		var sub models.UserSubscription
		if err := db.Where("user_id = ?", userID).First(&sub).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return (*models.UserSubscription)(nil), nil
			}
			return nil, err
		}
		return &sub, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.UserSubscription), nil
}

// getUnitsWithProgress loads the active course's units, lessons and
// challenges in display order, with the caller's progress rows attached to
// each challenge.
func getUnitsWithProgress(db *gorm.DB, courseID, userID uint) ([]models.Unit, error) {
	var units []models.Unit
	err := db.Where("course_id = ?", courseID).
		Order("\"order\" ASC").
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("\"order\" ASC")
		}).
		Preload("Lessons.Challenges", func(db *gorm.DB) *gorm.DB {
			return db.Order("\"order\" ASC")
		}).
		Preload("Lessons.Challenges.Progress", "user_id = ?", userID).
		Find(&units).Error
	if err != nil {
		return nil, err
	}
	return units, nil
}

// activeLesson walks the ordered units and returns the first lesson with an
// uncompleted challenge, or nil when the whole course is done.
func activeLesson(units []models.Unit) *models.Lesson {
	for i := range units {
		for j := range units[i].Lessons {
			lesson := &units[i].Lessons[j]
			for k := range lesson.Challenges {
				if !lesson.Challenges[k].Completed() {
					return lesson
				}
			}
		}
	}
	return nil
}

// getCourseActiveLesson resolves the caller's first uncompleted lesson in
// their active course, memoized per request.
func getCourseActiveLesson(c *fiber.Ctx, db *gorm.DB, userID uint) (*models.Lesson, error) {
	v, err := middleware.Cache(c).Memo(fmt.Sprintf("activeLesson:%d", userID), func() (interface{}, error) {
		progress, err := getUserProgress(c, db, userID)
		if err != nil {
			return nil, err
		}
		if progress == nil || progress.ActiveCourseID == nil {
			return (*models.Lesson)(nil), nil
		}

		units, err := getUnitsWithProgress(db, *progress.ActiveCourseID, userID)
		if err != nil {
			return nil, err
		}
		return activeLesson(units), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Lesson), nil
}

// getLessonWithProgress loads one lesson with ordered challenges, their
// options and the caller's progress rows.
func getLessonWithProgress(db *gorm.DB, lessonID, userID uint) (*models.Lesson, error) {
	var lesson models.Lesson
	err := db.
		Preload("Challenges", func(db *gorm.DB) *gorm.DB {
			return db.Order("\"order\" ASC")
		}).
		Preload("Challenges.Options").
		Preload("Challenges.Progress", "user_id = ?", userID).
		First(&lesson, lessonID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lesson, nil
}

// lessonPercentage is the rounded share of completed challenges. Empty
// lessons sit at zero.
func lessonPercentage(lesson *models.Lesson) float64 {
	if lesson == nil || len(lesson.Challenges) == 0 {
		return 0
	}
	completed := 0
	for i := range lesson.Challenges {
		if lesson.Challenges[i].Completed() {
			completed++
		}
	}
	return math.Round(float64(completed) / float64(len(lesson.Challenges)) * 100)
}
