package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lingo/config"
	"lingo/middleware"
	"lingo/utils"
)

type LearnController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewLearnController(db *gorm.DB, cfg *config.Config) *LearnController {
	return &LearnController{DB: db, Cfg: cfg}
}

// GetUnits returns the active course's units with per-lesson and
// per-challenge completion for the learning dashboard.
func (lc *LearnController) GetUnits(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	progress, err := getUserProgress(c, lc.DB, userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if progress == nil || progress.ActiveCourseID == nil {
		return c.JSON(fiber.Map{"units": []fiber.Map{}})
	}

	units, err := getUnitsWithProgress(lc.DB, *progress.ActiveCourseID, userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(units))
	for i := range units {
		unit := &units[i]
		lessons := make([]fiber.Map, 0, len(unit.Lessons))
		for j := range unit.Lessons {
			lesson := &unit.Lessons[j]
			lessons = append(lessons, fiber.Map{
				"id":        lesson.ID,
				"title":     lesson.Title,
				"order":     lesson.Order,
				"completed": lesson.Completed(),
			})
		}
		result = append(result, fiber.Map{
			"id":          unit.ID,
			"title":       unit.Title,
			"description": unit.Description,
			"order":       unit.Order,
			"lessons":     lessons,
		})
	}

	return c.JSON(fiber.Map{"units": result})
}

// GetCourseProgress points at the first uncompleted lesson of the active
// course.
func (lc *LearnController) GetCourseProgress(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	lesson, err := getCourseActiveLesson(c, lc.DB, userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if lesson == nil {
		return c.JSON(fiber.Map{"active_lesson_id": nil})
	}

	return c.JSON(fiber.Map{
		"active_lesson_id": lesson.ID,
		"unit_id":          lesson.UnitID,
		"title":            lesson.Title,
	})
}

// GetLesson loads a lesson (by id, or the active one without an id) with its
// ordered challenges, options and completion flags.
func (lc *LearnController) GetLesson(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var lessonID uint
	if param := c.Params("id"); param != "" {
		id, err := strconv.Atoi(param)
		if err != nil {
			return utils.BadRequest(c, "Invalid lesson ID")
		}
		lessonID = uint(id)
	} else {
		active, err := getCourseActiveLesson(c, lc.DB, userID)
		if err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}
		if active == nil {
			return utils.NotFound(c, "No active lesson")
		}
		lessonID = active.ID
	}

	lesson, err := getLessonWithProgress(lc.DB, lessonID, userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if lesson == nil {
		return utils.NotFound(c, "Lesson not found")
	}

	challenges := make([]fiber.Map, 0, len(lesson.Challenges))
	for i := range lesson.Challenges {
		ch := &lesson.Challenges[i]
		challenges = append(challenges, fiber.Map{
			"id":        ch.ID,
			"type":      ch.Type,
			"question":  ch.Question,
			"order":     ch.Order,
			"completed": ch.Completed(),
			"options":   ch.Options,
		})
	}

	return c.JSON(fiber.Map{
		"id":         lesson.ID,
		"unit_id":    lesson.UnitID,
		"title":      lesson.Title,
		"challenges": challenges,
	})
}

// GetLessonPercentage reports the active lesson's completion percentage.
func (lc *LearnController) GetLessonPercentage(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	active, err := getCourseActiveLesson(c, lc.DB, userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if active == nil {
		return c.JSON(fiber.Map{"percentage": 0})
	}

	lesson, err := getLessonWithProgress(lc.DB, active.ID, userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"percentage": lessonPercentage(lesson)})
}
