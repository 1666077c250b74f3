package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lingo/config"
	"lingo/middleware"
	"lingo/models"
	"lingo/utils"
)

type CoursesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg}
}

// GetCourses lists every course plus the caller's active one.
func (cc *CoursesController) GetCourses(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var courses []models.Course
	if err := cc.DB.Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	progress, err := getUserProgress(c, cc.DB, userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var activeCourseID *uint
	if progress != nil {
		activeCourseID = progress.ActiveCourseID
	}

	return c.JSON(fiber.Map{
		"courses":          courses,
		"active_course_id": activeCourseID,
	})
}

// SelectCourse enrolls the caller in a course, creating or retargeting their
// progress row. The course must exist and actually contain content before
// anything is written.
func (cc *CoursesController) SelectCourse(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	err = cc.DB.
		Preload("Units", func(db *gorm.DB) *gorm.DB {
			return db.Order("\"order\" ASC")
		}).
		Preload("Units.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("\"order\" ASC")
		}).
		First(&course, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if len(course.Units) == 0 || len(course.Units[0].Lessons) == 0 {
		return utils.BadRequest(c, "Course is empty")
	}

	var user models.User
	if err := cc.DB.First(&user, userID).Error; err != nil {
		return utils.Unauthorized(c, "User not found")
	}

	userName := user.Username
	if userName == "" {
		userName = "User"
	}
	userImage := user.ImageSrc
	if userImage == "" {
		userImage = "/mascot.svg"
	}

	cid := uint(courseID)

	var progress models.UserProgress
	err = cc.DB.Where("user_id = ?", userID).First(&progress).Error
	switch {
	case err == nil:
		// Already enrolled somewhere: retarget the active course and
		// refresh the denormalized display fields in one statement.
		err = cc.DB.Model(&models.UserProgress{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"active_course_id": cid,
				"user_name":        userName,
				"user_image_src":   userImage,
			}).Error
		if err != nil {
			return utils.InternalServerError(c, "Could not update progress")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		progress = models.UserProgress{
			UserID:         userID,
			ActiveCourseID: &cid,
			Hearts:         models.MaxHearts,
			Points:         0,
			UserName:       userName,
			UserImageSrc:   userImage,
		}
		if err := cc.DB.Create(&progress).Error; err != nil {
			return utils.InternalServerError(c, "Could not create progress")
		}
	default:
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{
		"message":  "Course selected",
		"redirect": "/learn",
	})
}
