package controllers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lingo/config"
	"lingo/models"
	"lingo/utils"
)

// AdminController is the content-authoring CRUD surface. Each entity gets
// the same read/update/delete/create contract; the admin gate lives in the
// route middleware.
type AdminController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAdminController(db *gorm.DB, cfg *config.Config) *AdminController {
	return &AdminController{DB: db, Cfg: cfg}
}

// getOne answers the entity or JSON null when the row does not exist.
func (ac *AdminController) getOne(c *fiber.Ctx, model interface{}) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid ID")
	}

	if err := ac.DB.First(model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(nil)
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(model)
}

// update shallow-merges the request body over the stored row and returns
// the updated row. Surrogate and bookkeeping columns are not writable.
func (ac *AdminController) update(c *fiber.Ctx, model interface{}) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid ID")
	}

	var body map[string]interface{}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	delete(body, "id")
	delete(body, "created_at")
	delete(body, "updated_at")
	delete(body, "deleted_at")

	if err := ac.DB.First(model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if len(body) > 0 {
		if err := ac.DB.Model(model).Updates(body).Error; err != nil {
			return utils.InternalServerError(c, "Could not update")
		}
	}

	if err := ac.DB.First(model, id).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(model)
}

// remove deletes the row and returns its prior state. Cascades are whatever
// the schema's foreign keys enforce.
func (ac *AdminController) remove(c *fiber.Ctx, model interface{}) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid ID")
	}

	if err := ac.DB.First(model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := ac.DB.Unscoped().Delete(model).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete")
	}
	return c.JSON(model)
}

func (ac *AdminController) create(c *fiber.Ctx, model interface{}) error {
	if err := c.BodyParser(model); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := ac.DB.Create(model).Error; err != nil {
		return utils.InternalServerError(c, "Could not create")
	}
	return c.Status(fiber.StatusCreated).JSON(model)
}

// Courses

func (ac *AdminController) GetCourse(c *fiber.Ctx) error {
	return ac.getOne(c, &models.Course{})
}

func (ac *AdminController) UpdateCourse(c *fiber.Ctx) error {
	return ac.update(c, &models.Course{})
}

func (ac *AdminController) DeleteCourse(c *fiber.Ctx) error {
	return ac.remove(c, &models.Course{})
}

func (ac *AdminController) CreateCourse(c *fiber.Ctx) error {
	return ac.create(c, &models.Course{})
}

// Units

func (ac *AdminController) GetUnit(c *fiber.Ctx) error {
	return ac.getOne(c, &models.Unit{})
}

func (ac *AdminController) UpdateUnit(c *fiber.Ctx) error {
	return ac.update(c, &models.Unit{})
}

func (ac *AdminController) DeleteUnit(c *fiber.Ctx) error {
	return ac.remove(c, &models.Unit{})
}

func (ac *AdminController) CreateUnit(c *fiber.Ctx) error {
	return ac.create(c, &models.Unit{})
}

// Lessons

func (ac *AdminController) GetLesson(c *fiber.Ctx) error {
	return ac.getOne(c, &models.Lesson{})
}

func (ac *AdminController) UpdateLesson(c *fiber.Ctx) error {
	return ac.update(c, &models.Lesson{})
}

func (ac *AdminController) DeleteLesson(c *fiber.Ctx) error {
	return ac.remove(c, &models.Lesson{})
}

func (ac *AdminController) CreateLesson(c *fiber.Ctx) error {
	return ac.create(c, &models.Lesson{})
}

// Challenges

func (ac *AdminController) GetChallenge(c *fiber.Ctx) error {
	return ac.getOne(c, &models.Challenge{})
}

func (ac *AdminController) UpdateChallenge(c *fiber.Ctx) error {
	return ac.update(c, &models.Challenge{})
}

func (ac *AdminController) DeleteChallenge(c *fiber.Ctx) error {
	return ac.remove(c, &models.Challenge{})
}

func (ac *AdminController) CreateChallenge(c *fiber.Ctx) error {
	return ac.create(c, &models.Challenge{})
}

// Challenge options

func (ac *AdminController) GetChallengeOption(c *fiber.Ctx) error {
	return ac.getOne(c, &models.ChallengeOption{})
}

func (ac *AdminController) UpdateChallengeOption(c *fiber.Ctx) error {
	return ac.update(c, &models.ChallengeOption{})
}

func (ac *AdminController) DeleteChallengeOption(c *fiber.Ctx) error {
	return ac.remove(c, &models.ChallengeOption{})
}

func (ac *AdminController) CreateChallengeOption(c *fiber.Ctx) error {
	return ac.create(c, &models.ChallengeOption{})
}
