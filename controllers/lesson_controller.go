package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lingo/config"
	"lingo/middleware"
	"lingo/models"
	"lingo/quiz"
	"lingo/utils"
)

// LessonController owns the per-learner quiz sessions and drives the
// progression state machine against the economy mutators.
type LessonController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Sessions *quiz.Store
	Mutators quiz.Mutators
}

func NewLessonController(db *gorm.DB, cfg *config.Config, sessions *quiz.Store, mutators quiz.Mutators) *LessonController {
	return &LessonController{DB: db, Cfg: cfg, Sessions: sessions, Mutators: mutators}
}

// StartSession snapshots the lesson and the learner's durable state into a
// fresh session. Replaying a fully-completed lesson silently becomes a
// practice session.
func (lc *LessonController) StartSession(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	progress, err := getUserProgress(c, lc.DB, userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if progress == nil {
		return utils.BadRequest(c, "User progress not found")
	}

	lesson, err := getLessonWithProgress(lc.DB, uint(lessonID), userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if lesson == nil {
		return utils.NotFound(c, "Lesson not found")
	}
	if len(lesson.Challenges) == 0 {
		return utils.BadRequest(c, "Lesson has no challenges")
	}

	challenges := make([]quiz.Challenge, 0, len(lesson.Challenges))
	for i := range lesson.Challenges {
		ch := &lesson.Challenges[i]
		options := make([]quiz.Option, 0, len(ch.Options))
		for _, opt := range ch.Options {
			options = append(options, quiz.Option{
				ID:       opt.ID,
				Text:     opt.Text,
				Correct:  opt.Correct,
				ImageSrc: opt.ImageSrc,
				AudioSrc: opt.AudioSrc,
			})
		}
		challenges = append(challenges, quiz.Challenge{
			ID:        ch.ID,
			Type:      ch.Type,
			Question:  ch.Question,
			Completed: ch.Completed(),
			Options:   options,
		})
	}

	session := quiz.NewSession(
		userID,
		lesson.ID,
		challenges,
		progress.Hearts,
		lessonPercentage(lesson),
		models.MaxHearts,
		models.PointsPerChallenge,
	)
	lc.Sessions.Put(userID, session)

	return c.JSON(fiber.Map{
		"state":          session.State(),
		"practice_modal": session.Practice(),
	})
}

// GetSession returns the live session state.
func (lc *LessonController) GetSession(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	session, ok := lc.Sessions.Get(userID)
	if !ok {
		return utils.NotFound(c, "No active session")
	}

	return c.JSON(fiber.Map{"state": session.State()})
}

// SelectOption records an option choice on the current challenge.
func (lc *LessonController) SelectOption(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	session, ok := lc.Sessions.Get(userID)
	if !ok {
		return utils.NotFound(c, "No active session")
	}

	var input struct {
		OptionID uint `json:"option_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	state, err := session.Select(input.OptionID)
	if err != nil {
		return lc.sessionError(c, state, err)
	}

	return c.JSON(fiber.Map{"state": state})
}

// Continue advances the state machine, submitting the answer when one is
// pending.
func (lc *LessonController) Continue(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	session, ok := lc.Sessions.Get(userID)
	if !ok {
		return utils.NotFound(c, "No active session")
	}

	state, err := session.Continue(lc.Mutators)
	if err != nil {
		return lc.sessionError(c, state, err)
	}

	return c.JSON(fiber.Map{"state": state})
}

// ExitSession drops the session; the completion screen's only outgoing
// transition.
func (lc *LessonController) ExitSession(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	lc.Sessions.Delete(userID)
	return c.JSON(fiber.Map{"redirect": "/learn"})
}

func (lc *LessonController) sessionError(c *fiber.Ctx, state quiz.State, err error) error {
	switch {
	case errors.Is(err, quiz.ErrPending):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "submission in flight",
			"state": state,
		})
	case errors.Is(err, quiz.ErrFinished),
		errors.Is(err, quiz.ErrNoSelection),
		errors.Is(err, quiz.ErrAnswerLocked):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"state": state,
		})
	case errors.Is(err, ErrChallengeNotFound), errors.Is(err, ErrProgressNotFound):
		return utils.BadRequest(c, err.Error())
	default:
		return utils.InternalServerError(c, "Something went wrong. Please try again.")
	}
}
