package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lingo/config"
	"lingo/middleware"
	"lingo/models"
	"lingo/quiz"
	"lingo/utils"
)

// Fatal preconditions of the economy mutators. These are caller programming
// errors, unlike the expected quiz.Outcome branches.
var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrProgressNotFound  = errors.New("user progress not found")
)

type ProgressController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewProgressController(db *gorm.DB, cfg *config.Config) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg}
}

// subscriptionActive reads the caller's subscription row directly; the
// mutators also run from the quiz session outside any HTTP request.
func (pc *ProgressController) subscriptionActive(userID uint) (bool, error) {
	var sub models.UserSubscription
	if err := pc.DB.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return sub.IsActive(time.Now()), nil
}

// isPractice reports whether any progress row already exists for the pair.
// Existence alone marks the attempt as a practice retry.
func (pc *ProgressController) isPractice(userID, challengeID uint) (bool, error) {
	var count int64
	err := pc.DB.Model(&models.ChallengeProgress{}).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		Count(&count).Error
	return count > 0, err
}

// ReduceHearts applies the wrong-answer penalty. Practice retries, active
// subscribers and an already-empty heart pool come back as structured
// outcomes without touching storage. The decrement itself is one conditional
// update so racing sessions cannot push hearts below zero.
func (pc *ProgressController) ReduceHearts(userID, challengeID uint) (quiz.Outcome, error) {
	var challenge models.Challenge
	if err := pc.DB.First(&challenge, challengeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quiz.OutcomeOK, ErrChallengeNotFound
		}
		return quiz.OutcomeOK, err
	}

	practice, err := pc.isPractice(userID, challengeID)
	if err != nil {
		return quiz.OutcomeOK, err
	}
	if practice {
		return quiz.OutcomePractice, nil
	}

	var progress models.UserProgress
	if err := pc.DB.Where("user_id = ?", userID).First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quiz.OutcomeOK, ErrProgressNotFound
		}
		return quiz.OutcomeOK, err
	}

	active, err := pc.subscriptionActive(userID)
	if err != nil {
		return quiz.OutcomeOK, err
	}
	if active {
		return quiz.OutcomeSubscription, nil
	}

	if progress.Hearts == 0 {
		return quiz.OutcomeHearts, nil
	}

	err = pc.DB.Model(&models.UserProgress{}).
		Where("user_id = ? AND hearts > 0", userID).
		UpdateColumn("hearts", gorm.Expr("hearts - 1")).Error
	if err != nil {
		return quiz.OutcomeOK, err
	}

	return quiz.OutcomeOK, nil
}

// CompleteChallenge records a correct answer: first completions insert the
// progress row and award points, practice retries re-mark the existing rows,
// heal one heart and still award points. A fresh attempt with no hearts left
// is refused unless the learner subscribes.
func (pc *ProgressController) CompleteChallenge(userID, challengeID uint) (quiz.Outcome, error) {
	var challenge models.Challenge
	if err := pc.DB.First(&challenge, challengeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quiz.OutcomeOK, ErrChallengeNotFound
		}
		return quiz.OutcomeOK, err
	}

	practice, err := pc.isPractice(userID, challengeID)
	if err != nil {
		return quiz.OutcomeOK, err
	}

	var progress models.UserProgress
	if err := pc.DB.Where("user_id = ?", userID).First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quiz.OutcomeOK, ErrProgressNotFound
		}
		return quiz.OutcomeOK, err
	}

	active, err := pc.subscriptionActive(userID)
	if err != nil {
		return quiz.OutcomeOK, err
	}

	if !practice && progress.Hearts == 0 && !active {
		return quiz.OutcomeHearts, nil
	}

	if practice {
		err = pc.DB.Model(&models.ChallengeProgress{}).
			Where("user_id = ? AND challenge_id = ?", userID, challengeID).
			Update("completed", true).Error
		if err != nil {
			return quiz.OutcomeOK, err
		}
		err = pc.DB.Model(&models.UserProgress{}).
			Where("user_id = ? AND hearts < ?", userID, models.MaxHearts).
			UpdateColumn("hearts", gorm.Expr("hearts + 1")).Error
		if err != nil {
			return quiz.OutcomeOK, err
		}
	} else {
		row := models.ChallengeProgress{
			UserID:      userID,
			ChallengeID: challengeID,
			Completed:   true,
		}
		if err := pc.DB.Create(&row).Error; err != nil {
			return quiz.OutcomeOK, err
		}
	}

	err = pc.DB.Model(&models.UserProgress{}).
		Where("user_id = ?", userID).
		UpdateColumn("points", gorm.Expr("points + ?", models.PointsPerChallenge)).Error
	if err != nil {
		return quiz.OutcomeOK, err
	}

	return quiz.OutcomeOK, nil
}

// ReduceHeartsHandler is the HTTP face of ReduceHearts.
func (pc *ProgressController) ReduceHeartsHandler(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	challengeID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid challenge ID")
	}

	outcome, err := pc.ReduceHearts(userID, uint(challengeID))
	if err != nil {
		return pc.mutatorError(c, err)
	}

	if outcome != quiz.OutcomeOK {
		return c.JSON(fiber.Map{"error": string(outcome)})
	}
	return c.JSON(fiber.Map{})
}

// CompleteChallengeHandler is the HTTP face of CompleteChallenge.
func (pc *ProgressController) CompleteChallengeHandler(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	challengeID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid challenge ID")
	}

	outcome, err := pc.CompleteChallenge(userID, uint(challengeID))
	if err != nil {
		return pc.mutatorError(c, err)
	}

	if outcome != quiz.OutcomeOK {
		return c.JSON(fiber.Map{"error": string(outcome)})
	}
	return c.JSON(fiber.Map{})
}

func (pc *ProgressController) mutatorError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrChallengeNotFound):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, ErrProgressNotFound):
		return utils.BadRequest(c, err.Error())
	default:
		return utils.InternalServerError(c, "Could not update progress")
	}
}

// RefillHearts trades points for a full heart pool. Every precondition is a
// fatal rejection; the write is one guarded update so a concurrent session
// cannot spend the same points twice.
func (pc *ProgressController) RefillHearts(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	progress, err := getUserProgress(c, pc.DB, userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if progress == nil {
		return utils.BadRequest(c, "User progress not found")
	}
	if progress.Hearts >= models.MaxHearts {
		return utils.BadRequest(c, "Hearts are already full")
	}
	if progress.Points < pc.Cfg.PointsToRefill {
		return utils.BadRequest(c, "Not enough points")
	}

	result := pc.DB.Model(&models.UserProgress{}).
		Where("user_id = ? AND hearts < ? AND points >= ?", userID, models.MaxHearts, pc.Cfg.PointsToRefill).
		Updates(map[string]interface{}{
			"hearts": models.MaxHearts,
			"points": gorm.Expr("points - ?", pc.Cfg.PointsToRefill),
		})
	if result.Error != nil {
		return utils.InternalServerError(c, "Could not update progress")
	}
	if result.RowsAffected == 0 {
		return utils.Conflict(c, "Refill conditions no longer hold")
	}

	return c.JSON(fiber.Map{
		"hearts": models.MaxHearts,
		"points": progress.Points - pc.Cfg.PointsToRefill,
	})
}

// GetShop backs the shop page: the caller's balances and the refill price.
func (pc *ProgressController) GetShop(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	progress, err := getUserProgress(c, pc.DB, userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if progress == nil {
		return utils.BadRequest(c, "User progress not found")
	}

	sub, err := getUserSubscription(c, pc.DB, userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{
		"hearts":              progress.Hearts,
		"points":              progress.Points,
		"refill_cost":         pc.Cfg.PointsToRefill,
		"active_subscription": sub != nil && sub.IsActive(time.Now()),
	})
}

// GetLeaderboard returns the ten highest-scoring learners.
func (pc *ProgressController) GetLeaderboard(c *fiber.Ctx) error {
	if _, ok := middleware.UserID(c); !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var rows []models.UserProgress
	err := pc.DB.Model(&models.UserProgress{}).
		Order("points DESC").
		Limit(10).
		Find(&rows).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	leaderboard := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		leaderboard = append(leaderboard, fiber.Map{
			"user_id":        row.UserID,
			"user_name":      row.UserName,
			"user_image_src": row.UserImageSrc,
			"points":         row.Points,
		})
	}

	return c.JSON(fiber.Map{"leaderboard": leaderboard})
}
