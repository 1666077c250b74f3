package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"lingo/config"
	"lingo/database"
	"lingo/models"
	"lingo/routes"
	"lingo/utils"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:           "test-secret",
		PointsToRefill:      50,
		StripeWebhookSecret: "whsec_test",
		AdminUserIDs:        []uint{1},
	}

	app := fiber.New()
	routes.SetupRoutes(app, db, cfg)

	return &testEnv{app: app, db: db, cfg: cfg}
}

// createUser inserts a user row and returns its id and a bearer token.
func (e *testEnv) createUser(t *testing.T, username string) (uint, string) {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, e.db.Create(&user).Error)

	token, err := utils.GenerateJWTToken(user.ID, e.cfg)
	require.NoError(t, err)

	return user.ID, "Bearer " + token
}

// createProgress seeds a user progress row.
func (e *testEnv) createProgress(t *testing.T, userID, courseID uint, hearts, points int) {
	t.Helper()

	progress := models.UserProgress{
		UserID:       userID,
		Hearts:       hearts,
		Points:       points,
		UserName:     "Test",
		UserImageSrc: "/mascot.svg",
	}
	if courseID != 0 {
		progress.ActiveCourseID = &courseID
	}
	require.NoError(t, e.db.Create(&progress).Error)
}

// seedCourse builds one course with a unit, a lesson and n challenges of two
// options each (the first option is the correct one). Returns the course,
// lesson and challenge ids.
func (e *testEnv) seedCourse(t *testing.T, n int) (courseID, lessonID uint, challengeIDs []uint) {
	t.Helper()

	course := models.Course{Title: "Spanish", ImageSrc: "/es.svg"}
	require.NoError(t, e.db.Create(&course).Error)

	unit := models.Unit{CourseID: course.ID, Title: "Unit 1", Description: "Basics", Order: 1}
	require.NoError(t, e.db.Create(&unit).Error)

	lesson := models.Lesson{UnitID: unit.ID, Title: "Nouns", Order: 1}
	require.NoError(t, e.db.Create(&lesson).Error)

	for i := 0; i < n; i++ {
		challenge := models.Challenge{
			LessonID: lesson.ID,
			Type:     models.ChallengeTypeSelect,
			Question: "Which one of these is \"the man\"?",
			Order:    i + 1,
		}
		require.NoError(t, e.db.Create(&challenge).Error)

		correct := models.ChallengeOption{ChallengeID: challenge.ID, Text: "el hombre", Correct: true}
		wrong := models.ChallengeOption{ChallengeID: challenge.ID, Text: "la mujer", Correct: false}
		require.NoError(t, e.db.Create(&correct).Error)
		require.NoError(t, e.db.Create(&wrong).Error)

		challengeIDs = append(challengeIDs, challenge.ID)
	}

	return course.ID, lesson.ID, challengeIDs
}

// request runs one JSON request through the app and decodes the body.
func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}

	return resp.StatusCode, decoded
}

func (e *testEnv) userProgress(t *testing.T, userID uint) models.UserProgress {
	t.Helper()

	var progress models.UserProgress
	require.NoError(t, e.db.Where("user_id = ?", userID).First(&progress).Error)
	return progress
}
