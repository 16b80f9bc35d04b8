package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskforge/task-assignment-api/internal/constants"
	"github.com/taskforge/task-assignment-api/internal/database"
	"github.com/taskforge/task-assignment-api/internal/models"
	"github.com/taskforge/task-assignment-api/internal/repository"
	"github.com/taskforge/task-assignment-api/internal/services"
)

// APITaskHandlerTestSuite defines the test suite for APITaskHandler
type APITaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *APITaskHandler

	admin *models.User
	user  *models.User
}

// SetupTest runs before each test
func (suite *APITaskHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.User{}, &models.Task{})
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	userRepo := repository.NewUserRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	taskService := services.NewTaskService(taskRepo, userRepo)

	suite.handler = NewAPITaskHandler(taskService, newTestLogger())

	gin.SetMode(gin.TestMode)

	suite.admin = suite.createTestUser("manager", models.RoleAdmin)
	suite.user = suite.createTestUser("worker", models.RoleUser)
}

// TearDownTest runs after each test
func (suite *APITaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *APITaskHandlerTestSuite) createTestUser(username string, role models.Role) *models.User {
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
		Role:         role,
	}
	suite.db.Create(user)
	return user
}

func (suite *APITaskHandlerTestSuite) createTestTask(title string, assignedTo *models.User, status models.TaskStatus) *models.Task {
	task := &models.Task{
		Title:        title,
		Description:  "Test Description",
		AssignedToID: assignedTo.ID,
		AssignedByID: &suite.admin.ID,
		DueDate:      time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		Status:       status,
	}
	suite.db.Create(task)
	return task
}

// Helper function to create a token-authenticated context, simulating the
// RequireToken middleware.
func (suite *APITaskHandlerTestSuite) createAuthContext(method, url string, body []byte, user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, user.ID)
	c.Set(constants.ContextKeyUser, user)

	return c, w
}

func (suite *APITaskHandlerTestSuite) TestMyTasks_Success() {
	suite.createTestTask("Mine", suite.user, models.TaskStatusPending)
	other := suite.createTestUser("worker2", models.RoleUser)
	suite.createTestTask("Not mine", other, models.TaskStatusPending)

	c, w := suite.createAuthContext("GET", "/api/my-tasks", nil, suite.user)

	suite.handler.MyTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Contains(response, "tasks")
	suite.Require().Contains(response, "pagination")

	tasks := response["tasks"].([]interface{})
	suite.Require().Len(tasks, 1)
	first := tasks[0].(map[string]interface{})
	assert.Equal(suite.T(), "Mine", first["title"])
	assert.Equal(suite.T(), "worker", first["assigned_to"].(map[string]interface{})["username"])
}

func (suite *APITaskHandlerTestSuite) TestMyTasks_OrderedByUpdate() {
	older := suite.createTestTask("Older", suite.user, models.TaskStatusPending)
	suite.createTestTask("Newer", suite.user, models.TaskStatusPending)

	suite.db.Model(older).Update("updated_at", time.Now().Add(-time.Hour))

	c, w := suite.createAuthContext("GET", "/api/my-tasks", nil, suite.user)

	suite.handler.MyTasks(c)

	suite.Require().Equal(http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	tasks := response["tasks"].([]interface{})
	suite.Require().Len(tasks, 2)
	assert.Equal(suite.T(), "Newer", tasks[0].(map[string]interface{})["title"])
}

func (suite *APITaskHandlerTestSuite) TestUpdateTask_Success() {
	suite.createTestTask("Deploy", suite.user, models.TaskStatusPending)

	body, _ := json.Marshal(gin.H{"status": "in_progress"})
	c, w := suite.createAuthContext("PATCH", "/api/tasks/1/update", body, suite.user)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "in_progress", response["status"])
}

func (suite *APITaskHandlerTestSuite) TestUpdateTask_CompleteRequiresReportAndHours() {
	suite.createTestTask("Deploy", suite.user, models.TaskStatusInProgress)

	body, _ := json.Marshal(gin.H{"status": "completed"})
	c, w := suite.createAuthContext("PATCH", "/api/tasks/1/update", body, suite.user)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	details := response["details"].(map[string]interface{})
	assert.Len(suite.T(), details["missing"], 2)
}

func (suite *APITaskHandlerTestSuite) TestUpdateTask_Complete() {
	suite.createTestTask("Deploy", suite.user, models.TaskStatusInProgress)

	body, _ := json.Marshal(gin.H{
		"status":            "completed",
		"completion_report": "All services migrated.",
		"worked_hours":      6.5,
	})
	c, w := suite.createAuthContext("PATCH", "/api/tasks/1/update", body, suite.user)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateTask(c)

	suite.Require().Equal(http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "completed", response["status"])
	assert.Equal(suite.T(), 6.5, response["worked_hours"])
}

func (suite *APITaskHandlerTestSuite) TestUpdateTask_CompletedIsTerminal() {
	task := suite.createTestTask("Deploy", suite.user, models.TaskStatusCompleted)
	report := "Done."
	hours := 2.0
	suite.db.Model(task).Updates(map[string]interface{}{
		"completion_report": report,
		"worked_hours":      hours,
	})

	body, _ := json.Marshal(gin.H{"status": "in_progress"})
	c, w := suite.createAuthContext("PATCH", "/api/tasks/1/update", body, suite.user)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

func (suite *APITaskHandlerTestSuite) TestUpdateTask_OtherUsersTask() {
	other := suite.createTestUser("worker2", models.RoleUser)
	suite.createTestTask("Not yours", other, models.TaskStatusPending)

	body, _ := json.Marshal(gin.H{"status": "in_progress"})
	c, w := suite.createAuthContext("PATCH", "/api/tasks/1/update", body, suite.user)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "You can only update tasks assigned to you.", response["message"])
}

func (suite *APITaskHandlerTestSuite) TestUpdateTask_NotFound() {
	body, _ := json.Marshal(gin.H{"status": "in_progress"})
	c, w := suite.createAuthContext("PATCH", "/api/tasks/99/update", body, suite.user)
	c.Params = gin.Params{{Key: "id", Value: "99"}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *APITaskHandlerTestSuite) TestUpdateTask_InvalidStatus() {
	suite.createTestTask("Deploy", suite.user, models.TaskStatusPending)

	body, _ := json.Marshal(gin.H{"status": "archived"})
	c, w := suite.createAuthContext("PATCH", "/api/tasks/1/update", body, suite.user)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *APITaskHandlerTestSuite) TestCompletedTasks_AdminScope() {
	done := suite.createTestTask("Done", suite.user, models.TaskStatusCompleted)
	report := "Shipped."
	hours := 3.0
	suite.db.Model(done).Updates(map[string]interface{}{
		"completion_report": report,
		"worked_hours":      hours,
	})
	suite.createTestTask("Open", suite.user, models.TaskStatusPending)

	c, w := suite.createAuthContext("GET", "/api/tasks/completed", nil, suite.admin)

	suite.handler.CompletedTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	tasks := response["tasks"].([]interface{})
	suite.Require().Len(tasks, 1)
	first := tasks[0].(map[string]interface{})
	assert.Equal(suite.T(), "Done", first["title"])
	assert.Equal(suite.T(), "Shipped.", first["completion_report"])
}

func (suite *APITaskHandlerTestSuite) TestCompletedTasks_UserForbidden() {
	c, w := suite.createAuthContext("GET", "/api/tasks/completed", nil, suite.user)

	suite.handler.CompletedTasks(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestAPITaskHandlerTestSuite runs the test suite
func TestAPITaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(APITaskHandlerTestSuite))
}
