package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskforge/task-assignment-api/internal/database"
	"github.com/taskforge/task-assignment-api/internal/models"
	"github.com/taskforge/task-assignment-api/internal/repository"
	"github.com/taskforge/task-assignment-api/internal/services"
)

// newTestLogger returns a logger that swallows output during tests.
func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// APIAuthHandlerTestSuite defines the test suite for APIAuthHandler
type APIAuthHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *APIAuthHandler
}

// SetupTest runs before each test
func (suite *APIAuthHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.User{}, &models.Task{})
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	userRepo := repository.NewUserRepository(suite.db)
	authService := services.NewAuthService(userRepo)
	tokenService := services.NewTokenService("test-secret", 15*time.Minute, 24*time.Hour, nil)

	suite.handler = NewAPIAuthHandler(authService, tokenService, newTestLogger())

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *APIAuthHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *APIAuthHandlerTestSuite) createTestUser(username, password string, role models.Role) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	suite.Require().NoError(err)

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
	}
	suite.db.Create(user)
	return user
}

func (suite *APIAuthHandlerTestSuite) createJSONContext(method, url string, payload interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	body, err := json.Marshal(payload)
	suite.Require().NoError(err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func (suite *APIAuthHandlerTestSuite) TestLogin_Success() {
	suite.createTestUser("worker", "password123", models.RoleUser)

	c, w := suite.createJSONContext("POST", "/api/login", gin.H{
		"username": "worker",
		"password": "password123",
	})

	suite.handler.Login(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(suite.T(), response["access_token"])
	assert.NotEmpty(suite.T(), response["refresh_token"])
	assert.Equal(suite.T(), "user", response["role"])
}

func (suite *APIAuthHandlerTestSuite) TestLogin_WrongPassword() {
	suite.createTestUser("worker", "password123", models.RoleUser)

	c, w := suite.createJSONContext("POST", "/api/login", gin.H{
		"username": "worker",
		"password": "wrong",
	})

	suite.handler.Login(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *APIAuthHandlerTestSuite) TestLogin_UnknownUser() {
	c, w := suite.createJSONContext("POST", "/api/login", gin.H{
		"username": "ghost",
		"password": "password123",
	})

	suite.handler.Login(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *APIAuthHandlerTestSuite) TestLogin_MissingFields() {
	c, w := suite.createJSONContext("POST", "/api/login", gin.H{
		"username": "worker",
	})

	suite.handler.Login(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *APIAuthHandlerTestSuite) TestRefresh_Success() {
	suite.createTestUser("manager", "password123", models.RoleAdmin)

	c, w := suite.createJSONContext("POST", "/api/login", gin.H{
		"username": "manager",
		"password": "password123",
	})
	suite.handler.Login(c)
	suite.Require().Equal(http.StatusOK, w.Code)

	var login map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &login))

	c, w = suite.createJSONContext("POST", "/api/token/refresh", gin.H{
		"refresh_token": login["refresh_token"],
	})
	suite.handler.Refresh(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var refreshed map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &refreshed))
	assert.NotEmpty(suite.T(), refreshed["access_token"])
	assert.NotEmpty(suite.T(), refreshed["refresh_token"])
	assert.Equal(suite.T(), "admin", refreshed["role"])
}

func (suite *APIAuthHandlerTestSuite) TestRefresh_InvalidToken() {
	c, w := suite.createJSONContext("POST", "/api/token/refresh", gin.H{
		"refresh_token": "not-a-token",
	})

	suite.handler.Refresh(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestAPIAuthHandlerTestSuite runs the test suite
func TestAPIAuthHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(APIAuthHandlerTestSuite))
}
