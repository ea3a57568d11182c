package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/medisight/medisight-go/internal/database"
	"github.com/medisight/medisight-go/internal/middleware"
	"github.com/medisight/medisight-go/internal/models"
)

func newAuthRouter(t *testing.T) (*gin.Engine, pgxmock.PgxPoolIface, *middleware.AuthMiddleware) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	am := middleware.NewAuthMiddleware("test-secret")
	handler := NewAuthHandler(database.NewClinicianRepository(mockPool), am, time.Hour, testLogger())

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/auth/login", handler.Login)
	return router, mockPool, am
}

func postLogin(router *gin.Engine, email, password string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(models.LoginRequest{Email: email, Password: password})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func clinicianRow(t *testing.T, password string) *pgxmock.Rows {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return pgxmock.NewRows([]string{"id", "email", "password_hash", "full_name", "role", "created_at"}).
		AddRow("clin-1", "doc@hospital.test", string(hash), "Dr. Example", "physician", time.Now())
}

func TestAuthHandler_Login(t *testing.T) {
	router, mockPool, am := newAuthRouter(t)
	mockPool.ExpectQuery("FROM clinicians").
		WithArgs("doc@hospital.test").
		WillReturnRows(clinicianRow(t, "correct-horse"))

	w := postLogin(router, "doc@hospital.test", "correct-horse")

	require.Equal(t, http.StatusOK, w.Code)

	var response models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "physician", response.Clinician.Role)
	assert.Empty(t, response.Clinician.PasswordHash)

	claims, err := am.ValidateToken(response.Token)
	require.NoError(t, err)
	assert.Equal(t, "clin-1", claims.ClinicianID)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	router, mockPool, _ := newAuthRouter(t)
	mockPool.ExpectQuery("FROM clinicians").
		WithArgs("doc@hospital.test").
		WillReturnRows(clinicianRow(t, "correct-horse"))

	w := postLogin(router, "doc@hospital.test", "wrong-password")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")
}

func TestAuthHandler_Login_UnknownEmail(t *testing.T) {
	router, mockPool, _ := newAuthRouter(t)
	mockPool.ExpectQuery("FROM clinicians").
		WithArgs("nobody@hospital.test").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	w := postLogin(router, "nobody@hospital.test", "whatever")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Login_InvalidBody(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(`{"email": "not-an-email"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
