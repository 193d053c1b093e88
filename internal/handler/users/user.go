package users

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"accounts-api/internal/database"
	"accounts-api/internal/dto"
	"accounts-api/internal/middleware"
	"accounts-api/internal/model"
	"accounts-api/internal/password"
	"accounts-api/internal/service"
	"accounts-api/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var (
	generatePassword   = password.Generate
	hashPassword       = password.Hash
	authenticateUser   = service.AuthenticateUser
	createUser         = store.CreateUser
	getUserByID        = store.GetUserByID
	listUsers          = store.ListUsers
	updateUser         = store.UpdateUser
	updateUserPassword = store.UpdateUserPassword
	deleteUser         = store.DeleteUser
)

// storeError 依 store 的 sentinel error 決定 HTTP 狀態碼
func storeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, dto.HTTPError{Message: "user not found"})
	case errors.Is(err, store.ErrDuplicateEmail):
		return c.JSON(http.StatusConflict, dto.HTTPError{Message: "email already registered"})
	default:
		return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: err.Error()})
	}
}

// failedField 判斷驗證錯誤是否包含指定欄位
func failedField(err error, field string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.StructField() == field {
			return true
		}
	}
	return false
}

func pathID(c echo.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// @Summary     Create a new user
// @Description 建立新帳號 (Email 會自動轉小寫)
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       body body     dto.CreateUserRequest true "使用者資料"
// @Success     201  {object} dto.UserResponse
// @Failure     400  {object} dto.HTTPError
// @Failure     409  {object} dto.HTTPError
// @Failure     500  {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /users [post]
func CreateUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.CreateUserRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid form data"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: err.Error()})
		}

		hash, err := hashPassword(req.Password)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: "failed to hash password"})
		}

		user, err := createUser(c.Request().Context(), db, &model.User{
			Email:        strings.ToLower(req.Email),
			PasswordHash: hash,
			IsAdmin:      req.IsAdmin,
		})
		if err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusCreated, dto.NewUserResponse(user))
	}
}

// @Summary     List users
// @Description 列出所有使用者
// @Tags        users
// @Produce     json
// @Success     200 {array}  dto.UserResponse
// @Failure     500 {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /users [get]
func ListUsersHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		users, err := listUsers(c.Request().Context(), db)
		if err != nil {
			return storeError(c, err)
		}
		resp := make([]dto.UserResponse, 0, len(users))
		for _, u := range users {
			resp = append(resp, dto.NewUserResponse(u))
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// @Summary     Get a user by ID
// @Description 透過 ID 查詢並回傳使用者詳細資料
// @Tags        users
// @Produce     json
// @Param       id   path      int  true  "使用者 ID"
// @Success     200  {object}  dto.UserResponse
// @Failure     400  {object}  dto.HTTPError  "參數錯誤"
// @Failure     404  {object}  dto.HTTPError  "使用者不存在"
// @Security    ApiKeyAuth
// @Router      /users/{id} [get]
func GetUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := pathID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid user ID"})
		}
		user, err := getUserByID(c.Request().Context(), db, id)
		if err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusOK, dto.NewUserResponse(user))
	}
}

// @Summary     Update a user by ID
// @Description 根據使用者 ID 更新 Email 及管理員狀態
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       id   path     int                   true "使用者 ID"
// @Param       body body     dto.UpdateUserRequest true "使用者資料"
// @Success     204  "No Content"
// @Failure     400  {object} dto.HTTPError
// @Failure     404  {object} dto.HTTPError
// @Failure     409  {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /users/{id} [put]
func UpdateUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := pathID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid user ID"})
		}

		var req dto.UpdateUserRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid form data"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: err.Error()})
		}

		if err := updateUser(c.Request().Context(), db, &model.User{
			ID:      id,
			Email:   strings.ToLower(req.Email),
			IsAdmin: req.IsAdmin,
		}); err != nil {
			return storeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// @Summary     Delete a user by ID
// @Description 根據使用者 ID 刪除使用者帳號
// @Tags        users
// @Param       id   path      int  true  "使用者 ID"
// @Success     204  "No Content"
// @Failure     400  {object}  dto.HTTPError  "參數錯誤"
// @Failure     404  {object}  dto.HTTPError  "使用者不存在"
// @Security    ApiKeyAuth
// @Router      /users/{id} [delete]
func DeleteUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := pathID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid user ID"})
		}
		if err := deleteUser(c.Request().Context(), db, id); err != nil {
			return storeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// @Summary     Reset user password
// @Description 由管理員重置特定使用者的密碼，並回傳新的隨機密碼
// @Tags        users
// @Produce     json
// @Param       id   path      int  true  "使用者 ID"
// @Success     200  {object}  dto.ResetUserPasswordResponse
// @Failure     400  {object}  dto.HTTPError
// @Failure     404  {object}  dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /users/{id}/reset_password [post]
func ResetUserPasswordHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := pathID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid user ID"})
		}

		newPwd, err := generatePassword(12)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: "failed to generate password"})
		}
		hash, err := hashPassword(newPwd)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: "failed to hash password"})
		}
		if err := updateUserPassword(c.Request().Context(), db, id, hash); err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusOK, dto.ResetUserPasswordResponse{ID: id, NewPassword: newPwd})
	}
}

// @Summary     Get current user info
// @Description 透過 JWT Token 取得當前使用者詳細資訊
// @Tags        users
// @Produce     json
// @Success     200 {object} dto.UserResponse
// @Failure     401 {object} dto.HTTPError
// @Failure     404 {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /users/me [get]
func GetMyUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := middleware.Claims(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, dto.HTTPError{Message: "invalid or missing token"})
		}
		user, err := getUserByID(c.Request().Context(), db, claims.UserID)
		if err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusOK, dto.NewUserResponse(user))
	}
}

// @Summary     Change own password
// @Description 驗證目前密碼並更新為新密碼，回傳更新後的使用者
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       body body     dto.ChangePasswordRequest true "目前密碼與新密碼"
// @Success     200  {object} dto.UserResponse
// @Failure     400  {object} dto.HTTPError
// @Failure     401  {object} dto.HTTPError
// @Failure     500  {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /change_password [post]
func ChangePasswordHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := middleware.Claims(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, dto.HTTPError{Message: "invalid or missing token"})
		}

		var req dto.ChangePasswordRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "invalid request body"})
		}
		if err := c.Validate(&req); err != nil {
			if failedField(err, "NewPassword") {
				return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: "Password does not match requirements."})
			}
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Message: err.Error()})
		}

		user, err := getUserByID(c.Request().Context(), db, claims.UserID)
		if err != nil {
			return storeError(c, err)
		}
		if err := authenticateUser(c.Request().Context(), *user, req.CurrentPassword); err != nil {
			return c.JSON(http.StatusUnauthorized, dto.HTTPError{Message: "Current password is incorrect."})
		}

		hash, err := hashPassword(req.NewPassword)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, dto.HTTPError{Message: "failed to hash new password"})
		}
		if err := updateUserPassword(c.Request().Context(), db, user.ID, hash); err != nil {
			return storeError(c, err)
		}
		user.PasswordHash = hash
		return c.JSON(http.StatusOK, dto.NewUserResponse(user))
	}
}
