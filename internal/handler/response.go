package handler

import (
	"net/http"

	"tiendamontana/internal/middleware"
	"tiendamontana/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// 統一レスポンス。成功でも失敗でも必ずこの形。
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Result{Success: true, Data: data, Message: ""})
}

func okWithStatus(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Result{Success: true, Data: data, Message: ""})
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, Result{Success: false, Data: nil, Message: message})
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return fail(c, he.Status, he.Message)
	}

	//500
	return fail(c, http.StatusInternalServerError, "error interno")
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	raw := c.Get(middleware.CtxUserIDKey)
	userID, ok := raw.(int64)
	if !ok || userID <= 0 {
		return 0, false
	}
	return userID, true
}

// ゲスト用のセッショントークンヘッダ
const sessionTokenHeader = "X-Session-Token"

// cartIdentity はカートの持ち主を決める。ログイン済みならユーザー、
// ゲストならセッショントークン（なければ発行してレスポンスヘッダで返す）。
func cartIdentity(c echo.Context) usecase.CartIdentity {
	if userID, ok := getUserIDFromContext(c); ok {
		return usecase.CartIdentity{UserID: userID}
	}

	token := c.Request().Header.Get(sessionTokenHeader)
	if token == "" {
		token = uuid.NewString()
	}
	c.Response().Header().Set(sessionTokenHeader, token)
	return usecase.CartIdentity{SessionToken: token}
}
