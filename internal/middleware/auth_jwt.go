package middleware

import (
	"net/http"
	"strings"

	"foodorder/internal/auth"

	"github.com/labstack/echo/v4"
)

const (
	CtxSubjectIDKey = "subject_id" // int64
	CtxRoleKey      = "role"       // auth.Role
)

// RequireRoleはbearerトークンをロール専用シークレットで検証するミドルウェア。
// customer用とmerchant用でシークレットが別なので、ガードもロールごとに作る。
func RequireRole(role auth.Role, secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			claims, err := auth.Verify(rawToken, []byte(secret))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if claims.Role != role {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxSubjectIDKey, claims.SubjectID)
			c.Set(CtxRoleKey, claims.Role)

			return next(c)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// SubjectIDFromContextは検証済みトークンのsubを取り出す
func SubjectIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(CtxSubjectIDKey)
	id, ok := v.(int64)
	return id, ok
}
