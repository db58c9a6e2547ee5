package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/one-numan/project-managment-saas/internal/auth"
	"github.com/one-numan/project-managment-saas/internal/models"
	"github.com/one-numan/project-managment-saas/internal/types"
	"gorm.io/gorm"
)

// AuthenticatedUser is the principal handlers act on. It is resolved once per
// request from the session token and the users table.
type AuthenticatedUser struct {
	ID    uint        `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// AuthMiddleware resolves the session token into an AuthenticatedUser. The
// token is read from the session cookie, or from a Bearer header for non-browser
// clients. Requests without a valid session are redirected to /login.
func AuthMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := sessionToken(ctx)

		if tokenString == "" {
			redirectLogin(ctx)
			return
		}

		token, err := auth.VerifyJWT(tokenString)

		if err != nil || !token.Valid {
			redirectLogin(ctx)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)

		if !ok {
			redirectLogin(ctx)
			return
		}

		userIDFloat, ok := claims["user_id"].(float64)

		if !ok {
			redirectLogin(ctx)
			return
		}

		userID := uint(userIDFloat)

		var user models.User

		if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
			redirectLogin(ctx)
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		})
		ctx.Next()
	}
}

// RequireRole gates a route group to the given roles. A signed-in user with the
// wrong role is silently bounced to the generic dashboard, which re-routes them
// to the dashboard for their own role.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		principal, exists := ctx.Get(types.ContextUserKey)

		if !exists {
			redirectLogin(ctx)
			return
		}

		user, ok := principal.(AuthenticatedUser)

		if !ok {
			redirectLogin(ctx)
			return
		}

		for _, role := range roles {
			if user.Role == role {
				ctx.Next()
				return
			}
		}

		ctx.Redirect(http.StatusSeeOther, "/dashboard")
		ctx.Abort()
	}
}

func sessionToken(ctx *gin.Context) string {
	if cookie, err := ctx.Cookie(types.SessionCookie); err == nil && cookie != "" {
		return cookie
	}

	authHeader := ctx.GetHeader("Authorization")

	parts := strings.SplitN(authHeader, " ", 2)

	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}

	return ""
}

func redirectLogin(ctx *gin.Context) {
	ctx.Redirect(http.StatusSeeOther, "/login")
	ctx.Abort()
}
