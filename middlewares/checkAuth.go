package middlewares

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/DailyBread/initializers"
	"github.com/DailyBread/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// SigningSecret is the HMAC key for session tokens.
func SigningSecret() []byte {
	if initializers.AppConfig != nil && initializers.AppConfig.Secret != "" {
		return []byte(initializers.AppConfig.Secret)
	}
	return []byte(os.Getenv("SECRET"))
}

func CheckAuth(c *gin.Context) {

	authHeader := c.GetHeader("Authorization")

	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
		return
	}

	authToken := strings.Split(authHeader, " ")
	if len(authToken) != 2 || authToken[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
		return
	}

	tokenString := authToken[1]
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return SigningSecret(), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	exp, ok := claims["exp"].(float64)
	if !ok || float64(time.Now().Unix()) > exp {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
		return
	}

	// Password reset tokens are only good at /auth/reset-password.
	if _, scoped := claims["purpose"]; scoped {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	var user models.UserProfile
	_, err = initializers.DB.From("user_profile").
		Where(goqu.C("user_profile_id").Eq(claims["id"])).
		ScanStructContext(c.Request.Context(), &user)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user profile", "details": err.Error()})
		return
	}

	if user.User_Profile_ID == 0 {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	if user.Suspended {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "This account has been suspended"})
		return
	}

	c.Set("currentUser", user)

	// The admin column is authoritative; a token minted before a demotion
	// still carries the old role claim.
	c.Set("admin", user.Admin)

	c.Next()

}
