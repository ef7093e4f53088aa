package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/DailyBread/initializers"
	"github.com/DailyBread/middlewares"
	"github.com/DailyBread/models"
	"github.com/DailyBread/services"
	"github.com/doug-martin/goqu/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenLifetime      = 24 * time.Hour
	maxDisplayNameSize = 100
	minPasswordLength  = services.MinPasswordLength
)

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func PublicUserSignup(c *gin.Context) {
	var user models.UserProfileSignup

	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user.Username = strings.TrimSpace(user.Username)
	if len(user.Password) < minPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters.", "field": "password"})
		return
	}

	userCount, err := initializers.DB.From("user_profile").Where(goqu.C("username").Eq(user.Username)).CountContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if userCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "username already exists.", "field": "username"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	displayName := strings.TrimSpace(user.Display_Name)
	if displayName == "" {
		displayName = user.Username
	}

	newUser := models.UserProfile{
		Username:     user.Username,
		Password:     string(passwordHash),
		Email:        user.Email,
		Display_Name: displayName,
	}

	insert := initializers.DB.Insert("user_profile").Rows(newUser).Returning("user_profile_id")
	if _, err := insert.Executor().ScanValContext(c.Request.Context(), &newUser.User_Profile_ID); err != nil {
		log.Printf("Failed to create user %s: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	token, err := issueToken(newUser)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully.",
		"token":   token,
		"user":    newUser,
	})
}

// CheckUsernameAvailability
// GET /check-username?username=
func CheckUsernameAvailability(c *gin.Context) {
	username := strings.TrimSpace(c.Query("username"))
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	count, err := initializers.DB.From("user_profile").Where(goqu.C("username").Eq(username)).CountContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check username", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":  username,
		"available": count == 0,
	})
}

func UserLogin(c *gin.Context) {
	var user models.Login

	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var dbUser models.UserProfile
	found, err := initializers.DB.From("user_profile").Where(goqu.C("username").Eq(user.Username)).ScanStructContext(c.Request.Context(), &dbUser)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Firebase-only profiles have no password hash and can't log in this way.
	if !found || dbUser.Password == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(dbUser.Password), []byte(user.Password))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	if dbUser.Suspended {
		c.JSON(http.StatusForbidden, gin.H{"error": "This account has been suspended"})
		return
	}

	token, err := issueToken(dbUser)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User logged in successfully.",
		"token":   token,
		"user":    dbUser,
	})
}

// FirebaseLogin exchanges a Firebase ID token for an app token, creating the
// profile on first sign-in.
// POST /auth/firebase
func FirebaseLogin(c *gin.Context) {
	firebaseAuth := services.GetFirebaseAuthService()
	if firebaseAuth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Firebase sign-in is not enabled"})
		return
	}

	var body models.FirebaseLogin
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identity, err := firebaseAuth.VerifyIDToken(c.Request.Context(), body.ID_Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Firebase token", "details": err.Error()})
		return
	}

	user, err := findOrCreateFirebaseUser(c, identity)
	if err != nil {
		log.Printf("Failed to resolve Firebase user %s: %v", identity.UID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in, please try again", "details": err.Error()})
		return
	}

	if user.Suspended {
		c.JSON(http.StatusForbidden, gin.H{"error": "This account has been suspended"})
		return
	}

	token, err := issueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User logged in successfully.",
		"token":   token,
		"user":    user,
	})
}

func findOrCreateFirebaseUser(c *gin.Context, identity services.FirebaseIdentity) (models.UserProfile, error) {
	var user models.UserProfile
	found, err := initializers.DB.From("user_profile").
		Where(goqu.C("firebase_uid").Eq(identity.UID)).
		ScanStructContext(c.Request.Context(), &user)
	if err != nil || found {
		return user, err
	}

	uid := identity.UID
	user = models.UserProfile{
		Username:     "firebase_" + uid,
		Email:        identity.Email,
		Display_Name: strings.TrimSpace(identity.Name),
		Firebase_UID: &uid,
	}
	if user.Display_Name == "" {
		user.Display_Name = "Friend"
	}
	if identity.Picture != "" {
		user.Photo_URL = &identity.Picture
	}

	insert := initializers.DB.Insert("user_profile").Rows(user).Returning("user_profile_id")
	if _, err := insert.Executor().ScanValContext(c.Request.Context(), &user.User_Profile_ID); err != nil {
		return models.UserProfile{}, err
	}

	log.Printf("Created profile %d for Firebase user %s", user.User_Profile_ID, uid)
	return user, nil
}

func issueToken(user models.UserProfile) (string, error) {
	role := "user"
	if user.Admin {
		role = "admin"
	}

	generateToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   user.User_Profile_ID,
		"exp":  time.Now().Add(tokenLifetime).Unix(),
		"role": role,
	})

	return generateToken.SignedString(middlewares.SigningSecret())
}

func GetUserProfile(c *gin.Context) {

	user, _ := c.Get("currentUser")

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"admin": c.MustGet("admin"),
	})
}

// UpdateUserProfile changes the caller's display name or photo. Requests
// already posted keep the author snapshot they were created with.
// PATCH /users/me
func UpdateUserProfile(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	var body models.UserProfileUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	updates := goqu.Record{}
	if body.Display_Name != nil {
		name := strings.TrimSpace(*body.Display_Name)
		if name == "" || utf8.RuneCountInString(name) > maxDisplayNameSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Display name must be between 1 and 100 characters", "field": "displayName"})
			return
		}
		updates["display_name"] = name
		currentUser.Display_Name = name
	}
	if body.Photo_URL != nil {
		photo := strings.TrimSpace(*body.Photo_URL)
		if photo == "" {
			updates["photo_url"] = nil
			currentUser.Photo_URL = nil
		} else {
			updates["photo_url"] = photo
			currentUser.Photo_URL = &photo
		}
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}
	updates["datetime_update"] = goqu.L("NOW()")

	_, err := initializers.DB.Update("user_profile").
		Set(updates).
		Where(goqu.C("user_profile_id").Eq(currentUser.User_Profile_ID)).
		Executor().ExecContext(c.Request.Context())
	if err != nil {
		log.Printf("Failed to update user %d: %v", currentUser.User_Profile_ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully.",
		"user":    currentUser,
	})
}

// UpgradeToPremium will hand off to in-app purchase verification.
// POST /users/me/premium
func UpgradeToPremium(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "Premium upgrades are not available yet"})
}

// GET /admin/users
func GetAllUsers(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}

	users := []models.UserProfile{}
	err := initializers.DB.From("user_profile").
		Order(goqu.C("user_profile_id").Asc()).
		Limit(limit).
		Offset(offset).
		ScanStructsContext(c.Request.Context(), &users)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// AdminUpdateUser grants or revokes admin and suspends or reinstates a user.
// PATCH /admin/users/:user_profile_id
func AdminUpdateUser(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	userID, err := strconv.Atoi(c.Param("user_profile_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var body models.UserProfileAdminUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := checkAdminUpdate(currentUser, userID, body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := goqu.Record{"datetime_update": goqu.L("NOW()")}
	if body.Admin != nil {
		updates["admin"] = *body.Admin
	}
	if body.Suspended != nil {
		updates["suspended"] = *body.Suspended
	}

	result, err := initializers.DB.Update("user_profile").
		Set(updates).
		Where(goqu.C("user_profile_id").Eq(userID)).
		Executor().ExecContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user", "details": err.Error()})
		return
	}

	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	log.Printf("User %d updated by admin %d", userID, currentUser.User_Profile_ID)
	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully."})
}

func checkAdminUpdate(actor models.UserProfile, userID int, body models.UserProfileAdminUpdate) error {
	if body.Admin == nil && body.Suspended == nil {
		return errors.New("no fields to update")
	}
	if userID == actor.User_Profile_ID {
		if body.Admin != nil && !*body.Admin {
			return errors.New("admins cannot revoke their own access")
		}
		if body.Suspended != nil && *body.Suspended {
			return errors.New("admins cannot suspend themselves")
		}
	}
	return nil
}
