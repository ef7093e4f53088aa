package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/DailyBread/models"
)

const (
	resetCodeTable = "password_reset_code"

	resetCodeLifetime  = 15 * time.Minute
	resetTokenLifetime = 10 * time.Minute
	maxResetAttempts   = 3

	// ResetTokenPurpose marks a token that may only be used to set a new password.
	ResetTokenPurpose = "password_reset"
	MinPasswordLength = 8
)

// ResetCodeMailer delivers recovery codes.
type ResetCodeMailer interface {
	SendPasswordResetCode(to, name, code string) error
}

// PasswordResetService runs the emailed-code account recovery flow:
// request a code, trade it for a short-lived reset token, set a new password.
type PasswordResetService struct {
	DB      *goqu.Database
	Mailer  ResetCodeMailer
	Secret  []byte
	Now     func() time.Time
	NewID   func() string
	NewCode func() (string, error)
}

func NewPasswordResetService(db *goqu.Database, mailer ResetCodeMailer, secret []byte) *PasswordResetService {
	return &PasswordResetService{
		DB:      db,
		Mailer:  mailer,
		Secret:  secret,
		Now:     time.Now,
		NewID:   newID,
		NewCode: generate6DigitCode,
	}
}

// RequestReset emails a code to the profile with this address. Unknown
// addresses and Firebase-only profiles are silently ignored so callers can't
// probe for accounts.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	if s.Mailer == nil {
		return fmt.Errorf("email service not initialized")
	}

	var user models.UserProfile
	found, err := s.DB.From("user_profile").
		Where(goqu.C("email").Eq(strings.TrimSpace(email))).
		ScanStructContext(ctx, &user)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if !found || user.Password == "" {
		return nil
	}

	code, err := s.NewCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash verification code: %w", err)
	}

	record := models.PasswordResetCode{
		Password_Reset_Code_ID: s.NewID(),
		User_Profile_ID:        user.User_Profile_ID,
		Code_Hash:              string(codeHash),
		Expires_At:             s.Now().Add(resetCodeLifetime),
	}

	if _, err := s.DB.Insert(resetCodeTable).Rows(record).Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to store password reset code: %w", err)
	}

	if err := s.Mailer.SendPasswordResetCode(user.Email, user.Display_Name, code); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	log.Printf("Password reset code sent to user %d", user.User_Profile_ID)
	return nil
}

// VerifyCode checks a code against the user's newest live one and returns a
// reset token. Each guess counts against that code; after three it is dead.
func (s *PasswordResetService) VerifyCode(ctx context.Context, email, code string) (string, error) {
	var user models.UserProfile
	found, err := s.DB.From("user_profile").
		Where(goqu.C("email").Eq(strings.TrimSpace(email))).
		ScanStructContext(ctx, &user)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if !found {
		return "", fmt.Errorf("verifying reset code: %w", ErrUnauthorized)
	}

	var record models.PasswordResetCode
	found, err = s.DB.From(resetCodeTable).
		Where(
			goqu.C("user_profile_id").Eq(user.User_Profile_ID),
			goqu.C("used").IsFalse(),
			goqu.C("expires_at").Gt(s.Now()),
		).
		Order(goqu.C("datetime_create").Desc()).
		ScanStructContext(ctx, &record)
	if err != nil {
		return "", fmt.Errorf("failed to fetch reset code: %w", err)
	}
	if !found || record.Attempts >= maxResetAttempts {
		return "", fmt.Errorf("verifying reset code: %w", ErrUnauthorized)
	}

	match := bcrypt.CompareHashAndPassword([]byte(record.Code_Hash), []byte(code)) == nil

	update := goqu.Record{"attempts": goqu.L("attempts + 1")}
	if match {
		update["used"] = true
	}
	_, err = s.DB.Update(resetCodeTable).
		Set(update).
		Where(goqu.C("password_reset_code_id").Eq(record.Password_Reset_Code_ID)).
		Executor().ExecContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to update reset code: %w", err)
	}

	if !match {
		return "", fmt.Errorf("verifying reset code: %w", ErrUnauthorized)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":      user.User_Profile_ID,
		"purpose": ResetTokenPurpose,
		"exp":     s.Now().Add(resetTokenLifetime).Unix(),
	})
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return signed, nil
}

// ResetPassword sets a new password for the user named in a reset token and
// retires every outstanding code for them.
func (s *PasswordResetService) ResetPassword(ctx context.Context, tokenString, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return invalid("newPassword", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}

	userID, err := s.parseResetToken(tokenString)
	if err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return withTx(ctx, s.DB, func(tx *goqu.TxDatabase) error {
		result, err := tx.Update("user_profile").
			Set(goqu.Record{
				"password":        string(passwordHash),
				"datetime_update": goqu.L("NOW()"),
			}).
			Where(goqu.C("user_profile_id").Eq(userID)).
			Executor().ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
			return fmt.Errorf("user %d: %w", userID, ErrUnauthorized)
		}

		_, err = tx.Update(resetCodeTable).
			Set(goqu.Record{"used": true}).
			Where(goqu.C("user_profile_id").Eq(userID)).
			Executor().ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to retire reset codes: %w", err)
		}
		return nil
	})
}

func (s *PasswordResetService) parseResetToken(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid reset token: %w", ErrUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["purpose"] != ResetTokenPurpose {
		return 0, fmt.Errorf("invalid reset token: %w", ErrUnauthorized)
	}

	id, ok := claims["id"].(float64)
	if !ok || id <= 0 {
		return 0, fmt.Errorf("invalid reset token: %w", ErrUnauthorized)
	}
	return int(id), nil
}

func generate6DigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
