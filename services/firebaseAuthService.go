package services

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseIdentity is the subset of a verified ID token we care about.
type FirebaseIdentity struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

type FirebaseAuthService struct {
	client *auth.Client
}

var firebaseAuthService *FirebaseAuthService

func InitFirebaseAuthService(serviceAccountPath string) {
	var opts []option.ClientOption
	if serviceAccountPath != "" {
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
	}

	app, err := firebase.NewApp(context.Background(), nil, opts...)
	if err != nil {
		log.Printf("Failed to initialize Firebase app: %v", err)
		return
	}

	client, err := app.Auth(context.Background())
	if err != nil {
		log.Printf("Failed to get Firebase auth client: %v", err)
		return
	}

	firebaseAuthService = &FirebaseAuthService{client: client}
	if serviceAccountPath != "" {
		log.Println("Firebase auth initialized with service account file")
	} else {
		log.Println("Firebase auth initialized with Application Default Credentials")
	}
}

// GetFirebaseAuthService returns nil when Firebase sign-in is not configured.
func GetFirebaseAuthService() *FirebaseAuthService {
	return firebaseAuthService
}

// VerifyIDToken checks a client-issued Firebase ID token.
func (s *FirebaseAuthService) VerifyIDToken(ctx context.Context, idToken string) (FirebaseIdentity, error) {
	token, err := s.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return FirebaseIdentity{}, fmt.Errorf("%w: invalid firebase id token: %v", ErrUnauthorized, err)
	}

	return FirebaseIdentity{
		UID:     token.UID,
		Email:   claimString(token.Claims, "email"),
		Name:    claimString(token.Claims, "name"),
		Picture: claimString(token.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
