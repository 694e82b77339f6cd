package identity

import (
	"context"
	"errors"
	"fmt"

	fbauth "firebase.google.com/go/v4/auth"
)

var (
	// ErrUserNotFound reports that no identity-provider account exists for
	// the given lookup.
	ErrUserNotFound = errors.New("identity: user not found")
	// ErrEmailExists reports that an account with the email already exists.
	ErrEmailExists = errors.New("identity: email already registered")
)

// TokenVerifier checks a bearer credential and resolves the caller's uid.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (string, error)
}

// UserManager provisions and removes identity-provider accounts.
type UserManager interface {
	GetUserByEmail(ctx context.Context, email string) (string, error)
	CreateUser(ctx context.Context, email, password string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
}

// Provider adapts the Firebase Auth client to the narrow interfaces the
// rest of the service consumes.
type Provider struct {
	client *fbauth.Client
}

func NewProvider(client *fbauth.Client) (*Provider, error) {
	if client == nil {
		return nil, errors.New("auth client required")
	}
	return &Provider{client: client}, nil
}

func (p *Provider) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	token, err := p.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("verifying id token: %w", err)
	}
	return token.UID, nil
}

func (p *Provider) GetUserByEmail(ctx context.Context, email string) (string, error) {
	record, err := p.client.GetUserByEmail(ctx, email)
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("looking up user by email: %w", err)
	}
	return record.UID, nil
}

func (p *Provider) CreateUser(ctx context.Context, email, password string) (string, error) {
	params := (&fbauth.UserToCreate{}).Email(email).Password(password)
	record, err := p.client.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return "", ErrEmailExists
		}
		return "", fmt.Errorf("creating user: %w", err)
	}
	return record.UID, nil
}

func (p *Provider) DeleteUser(ctx context.Context, uid string) error {
	if err := p.client.DeleteUser(ctx, uid); err != nil {
		if fbauth.IsUserNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}
