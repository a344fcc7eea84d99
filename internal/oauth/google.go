package oauth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

var (
	ErrNoIDToken = errors.New("no id token in exchange response")
	ErrNoEmail   = errors.New("no email in id token payload")
)

// Profile is the identity Google asserts for a signed-in user.
type Profile struct {
	Email string
	Name  string
}

// GoogleClient exchanges an authorization code for an ID token and
// verifies that token against the configured client id.
type GoogleClient interface {
	Exchange(ctx context.Context, code string) (string, error)
	VerifyIDToken(ctx context.Context, rawIDToken string) (*Profile, error)
}

type googleClient struct {
	config   *oauth2.Config
	clientID string
}

func NewGoogleClient(clientID, clientSecret string) GoogleClient {
	return &googleClient{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			// The frontend obtains the code via the popup flow.
			RedirectURL: "postmessage",
		},
		clientID: clientID,
	}
}

func (g *googleClient) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := g.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("code exchange failed: %w", err)
	}

	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return "", ErrNoIDToken
	}
	return raw, nil
}

func (g *googleClient) VerifyIDToken(ctx context.Context, rawIDToken string) (*Profile, error) {
	payload, err := idtoken.Validate(ctx, rawIDToken, g.clientID)
	if err != nil {
		return nil, fmt.Errorf("id token validation failed: %w", err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, ErrNoEmail
	}
	name, _ := payload.Claims["name"].(string)

	return &Profile{Email: email, Name: name}, nil
}
