package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

const defaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleIdentity is the subset of the ID-token payload the clinic cares
// about.
type GoogleIdentity struct {
	Email string
	Name  string
}

// GoogleVerifier resolves a Google ID token to an identity. The handlers
// depend on this interface so tests can substitute a fake.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

// TokenInfoVerifier validates ID tokens against Google's tokeninfo endpoint.
type TokenInfoVerifier struct {
	baseURL string
	client  *http.Client
}

var _ GoogleVerifier = (*TokenInfoVerifier)(nil)

func NewTokenInfoVerifier() *TokenInfoVerifier {
	return &TokenInfoVerifier{baseURL: defaultTokenInfoURL, client: &http.Client{}}
}

func NewTokenInfoVerifierWithURL(baseURL string) *TokenInfoVerifier {
	return &TokenInfoVerifier{baseURL: baseURL, client: &http.Client{}}
}

func (v *TokenInfoVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	reqURL := v.baseURL + "?id_token=" + url.QueryEscape(idToken)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	httpResp, err := v.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token verification failed with status %d", httpResp.StatusCode)
	}

	var payload struct {
		Email         string `json:"email"`
		Name          string `json:"name"`
		EmailVerified string `json:"email_verified"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Email == "" || payload.EmailVerified != "true" {
		return nil, errors.New("token has no verified email")
	}

	return &GoogleIdentity{Email: payload.Email, Name: payload.Name}, nil
}
