// Package auth is the client's token provider. It signs users in with the
// OAuth2 device authorization grant, keeps the resulting account in an
// AccountCache and acquires access tokens silently, refreshing them when
// they expire.
//
// The provider never starts an interactive sign-in on its own: when silent
// acquisition is impossible it returns ErrNoAccount or ErrInteractionRequired
// and the caller decides whether to run Login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/logging"
)

// Config describes the OAuth2 public client.
type Config struct {
	ClientID      string
	DeviceAuthURL string
	TokenURL      string
	Scopes        []string
	// HTTPClient is used for calls to the authority. Nil means http.DefaultClient.
	HTTPClient *http.Client
}

// DeviceCode is what the user needs to complete an interactive sign-in.
type DeviceCode struct {
	UserCode                string
	VerificationURI         string
	VerificationURIComplete string
	Expiry                  time.Time
}

// PromptFunc shows a device code to the user.
type PromptFunc func(DeviceCode)

// TokenSource is the part of Provider the HTTP gateway needs.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Provider acquires tokens for the first cached account.
type Provider struct {
	oauth  *oauth2.Config
	cache  AccountCache
	client *http.Client
	log    logging.Logger
}

var _ TokenSource = (*Provider)(nil)

// NewProvider returns a provider for cfg backed by cache.
func NewProvider(cfg Config, cache AccountCache, log logging.Logger) *Provider {
	return &Provider{
		oauth: &oauth2.Config{
			ClientID: cfg.ClientID,
			Scopes:   cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				DeviceAuthURL: cfg.DeviceAuthURL,
				TokenURL:      cfg.TokenURL,
				AuthStyle:     oauth2.AuthStyleInParams,
			},
		},
		cache:  cache,
		client: cfg.HTTPClient,
		log:    log.With("component", "auth"),
	}
}

func (p *Provider) withClient(ctx context.Context) context.Context {
	if p.client == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, p.client)
}

// Token returns a valid access token for the first cached account. Nothing
// is cached in memory; every call consults the account cache.
func (p *Provider) Token(ctx context.Context) (string, error) {
	acct, err := p.acquire(ctx)
	if err != nil {
		return "", err
	}
	return acct.Token.AccessToken, nil
}

// Identity silently acquires tokens and returns them with the display
// identity of the account.
func (p *Provider) Identity(ctx context.Context) (models.AuthIdentity, error) {
	acct, err := p.acquire(ctx)
	if err != nil {
		return models.AuthIdentity{}, err
	}
	return identityOf(acct), nil
}

// HasAccount reports whether any account is cached.
func (p *Provider) HasAccount(ctx context.Context) (bool, error) {
	accounts, err := p.cache.Load(ctx)
	if err != nil {
		return false, err
	}
	return len(accounts) > 0, nil
}

func (p *Provider) acquire(ctx context.Context) (Account, error) {
	accounts, err := p.cache.Load(ctx)
	if err != nil {
		return Account{}, &AcquireError{Err: err}
	}
	if len(accounts) == 0 {
		return Account{}, ErrNoAccount
	}

	acct := accounts[0]
	if acct.Token == nil {
		return Account{}, ErrInteractionRequired
	}
	if acct.Token.Valid() {
		return acct, nil
	}
	if acct.Token.RefreshToken == "" {
		return Account{}, ErrInteractionRequired
	}

	tok, err := p.oauth.TokenSource(p.withClient(ctx), acct.Token).Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			p.log.Info(ctx, "refresh rejected by authority", "error_code", re.ErrorCode)
			return Account{}, fmt.Errorf("%w: %s", ErrInteractionRequired, re.ErrorCode)
		}
		return Account{}, &AcquireError{Err: err}
	}

	refreshed := merge(acct, tok)
	accounts[0] = refreshed
	if err := p.cache.Save(ctx, accounts); err != nil {
		p.log.Warn(ctx, "failed to store refreshed token", "error", err)
	}
	return refreshed, nil
}

// Login runs the device authorization grant: it requests a device code,
// hands it to prompt and waits until the user completes sign-in in a
// browser or ctx is done. The new account replaces any cached one.
func (p *Provider) Login(ctx context.Context, prompt PromptFunc) (models.AuthIdentity, error) {
	ctx = p.withClient(ctx)

	da, err := p.oauth.DeviceAuth(ctx)
	if err != nil {
		return models.AuthIdentity{}, &AcquireError{Err: err}
	}

	prompt(DeviceCode{
		UserCode:                da.UserCode,
		VerificationURI:         da.VerificationURI,
		VerificationURIComplete: da.VerificationURIComplete,
		Expiry:                  da.Expiry,
	})

	tok, err := p.oauth.DeviceAccessToken(ctx, da)
	if err != nil {
		return models.AuthIdentity{}, &AcquireError{Err: err}
	}

	acct := merge(Account{}, tok)
	if err := p.cache.Save(ctx, []Account{acct}); err != nil {
		return models.AuthIdentity{}, fmt.Errorf("save account: %w", err)
	}

	p.log.Info(ctx, "signed in", "email", acct.Email)
	return identityOf(acct), nil
}

// SignOut forgets every cached account.
func (p *Provider) SignOut(ctx context.Context) error {
	return p.cache.Clear(ctx)
}

// merge applies a token response to acct. The ID token and the refresh
// token are kept from the previous response when the new one omits them.
func merge(acct Account, tok *oauth2.Token) Account {
	if tok.RefreshToken == "" && acct.Token != nil {
		tok.RefreshToken = acct.Token.RefreshToken
	}
	acct.Token = tok

	if idToken, ok := tok.Extra("id_token").(string); ok && idToken != "" {
		acct.IDToken = idToken
		acct.Name, acct.Email = displayClaims(idToken)
	}
	return acct
}

func identityOf(acct Account) models.AuthIdentity {
	return models.AuthIdentity{
		IsAuthenticated: true,
		User:            &models.AuthUser{Name: acct.Name, Email: acct.Email},
		IDToken:         acct.IDToken,
		AuthToken:       acct.Token.AccessToken,
	}
}
