package main

import (
	"net/url"
	"strings"

	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/config"
)

type authMode string

const (
	authLogin    authMode = "login"
	authRegister authMode = "register"
)

// AuthView backs the login and registration pages. Only the outbound link is built here;
// the provider callback is handled by the backend.
type AuthView struct {
	Mode       authMode
	Heading    string
	Lead       string
	OAuthURL   string
	Configured bool
	OtherHref  string
	OtherLabel string
}

func buildAuthView(cfg config.OAuthConfig, mode authMode, otherHref string) AuthView {
	view := AuthView{Mode: mode, OtherHref: otherHref}
	switch mode {
	case authRegister:
		view.Heading = "Register your food truck"
		view.Lead = "Create a vendor profile so customers can find your stops."
		view.OtherLabel = "Already registered? Log in"
	default:
		view.Heading = "Log in"
		view.Lead = "Sign in to update your profile and schedule."
		view.OtherLabel = "New here? Register"
	}
	if link, ok := oauthURL(cfg, string(mode)); ok {
		view.OAuthURL = link
		view.Configured = true
	}
	return view
}

// oauthURL builds the provider dialog link carrying state so the backend can tell a login
// from a registration.
func oauthURL(cfg config.OAuthConfig, state string) (string, bool) {
	if strings.TrimSpace(cfg.ClientID) == "" || cfg.AuthURL == "" {
		return "", false
	}
	u, err := url.Parse(cfg.AuthURL)
	if err != nil {
		return "", false
	}
	q := u.Query()
	q.Set("client_id", cfg.ClientID)
	if cfg.RedirectURL != "" {
		q.Set("redirect_uri", cfg.RedirectURL)
	}
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), true
}
