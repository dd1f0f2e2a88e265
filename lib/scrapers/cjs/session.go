package cjs

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

// ErrLoginFailed reports rejected credentials, as opposed to a transport
// failure somewhere in the handshake.
var ErrLoginFailed = errors.New("the portal rejected the given credentials")

const loginTokenName = "__RequestVerificationToken"

func (e *Engine) anonymousSession() (*resty.Client, error) {
	if e.anonymous != nil {
		return e.anonymous, nil
	}
	client, err := e.newSession()
	if err != nil {
		return nil, err
	}
	e.anonymous = client
	return client, nil
}

// the SSO handshake hands the browser back to the portal root once the
// identity provider accepts the credentials
func (e *Engine) ssoCompletionUrl() string {
	return e.opts.BaseUrl + "/"
}

// loggedInSession returns the cached authenticated session, performing
// the portal's three-request SSO handshake on first use. Cookies flow
// through one session across all three requests; that is what makes the
// handshake work at all.
func (e *Engine) loggedInSession(ctx context.Context) (*resty.Client, error) {
	if e.loggedIn != nil {
		return e.loggedIn, nil
	}

	ctx, span := tracer.Start(ctx, "login")
	defer span.End()

	client, err := e.newSession()
	if err != nil {
		return nil, err
	}

	res, err := client.R().
		SetContext(ctx).
		Get("/Account/Login")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch login page")
		return nil, err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "login page returned an error status")
		return nil, fmt.Errorf("login page: %s", res.Status())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse login page html")
		return nil, err
	}

	token := doc.Find(fmt.Sprintf("input[name='%s']", loginTokenName)).
		AttrOr("value", "")
	if token == "" {
		span.SetStatus(codes.Error, "failed to find verification token")
		return nil, fmt.Errorf("could not find the %s input on the login page", loginTokenName)
	}

	// credentials go to wherever the login page ultimately redirected
	// us, not to the url we asked for
	effectiveUrl := res.RawResponse.Request.URL.String()

	res, err = client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			loginTokenName: token,
			"UserName":     e.opts.Username,
			"Password":     e.opts.Password,
		}).
		Post(effectiveUrl)
	if err != nil {
		span.SetStatus(codes.Error, "failed to submit credentials")
		return nil, err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "credential submit returned an error status")
		return nil, fmt.Errorf("login submit: %s", res.Status())
	}
	doc, err = goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse credential response html")
		return nil, err
	}

	// the identity provider relays opaque hidden fields back to the
	// portal through one auto-submitted form
	relay := map[string]string{}
	doc.Find("input[type=hidden]").Each(func(_ int, s *goquery.Selection) {
		name := s.AttrOr("name", "")
		if name == "" {
			return
		}
		relay[name] = s.AttrOr("value", "")
	})
	action := doc.Find("form").AttrOr("action", "")

	// the portal never answers an explicit "wrong password"; a form
	// pointing anywhere but the SSO completion endpoint is the signal
	if action != e.ssoCompletionUrl() {
		span.SetStatus(codes.Error, ErrLoginFailed.Error())
		return nil, ErrLoginFailed
	}

	res, err = client.R().
		SetContext(ctx).
		SetFormData(relay).
		Post(action)
	if err != nil {
		span.SetStatus(codes.Error, "failed to complete sso handshake")
		return nil, err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "sso completion returned an error status")
		return nil, fmt.Errorf("sso completion: %s", res.Status())
	}

	e.loggedIn = client
	return client, nil
}

// Verify performs the login handshake (or reuses an already
// authenticated session) and reports only whether it succeeded. Callers
// use errors.Is against ErrLoginFailed to tell bad credentials apart
// from transport trouble.
func (e *Engine) Verify(ctx context.Context) error {
	_, err := e.loggedInSession(ctx)
	return err
}
