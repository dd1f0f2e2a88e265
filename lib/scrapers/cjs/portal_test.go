package cjs

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testPassword = "hunter2"

type portalConfig struct {
	// wrongAction makes the credential response's form point away from
	// the SSO completion endpoint, which is how the portal signals
	// rejected credentials.
	wrongAction bool
	// omitToken serves a login page without the verification token.
	omitToken bool
	// searchData maps "<entityId>|<MM/DD/YYYY>" to a results payload.
	searchData map[string]string
	// detailPages maps encrypted case ids to detail page html.
	detailPages map[string]string
	// detailStatus forces every detail get to this status when nonzero.
	detailStatus int
	// readStatus forces every results read to this status when nonzero.
	readStatus int
}

// fakePortal mimics the county portal's login handshake, two-request
// search flow and public detail pages.
type fakePortal struct {
	srv *httptest.Server
	cfg portalConfig

	mu         sync.Mutex
	tokenGets  int
	ssoPosts   int
	detailGets int
	// priming visits in arrival order, as "<entityId>|<MM/DD/YYYY>"
	visits []string
	primed string
}

func newFakePortal(t *testing.T, cfg portalConfig) *fakePortal {
	p := &fakePortal{cfg: cfg}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /Account/Login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "portal-session", Value: "s-1", Path: "/"})
		http.Redirect(w, r, "/idp/login", http.StatusFound)
	})

	mux.HandleFunc("GET /idp/login", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.tokenGets++
		p.mu.Unlock()

		if cfg.omitToken {
			fmt.Fprint(w, `<html><body><form method="post"></form></body></html>`)
			return
		}
		fmt.Fprint(w, `<html><body><form method="post">
			<input type="hidden" name="__RequestVerificationToken" value="tok-123"/>
			<input name="UserName"/><input name="Password" type="password"/>
		</form></body></html>`)
	})

	mux.HandleFunc("POST /idp/login", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostFormValue("__RequestVerificationToken") != "tok-123" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		action := p.srv.URL + "/"
		if cfg.wrongAction || r.PostFormValue("Password") != testPassword {
			action = p.srv.URL + "/Account/Login"
		}
		fmt.Fprintf(w, `<html><body><form action="%s" method="post">
			<input type="hidden" name="wa" value="wsignin1.0"/>
			<input type="hidden" name="wresult" value="assertion-xml"/>
		</form></body></html>`, action)
	})

	mux.HandleFunc("POST /{$}", func(w http.ResponseWriter, r *http.Request) {
		// cookies must have flowed through the whole handshake
		if _, err := r.Cookie("portal-session"); err != nil {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		r.ParseForm()
		if r.PostFormValue("wresult") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		p.mu.Lock()
		p.ssoPosts++
		p.mu.Unlock()
	})

	mux.HandleFunc("POST /Hearing/SearchHearings/HearingSearch", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		id := r.PostFormValue("SearchCriteria.SelectedJudicialOfficer")
		if id == "" {
			id = r.PostFormValue("SearchCriteria.SelectedCourtroom")
		}
		key := id + "|" + r.PostFormValue("SearchCriteria.DateFrom")

		p.mu.Lock()
		p.visits = append(p.visits, key)
		p.primed = key
		p.mu.Unlock()
	})

	mux.HandleFunc("POST /Hearing/HearingResults/Read", func(w http.ResponseWriter, r *http.Request) {
		if cfg.readStatus != 0 {
			w.WriteHeader(cfg.readStatus)
			return
		}
		r.ParseForm()
		if r.PostFormValue("portletId") != "27" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		p.mu.Lock()
		key := p.primed
		p.mu.Unlock()

		payload, ok := cfg.searchData[key]
		if !ok {
			payload = `{"Data":[]}`
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, payload)
	})

	mux.HandleFunc("GET /Case/CaseDetail", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.detailGets++
		p.mu.Unlock()

		if cfg.detailStatus != 0 {
			w.WriteHeader(cfg.detailStatus)
			return
		}
		page, ok := cfg.detailPages[r.URL.Query().Get("eid")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, page)
	})

	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

func (p *fakePortal) engine(t *testing.T, opts Options) *Engine {
	opts.BaseUrl = p.srv.URL
	if opts.Username == "" {
		opts.Username = "tester"
	}
	if opts.Password == "" {
		opts.Password = testPassword
	}
	// keep retry backoff out of test runtime
	opts.RetryWaitTime = time.Millisecond

	e, err := NewEngine(opts)
	require.NoError(t, err)
	return e
}

func (p *fakePortal) counts() (tokenGets, ssoPosts, detailGets int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokenGets, p.ssoPosts, p.detailGets
}

func (p *fakePortal) visitLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.visits...)
}
