package cjs

import (
	"crypto/tls"
	"fmt"
	"net/http/cookiejar"
	"slices"
	"strings"
	"time"

	"sccjs-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const DefaultBaseUrl = "https://cjs.shelbycountytn.gov/CJS"

// MissingDataMessage is the usual sentinel substituted for detail fields
// that could not be scraped.
const MissingDataMessage = "UNKNOWN"

const (
	DefaultTimeout    = time.Second * 5
	DefaultRetryCount = 5
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// DetailFailurePolicy controls what happens when one case-detail page
// cannot be fetched or parsed.
type DetailFailurePolicy int

const (
	// DetailFailureDefault fills the missing fields with their defaults
	// and keeps the batch going.
	DetailFailureDefault DetailFailurePolicy = iota
	// DetailFailurePropagate aborts the batch on the first bad detail
	// page.
	DetailFailurePropagate
)

type Options struct {
	Username string
	Password string
	// Entity selects the search filter catalog; defaults to EntityJudge.
	Entity EntityKind
	// BaseUrl overrides the production portal root. No trailing slash.
	BaseUrl string
	// DebugLimit truncates the entity id catalog to its first N ids
	// when > 0, to keep debugging runs short.
	DebugLimit int
	// MissingDataSentinel is substituted for detail fields absent from a
	// case page. The zero value leaves absent fields empty; pass
	// MissingDataMessage for the explicit "UNKNOWN" marker.
	MissingDataSentinel string
	DetailFailurePolicy DetailFailurePolicy

	// Timeout applies per request; defaults to DefaultTimeout.
	Timeout time.Duration
	// RetryCount bounds retries of transient failures; defaults to
	// DefaultRetryCount.
	RetryCount int
	// RetryWaitTime is the backoff base between retries; defaults to 1s.
	RetryWaitTime time.Duration

	// AllowLegacyRenegotiation permits TLS renegotiation initiated by the
	// portal's server, which predates RFC 5746. This is an interop
	// workaround for that one server, not a general default.
	AllowLegacyRenegotiation bool
	// BypassBotProtection routes requests through the cloudflare
	// bot-protection bypass transport.
	BypassBotProtection bool
}

// Engine scrapes hearing records off the county's case-management
// portal. It owns at most one anonymous and one logged-in session,
// created lazily and reused for the engine's lifetime. Engines are not
// safe for concurrent use: the portal's two-request search flow keeps
// paging state server side, so interleaved searches on one session
// corrupt each other.
type Engine struct {
	opts Options
	cat  entityCatalog
	ids  []string

	anonymous *resty.Client
	loggedIn  *resty.Client
}

func NewEngine(opts Options) (*Engine, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	opts.BaseUrl = strings.TrimSuffix(opts.BaseUrl, "/")
	if opts.Entity == "" {
		opts.Entity = EntityJudge
	}
	cat, ok := catalogs[opts.Entity]
	if !ok {
		return nil, fmt.Errorf("unknown entity kind: %q", opts.Entity)
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RetryCount == 0 {
		opts.RetryCount = DefaultRetryCount
	}
	if opts.RetryWaitTime == 0 {
		opts.RetryWaitTime = time.Second
	}

	ids := cat.ids
	if opts.DebugLimit > 0 && opts.DebugLimit < len(ids) {
		ids = ids[:opts.DebugLimit]
	}

	return &Engine{opts: opts, cat: cat, ids: ids}, nil
}

var transientStatuses = []int{429, 500, 502, 503, 504}

// newSession builds one cookie-carrying portal session. Transient
// failures (connection errors and the usual retryable statuses) are
// retried with exponential backoff for every method, POST included; the
// portal's search flow is POST based and tolerates replays. Other
// non-2xx responses come back as-is for the caller to interpret.
func (e *Engine) newSession() (*resty.Client, error) {
	client := resty.New()
	client.SetBaseURL(e.opts.BaseUrl)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.SetHeader("user-agent", userAgent)
	client.SetTimeout(e.opts.Timeout)

	client.SetRetryCount(e.opts.RetryCount)
	client.SetRetryWaitTime(e.opts.RetryWaitTime)
	client.SetRetryMaxWaitTime(e.opts.RetryWaitTime * 32)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return slices.Contains(transientStatuses, res.StatusCode())
	})

	if e.opts.AllowLegacyRenegotiation {
		client.SetTLSClientConfig(&tls.Config{
			Renegotiation: tls.RenegotiateOnceAsClient,
		})
	}
	if e.opts.BypassBotProtection {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(
			client.GetClient().Transport,
		)
	}

	telemetry.InstrumentResty(client, "sccjs.lib.scrapers.cjs.http")

	return client, nil
}
