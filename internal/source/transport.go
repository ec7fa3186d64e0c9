package source

import (
	"log"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// ClientOptions controls the shared HTTP behaviour of host clients.
type ClientOptions struct {
	RequestsPerSecond float64
	MaxRetries        int
	Timeout           time.Duration
}

// rateLimitedTransport blocks each request on a token bucket before
// handing it to the wrapped transport.
type rateLimitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}

// newHTTPClient builds a retrying, rate limited *http.Client. Retries cover
// connection errors, 429 and 5xx responses.
func newHTTPClient(opts ClientOptions) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.MaxRetries
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 10 * time.Second
	rc.Logger = log.Default()
	// Hand the final response back to the caller instead of a generic
	// "giving up" error so status-based classification still works.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		rc.HTTPClient.Transport = &rateLimitedTransport{
			base:    rc.HTTPClient.Transport,
			limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst),
		}
	}

	hc := rc.StandardClient()
	hc.Timeout = opts.Timeout
	return hc
}
