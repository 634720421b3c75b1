package omdb

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/artpar/popcorn/internal/movie"
	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is the public OMDb endpoint.
const DefaultBaseURL = "https://www.omdbapi.com/"

// DefaultRetryDelay is the first backoff between details attempts.
const DefaultRetryDelay = 200 * time.Millisecond

// DetailsTimeout is the longest a details lookup can run: every attempt
// using its full timeout plus the doubling backoff between attempts.
func DetailsTimeout(timeout time.Duration, attempts int, delay time.Duration) time.Duration {
	attempts = max(attempts, 1)
	total := timeout * time.Duration(attempts)
	for n := 0; n < attempts-1; n++ {
		total += delay << n
	}
	return total
}

// Client talks to the OMDb API.
type Client struct {
	httpClient *http.Client
	config     Config
	log        logrus.FieldLogger
}

// Config holds OMDb client configuration.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	QuoteTerms bool
	Retries    int
	RetryDelay time.Duration
}

// Option is a function that configures the Client.
type Option func(*Client)

// NewClient creates a new OMDb client with the given options.
func NewClient(apiKey string, opts ...Option) *Client {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	client := &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		config: Config{
			BaseURL:    DefaultBaseURL,
			APIKey:     apiKey,
			Timeout:    10 * time.Second,
			QuoteTerms: true,
			Retries:    3,
			RetryDelay: DefaultRetryDelay,
		},
		log: discard,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.config.BaseURL = baseURL
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.config.Timeout = timeout
		c.httpClient.Timeout = timeout
	}
}

// WithQuotedTerms controls whether search terms are sent wrapped in double quotes.
func WithQuotedTerms(quote bool) Option {
	return func(c *Client) {
		c.config.QuoteTerms = quote
	}
}

// WithRetry sets how many attempts a details lookup gets and the initial backoff.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts < 1 {
			attempts = 1
		}
		c.config.Retries = attempts
		c.config.RetryDelay = delay
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// Config returns the client configuration.
func (c *Client) Config() Config {
	return c.config
}

type searchResponse struct {
	Search   []movie.Summary `json:"Search"`
	Response string          `json:"Response"`
	Error    string          `json:"Error"`
}

type detailsResponse struct {
	movie.Details
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// Search returns the movies matching term.
func (c *Client) Search(ctx context.Context, term string) ([]movie.Summary, error) {
	if c.config.QuoteTerms {
		term = `"` + term + `"`
	}

	params := url.Values{}
	params.Set("s", term)

	c.log.WithField("term", term).Debug("searching omdb")

	var body searchResponse
	if err := c.get(ctx, params, &body); err != nil {
		return nil, err
	}
	if body.Response == "False" {
		return nil, noResults(body.Error)
	}
	if body.Search == nil {
		return []movie.Summary{}, nil
	}
	return body.Search, nil
}

// Details looks up a single title by IMDb id. Transient failures are retried
// with exponential backoff.
func (c *Client) Details(ctx context.Context, id string) (movie.Details, error) {
	params := url.Values{}
	params.Set("i", id)

	var body detailsResponse
	err := retry.Do(
		func() error {
			body = detailsResponse{}
			return c.get(ctx, params, &body)
		},
		retry.Context(ctx),
		retry.Attempts(uint(max(c.config.Retries, 1))),
		retry.Delay(c.config.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isTransient),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.log.WithError(err).WithFields(logrus.Fields{
				"id":      id,
				"attempt": n + 1,
			}).Warn("retrying omdb details lookup")
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) && !IsAborted(err) {
			return movie.Details{}, errors.Wrap(ErrAborted, err.Error())
		}
		return movie.Details{}, err
	}
	if body.Response == "False" {
		return movie.Details{}, noResults(body.Error)
	}
	return body.Details, nil
}

// get issues a GET with params plus the API key and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	endpoint, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return errors.Wrap(err, "invalid omdb base url")
	}
	params.Set("apikey", c.config.APIKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return errors.Wrap(err, "failed to build omdb request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classify(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return classify(ctx, err)
		}
		return errors.Wrap(ErrParse, err.Error())
	}
	return nil
}
