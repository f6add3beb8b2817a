// Package noaa fetches observed global mean sea level from NOAA STAR.
package noaa

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/ocean-series-service/internal/domain"
	"github.com/couchcryptid/ocean-series-service/internal/observability"
	"github.com/go-resty/resty/v2"
)

// ErrNoData is returned when the response parses but holds no usable rows.
var ErrNoData = errors.New("noaa: no sea level observations")

// Options configures the HTTP behaviour of a Client.
type Options struct {
	URL       string
	Timeout   time.Duration
	Retries   int
	RetryWait time.Duration
}

// Client downloads and parses the NOAA sea level CSV.
type Client struct {
	http    *resty.Client
	url     string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewClient creates a NOAA client. 5xx responses are retried like transport errors.
func NewClient(opts Options, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if opts.RetryWait <= 0 {
		opts.RetryWait = 500 * time.Millisecond
	}
	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(opts.Retries)
	client.SetRetryWaitTime(opts.RetryWait)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || r.StatusCode() >= http.StatusInternalServerError
	})

	return &Client{
		http:    client,
		url:     opts.URL,
		logger:  logger,
		metrics: metrics,
	}
}

// FetchSeaLevel returns annual mean observed sea level in mm. Years without
// observations are absent from the series.
func (c *Client) FetchSeaLevel(ctx context.Context) (domain.Series, error) {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "text/csv").
		Get(c.url)
	c.metrics.SeaLevelFetchTime.Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.Series{}, fmt.Errorf("fetch sea level: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return domain.Series{}, fmt.Errorf("fetch sea level: NOAA returned status %d", resp.StatusCode())
	}

	obs, err := ParseCSV(bytes.NewReader(resp.Body()))
	if err != nil {
		return domain.Series{}, fmt.Errorf("fetch sea level: %w", err)
	}

	s := domain.AnnualMeans(domain.SeaLevelLabel, domain.KindSeaLevel, "mm", obs)
	c.logger.Debug("sea level fetched", "observations", len(obs), "years", s.Len())
	return s, nil
}

// ParseCSV reads decimal-year rows. The first column is the date; the value
// is taken from the first later column holding a number, since NOAA spreads
// each satellite mission over its own column. Comment lines, headers and rows
// without a value are skipped.
func ParseCSV(r io.Reader) ([]domain.Observation, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var obs []domain.Observation
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse sea level csv: %w", err)
		}
		o, ok := parseRecord(rec)
		if ok {
			obs = append(obs, o)
		}
	}
	if len(obs) == 0 {
		return nil, ErrNoData
	}
	return obs, nil
}

func parseRecord(rec []string) (domain.Observation, bool) {
	if len(rec) < 2 {
		return domain.Observation{}, false
	}
	dy, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
	if err != nil {
		return domain.Observation{}, false
	}
	date, err := domain.ParseDecimalYear(dy)
	if err != nil {
		return domain.Observation{}, false
	}
	for _, field := range rec[1:] {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			continue
		}
		return domain.Observation{Date: date, Value: v}, true
	}
	return domain.Observation{}, false
}
