package holiday

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"phone-dashboard-go/internal/logger"
)

// NagerClient reads public holidays from a Nager.Date compatible API and
// keeps national holidays plus those observed in Region.
type NagerClient struct {
	BaseURL    string
	Country    string
	Region     string
	HTTP       *http.Client
	MaxElapsed time.Duration
}

type nagerHoliday struct {
	Date     string   `json:"date"`
	Name     string   `json:"name"`
	Global   bool     `json:"global"`
	Counties []string `json:"counties"`
}

func NewNagerClient(baseURL, country, region string, timeout time.Duration) *NagerClient {
	return &NagerClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Country:    country,
		Region:     region,
		HTTP:       &http.Client{Timeout: timeout},
		MaxElapsed: 3 * timeout,
	}
}

func (c *NagerClient) Holidays(ctx context.Context, year int) ([]string, error) {
	log := logger.New().WithField("component", "holiday.nager").WithField("year", year)
	endpoint := fmt.Sprintf("%s/PublicHolidays/%d/%s", c.BaseURL, year, c.Country)

	var parsed []nagerHoliday
	var lastErr error
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		resp, err := c.HTTP.Do(req)
		if err != nil {
			lastErr = err
			log.WithError(err).Debug("holiday request failed")
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("holiday server error: %d", resp.StatusCode)
			return lastErr
		}
		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("holiday request rejected: %d", resp.StatusCode)
			return backoff.Permanent(lastErr)
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			lastErr = fmt.Errorf("decode holidays: %w", err)
			return backoff.Permanent(lastErr)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.MaxElapsed
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return nil, fmt.Errorf("fetch holidays %d: %w", year, lastErr)
	}

	out := make([]string, 0, len(parsed))
	for _, h := range parsed {
		if h.Global || contains(h.Counties, c.Region) {
			out = append(out, h.Date)
		}
	}
	return out, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
