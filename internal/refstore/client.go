package refstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pointake/internal"
	"pointake/internal/config"
)

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.RefAPITimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.RefAPIRateLimit),
	}
}

func (c *Client) GetAllParts(ctx context.Context) ([]internal.Part, error) {
	var out []internal.Part
	err := c.fetchPages(ctx, "parts", func(body []byte) (int, error) {
		var rows []struct {
			InternalPartNumber string `json:"internal_part_number"`
			Description        string `json:"description"`
		}
		if err := json.Unmarshal(body, &rows); err != nil {
			return 0, err
		}
		for _, row := range rows {
			number := strings.TrimSpace(row.InternalPartNumber)
			if number == "" {
				continue
			}
			out = append(out, internal.Part{InternalPartNumber: number, Description: strings.TrimSpace(row.Description)})
		}
		return len(rows), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAllCustomers(ctx context.Context) ([]internal.Customer, error) {
	var out []internal.Customer
	err := c.fetchPages(ctx, "customers", func(body []byte) (int, error) {
		var rows []struct {
			AccountNumber string `json:"account_number"`
			CompanyName   string `json:"company_name"`
			Address       string `json:"address"`
			City          string `json:"city"`
			State         string `json:"state"`
			PostalCode    string `json:"postal_code"`
			Country       string `json:"country"`
		}
		if err := json.Unmarshal(body, &rows); err != nil {
			return 0, err
		}
		for _, row := range rows {
			account := strings.TrimSpace(row.AccountNumber)
			if account == "" {
				continue
			}
			out = append(out, internal.Customer{
				AccountNumber: account,
				CompanyName:   strings.TrimSpace(row.CompanyName),
				Address:       strings.TrimSpace(row.Address),
				City:          strings.TrimSpace(row.City),
				State:         strings.TrimSpace(row.State),
				PostalCode:    strings.TrimSpace(row.PostalCode),
				Country:       strings.TrimSpace(row.Country),
			})
		}
		return len(rows), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) fetchPages(ctx context.Context, endpoint string, consume func([]byte) (int, error)) error {
	pageSize := c.cfg.RefAPIPageSize
	if pageSize <= 0 {
		pageSize = 1000
	}

	for offset := 0; ; offset += pageSize {
		body, err := c.fetchJSON(ctx, endpoint, map[string]string{
			"offset": strconv.Itoa(offset),
			"limit":  strconv.Itoa(pageSize),
		})
		if err != nil {
			return err
		}
		n, err := consume(body)
		if err != nil {
			return err
		}
		if n < pageSize {
			return nil
		}
	}
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	if strings.TrimSpace(c.cfg.RefAPIBaseURL) == "" {
		return nil, errors.New("missing REF_API_BASE_URL")
	}
	if strings.TrimSpace(c.cfg.RefAPIToken) == "" {
		return nil, errors.New("missing REF_API_TOKEN")
	}

	baseURL := strings.TrimRight(c.cfg.RefAPIBaseURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.RefAPIToken)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 5 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("reference api status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("reference api error: status=%d body=%s", resp.StatusCode, string(body))
		}

		return body, nil
	}

	if lastErr == nil {
		lastErr = errors.New("reference api request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
