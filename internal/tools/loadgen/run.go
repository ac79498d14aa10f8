package loadgen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Config struct {
	BaseURL     string
	Profile     string
	Duration    time.Duration
	RPS         int
	Concurrency int
	Seed        int64
}

type Result struct {
	TotalRequests int64
	Failures      int64
	Status2xx     int64
	Status4xx     int64
	Status5xx     int64
}

type endpoint struct {
	method string
	path   string
	body   string
	header map[string]string
}

func Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 15
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}

	endpoints := endpointsForProfile(cfg.Profile)
	if len(endpoints) == 0 {
		return Result{}, fmt.Errorf("unknown profile: %s", cfg.Profile)
	}
	client := &http.Client{
		Timeout: 5 * time.Second,
		// the google login redirect must not leave the API
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var total, failures, s2xx, s4xx, s5xx int64
	jobs := make(chan endpoint, cfg.Concurrency*2)
	wg := sync.WaitGroup{}

	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ep := range jobs {
				req, err := http.NewRequestWithContext(ctx, ep.method, baseURL+ep.path, strings.NewReader(ep.body))
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				if ep.body != "" {
					req.Header.Set("Content-Type", "application/json")
				}
				for k, v := range ep.header {
					req.Header.Set(k, v)
				}
				resp, err := client.Do(req)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				_ = resp.Body.Close()
				atomic.AddInt64(&total, 1)
				switch {
				case resp.StatusCode >= 200 && resp.StatusCode < 300:
					atomic.AddInt64(&s2xx, 1)
				case resp.StatusCode >= 400 && resp.StatusCode < 500:
					atomic.AddInt64(&s4xx, 1)
				case resp.StatusCode >= 500:
					atomic.AddInt64(&s5xx, 1)
				}
			}
		}()
	}

	// same seed, same request sequence
	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)))
	ticker := time.NewTicker(time.Second / time.Duration(cfg.RPS))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return Result{
				TotalRequests: atomic.LoadInt64(&total),
				Failures:      atomic.LoadInt64(&failures),
				Status2xx:     atomic.LoadInt64(&s2xx),
				Status4xx:     atomic.LoadInt64(&s4xx),
				Status5xx:     atomic.LoadInt64(&s5xx),
			}, nil
		case <-ticker.C:
			select {
			case jobs <- endpoints[rng.IntN(len(endpoints))]:
			case <-ctx.Done():
			}
		}
	}
}

var (
	browseEndpoints = []endpoint{
		{method: http.MethodGet, path: "/health/live"},
		{method: http.MethodGet, path: "/api/v1/stadiums/search?searchValue=Seoul&page=1&size=10"},
		{method: http.MethodGet, path: "/api/v1/stadiums/search?searchValue=Jamsil"},
		{method: http.MethodGet, path: "/api/v1/stadiums/search?searchValue=Busan%20Volleyball&page=1&size=5"},
	}
	memberEndpoints = []endpoint{
		{method: http.MethodGet, path: "/api/v1/members/email-dup?email=loadgen@example.com"},
		{method: http.MethodPost, path: "/api/v1/members/login", body: `{"email":"loadgen@example.com","password":"not-the-password"}`},
		{method: http.MethodGet, path: "/api/v1/auth/google/login"},
	}
	errorEndpoints = []endpoint{
		{method: http.MethodPost, path: "/api/v1/members/reissue", header: map[string]string{"RefreshToken": "Bearer invalid"}},
		{method: http.MethodGet, path: "/api/v1/members/info", header: map[string]string{"Authorization": "Bearer invalid"}},
		{method: http.MethodGet, path: "/api/v1/stadiums/likelist"},
		{method: http.MethodGet, path: "/api/v1/auth/google/callback?state=bad&code=x"},
	}
)

func endpointsForProfile(profile string) []endpoint {
	switch strings.ToLower(profile) {
	case "", "mixed":
		out := append([]endpoint{}, browseEndpoints...)
		out = append(out, memberEndpoints...)
		return append(out, errorEndpoints[:2]...)
	case "browse":
		return browseEndpoints
	case "auth":
		return append(append([]endpoint{}, memberEndpoints...), errorEndpoints[:2]...)
	case "error-heavy":
		return errorEndpoints
	default:
		return nil
	}
}
