// Package simulator generates order traffic against a serving instance.
// It mixes a pool of plausible orders with a configurable ratio of
// nonsense "chaos" orders that only the plating station can satisfy.
package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"griddle/pkg/logging"
)

// Config tunes the traffic generator.
type Config struct {
	// BaseURL is the API server to submit orders to.
	BaseURL string

	// Interval is the pause between submissions. Defaults to 3s.
	Interval time.Duration

	// ChaosRatio is the fraction of submissions drawn from the chaos
	// pool, between 0 and 1.
	ChaosRatio float64

	// Count limits the number of submissions; 0 means run until the
	// context is cancelled.
	Count int

	// NormalPool and ChaosPool override the built-in pools when set.
	NormalPool []string
	ChaosPool  []string

	// Seed makes order selection reproducible when non-zero.
	Seed int64
}

// Simulator posts randomly selected orders at a fixed interval.
type Simulator struct {
	client     *http.Client
	baseURL    string
	interval   time.Duration
	chaosRatio float64
	count      int
	normal     []string
	chaos      []string
	rng        *rand.Rand
}

// New builds a simulator from the config, filling in defaults.
func New(cfg Config) *Simulator {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 3 * time.Second
	}
	normal := cfg.NormalPool
	if len(normal) == 0 {
		normal = DefaultNormalOrders
	}
	chaos := cfg.ChaosPool
	if len(chaos) == 0 {
		chaos = DefaultChaosOrders
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		client:     &http.Client{},
		baseURL:    cfg.BaseURL,
		interval:   interval,
		chaosRatio: cfg.ChaosRatio,
		count:      cfg.Count,
		normal:     normal,
		chaos:      chaos,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// Run submits orders until the context is cancelled or the configured
// count is reached. Each submission blocks until the order is terminal,
// matching how a customer waits at the counter.
func (s *Simulator) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	submitted := 0
	for {
		text := s.pick()
		if err := s.submit(ctx, text); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logging.Warn("Simulator", "order submission failed: %v", err)
		}
		submitted++
		if s.count > 0 && submitted >= s.count {
			logging.Info("Simulator", "submitted %d orders, stopping", submitted)
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// pick selects the next order text, rolling the chaos ratio first.
func (s *Simulator) pick() string {
	if s.rng.Float64() < s.chaosRatio {
		return s.chaos[s.rng.Intn(len(s.chaos))]
	}
	return s.normal[s.rng.Intn(len(s.normal))]
}

func (s *Simulator) submit(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"order": text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/order", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	logging.Info("Simulator", "submitting order: %s", text)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var decoded struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Errorf("unexpected response body: %w", err)
	}
	logging.Info("Simulator", "order served: %s", decoded.Response)
	return nil
}
