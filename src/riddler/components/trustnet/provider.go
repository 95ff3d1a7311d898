package trustnet

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout   = 30 * time.Second
	snapshotKey      = "trustnet:snapshot"
	maxListBodyBytes = 4 * 1024 * 1024
)

// ErrSourceUnavailable reports that the remote list could not be fetched.
// The previously loaded snapshot stays in effect.
var ErrSourceUnavailable = errors.New("trustnet: source unavailable")

// set is an immutable membership snapshot. Never mutated after publish.
type set map[string]struct{}

// Provider serves O(1) membership checks against an atomically swapped
// snapshot of a remotely curated account list. Refresh never blocks readers.
type Provider struct {
	url        string
	httpClient *http.Client
	rdb        *redis.Client
	snapshot   atomic.Value // set
}

// NewProvider builds a provider for the given list URL. rdb is optional; when
// present the last good snapshot is mirrored there so a restart before the
// first successful fetch can still degrade gracefully.
func NewProvider(url string, rdb *redis.Client) *Provider {
	p := &Provider{
		url: url,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		rdb: rdb,
	}
	p.snapshot.Store(set{})
	return p
}

// IsMember is a pure lookup against the current snapshot.
func (p *Provider) IsMember(id string) bool {
	s := p.snapshot.Load().(set)
	_, ok := s[id]
	return ok
}

// Size returns the current snapshot cardinality.
func (p *Provider) Size() int {
	return len(p.snapshot.Load().(set))
}

// Refresh fetches and atomically publishes a new snapshot. On failure the
// current snapshot is kept; if nothing was ever loaded it falls back to the
// Redis mirror before returning ErrSourceUnavailable.
func (p *Provider) Refresh(ctx context.Context) error {
	ids, err := p.fetch(ctx)
	if err != nil {
		if p.Size() == 0 {
			p.restoreFromMirror(ctx)
		}
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	s := make(set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	p.snapshot.Store(s)
	p.mirror(ctx, ids)
	return nil
}

func (p *Provider) fetch(ctx context.Context) ([]string, error) {
	if strings.TrimSpace(p.url) == "" {
		return nil, fmt.Errorf("list URL not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxListBodyBytes))
	if err != nil {
		return nil, err
	}
	return parseList(body)
}

// parseList accepts either a JSON array of account IDs or newline-delimited
// plain text with optional # comments.
func parseList(body []byte) ([]string, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var ids []string
		if err := json.Unmarshal([]byte(trimmed), &ids); err != nil {
			return nil, fmt.Errorf("parse JSON list: %w", err)
		}
		return cleanIDs(ids), nil
	}

	var ids []string
	scanner := bufio.NewScanner(strings.NewReader(trimmed))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	return cleanIDs(ids), scanner.Err()
}

func cleanIDs(ids []string) []string {
	out := ids[:0]
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

func (p *Provider) mirror(ctx context.Context, ids []string) {
	if p.rdb == nil {
		return
	}
	payload, err := json.Marshal(ids)
	if err != nil {
		return
	}
	if err := p.rdb.Set(ctx, snapshotKey, payload, 0).Err(); err != nil {
		log.Printf("trustnet: mirror snapshot: %v", err)
	}
}

func (p *Provider) restoreFromMirror(ctx context.Context) {
	if p.rdb == nil {
		return
	}
	payload, err := p.rdb.Get(ctx, snapshotKey).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("trustnet: read mirror: %v", err)
		}
		return
	}
	var ids []string
	if err := json.Unmarshal([]byte(payload), &ids); err != nil {
		log.Printf("trustnet: decode mirror: %v", err)
		return
	}
	s := make(set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	p.snapshot.Store(s)
	log.Printf("trustnet: restored %d ids from mirror", len(s))
}
