package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/laundry-sim/laundry-sim/sim/forecast"
)

// Publisher is the subset of *redis.Client used by ReportPublisher.
type Publisher interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

var _ Publisher = (*redis.Client)(nil)

// Default Redis names for weekly reports.
const (
	DefaultReportKey     = "laundry:weekly_congestion"
	DefaultReportChannel = "laundry:reports"
)

// ReportPublisher stores the latest weekly report under a key and
// announces it on a channel.
type ReportPublisher struct {
	client  Publisher
	key     string
	channel string
	ttl     time.Duration // 0 keeps the key forever
}

// NewReportPublisher uses the default key and channel.
func NewReportPublisher(client Publisher, ttl time.Duration) *ReportPublisher {
	if client == nil {
		panic("NewReportPublisher: client must not be nil")
	}
	return &ReportPublisher{client: client, key: DefaultReportKey, channel: DefaultReportChannel, ttl: ttl}
}

// DialRedis parses a redis:// URL and pings the server.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Publish writes the report as JSON and notifies subscribers.
func (p *ReportPublisher) Publish(ctx context.Context, rep *forecast.WeeklyReport) error {
	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := p.client.Set(ctx, p.key, data, p.ttl).Err(); err != nil {
		return fmt.Errorf("storing report at %s: %w", p.key, err)
	}
	n, err := p.client.Publish(ctx, p.channel, data).Result()
	if err != nil {
		return fmt.Errorf("publishing report on %s: %w", p.channel, err)
	}
	logrus.Infof("Published weekly report (%d bytes) to %s, %d subscribers", len(data), p.key, n)
	return nil
}
