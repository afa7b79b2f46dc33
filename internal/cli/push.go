package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/weft/internal/config"
	"github.com/aretw0/weft/pkg/adapters/redis"
	"github.com/aretw0/weft/pkg/dispatch"
	backend "github.com/redis/go-redis/v9"
)

// Publish sends one push event over the configured transport and returns the
// number of subscribers that received it. For SSE the event is posted to the
// admin hub at cfg.PushURL().
func Publish(ctx context.Context, cfg *config.Config, env redis.Envelope) (int64, error) {
	if env.Event == "" {
		env.Event = cfg.Push.Event
	}

	switch cfg.Push.Transport {
	case config.TransportRedis:
		client := backend.NewClient(&backend.Options{Addr: cfg.Push.RedisAddr})
		defer client.Close()
		return redis.NewPublisher(client, cfg.Push.Channel).Publish(ctx, env)
	default:
		d, err := dispatch.New("", dispatch.WithTimeout(cfg.Timeout))
		if err != nil {
			return 0, err
		}
		resp, err := d.Dispatch(ctx, cfg.PushURL(), env)
		if err != nil {
			return 0, err
		}
		n, ok := resp.Fields()["delivered"].(float64)
		if !ok {
			return 0, fmt.Errorf("hub reply has no delivered count")
		}
		return int64(n), nil
	}
}
