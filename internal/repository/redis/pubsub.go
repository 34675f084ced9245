package redisrepo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// GamesChanged is broadcast after an instance persisted game mutations.
type GamesChanged struct {
	Origin  string   `json:"origin"`
	Kind    string   `json:"kind"`
	GameIDs []string `json:"game_ids"`
	TsUnix  int64    `json:"ts_unix"`
}

// GamesPubSub fans game changes out to every running instance so that each
// one can refresh its in-memory collection.
type GamesPubSub struct {
	rdb     *redis.Client
	channel string
	origin  string
}

// NewGamesPubSub returns a bridge identified by origin. Messages published
// by the same origin are not delivered back to it.
func NewGamesPubSub(rdb *redis.Client, origin string) *GamesPubSub {
	return &GamesPubSub{
		rdb:     rdb,
		channel: ChannelGamesChanged(),
		origin:  origin,
	}
}

func (p *GamesPubSub) Origin() string { return p.origin }

func (p *GamesPubSub) Publish(ctx context.Context, kind string, gameIDs []string) error {
	b, err := json.Marshal(GamesChanged{
		Origin:  p.origin,
		Kind:    kind,
		GameIDs: gameIDs,
		TsUnix:  time.Now().Unix(),
	})
	if err != nil {
		return err
	}

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

// Subscribe blocks delivering foreign messages to handler until ctx ends.
func (p *GamesPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, msg GamesChanged)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg GamesChanged
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				continue
			}
			if msg.Origin == p.origin {
				continue
			}
			handler(ctx, msg)
		}
	}
}
