// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/campuscare/campuscare/internal/engine/model"
	"github.com/campuscare/campuscare/pkg/log"
	"github.com/campuscare/campuscare/pkg/ws"
)

const (
	RelayLocal = "local"
	RelayRedis = "redis"

	forumEventName = "forumEvent"
	channelPrefix  = "organization:"
)

// Realtime configures forum event delivery.
type Realtime struct {
	// Relay is "local" for a single node or "redis" to fan events out to
	// every node through redis pub/sub.
	Relay      string `mapstructure:"relay"`
	Channel    string `mapstructure:"channel"`
	SendBuffer int    `mapstructure:"sendBuffer"`
}

func (r *Realtime) SetDefaults() {
	if r.Relay == "" {
		r.Relay = RelayLocal
	}
	if r.Channel == "" {
		r.Channel = "campuscare:forum"
	}
	if r.SendBuffer <= 0 {
		r.SendBuffer = ws.DefaultSendBuffer
	}
}

func (r *Realtime) Validate() error {
	r.Relay = strings.ToLower(strings.TrimSpace(r.Relay))
	switch r.Relay {
	case RelayLocal, RelayRedis:
		return nil
	}
	return fmt.Errorf("unknown realtime relay %q", r.Relay)
}

// ChannelName is the broker channel carrying events of org.
func ChannelName(org string) string {
	return channelPrefix + org
}

// ForumMessage is the outbound frame realtime clients receive.
type ForumMessage struct {
	Event        string           `json:"event"`
	Organization string           `json:"organization"`
	Payload      model.ForumEvent `json:"payload"`
}

func newForumMessage(evt model.ForumEvent) ForumMessage {
	return ForumMessage{
		Event:        forumEventName,
		Organization: evt.Organization,
		Payload:      evt,
	}
}

func encodeForumEvent(evt model.ForumEvent) ([]byte, error) {
	return sonic.Marshal(newForumMessage(evt))
}

// ForumPublisher hands forum events to realtime subscribers.
type ForumPublisher interface {
	Publish(ctx context.Context, evt model.ForumEvent) error
}

// LocalForumPublisher delivers to the connections of this node.
type LocalForumPublisher struct {
	broker ws.Broker
}

func NewLocalForumPublisher(broker ws.Broker) *LocalForumPublisher {
	return &LocalForumPublisher{broker: broker}
}

func (p *LocalForumPublisher) Publish(_ context.Context, evt model.ForumEvent) error {
	n, err := p.broker.PublishJSON(ChannelName(evt.Organization), newForumMessage(evt))
	if err != nil {
		return err
	}
	log.Debugw("forum event delivered", "organization", evt.Organization, "subscribers", n)
	return nil
}

// Deliver queues an encoded frame on every subscriber of org.
func (p *LocalForumPublisher) Deliver(org string, data []byte) int {
	n := p.broker.Publish(ChannelName(org), data)
	log.Debugw("forum event delivered", "organization", org, "subscribers", n)
	return n
}

// RedisForumRelay publishes through a redis channel and delivers whatever
// arrives on it locally, so every node reaches its own subscribers.
type RedisForumRelay struct {
	client  *redis.Client
	channel string
	local   *LocalForumPublisher
}

func NewRedisForumRelay(client *redis.Client, channel string, local *LocalForumPublisher) *RedisForumRelay {
	return &RedisForumRelay{
		client:  client,
		channel: channel,
		local:   local,
	}
}

func (r *RedisForumRelay) Publish(ctx context.Context, evt model.ForumEvent) error {
	data, err := encodeForumEvent(evt)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, data).Err()
}

// Run consumes the relay channel until ctx is done.
func (r *RedisForumRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer func() {
		_ = sub.Close()
	}()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	log.Infow("forum relay subscribed", "channel", r.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.deliver([]byte(msg.Payload))
		}
	}
}

func (r *RedisForumRelay) deliver(data []byte) {
	var head struct {
		Organization string `json:"organization"`
	}
	if err := sonic.Unmarshal(data, &head); err != nil || head.Organization == "" {
		log.Warnw("dropping malformed relay message", "error", err)
		return
	}
	r.local.Deliver(head.Organization, data)
}
