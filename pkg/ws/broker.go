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

package ws

import (
	"slices"
	"sync"

	"github.com/bytedance/sonic"
)

// member is the broker-side state of one registered connection.
type member struct {
	conn     Conn
	mu       sync.Mutex
	channels map[string]struct{}
	closed   bool
}

type channel struct {
	mu      sync.RWMutex
	members map[string]*member
	// dead is set when the channel is removed from the table; a joiner that
	// raced with the removal retries on a fresh channel.
	dead bool
}

// Option configures a DefaultBroker.
type Option func(*DefaultBroker)

// WithDropHook registers a callback run when a member's queue rejects a
// message.
func WithDropHook(fn func(channel string)) Option {
	return func(b *DefaultBroker) {
		b.onDrop = fn
	}
}

// DefaultBroker is the in-process Broker.
//
// Lock order: member.mu, then DefaultBroker.mu, then channel.mu. Delivery
// happens after every lock is released.
type DefaultBroker struct {
	mu       sync.RWMutex
	conns    map[string]*member
	channels map[string]*channel

	onDrop func(channel string)
}

func NewBroker(opts ...Option) *DefaultBroker {
	b := &DefaultBroker{
		conns:    make(map[string]*member),
		channels: make(map[string]*channel),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *DefaultBroker) Register(conn Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.conns[conn.ID()]; ok {
		return
	}
	b.conns[conn.ID()] = &member{
		conn:     conn,
		channels: make(map[string]struct{}),
	}
}

func (b *DefaultBroker) Unregister(conn Conn) {
	b.mu.Lock()
	m, ok := b.conns[conn.ID()]
	delete(b.conns, conn.ID())
	b.mu.Unlock()
	if !ok {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for name := range m.channels {
		b.removeMember(name, conn.ID())
	}
	m.channels = nil
}

func (b *DefaultBroker) Join(conn Conn, name string) error {
	if name == "" {
		return ErrEmptyChannel
	}
	m := b.member(conn)
	if m == nil {
		return ErrConnNotFound
	}

	for {
		ch := b.channelFor(name)

		m.mu.Lock()
		if m.closed {
			// drop the channel again if this join created it
			b.removeMember(name, conn.ID())
			m.mu.Unlock()
			return ErrConnectionClosed
		}
		ch.mu.Lock()
		if ch.dead {
			ch.mu.Unlock()
			m.mu.Unlock()
			continue
		}
		ch.members[conn.ID()] = m
		ch.mu.Unlock()
		m.channels[name] = struct{}{}
		m.mu.Unlock()
		return nil
	}
}

func (b *DefaultBroker) Leave(conn Conn, name string) {
	m := b.member(conn)
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.channels[name]; !ok {
		return
	}
	delete(m.channels, name)
	b.removeMember(name, conn.ID())
}

func (b *DefaultBroker) Publish(name string, data []byte) int {
	b.mu.RLock()
	ch, ok := b.channels[name]
	b.mu.RUnlock()
	if !ok {
		return 0
	}

	ch.mu.RLock()
	targets := make([]Conn, 0, len(ch.members))
	for _, m := range ch.members {
		targets = append(targets, m.conn)
	}
	ch.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if c.Send(data) {
			delivered++
			continue
		}
		if b.onDrop != nil {
			b.onDrop(name)
		}
	}
	return delivered
}

func (b *DefaultBroker) PublishJSON(name string, v any) (int, error) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return 0, err
	}
	return b.Publish(name, data), nil
}

func (b *DefaultBroker) Channels(conn Conn) []string {
	m := b.member(conn)
	if m == nil {
		return nil
	}
	m.mu.Lock()
	names := make([]string, 0, len(m.channels))
	for name := range m.channels {
		names = append(names, name)
	}
	m.mu.Unlock()
	slices.Sort(names)
	return names
}

func (b *DefaultBroker) Members(name string) int {
	b.mu.RLock()
	ch, ok := b.channels[name]
	b.mu.RUnlock()
	if !ok {
		return 0
	}
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return len(ch.members)
}

func (b *DefaultBroker) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.conns)
}

func (b *DefaultBroker) member(conn Conn) *member {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.conns[conn.ID()]
}

// channelFor returns the live channel for name, creating it if needed.
func (b *DefaultBroker) channelFor(name string) *channel {
	b.mu.RLock()
	ch, ok := b.channels[name]
	b.mu.RUnlock()
	if ok {
		return ch
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok = b.channels[name]; ok {
		return ch
	}
	ch = &channel{members: make(map[string]*member)}
	b.channels[name] = ch
	return ch
}

// removeMember deletes connID from the channel and drops the channel once it
// is empty. Callers hold the member lock.
func (b *DefaultBroker) removeMember(name, connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.channels[name]
	if !ok {
		return
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	delete(ch.members, connID)
	if len(ch.members) == 0 {
		ch.dead = true
		delete(b.channels, name)
	}
}

var _ Broker = (*DefaultBroker)(nil)
