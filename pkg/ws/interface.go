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
	"context"
)

// Conn 表示一个 WebSocket 连接
type Conn interface {
	// ID 返回连接的唯一标识符
	ID() string

	// Send queues data on the connection's bounded outbound queue. It never
	// blocks and returns false when the queue is full or the connection is
	// closed, in which case the message is dropped for this connection.
	Send(data []byte) bool

	// Close 关闭连接
	Close() error

	// RemoteAddr 返回远程地址
	RemoteAddr() string

	// Locals returns a value stored on the upgrade request.
	Locals(key string) any

	// Context 返回连接的上下文。Handlers derive from it to attach values
	// for the lifetime of the connection; it is cancelled on Close.
	Context() context.Context

	// SetContext 设置连接的上下文
	SetContext(ctx context.Context)
}

// Broker fans messages out to the connections subscribed to a named channel.
type Broker interface {
	// Register makes conn known to the broker. It joins no channel.
	Register(conn Conn)

	// Unregister drops every membership of conn before returning. No
	// publish that starts afterwards reaches conn.
	Unregister(conn Conn)

	// Join subscribes conn to channel. Joining twice is a no-op.
	Join(conn Conn, channel string) error

	// Leave unsubscribes conn from channel.
	Leave(conn Conn, channel string)

	// Publish queues data on every current member of channel and returns how
	// many accepted it.
	Publish(channel string, data []byte) int

	// PublishJSON marshals v once and publishes it.
	PublishJSON(channel string, v any) (int, error)

	// Channels lists the channels conn belongs to.
	Channels(conn Conn) []string

	// Members returns the member count of channel.
	Members(channel string) int

	// Count returns the number of registered connections.
	Count() int
}

// Handler 处理 WebSocket 连接的生命周期事件
type Handler interface {
	// OnConnect 当连接建立时调用
	OnConnect(conn Conn) error

	// OnMessage 当收到消息时调用
	OnMessage(conn Conn, messageType int, data []byte) error

	// OnDisconnect 当连接断开时调用
	OnDisconnect(conn Conn, err error)

	// OnError 当发生错误时调用
	OnError(conn Conn, err error)
}

// MessageType WebSocket 消息类型常量
const (
	TextMessage   = 1
	BinaryMessage = 2
	CloseMessage  = 8
	PingMessage   = 9
	PongMessage   = 10
)
