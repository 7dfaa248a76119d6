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
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/campuscare/campuscare/pkg/id"
	"github.com/campuscare/campuscare/pkg/log"
	"github.com/campuscare/campuscare/pkg/safe"
)

const (
	readlimit  = 64 * 1024           // inbound frames are small control messages
	pongWait   = 60 * time.Second    // 等待 pong 响应的超时时间
	pingPeriod = (pongWait * 9) / 10 // ping 发送周期，应该小于 pongWait
	writeWait  = 10 * time.Second    // 写入超时时间

	DefaultSendBuffer = 64
)

// conn wraps a fiber websocket connection. Only the writer goroutine writes
// to the socket; everything else goes through the send queue.
type conn struct {
	ws        *websocket.Conn
	id        string
	ctx       context.Context
	ctxMu     sync.RWMutex
	cancel    context.CancelFunc
	send      chan []byte
	closeOnce sync.Once
	closed    chan struct{}
}

func newConn(wsConn *websocket.Conn, sendBuffer int) *conn {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &conn{
		ws:     wsConn,
		id:     id.GetUUID(),
		ctx:    ctx,
		cancel: cancel,
		send:   make(chan []byte, sendBuffer),
		closed: make(chan struct{}),
	}
}

// ID 返回连接的唯一标识符
func (c *conn) ID() string {
	return c.id
}

func (c *conn) Send(data []byte) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close 关闭连接
func (c *conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		c.cancel()
		err = c.ws.Close()
	})
	return err
}

// RemoteAddr 返回远程地址
func (c *conn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

func (c *conn) Locals(key string) any {
	return c.ws.Locals(key)
}

// Context 返回连接的上下文，连接关闭后被取消
func (c *conn) Context() context.Context {
	c.ctxMu.RLock()
	defer c.ctxMu.RUnlock()
	return c.ctx
}

// SetContext 设置连接的上下文
func (c *conn) SetContext(ctx context.Context) {
	c.ctxMu.Lock()
	defer c.ctxMu.Unlock()
	c.ctx = ctx
}

// writeLoop drains the send queue and keeps the connection alive with pings.
func (c *conn) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(TextMessage, data); err != nil {
				log.Debugw("websocket write failed", "connId", c.id, "error", err)
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		case <-c.closed:
			return
		}
	}
}

// Handle 处理 WebSocket 连接
func Handle(broker Broker, handler Handler, sendBuffer int) fiber.Handler {
	return websocket.New(func(wsConn *websocket.Conn) {
		conn := newConn(wsConn, sendBuffer)

		wsConn.SetReadLimit(readlimit)
		_ = wsConn.SetReadDeadline(time.Now().Add(pongWait))
		wsConn.SetPongHandler(func(string) error {
			return wsConn.SetReadDeadline(time.Now().Add(pongWait))
		})

		var once sync.Once
		cleanup := func(err error) {
			once.Do(func() {
				broker.Unregister(conn)
				if handler != nil {
					handler.OnDisconnect(conn, err)
				}
				_ = conn.Close()
			})
		}

		broker.Register(conn)

		if handler != nil {
			if err := handler.OnConnect(conn); err != nil {
				handler.OnError(conn, err)
				cleanup(err)
				return
			}
		}

		safe.Go(conn.writeLoop)

		for {
			messageType, message, err := wsConn.ReadMessage()
			if err != nil {
				cleanup(err)
				return
			}
			_ = wsConn.SetReadDeadline(time.Now().Add(pongWait))

			if handler != nil {
				if err := handler.OnMessage(conn, messageType, message); err != nil {
					handler.OnError(conn, err)
				}
			}
		}
	})
}
