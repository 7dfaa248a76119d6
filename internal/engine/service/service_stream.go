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
	"errors"

	"github.com/bytedance/sonic"

	"github.com/campuscare/campuscare/internal/engine/core"
	"github.com/campuscare/campuscare/internal/engine/guard"
	"github.com/campuscare/campuscare/internal/engine/model"
	"github.com/campuscare/campuscare/pkg/http/middleware"
	"github.com/campuscare/campuscare/pkg/log"
	"github.com/campuscare/campuscare/pkg/metrics"
	"github.com/campuscare/campuscare/pkg/ws"
)

const (
	EventJoinOrganization  = "joinOrganization"
	EventLeaveOrganization = "leaveOrganization"
	EventJoined            = "joined"
	EventLeft              = "left"
	EventError             = "error"
)

// StreamRequest is an inbound client frame.
type StreamRequest struct {
	Event        string `json:"event"`
	Organization string `json:"organization"`
}

// StreamReply acknowledges a client frame.
type StreamReply struct {
	Event        string `json:"event"`
	Organization string `json:"organization,omitempty"`
	Kind         string `json:"kind,omitempty"`
	Message      string `json:"message,omitempty"`
}

// ForumStream handles realtime connections. Clients subscribe to
// organization channels and receive the forum events published there.
type ForumStream struct {
	broker  ws.Broker
	guard   *guard.Guard
	metrics *metrics.Metrics
}

func NewForumStream(broker ws.Broker, g *guard.Guard, m *metrics.Metrics) *ForumStream {
	return &ForumStream{
		broker:  broker,
		guard:   g,
		metrics: m,
	}
}

type principalCtxKey struct{}

// principalOf returns the principal bound to conn by OnConnect.
func principalOf(conn ws.Conn) (model.Principal, bool) {
	p, ok := conn.Context().Value(principalCtxKey{}).(model.Principal)
	return p, ok && p.ID != ""
}

// OnConnect binds the principal resolved on the upgrade request to the
// connection context. Later frames are authorized against that principal.
func (s *ForumStream) OnConnect(conn ws.Conn) error {
	p, ok := conn.Locals(middleware.PrincipalKey).(model.Principal)
	if !ok || p.ID == "" {
		return core.Unauthenticated("authentication required")
	}
	conn.SetContext(context.WithValue(conn.Context(), principalCtxKey{}, p))
	s.metrics.WSConnected()
	log.Debugw("realtime client connected", "connId", conn.ID(), "userId", p.ID, "remote", conn.RemoteAddr())
	return nil
}

func (s *ForumStream) OnMessage(conn ws.Conn, messageType int, data []byte) error {
	if messageType != ws.TextMessage {
		return nil
	}
	p, ok := principalOf(conn)
	if !ok {
		return core.Unauthenticated("authentication required")
	}

	var req StreamRequest
	if err := sonic.Unmarshal(data, &req); err != nil {
		s.reply(conn, errorReply("", core.InvalidArgument("malformed message")))
		return nil
	}

	switch req.Event {
	case EventJoinOrganization:
		if err := s.Join(conn, p, req.Organization); err != nil {
			s.reply(conn, errorReply(req.Organization, err))
			return nil
		}
		s.reply(conn, StreamReply{Event: EventJoined, Organization: req.Organization})
	case EventLeaveOrganization:
		s.broker.Leave(conn, ChannelName(req.Organization))
		s.reply(conn, StreamReply{Event: EventLeft, Organization: req.Organization})
	default:
		s.reply(conn, errorReply(req.Organization, core.InvalidArgument("unknown event %q", req.Event)))
	}
	return nil
}

// Join subscribes conn to org when p may see that organization.
func (s *ForumStream) Join(conn ws.Conn, p model.Principal, org string) error {
	if org == "" {
		return core.InvalidArgument("organization is required")
	}
	if err := check(s.metrics, s.guard.AuthorizeOrganization(p, org)); err != nil {
		return err
	}
	if err := s.broker.Join(conn, ChannelName(org)); err != nil {
		if errors.Is(err, ws.ErrConnectionClosed) || errors.Is(err, ws.ErrConnNotFound) {
			return core.Wrap(core.KindInvalidArgument, err, "connection is closed")
		}
		return err
	}
	log.Debugw("realtime client joined", "connId", conn.ID(), "userId", p.ID, "organization", org)
	return nil
}

func (s *ForumStream) OnDisconnect(conn ws.Conn, err error) {
	if _, ok := principalOf(conn); !ok {
		return
	}
	s.metrics.WSDisconnected()
	log.Debugw("realtime client disconnected", "connId", conn.ID(), "reason", err)
}

func (s *ForumStream) OnError(conn ws.Conn, err error) {
	log.Warnw("realtime connection error", "connId", conn.ID(), "error", err)
}

func (s *ForumStream) reply(conn ws.Conn, r StreamReply) {
	data, err := sonic.Marshal(r)
	if err != nil {
		return
	}
	conn.Send(data)
}

func errorReply(org string, err error) StreamReply {
	msg := err.Error()
	var ce *core.Error
	if errors.As(err, &ce) && ce.Msg != "" {
		msg = ce.Msg
	}
	return StreamReply{
		Event:        EventError,
		Organization: org,
		Kind:         string(core.KindOf(err)),
		Message:      msg,
	}
}

var _ ws.Handler = (*ForumStream)(nil)
