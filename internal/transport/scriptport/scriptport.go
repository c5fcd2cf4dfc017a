// Copyright 2026 FuseKit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package scriptport is an in-process transport fed from a fixed list
// of operations, recording every reply. It exists for tests and the
// demo CLI; it speaks no wire protocol and mounts nothing.
package scriptport

import (
	"errors"
	"io"
	"sync"
	"syscall"

	"fusekit/internal/transport"
)

// Session replays a scripted sequence of operations. Next returns each
// scripted op in order, then io.EOF.
type Session struct {
	mu     sync.Mutex
	reqs   []*Request
	pos    int
	closed bool
}

// NewSession scripts one request per op.
func NewSession(ops ...transport.Op) *Session {
	s := &Session{}
	for _, op := range ops {
		s.reqs = append(s.reqs, &Request{op: op})
	}
	return s
}

// Next returns the next scripted request, or io.EOF once the script is
// exhausted or the session closed.
func (s *Session) Next() (transport.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.pos >= len(s.reqs) {
		return nil, io.EOF
	}
	req := s.reqs[s.pos]
	s.pos++
	return req, nil
}

// Close ends the session early; subsequent Next calls return io.EOF.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Requests exposes the scripted requests so callers can inspect the
// recorded replies after the loop has drained the session.
func (s *Session) Requests() []*Request {
	return s.reqs
}

// Request is one scripted operation plus whatever was replied to it.
type Request struct {
	op transport.Op

	mu      sync.Mutex
	replied bool
	reply   transport.Reply
	errno   syscall.Errno
	isErr   bool
}

// Op returns the scripted operation.
func (r *Request) Op() transport.Op {
	return r.op
}

// Reply records a success reply. Replying twice is a dispatch bug and
// fails loudly.
func (r *Request) Reply(reply transport.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.replied {
		return errors.New("scriptport: request already replied to")
	}
	r.replied = true
	r.reply = reply
	return nil
}

// ReplyErr records an error reply.
func (r *Request) ReplyErr(errno syscall.Errno) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.replied {
		return errors.New("scriptport: request already replied to")
	}
	r.replied = true
	r.errno = errno
	r.isErr = true
	return nil
}

// Replied reports whether any reply was recorded.
func (r *Request) Replied() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replied
}

// Result returns the recorded success reply, or ok=false if the request
// was answered with an errno (or not at all).
func (r *Request) Result() (transport.Reply, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.replied || r.isErr {
		return nil, false
	}
	return r.reply, true
}

// Errno returns the recorded errno, or ok=false if the request got a
// success reply (or no reply).
func (r *Request) Errno() (syscall.Errno, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.replied || !r.isErr {
		return 0, false
	}
	return r.errno, true
}

// Mounter hands out a prebuilt session, whatever the mountpoint. It
// lets the dispatch loop's mount path run end to end in tests.
type Mounter struct {
	Session *Session

	// Fail makes Mount fail this many times before succeeding, for
	// exercising mount retry.
	Fail    int
	Err     error
	mu      sync.Mutex
	mounted int
}

// Mount returns the configured session after the scripted failures.
func (m *Mounter) Mount(mountpoint string, cfg transport.MountConfig) (transport.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail > 0 {
		m.Fail--
		if m.Err != nil {
			return nil, m.Err
		}
		return nil, errors.New("scriptport: mount refused")
	}
	m.mounted++
	return m.Session, nil
}

// Mounted returns how many times Mount succeeded.
func (m *Mounter) Mounted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mounted
}
