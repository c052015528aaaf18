// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

package logger

import (
	"sync"
	"sync/atomic"
)

// subscriberQueueSize bounds the entries buffered for one subscriber
const subscriberQueueSize = 256

// Subscriber is the interface for log event subscribers (log stream clients)
type Subscriber interface {
	OnLogEvent(entry *Entry) error
}

// subscription delivers queued entries to one subscriber in order
type subscription struct {
	sub   Subscriber
	queue chan *Entry
}

func (s *subscription) run() {
	for entry := range s.queue {
		_ = s.sub.OnLogEvent(entry)
	}
}

// Emitter fans log entries out to subscribers. Each subscriber receives
// entries in emission order on its own goroutine; when its queue is full
// new entries are dropped for that subscriber and counted.
type Emitter struct {
	mu      sync.RWMutex
	subs    map[Subscriber]*subscription
	dropped atomic.Uint64
}

// NewEmitter creates a new log event emitter
func NewEmitter() *Emitter {
	return &Emitter{subs: make(map[Subscriber]*subscription)}
}

// Subscribe adds a subscriber. Subscribing twice has no effect.
func (e *Emitter) Subscribe(sub Subscriber) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.subs[sub]; ok {
		return
	}
	s := &subscription{sub: sub, queue: make(chan *Entry, subscriberQueueSize)}
	e.subs[sub] = s
	go s.run()
}

// Unsubscribe removes a subscriber. Entries already queued for it are
// still delivered.
func (e *Emitter) Unsubscribe(sub Subscriber) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s, ok := e.subs[sub]; ok {
		delete(e.subs, sub)
		close(s.queue)
	}
}

// Emit queues entry for every subscriber without blocking the caller
func (e *Emitter) Emit(entry *Entry) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, s := range e.subs {
		select {
		case s.queue <- entry:
		default:
			e.dropped.Add(1)
		}
	}
}

// Dropped returns how many entries were discarded for slow subscribers
func (e *Emitter) Dropped() uint64 {
	return e.dropped.Load()
}
