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

// Package daemon implements the settings daemon server and IPC protocol.
package daemon

import (
	"sync"
	"time"

	"github.com/we-are-mono/streambox-settings/daemon/logger"
	"github.com/we-are-mono/streambox-settings/types"
)

const subscriberBuffer = 32

// Notifier broadcasts change signals to monitor clients.
// Emit never blocks: a subscriber whose buffer is full misses the signal.
type Notifier struct {
	subscribers map[int]*signalSubscriber
	nextID      int
	mu          sync.RWMutex
}

type signalSubscriber struct {
	ch     chan types.Signal
	filter map[string]bool
}

// NewNotifier creates a notifier with no subscribers
func NewNotifier() *Notifier {
	return &Notifier{subscribers: make(map[int]*signalSubscriber)}
}

// Subscribe registers a subscriber for the named signals (all when empty).
// The returned function unsubscribes and closes the channel.
func (n *Notifier) Subscribe(names ...string) (<-chan types.Signal, func()) {
	sub := &signalSubscriber{ch: make(chan types.Signal, subscriberBuffer)}
	if len(names) > 0 {
		sub.filter = make(map[string]bool, len(names))
		for _, name := range names {
			sub.filter[name] = true
		}
	}

	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subscribers[id] = sub
	n.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subscribers, id)
			n.mu.Unlock()
			close(sub.ch)
		})
	}
}

// Emit delivers a signal to every matching subscriber
func (n *Notifier) Emit(name string, payload interface{}) types.Signal {
	sig := types.Signal{
		Name:      name,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Payload:   payload,
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, sub := range n.subscribers {
		if sub.filter != nil && !sub.filter[name] {
			continue
		}
		select {
		case sub.ch <- sig:
		default:
			log.Warn("Dropping signal for slow subscriber", logger.Field{Key: "signal", Value: name})
		}
	}
	return sig
}

// Count returns the number of subscribers
func (n *Notifier) Count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subscribers)
}
