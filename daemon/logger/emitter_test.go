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
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderedSubscriber struct {
	mu       sync.Mutex
	messages []string
}

func (o *orderedSubscriber) OnLogEvent(entry *Entry) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, entry.Message)
	return nil
}

func (o *orderedSubscriber) snapshot() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.messages...)
}

func TestEmitterDeliversInOrder(t *testing.T) {
	emitter := NewEmitter()
	sub := &orderedSubscriber{}
	emitter.Subscribe(sub)
	emitter.Subscribe(sub)
	defer emitter.Unsubscribe(sub)

	want := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		msg := fmt.Sprintf("entry %d", i)
		want = append(want, msg)
		emitter.Emit(NewEntry("info", "store", msg, nil))
	}

	require.Eventually(t, func() bool { return len(sub.snapshot()) == 100 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, want, sub.snapshot(), "double subscribe must not duplicate entries")
	assert.Zero(t, emitter.Dropped())
}

func TestEmitterUnsubscribeStopsDelivery(t *testing.T) {
	emitter := NewEmitter()
	sub := &orderedSubscriber{}
	emitter.Subscribe(sub)

	emitter.Emit(NewEntry("info", "server", "first", nil))
	require.Eventually(t, func() bool { return len(sub.snapshot()) == 1 }, time.Second, 5*time.Millisecond)

	emitter.Unsubscribe(sub)
	emitter.Unsubscribe(sub)
	emitter.Emit(NewEntry("info", "server", "second", nil))

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []string{"first"}, sub.snapshot())
}

type blockingSubscriber struct {
	release chan struct{}
}

func (b *blockingSubscriber) OnLogEvent(*Entry) error {
	<-b.release
	return nil
}

func TestEmitterDropsForStalledSubscriber(t *testing.T) {
	emitter := NewEmitter()
	sub := &blockingSubscriber{release: make(chan struct{})}
	emitter.Subscribe(sub)
	defer func() {
		close(sub.release)
		emitter.Unsubscribe(sub)
	}()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberQueueSize+50; i++ {
			emitter.Emit(NewEntry("debug", "observer", "link changed", nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a stalled subscriber")
	}
	assert.Greater(t, emitter.Dropped(), uint64(0))
}
