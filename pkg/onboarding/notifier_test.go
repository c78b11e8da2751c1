// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package onboarding

import (
	"testing"
	"time"
)

func TestVerificationHub_NotifyWakesSubscribers(t *testing.T) {
	hub := NewVerificationHub()

	ch1, cancel1 := hub.Subscribe("user-1")
	defer cancel1()
	ch2, cancel2 := hub.Subscribe("user-1")
	defer cancel2()
	other, cancelOther := hub.Subscribe("user-2")
	defer cancelOther()

	hub.Notify("user-1")

	for i, ch := range []<-chan struct{}{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d was not woken", i+1)
		}
	}

	select {
	case <-other:
		t.Error("subscriber of another identity was woken")
	default:
	}
}

func TestVerificationHub_NotifyWithoutSubscribers(t *testing.T) {
	hub := NewVerificationHub()

	// Must not panic or block.
	hub.Notify("user-1")
}

func TestVerificationHub_NotifyNeverBlocks(t *testing.T) {
	hub := NewVerificationHub()

	_, cancel := hub.Subscribe("user-1")
	defer cancel()

	// The buffered event is not drained; further notifies must still return.
	hub.Notify("user-1")
	hub.Notify("user-1")
	hub.Notify("user-1")
}

func TestVerificationHub_UnsubscribeRemovesRegistration(t *testing.T) {
	hub := NewVerificationHub()

	ch, cancel := hub.Subscribe("user-1")
	if hub.Len("user-1") != 1 {
		t.Fatalf("expected 1 registration, got %d", hub.Len("user-1"))
	}

	cancel()

	if hub.Len("user-1") != 0 {
		t.Errorf("expected no registrations after unsubscribe, got %d", hub.Len("user-1"))
	}

	hub.Notify("user-1")
	select {
	case <-ch:
		t.Error("unsubscribed channel received an event")
	default:
	}
}
