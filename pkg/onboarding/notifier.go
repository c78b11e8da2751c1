// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package onboarding

import (
	"sync"
)

// VerificationHub fans identity-verification events out to in-flight wait
// requests. It is owned by the onboarding service instance; events are
// delivery hints only, the poller remains the source of truth.
type VerificationHub struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]chan struct{}
}

func NewVerificationHub() *VerificationHub {
	return &VerificationHub{
		subs: make(map[string]map[int]chan struct{}),
	}
}

// Subscribe registers interest in an identity's verification. The returned
// cancel function must be called exactly once; it removes the registration.
func (h *VerificationHub) Subscribe(identityID string) (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++

	ch := make(chan struct{}, 1)
	if h.subs[identityID] == nil {
		h.subs[identityID] = make(map[int]chan struct{})
	}
	h.subs[identityID][id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if chans, ok := h.subs[identityID]; ok {
			delete(chans, id)
			if len(chans) == 0 {
				delete(h.subs, identityID)
			}
		}
	}

	return ch, cancel
}

// Notify wakes all current subscribers of an identity. The send never blocks:
// each subscriber channel holds one pending event and a wait request only
// needs one.
func (h *VerificationHub) Notify(identityID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[identityID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Len reports the number of registrations for an identity.
func (h *VerificationHub) Len(identityID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subs[identityID])
}
