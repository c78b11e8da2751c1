// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package billing

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"customer.subscription.updated"}`)
	secret := "whsec_test"
	now := time.Unix(1_700_000_000, 0)

	testCases := []struct {
		name        string
		header      string
		expectedErr error
	}{
		{
			name:   "valid signature",
			header: SignatureHeaderValue(payload, secret, now.Unix()),
		},
		{
			name:   "valid signature slightly old",
			header: SignatureHeaderValue(payload, secret, now.Add(-4*time.Minute).Unix()),
		},
		{
			name:        "wrong secret",
			header:      SignatureHeaderValue(payload, "whsec_other", now.Unix()),
			expectedErr: ErrSignatureInvalid,
		},
		{
			name:        "stale timestamp",
			header:      SignatureHeaderValue(payload, secret, now.Add(-10*time.Minute).Unix()),
			expectedErr: ErrSignatureInvalid,
		},
		{
			name:        "future timestamp",
			header:      SignatureHeaderValue(payload, secret, now.Add(10*time.Minute).Unix()),
			expectedErr: ErrSignatureInvalid,
		},
		{
			name:        "signature over different payload",
			header:      SignatureHeaderValue([]byte(`{"id":"evt_2"}`), secret, now.Unix()),
			expectedErr: ErrSignatureInvalid,
		},
		{
			name:        "missing v1 element",
			header:      fmt.Sprintf("t=%d", now.Unix()),
			expectedErr: ErrSignatureInvalid,
		},
		{
			name:        "missing timestamp",
			header:      "v1=deadbeef",
			expectedErr: ErrSignatureInvalid,
		},
		{
			name:        "garbage header",
			header:      "not-a-signature",
			expectedErr: ErrSignatureInvalid,
		},
		{
			name:        "empty header",
			header:      "",
			expectedErr: ErrSignatureInvalid,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := VerifySignature(payload, tc.header, secret, now)

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
