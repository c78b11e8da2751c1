// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader carries the webhook signature:
// "t=<unix>,v1=<hex hmac-sha256 of '<unix>.<payload>'>".
const SignatureHeader = "Billing-Signature"

const signatureTolerance = 5 * time.Minute

var ErrSignatureInvalid = errors.New("webhook signature invalid")

// VerifySignature checks the signature header against the raw payload.
// It must run before any payload handling; on failure callers reject the
// request without logging payload content.
func VerifySignature(payload []byte, header, secret string, now time.Time) error {
	var timestamp int64
	var signature string

	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			ts, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return ErrSignatureInvalid
			}
			timestamp = ts
		case "v1":
			signature = v
		}
	}

	if timestamp == 0 || signature == "" {
		return ErrSignatureInvalid
	}

	drift := now.Sub(time.Unix(timestamp, 0))
	if drift > signatureTolerance || drift < -signatureTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrSignatureInvalid)
	}

	expected := ComputeSignature(payload, secret, timestamp)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureInvalid
	}

	return nil
}

// ComputeSignature produces the v1 signature for a payload at a timestamp.
// Exported for tests and for the provider simulator in local development.
func ComputeSignature(payload []byte, secret string, timestamp int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeaderValue renders the full header for a payload, used by tests.
func SignatureHeaderValue(payload []byte, secret string, timestamp int64) string {
	return fmt.Sprintf("t=%d,v1=%s", timestamp, ComputeSignature(payload, secret, timestamp))
}
