// SPDX-License-Identifier: MPL-2.0

package command

import (
	"bytes"
)

const (
	// FailureRateLimited is a throttled request; retried once after a backoff.
	FailureRateLimited FailureClass = "rate-limited"
	// FailureCredentialExpired is an expired or invalid session; retried once
	// after re-authentication.
	FailureCredentialExpired FailureClass = "credential-expired"
	// FailureOther is any other non-zero exit; never retried.
	FailureOther FailureClass = "other"
)

// FailureClass is the retry category of a failed invocation.
type FailureClass string

var (
	rateLimitSignatures = lowerAll(
		"TooManyRequests",
		"Too Many Requests",
		"429 Client Error",
		"rate limit",
		"throttl",
	)

	credentialSignatures = lowerAll(
		"AADSTS70043",  // refresh token expired due to inactivity
		"AADSTS700082", // refresh token expired
		"AADSTS50173",  // grant revoked
		"AADSTS50078",  // MFA required again
		"az login",
		"refresh token has expired",
		"InvalidAuthenticationToken",
		"ExpiredAuthenticationToken",
	)
)

// Classify inspects stderr for transient-failure signatures. Matching is
// case-insensitive; rate-limit signatures are checked first.
func Classify(stderr []byte) FailureClass {
	lower := bytes.ToLower(stderr)
	if containsAny(lower, rateLimitSignatures) {
		return FailureRateLimited
	}
	if containsAny(lower, credentialSignatures) {
		return FailureCredentialExpired
	}
	return FailureOther
}

// Retryable reports whether the class may be retried once.
func (c FailureClass) Retryable() bool {
	return c == FailureRateLimited || c == FailureCredentialExpired
}

// String returns the string representation of the FailureClass.
func (c FailureClass) String() string { return string(c) }

func containsAny(haystack []byte, needles [][]byte) bool {
	for _, n := range needles {
		if bytes.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func lowerAll(sigs ...string) [][]byte {
	out := make([][]byte, len(sigs))
	for i, s := range sigs {
		out[i] = bytes.ToLower([]byte(s))
	}
	return out
}
