// SPDX-License-Identifier: MPL-2.0

package command

import "testing"

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stderr string
		want   FailureClass
	}{
		{"empty", "", FailureOther},
		{"unrelated failure", "ERROR: (ResourceGroupNotFound) Resource group 'rg' could not be found.", FailureOther},
		{"http 429", "ERROR: Too Many Requests({\"error\":{\"code\":\"TooManyRequests\"}})", FailureRateLimited},
		{"throttling lowercase", "request was throttled by the server", FailureRateLimited},
		{"expired refresh token", "AADSTS700082: The refresh token has expired due to inactivity.", FailureCredentialExpired},
		{"login hint", "Please run 'az login' to setup account.", FailureCredentialExpired},
		{"expired token mixed case", "code: expiredauthenticationtoken", FailureCredentialExpired},
		{"rate limit wins over credentials", "TooManyRequests while refreshing; please run az login", FailureRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Classify([]byte(tt.stderr))
			if got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.stderr, got, tt.want)
			}
		})
	}
}

func TestFailureClass_Retryable(t *testing.T) {
	t.Parallel()

	if !FailureRateLimited.Retryable() || !FailureCredentialExpired.Retryable() {
		t.Error("transient classes must be retryable")
	}
	if FailureOther.Retryable() {
		t.Error("FailureOther must not be retryable")
	}
}
