package services

import (
	"errors"
	"testing"
)

func TestClassifyDeliveryError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want DeliveryKind
	}{
		{"smtp auth failure", errors.New("535 5.7.8 Username and Password not accepted"), DeliveryAuth},
		{"generic auth wording", errors.New("smtp: authentication failed"), DeliveryAuth},
		{"refused connection", errors.New("dial tcp 10.0.0.1:587: connection refused"), DeliveryConnection},
		{"dns failure", errors.New("dial tcp: lookup smtp.example.com: no such host"), DeliveryConnection},
		{"timeout", errors.New("i/o timeout"), DeliveryConnection},
		{"anything else", errors.New("552 message size exceeds limit"), DeliveryGeneric},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			derr := classifyDeliveryError(tc.err)
			if derr.Kind != tc.want {
				t.Errorf("classifyDeliveryError(%v) kind = %q, want %q", tc.err, derr.Kind, tc.want)
			}
			if !errors.Is(derr, tc.err) {
				t.Errorf("expected wrapped error to unwrap to the original")
			}
		})
	}
}

func TestDeliveryErrorMessages(t *testing.T) {
	authErr := &DeliveryError{Kind: DeliveryAuth}
	connErr := &DeliveryError{Kind: DeliveryConnection}
	genErr := &DeliveryError{Kind: DeliveryGeneric}

	if authErr.Error() == connErr.Error() || connErr.Error() == genErr.Error() {
		t.Errorf("expected distinct caller-facing messages per delivery kind")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{125, "2m 5s"},
		{3600, "1h 0m"},
		{3725, "1h 2m"},
	}

	for _, tc := range tests {
		if got := formatDuration(tc.seconds); got != tc.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
