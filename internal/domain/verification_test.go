package domain

import (
	"errors"
	"testing"
)

func TestParseProviderFromString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		input   string
		want    Provider
		wantErr bool
	}{
		{name: "exact match", input: "zerobounce", want: ProviderZeroBounce},
		{name: "mixed case", input: "Hunter", want: ProviderHunter},
		{name: "surrounding whitespace", input: "  spokeo  ", want: ProviderSpokeo},
		{name: "unknown provider", input: "sendgrid", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseProviderFromString(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("ParseProviderFromString(%q) error = %v, want ErrValidation", tc.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseProviderFromString(%q) error = %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("ParseProviderFromString(%q) = %s, want %s", tc.input, got, tc.want)
			}
		})
	}
}

func TestVerificationResultValidate(t *testing.T) {
	t.Parallel()

	goodScore := 0.5
	badScore := 1.5

	testCases := []struct {
		name    string
		result  *VerificationResult
		wantErr bool
	}{
		{
			name:   "minimal valid result",
			result: &VerificationResult{Email: "user@example.com", Provider: ProviderZeroBounce},
		},
		{
			name:   "score in range",
			result: &VerificationResult{Email: "user@example.com", Provider: ProviderHunter, Score: &goodScore},
		},
		{
			name:    "nil result",
			result:  nil,
			wantErr: true,
		},
		{
			name:    "missing email",
			result:  &VerificationResult{Provider: ProviderZeroBounce},
			wantErr: true,
		},
		{
			name:    "unknown provider",
			result:  &VerificationResult{Email: "user@example.com", Provider: Provider("sendgrid")},
			wantErr: true,
		},
		{
			name:    "score out of range",
			result:  &VerificationResult{Email: "user@example.com", Provider: ProviderHunter, Score: &badScore},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.result.Validate()
			if tc.wantErr && !errors.Is(err, ErrValidation) {
				t.Fatalf("Validate() error = %v, want ErrValidation", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
		})
	}
}

func TestProvidersCoverAllKnownNames(t *testing.T) {
	t.Parallel()

	all := Providers()
	if len(all) != 5 {
		t.Fatalf("providers len = %d, want 5", len(all))
	}
	for _, p := range all {
		if !p.IsValid() {
			t.Fatalf("provider %q should be valid", p)
		}
	}
}
