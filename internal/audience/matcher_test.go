package audience

import (
	"errors"
	"testing"
)

func TestCompareMatchingShapes(t *testing.T) {
	tests := []struct {
		name string
		want string
		got  string
	}{
		{name: "bare domain", want: "https://rp.example", got: "rp.example"},
		{name: "domain and port", want: "https://rp.example", got: "rp.example:443"},
		{name: "full origin", want: "https://rp.example", got: "https://rp.example"},
		{name: "full origin with explicit port", want: "https://rp.example", got: "https://rp.example:443"},
		{name: "want carries explicit default port", want: "https://rp.example:443", got: "https://rp.example"},
		{name: "http default port", want: "http://rp.example", got: "rp.example:80"},
		{name: "non-default port everywhere", want: "https://rp.example:8443", got: "rp.example:8443"},
		{name: "bare domain ignores port", want: "https://rp.example:8443", got: "rp.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Compare(tt.want, tt.got); err != nil {
				t.Errorf("Compare(%q, %q) = %v, want nil", tt.want, tt.got, err)
			}
		})
	}
}

func TestCompareMismatches(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		got     string
		wantErr error
	}{
		{name: "scheme mismatch", want: "https://rp.example", got: "http://rp.example", wantErr: ErrSchemeMismatch},
		{name: "port mismatch", want: "https://rp.example", got: "rp.example:8443", wantErr: ErrPortMismatch},
		{name: "port mismatch in full origin", want: "https://rp.example:8443", got: "https://rp.example", wantErr: ErrPortMismatch},
		{name: "domain mismatch", want: "https://rp.example", got: "evil.example", wantErr: ErrDomainMismatch},
		{name: "subdomain is not the domain", want: "https://rp.example", got: "www.rp.example", wantErr: ErrDomainMismatch},
		{name: "empty audience", want: "https://rp.example", got: "", wantErr: ErrMalformed},
		{name: "too many colons", want: "https://rp.example", got: "rp.example:443:extra", wantErr: ErrMalformed},
		{name: "empty port", want: "https://rp.example", got: "rp.example:", wantErr: ErrMalformed},
		{name: "empty host", want: "https://rp.example", got: ":443", wantErr: ErrMalformed},
		{name: "origin without host", want: "https://rp.example", got: "https://", wantErr: ErrMalformed},
		{name: "unparseable origin", want: "https://rp.example", got: "https://rp.example:not-a-port", wantErr: ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Compare(tt.want, tt.got)
			if err == nil {
				t.Fatalf("Compare(%q, %q) = nil, want %v", tt.want, tt.got, tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Compare(%q, %q) = %v, want %v", tt.want, tt.got, err, tt.wantErr)
			}
		})
	}
}

func TestCompareMalformedWant(t *testing.T) {
	// The want side is produced internally, but a bad value must still come
	// back as a mismatch, never a panic.
	if err := Compare("not a url", "rp.example"); !errors.Is(err, ErrMalformed) {
		t.Errorf("Compare() = %v, want %v", err, ErrMalformed)
	}
}
