package backend

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotice_MessageSelection(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", &ValidationError{Message: "Username is required"}, "Username is required"},
		{"backend", &Error{Message: "Invalid session"}, "Invalid session"},
		{"transport status", &TransportError{Status: 503}, "backend returned status 503"},
		{"download", &DownloadError{Message: "could not save file"}, "could not save file"},
		{"empty validation falls back", &ValidationError{}, "Something went wrong. Please try again."},
		{"wrapped backend error", fmt.Errorf("generating: %w", &Error{Message: "bad format"}), "bad format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Notice(tt.err); got != tt.want {
				t.Errorf("Notice() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransportError_UnavailableOnlyWithoutResponse(t *testing.T) {
	noResponse := &TransportError{Status: 0, Err: errors.New("connection refused")}
	if !errors.Is(noResponse, ErrUnavailable) {
		t.Error("transport error without response should wrap ErrUnavailable")
	}

	rejected := &TransportError{Status: 500}
	if errors.Is(rejected, ErrUnavailable) {
		t.Error("a served non-2xx response is not unavailability")
	}
}

func TestValidationf_FormatsMessage(t *testing.T) {
	err := Validationf("unsupported file type %q", ".docx")
	if err.Message != `unsupported file type ".docx"` {
		t.Errorf("Message = %q", err.Message)
	}
}
