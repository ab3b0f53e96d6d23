package errors

import (
	"strings"
	"testing"
)

func TestValidateDocumentID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid uuid", "4a1f2b3c-9d8e-4f10-a2b3-c4d5e6f70809", false},
		{"valid slug", "my-scene_v2", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 129), true},
		{"control character", "doc\x01", true},
		{"null byte", "doc\x00", true},
		{"path traversal", "../etc/passwd", true},
		{"path separator", "a/b", true},
		{"backslash", "a\\b", true},
		{"max length ok", strings.Repeat("a", 128), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocumentID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDocumentID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && GetCode(err) != CodeInvalidInput {
				t.Errorf("code = %v, want %v", GetCode(err), CodeInvalidInput)
			}
		})
	}
}

func TestValidateDocumentName(t *testing.T) {
	tests := []struct {
		name    string
		docName string
		wantErr bool
	}{
		{"empty is valid", "", false},
		{"ordinary name", "Kitchen mockup v3", false},
		{"unicode name", "シーン 01", false},
		{"too long", strings.Repeat("n", 257), true},
		{"control character", "bad\tname", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocumentName(tt.docName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDocumentName(%q) error = %v, wantErr %v", tt.docName, err, tt.wantErr)
			}
		})
	}
}

func TestValidateBackend(t *testing.T) {
	for _, backend := range []string{"memory", "file", "redis", "mongo"} {
		if err := ValidateBackend(backend); err != nil {
			t.Errorf("ValidateBackend(%q) = %v, want nil", backend, err)
		}
	}

	err := ValidateBackend("postgres")
	if err == nil {
		t.Fatal("unknown backend should be rejected")
	}
	if GetCode(err) != CodeConfigInvalid {
		t.Errorf("code = %v, want %v", GetCode(err), CodeConfigInvalid)
	}
}
