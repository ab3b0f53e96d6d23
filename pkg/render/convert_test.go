package render

import (
	"context"
	"testing"

	"github.com/patchbaylabs/patchbay/pkg/errors"
)

func TestRenderFileRejectsUnknownFormat(t *testing.T) {
	err := RenderFile(context.Background(), testDoc(), t.TempDir()+"/out.gif")
	if !errors.Is(err, errors.CodeInvalidInput) {
		t.Fatalf("err = %v, want CodeInvalidInput", err)
	}
}

func TestConvertFailsWithCodeWithoutLibrsvg(t *testing.T) {
	// An empty PATH makes the rsvg-convert lookup fail, exercising
	// the missing-binary branch for both conversion targets.
	t.Setenv("PATH", "")

	if _, err := ToPDF([]byte("<svg/>")); !errors.Is(err, errors.CodeRenderFailed) {
		t.Errorf("ToPDF err = %v, want CodeRenderFailed", err)
	}
	if _, err := ToPNG([]byte("<svg/>"), 2.0); !errors.Is(err, errors.CodeRenderFailed) {
		t.Errorf("ToPNG err = %v, want CodeRenderFailed", err)
	}
}
