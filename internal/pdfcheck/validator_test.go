package pdfcheck

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receiptiq/internal/logging"
)

// minimalPDF builds a one-page PDF with an exact cross-reference table.
func minimalPDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 200] /Resources << >> >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestValidator_Validate(t *testing.T) {
	valid := minimalPDF()

	tests := []struct {
		name       string
		path       func(t *testing.T) string
		wantValid  bool
		wantReason string
	}{
		{
			name:       "valid pdf",
			path:       func(t *testing.T) string { return writeFile(t, "ok.pdf", valid) },
			wantValid:  true,
			wantReason: ReasonValid,
		},
		{
			name:       "missing file",
			path:       func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.pdf") },
			wantReason: ReasonNotFound,
		},
		{
			name:       "plain text",
			path:       func(t *testing.T) string { return writeFile(t, "notes.pdf", []byte("just some receipt notes")) },
			wantReason: ReasonCorrupt,
		},
		{
			name:       "truncated pdf",
			path:       func(t *testing.T) string { return writeFile(t, "cut.pdf", valid[:24]) },
			wantReason: ReasonCorrupt,
		},
		{
			name:       "empty file",
			path:       func(t *testing.T) string { return writeFile(t, "empty.pdf", nil) },
			wantReason: ReasonCorrupt,
		},
	}

	v := NewValidator(logging.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := v.Validate(tt.path(t))
			assert.Equal(t, tt.wantValid, ok)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}
