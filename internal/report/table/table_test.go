package table

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/qbpharma/deployctl/internal/report"
)

func TestReporter_Render(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		steps    []report.StepResult
		wantRows []string
		wantFoot string
	}{
		{
			name: "all pass",
			steps: []report.StepResult{
				{Name: "archive", Duration: 120 * time.Millisecond, Passed: true, Details: "2 files, 1.2 kB"},
				{Name: "upload", Duration: 3 * time.Second, Passed: true, Details: "https://example.test/abc123"},
				{Name: "script", Duration: 2 * time.Millisecond, Passed: true, Details: "auto_deploy.sh"},
			},
			wantRows: []string{"Archive", "Upload", "2 files, 1.2 kB", "https://example.test/abc123", "auto_deploy.sh", "passed"},
			wantFoot: "Deployment prepared",
		},
		{
			name: "with failure",
			steps: []report.StepResult{
				{Name: "archive", Duration: 120 * time.Millisecond, Passed: true, Details: "2 files, 1.2 kB"},
				{Name: "upload", Duration: 3 * time.Second, Passed: false, Details: "ignored", Error: "access denied"},
			},
			wantRows: []string{"✖", "failed", "access denied"},
			wantFoot: "Deployment failed at step 'upload'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buffy bytes.Buffer

			r := &Reporter{
				Steps: tt.steps,
				Dst:   &buffy,
			}
			r.Render()

			out := buffy.String()
			if !strings.HasPrefix(out, "\n") {
				t.Errorf("Render() output should start with an empty line, got = \n%s", out)
			}
			for _, want := range tt.wantRows {
				if !strings.Contains(out, want) {
					t.Errorf("Render() got = \n%s, want it to contain %q", out, want)
				}
			}
			if !strings.Contains(out, tt.wantFoot) {
				t.Errorf("Render() got = \n%s, want footer %q", out, tt.wantFoot)
			}
			if strings.Contains(out, "ignored") {
				t.Errorf("Render() should show the error instead of the details, got = \n%s", out)
			}
		})
	}
}

func TestReporter_Reset(t *testing.T) {
	r := &Reporter{
		Steps: []report.StepResult{{Name: "archive", Passed: true}},
	}
	r.Reset()

	if len(r.Steps) != 0 {
		t.Errorf("len(Steps) got = %d, want = %d", len(r.Steps), 0)
	}
}

func TestReporter_Add(t *testing.T) {
	s := report.StepResult{Name: "upload", Duration: 34479 * time.Millisecond, Passed: true, Details: "https://example.test/abc123"}

	r := &Reporter{}
	r.Add(s)

	if len(r.Steps) != 1 {
		t.Fatalf("len(Steps) got = %d, want = %d", len(r.Steps), 1)
	}
	if !reflect.DeepEqual(r.Steps[0], s) {
		t.Errorf(" got = %v, want = %v", r.Steps[0], s)
	}
}
