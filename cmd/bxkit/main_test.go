package main

import (
	"reflect"
	"testing"

	"github.com/spf13/cobra"

	"bx-toolkit/pkg/models"
)

func newTestCommand(withOutputFlags bool) *cobra.Command {
	cmd := &cobra.Command{}

	cmd.Flags().String("config", "", "")
	cmd.Flags().Bool("yes", false, "")
	cmd.Flags().Bool("interactive", false, "")
	cmd.Flags().String("log-level", "", "")
	addBriefFlags(cmd)

	if withOutputFlags {
		cmd.Flags().String("target", "", "")
		cmd.Flags().String("editor", "", "")
		cmd.Flags().String("export", "", "")
		cmd.Flags().String("export-dir", "", "")
		cmd.Flags().Bool("no-export", false, "")
		cmd.Flags().Bool("dry-run", false, "")
		cmd.Flags().Bool("numbers", false, "")
	}
	return cmd
}

func TestBuildRequestFromFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		flags   map[string]string
		check   func(t *testing.T, r *models.RunRequest)
		wantErr bool
	}{
		{
			name: "positional request with brief flags",
			args: []string{"  리브랜딩 전략  "},
			flags: map[string]string{
				"company":  "더바운스랩",
				"audience": "30대 직장인",
				"mode":     "rebrand",
				"tone":     "기술/전문",
				"depth":    "DETAILED",
			},
			check: func(t *testing.T, r *models.RunRequest) {
				b := r.Brief
				if b.Company != "더바운스랩" || b.Target != "30대 직장인" {
					t.Errorf("unexpected text fields: %+v", b)
				}
				if b.Request != "리브랜딩 전략" {
					t.Errorf("Request = %q", b.Request)
				}
				if b.Mode != models.ModeRebrand || b.Tone != models.ToneTechnical || b.Depth != models.DepthDetailed {
					t.Errorf("unexpected variants: %v %v %v", b.Mode, b.Tone, b.Depth)
				}
				if !r.Interactive {
					t.Errorf("Interactive should start true before config resolution")
				}
			},
		},
		{
			name:  "positional request beats --request",
			args:  []string{"arg"},
			flags: map[string]string{"request": "flag"},
			check: func(t *testing.T, r *models.RunRequest) {
				if r.Brief.Request != "arg" {
					t.Errorf("Request = %q, want arg", r.Brief.Request)
				}
			},
		},
		{
			name: "unset variants stay zero",
			check: func(t *testing.T, r *models.RunRequest) {
				if r.Brief.Mode.Valid() || r.Brief.Tone.Valid() || r.Brief.Depth.Valid() {
					t.Errorf("variants should be unset: %+v", r.Brief)
				}
				if r.Temperature != nil {
					t.Errorf("temperature should be unset")
				}
			},
		},
		{
			name: "generation settings",
			flags: map[string]string{
				"model":       "gpt-4.1",
				"temperature": "0",
				"max-tokens":  "1024",
			},
			check: func(t *testing.T, r *models.RunRequest) {
				if r.Model != "gpt-4.1" || r.MaxTokens != 1024 {
					t.Errorf("unexpected settings: %s %d", r.Model, r.MaxTokens)
				}
				if r.Temperature == nil || *r.Temperature != 0 {
					t.Errorf("explicit zero temperature should be kept, got %v", r.Temperature)
				}
			},
		},
		{
			name: "output and export flags",
			flags: map[string]string{
				"target":     "file:/tmp/bx.md",
				"editor":     "vim",
				"export":     "JSON,json",
				"export-dir": "/tmp/out",
				"no-export":  "true",
				"yes":        "true",
			},
			check: func(t *testing.T, r *models.RunRequest) {
				if r.Target != "file:/tmp/bx.md" || r.Editor != "vim" || !r.EditorRequested {
					t.Errorf("unexpected output settings: %+v", r)
				}
				if !reflect.DeepEqual(r.ExportFormats, []string{"json"}) {
					t.Errorf("ExportFormats = %v", r.ExportFormats)
				}
				if r.ExportDir != "/tmp/out" || !r.NoExport || !r.ForceNonInteractive {
					t.Errorf("unexpected export settings: %+v", r)
				}
			},
		},
		{
			name:    "unknown depth",
			flags:   map[string]string{"depth": "epic"},
			wantErr: true,
		},
		{
			name:    "unsupported model",
			flags:   map[string]string{"model": "gpt-3.5-turbo"},
			wantErr: true,
		},
		{
			name:    "unknown export format",
			flags:   map[string]string{"export": "pdf"},
			wantErr: true,
		},
		{
			name:    "conflicting interactive flags",
			flags:   map[string]string{"yes": "true", "interactive": "true"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newTestCommand(true)
			for flag, value := range tt.flags {
				if err := cmd.Flags().Set(flag, value); err != nil {
					t.Fatalf("failed to set %s: %v", flag, err)
				}
			}

			result, err := buildRequestFromFlags(cmd, tt.args)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			tt.check(t, result)
		})
	}
}

func TestBuildRequestFromFlags_PromptCommand(t *testing.T) {
	cmd := newTestCommand(false)
	if err := cmd.Flags().Set("company", "ACME"); err != nil {
		t.Fatal(err)
	}

	result, err := buildRequestFromFlags(cmd, []string{"네이밍"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Brief.Company != "ACME" || result.Brief.Request != "네이밍" {
		t.Errorf("unexpected brief: %+v", result.Brief)
	}
	if result.Target != "" || result.DryRun {
		t.Errorf("output flags should be untouched without the root flag set")
	}
}

func TestVariantHelp(t *testing.T) {
	got := variantHelp(models.AllDepths())
	want := "summary (요약형), standard (표준형), detailed (상세형)"
	if got != want {
		t.Errorf("variantHelp() = %q, want %q", got, want)
	}
}
