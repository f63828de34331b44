package models

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseVariants(t *testing.T) {
	tests := []struct {
		name    string
		parse   func(string) (string, error)
		input   string
		want    string
		wantErr bool
	}{
		{name: "mode by key", parse: parseModeLabel, input: "rebrand", want: "리브랜딩"},
		{name: "mode by label", parse: parseModeLabel, input: "서비스 확장/하위브랜드", want: "서비스 확장/하위브랜드"},
		{name: "mode key case insensitive", parse: parseModeLabel, input: "NEW", want: "신규 브랜딩"},
		{name: "unknown mode", parse: parseModeLabel, input: "merger", wantErr: true},
		{name: "tone by key", parse: parseToneLabel, input: "minimal", want: "미니멀/정제"},
		{name: "tone by label", parse: parseToneLabel, input: "대담/혁신", want: "대담/혁신"},
		{name: "unknown tone", parse: parseToneLabel, input: "sarcastic", wantErr: true},
		{name: "depth by key", parse: parseDepthLabel, input: "detailed", want: "상세형"},
		{name: "depth by label with spaces", parse: parseDepthLabel, input: " 표준형 ", want: "표준형"},
		{name: "unknown depth", parse: parseDepthLabel, input: "epic", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.parse(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownVariant) {
					t.Errorf("expected ErrUnknownVariant, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func parseModeLabel(s string) (string, error) {
	m, err := ParseProjectMode(s)
	return m.String(), err
}

func parseToneLabel(s string) (string, error) {
	v, err := ParseTone(s)
	return v.String(), err
}

func parseDepthLabel(s string) (string, error) {
	d, err := ParseDepth(s)
	return d.String(), err
}

func TestDepthRichness(t *testing.T) {
	want := map[Depth]string{
		DepthSummary:  "succinct with key bullets",
		DepthStandard: "balanced detail with examples",
		DepthDetailed: "deep detail with frameworks, matrices and examples",
	}

	for _, d := range AllDepths() {
		if got := d.Richness(); got != want[d] {
			t.Errorf("%s.Richness() = %q, want %q", d, got, want[d])
		}
	}
}

func TestDepthRichness_UnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for unknown depth")
		}
	}()
	_ = Depth(42).Richness()
}

func TestZeroVariantsInvalid(t *testing.T) {
	var m ProjectMode
	var tone Tone
	var d Depth
	if m.Valid() || tone.Valid() || d.Valid() {
		t.Errorf("zero values must not be valid variants")
	}
	if _, err := d.MarshalText(); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("expected MarshalText to reject zero depth, got %v", err)
	}
}

func TestVariantsJSON(t *testing.T) {
	brief := NewBriefRequest()
	brief.Company = "더바운스랩"
	brief.Tone = ToneTechnical

	data, err := json.Marshal(brief)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded BriefRequest
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded.Tone != ToneTechnical || decoded.Mode != ModeNew || decoded.Depth != DepthStandard {
		t.Errorf("variants did not survive JSON: %+v", decoded)
	}
	if decoded.Model != "" {
		t.Errorf("generation settings must not be serialized, got model %q", decoded.Model)
	}
}

func TestBriefRequest_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		company string
		request string
		want    []string
	}{
		{name: "both present", company: "ACME", request: "new brand", want: nil},
		{name: "company missing", company: "", request: "new brand", want: []string{"company"}},
		{name: "request whitespace", company: "ACME", request: "   ", want: []string{"request"}},
		{name: "both missing", want: []string{"company", "request"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			brief := NewBriefRequest()
			brief.Company = tt.company
			brief.Request = tt.request

			got := brief.MissingFields()
			if len(got) != len(tt.want) {
				t.Fatalf("MissingFields() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("MissingFields()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBriefRequest_CheckVariants(t *testing.T) {
	brief := NewBriefRequest()
	if err := brief.CheckVariants(); err != nil {
		t.Fatalf("default brief should be valid: %v", err)
	}

	brief.Depth = Depth(9)
	if err := brief.CheckVariants(); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("expected ErrUnknownVariant, got %v", err)
	}
}

func TestIsSupportedModel(t *testing.T) {
	for _, m := range SupportedModels {
		if !IsSupportedModel(m) {
			t.Errorf("expected %s to be supported", m)
		}
	}
	if IsSupportedModel("gpt-3.5-turbo") {
		t.Errorf("gpt-3.5-turbo must not be on the allow-list")
	}
}

func TestLoadBriefFile(t *testing.T) {
	tmpDir := t.TempDir()

	yamlPath := filepath.Join(tmpDir, "brief.yaml")
	yamlContent := `
company: "  더바운스랩 "
industry: 헬스케어 SaaS
mode: rebrand
tone: 기술/전문
depth: detailed
request: 리브랜딩 전략
model: gpt-4o
`
	if err := os.WriteFile(yamlPath, []byte(yamlContent), 0644); err != nil {
		t.Fatal(err)
	}

	brief, err := LoadBriefFile(yamlPath)
	if err != nil {
		t.Fatalf("LoadBriefFile failed: %v", err)
	}

	if brief.Company != "더바운스랩" {
		t.Errorf("Company = %q, want trimmed value", brief.Company)
	}
	if brief.Mode != ModeRebrand || brief.Tone != ToneTechnical || brief.Depth != DepthDetailed {
		t.Errorf("unexpected variants: %v %v %v", brief.Mode, brief.Tone, brief.Depth)
	}
	if brief.Model != "gpt-4o" {
		t.Errorf("Model = %q, want gpt-4o", brief.Model)
	}
	if brief.MaxTokens != DefaultMaxTokens {
		t.Errorf("MaxTokens = %d, want default %d", brief.MaxTokens, DefaultMaxTokens)
	}
}

func TestLoadBriefFile_ExportedRecord(t *testing.T) {
	tmpDir := t.TempDir()
	jsonPath := filepath.Join(tmpDir, "record.json")
	record := `{
  "company": "ACME",
  "industry": "",
  "region": "한국",
  "competitors": "",
  "target": "",
  "mode": "리브랜딩",
  "tone": "미니멀/정제",
  "depth": "요약형",
  "constraints": "",
  "content": "# 결과"
}`
	if err := os.WriteFile(jsonPath, []byte(record), 0644); err != nil {
		t.Fatal(err)
	}

	brief, err := LoadBriefFile(jsonPath)
	if err != nil {
		t.Fatalf("LoadBriefFile failed: %v", err)
	}
	if brief.Company != "ACME" || brief.Region != "한국" {
		t.Errorf("unexpected brief: %+v", brief)
	}
	if brief.Mode != ModeRebrand || brief.Tone != ToneMinimal || brief.Depth != DepthSummary {
		t.Errorf("unexpected variants: %v %v %v", brief.Mode, brief.Tone, brief.Depth)
	}
}

func TestLoadBriefFile_UnknownVariant(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "brief.yaml")
	if err := os.WriteFile(path, []byte("company: ACME\ndepth: epic\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadBriefFile(path); err == nil {
		t.Errorf("expected error for unknown depth")
	}
}

func TestBriefRequest_CheckSettings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b *BriefRequest)
		wantErr bool
	}{
		{"defaults", func(b *BriefRequest) {}, false},
		{"unlisted model", func(b *BriefRequest) { b.Model = "gpt-3.5-turbo" }, true},
		{"temperature below range", func(b *BriefRequest) { b.Temperature = -0.5 }, true},
		{"temperature above range", func(b *BriefRequest) { b.Temperature = 2.1 }, true},
		{"max tokens below range", func(b *BriefRequest) { b.MaxTokens = 255 }, true},
		{"max tokens at upper bound", func(b *BriefRequest) { b.MaxTokens = 4096 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			brief := NewBriefRequest()
			tt.mutate(brief)
			err := brief.CheckSettings()
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckSettings() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBriefRequest_LoadFile_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brief.yaml")
	if err := os.WriteFile(path, []byte("request: 네이밍\ntemperature: 0.4\n"), 0644); err != nil {
		t.Fatal(err)
	}

	brief := NewBriefRequest()
	brief.Company = "ACME"
	brief.Model = "gpt-4.1"
	if err := brief.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if brief.Company != "ACME" || brief.Model != "gpt-4.1" {
		t.Errorf("fields absent from the file must be kept: %+v", brief)
	}
	if brief.Request != "네이밍" || brief.Temperature != 0.4 {
		t.Errorf("fields from the file must be applied: %+v", brief)
	}
}
