// Package export formats generation results as downloadable artifacts.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"

	"bx-toolkit/pkg/models"
)

// Supported export formats
const (
	FormatText = "txt"
	FormatJSON = "json"
)

// ErrUnknownFormat is returned for an export format other than txt or json
var ErrUnknownFormat = errors.New("unknown export format")

// Record is the structured export shape. Key names are relied on by
// downstream consumers and must not change.
type Record struct {
	Company     string `json:"company"`
	Industry    string `json:"industry"`
	Region      string `json:"region"`
	Competitors string `json:"competitors"`
	Target      string `json:"target"`
	Mode        string `json:"mode" jsonschema:"enum=신규 브랜딩,enum=리브랜딩,enum=서비스 확장/하위브랜드"`
	Tone        string `json:"tone" jsonschema:"enum=따뜻/친근,enum=기술/전문,enum=대담/혁신,enum=미니멀/정제"`
	Depth       string `json:"depth" jsonschema:"enum=요약형,enum=표준형,enum=상세형"`
	Constraints string `json:"constraints"`
	Content     string `json:"content"`
}

// Exporter implements the Exporter interface
type Exporter struct {
	dir   string
	now   func() time.Time
	newID func() string
}

// NewExporter creates an exporter writing into dir
func NewExporter(dir string) *Exporter {
	if dir == "" {
		dir = "."
	}
	return &Exporter{
		dir:   dir,
		now:   time.Now,
		newID: func() string { return uuid.NewString()[:8] },
	}
}

// Dir returns the directory exports are written to
func (e *Exporter) Dir() string {
	return e.dir
}

// PlainText returns the generated content unmodified
func (e *Exporter) PlainText(result *models.GenerationResult) []byte {
	return []byte(result.Content)
}

// NewRecord builds the export record for a result
func NewRecord(result *models.GenerationResult) Record {
	b := result.Brief
	return Record{
		Company:     b.Company,
		Industry:    b.Industry,
		Region:      b.Region,
		Competitors: b.Competitors,
		Target:      b.Target,
		Mode:        b.Mode.String(),
		Tone:        b.Tone.String(),
		Depth:       b.Depth.String(),
		Constraints: b.Constraints,
		Content:     result.Content,
	}
}

// Record returns the JSON record, indented, with non-ASCII text kept as is
func (e *Exporter) Record(result *models.GenerationResult) ([]byte, error) {
	if err := result.Brief.CheckVariants(); err != nil {
		return nil, fmt.Errorf("failed to build export record: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewRecord(result)); err != nil {
		return nil, fmt.Errorf("failed to encode export record: %w", err)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Filename returns {company}_BX_{YYYYMMDD_HHMMSS}_{id}.{ext} with a fresh id
func (e *Exporter) Filename(company, ext string, at time.Time) string {
	return filename(company, ext, at, e.newID())
}

func filename(company, ext string, at time.Time, id string) string {
	return fmt.Sprintf("%s_BX_%s_%s.%s", sanitizeName(company), at.Format("20060102_150405"), id, ext)
}

// Write stores each requested format in the export directory. Existing files
// are never overwritten.
func (e *Exporter) Write(result *models.GenerationResult, formats []string) ([]string, error) {
	formats, err := ParseFormats(strings.Join(formats, ","))
	if err != nil {
		return nil, err
	}

	at := result.GeneratedAt
	if at.IsZero() {
		at = e.now()
	}

	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory %s: %w", e.dir, err)
	}

	// One id per generation so the txt and json files pair up by name
	id := e.newID()

	var written []string
	for _, format := range formats {
		var data []byte
		switch format {
		case FormatText:
			data = e.PlainText(result)
		case FormatJSON:
			if data, err = e.Record(result); err != nil {
				return written, err
			}
		}

		path := filepath.Join(e.dir, filename(result.Brief.Company, format, at, id))
		if err := writeExclusive(path, data); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}

// Schema returns the JSON schema describing the export record
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}
	s := r.Reflect(&Record{})
	s.Title = "BX export record"
	s.Description = "Brief fields and generated content exported by bxkit"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}
	return data, nil
}

// ParseFormats parses a comma separated format list, dropping duplicates
func ParseFormats(list string) ([]string, error) {
	seen := make(map[string]bool)
	var formats []string

	for _, raw := range strings.Split(list, ",") {
		format := strings.ToLower(strings.TrimSpace(raw))
		if format == "" {
			continue
		}
		if format != FormatText && format != FormatJSON {
			return nil, fmt.Errorf("%w: %s (must be 'txt' or 'json')", ErrUnknownFormat, format)
		}
		if !seen[format] {
			seen[format] = true
			formats = append(formats, format)
		}
	}

	return formats, nil
}

func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create export file %s: %w", path, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write export file %s: %w", path, err)
	}

	return f.Close()
}

// sanitizeName keeps letters (any script), digits, '-' and '.'; everything else becomes '_'
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "brief"
	}

	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.' {
			return r
		}
		return '_'
	}, name)

	mapped = strings.Trim(mapped, ".")
	if mapped == "" {
		return "brief"
	}
	return mapped
}
