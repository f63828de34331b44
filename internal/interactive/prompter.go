package interactive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"

	"bx-toolkit/internal/interfaces"
	"bx-toolkit/pkg/models"
)

// ErrCancelled is returned when the user backs out of the form
var ErrCancelled = errors.New("selection cancelled")

// Prompter handles interactive user input collection
type Prompter struct {
	numberSelect bool
	in           *bufio.Reader
	out          io.Writer
}

// NewPrompter creates a new interactive prompter
func NewPrompter(numberSelect bool) *Prompter {
	return &Prompter{
		numberSelect: numberSelect,
		in:           bufio.NewReader(os.Stdin),
		out:          os.Stdout,
	}
}

// CollectMissingInputs asks for the brief fields that are still empty. When a
// required field is missing the whole form is shown; otherwise only the
// confirmation summary.
func (p *Prompter) CollectMissingInputs(brief *models.BriefRequest, interactive bool) error {
	if !interactive {
		return nil
	}

	fullForm := len(brief.MissingFields()) > 0

	if strings.TrimSpace(brief.Company) == "" {
		if err := p.askText("회사명 / 브랜드명:", "Required. The company or brand the document is for", &brief.Company, true); err != nil {
			return fmt.Errorf("failed to collect company: %w", err)
		}
	}

	if fullForm {
		optional := []struct {
			message string
			help    string
			value   *string
		}{
			{"산업/카테고리:", "e.g. 헬스케어 SaaS", &brief.Industry},
			{"지역/시장:", "e.g. 한국, 동남아", &brief.Region},
			{"주요 경쟁사:", "Comma separated", &brief.Competitors},
			{"핵심 타깃:", "e.g. 30대 직장인", &brief.Target},
		}
		for _, q := range optional {
			if strings.TrimSpace(*q.value) != "" {
				continue
			}
			if err := p.askText(q.message, q.help, q.value, false); err != nil {
				return fmt.Errorf("failed to collect %s: %w", strings.TrimSuffix(q.message, ":"), err)
			}
		}

		if err := p.selectMode(brief); err != nil {
			return fmt.Errorf("failed to collect mode: %w", err)
		}
	}

	if strings.TrimSpace(brief.Request) == "" {
		if err := p.askText("요청 사항:", "Required. What the document should deliver", &brief.Request, true); err != nil {
			return fmt.Errorf("failed to collect request: %w", err)
		}
	}

	if fullForm {
		if strings.TrimSpace(brief.Constraints) == "" {
			if err := p.askText("제약/참고사항:", "Optional. Budget, legal, schedule...", &brief.Constraints, false); err != nil {
				return fmt.Errorf("failed to collect constraints: %w", err)
			}
		}
		if err := p.selectTone(brief); err != nil {
			return fmt.Errorf("failed to collect tone: %w", err)
		}
		if err := p.selectDepth(brief); err != nil {
			return fmt.Errorf("failed to collect depth: %w", err)
		}
		if err := p.selectModel(brief); err != nil {
			return fmt.Errorf("failed to collect model: %w", err)
		}
	}

	brief.Normalize()

	ok, err := p.selectYesNo("Generate the BX document?", Summary(brief), true)
	if err != nil {
		return fmt.Errorf("failed to confirm: %w", err)
	}
	if !ok {
		return ErrCancelled
	}
	return nil
}

// CollectCredential asks for the API key when none is configured and returns
// it, or "" when no prompt was shown. The key lives only in memory.
func (p *Prompter) CollectCredential(cfg *interfaces.Config, interactive bool) (string, error) {
	if cfg.HasCredential() || !interactive {
		return "", nil
	}

	prompt := &survey.Password{
		Message: "OpenAI API key:",
		Help:    "Not stored. Set BXKIT_API_KEY or api_key in ~/.config/bxkit/config.toml to skip this prompt",
	}

	var key string
	if err := survey.AskOne(prompt, &key, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}

	return strings.TrimSpace(key), nil
}

// Summary renders the brief as the confirmation help text
func Summary(brief *models.BriefRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s | %s | %s | %s | %s", brief.Company, brief.Mode, brief.Tone, brief.Depth, brief.Model)
	if brief.Request != "" {
		fmt.Fprintf(&b, " | %s", truncateString(brief.Request, 60))
	}
	return b.String()
}

func (p *Prompter) askText(message, help string, dst *string, required bool) error {
	prompt := &survey.Input{
		Message: message,
		Help:    help,
		Default: *dst,
	}

	var opts []survey.AskOpt
	if required {
		opts = append(opts, survey.WithValidator(survey.Required))
	}

	var answer string
	if err := survey.AskOne(prompt, &answer, opts...); err != nil {
		return err
	}

	*dst = strings.TrimSpace(answer)
	return nil
}

func (p *Prompter) selectMode(brief *models.BriefRequest) error {
	modes := models.AllModes()
	labels := make([]string, len(modes))
	for i, m := range modes {
		labels[i] = m.String()
	}

	idx, err := p.selectOption(labels, "프로젝트 유형:", "New brand, rebrand or extension", indexOf(labels, brief.Mode.String()))
	if err != nil {
		return err
	}
	brief.Mode = modes[idx]
	return nil
}

func (p *Prompter) selectTone(brief *models.BriefRequest) error {
	tones := models.AllTones()
	labels := make([]string, len(tones))
	for i, t := range tones {
		labels[i] = t.String()
	}

	idx, err := p.selectOption(labels, "톤앤매너:", "Voice of the document", indexOf(labels, brief.Tone.String()))
	if err != nil {
		return err
	}
	brief.Tone = tones[idx]
	return nil
}

func (p *Prompter) selectDepth(brief *models.BriefRequest) error {
	depths := models.AllDepths()
	labels := make([]string, len(depths))
	for i, d := range depths {
		labels[i] = d.String()
	}

	idx, err := p.selectOption(labels, "상세 수준:", "How much detail to generate", indexOf(labels, brief.Depth.String()))
	if err != nil {
		return err
	}
	brief.Depth = depths[idx]
	return nil
}

func (p *Prompter) selectModel(brief *models.BriefRequest) error {
	idx, err := p.selectOption(models.SupportedModels, "모델:", "Chat model used for generation", indexOf(models.SupportedModels, brief.Model))
	if err != nil {
		return err
	}
	brief.Model = models.SupportedModels[idx]
	return nil
}

// selectOption handles selection with optional number key support and
// returns the chosen index
func (p *Prompter) selectOption(options []string, message, help string, defaultIdx int) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("no options to choose from")
	}
	if defaultIdx < 0 || defaultIdx >= len(options) {
		defaultIdx = 0
	}

	if p.numberSelect {
		return p.selectWithNumbers(options, message, help, defaultIdx)
	}

	prompt := &survey.Select{
		Message: message,
		Options: options,
		Help:    help,
		Default: options[defaultIdx],
	}

	var selected int
	if err := survey.AskOne(prompt, &selected); err != nil {
		return 0, err
	}

	return selected, nil
}

// selectWithNumbers displays numbered options and allows instant selection by number key
func (p *Prompter) selectWithNumbers(options []string, message, help string, defaultIdx int) (int, error) {
	fmt.Fprintf(p.out, "\n%s\n", message)
	if help != "" {
		fmt.Fprintf(p.out, "  %s (Press number key for instant selection)\n", help)
	}
	fmt.Fprintln(p.out)

	for i, option := range options {
		if i == defaultIdx {
			fmt.Fprintf(p.out, "  %d. %s (default)\n", i+1, option)
		} else {
			fmt.Fprintf(p.out, "  %d. %s\n", i+1, option)
		}
	}
	fmt.Fprintln(p.out)

	if !term.IsTerminal(int(syscall.Stdin)) {
		return p.fallbackNumberSelection(len(options), defaultIdx)
	}

	oldState, err := term.MakeRaw(int(syscall.Stdin))
	if err != nil {
		return p.fallbackNumberSelection(len(options), defaultIdx)
	}
	defer term.Restore(int(syscall.Stdin), oldState)

	fmt.Fprint(p.out, "Select option: ")

	buffer := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(buffer); err != nil {
			return 0, err
		}

		idx, done, err := interpretKey(buffer[0], len(options), defaultIdx)
		if err != nil {
			fmt.Fprint(p.out, "\r\n")
			return 0, err
		}
		if done {
			fmt.Fprintf(p.out, "%d\r\n", idx+1)
			return idx, nil
		}
	}
}

// interpretKey maps one raw keypress to a selection. done is false for keys
// that should be ignored.
func interpretKey(char byte, n, defaultIdx int) (idx int, done bool, err error) {
	switch {
	case char >= '1' && char <= '9':
		idx := int(char - '1')
		if idx < n {
			return idx, true, nil
		}
		return 0, false, nil
	case char == '\r' || char == '\n':
		return defaultIdx, true, nil
	case char == 27 || char == 3: // Escape or Ctrl+C
		return 0, false, ErrCancelled
	default:
		return 0, false, nil
	}
}

// fallbackNumberSelection reads a line when raw terminal mode is not available
func (p *Prompter) fallbackNumberSelection(n, defaultIdx int) (int, error) {
	fmt.Fprintf(p.out, "Enter number (1-%d) or press Enter for default: ", n)

	input, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && input != "") {
		return 0, err
	}

	return parseNumberChoice(input, n, defaultIdx)
}

// parseNumberChoice converts a 1-based typed choice into an index
func parseNumberChoice(input string, n, defaultIdx int) (int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultIdx, nil
	}

	selected, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid input: please enter a number between 1 and %d", n)
	}
	if selected < 1 || selected > n {
		return 0, fmt.Errorf("invalid selection: please enter a number between 1 and %d", n)
	}

	return selected - 1, nil
}

// selectYesNo handles yes/no selection with optional number key support
func (p *Prompter) selectYesNo(message, help string, defaultValue bool) (bool, error) {
	if p.numberSelect {
		defaultIdx := 1
		if defaultValue {
			defaultIdx = 0
		}
		idx, err := p.selectWithNumbers([]string{"Yes", "No"}, message, help, defaultIdx)
		if err != nil {
			return false, err
		}
		return idx == 0, nil
	}

	prompt := &survey.Confirm{
		Message: message,
		Help:    help,
		Default: defaultValue,
	}

	var result bool
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}

	return result, nil
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return 0
}

// truncateString truncates a string to the specified rune length with ellipsis
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
