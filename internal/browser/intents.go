package browser

import (
	"strings"
	"unicode"
)

// Intent names a control by meaning: a list of synonyms matched
// case-insensitively against the control's text, aria-label, title and value.
// Synonyms are tried in order, so the most specific wording goes first.
type Intent struct {
	Name     string
	Synonyms []string
	// Exclude rejects an otherwise matching control.
	Exclude []string
	// Status matches the visible text only, and only when it is the synonym
	// itself or the synonym followed by a date ("Applied 3 days ago").
	Status bool
	// SkipPostingLinks ignores anchors leading to a posting page, such as
	// the cards of a similar-jobs list.
	SkipPostingLinks bool
}

// The intents used by the engine. Selector and wording maintenance lives here
// and in the adapter scripts only.
var (
	IntentQuickApply = Intent{
		Name:     "quick-apply",
		Synonyms:         []string{"easy apply", "candidatura simplificada", "candidatar-se", "candidate-se", "inscreva-se"},
		SkipPostingLinks: true,
	}
	IntentSubmit = Intent{
		Name:     "submit",
		Synonyms: []string{"submit application", "send application", "enviar candidatura", "submit", "enviar"},
		Exclude:  []string{"feedback"},
	}
	IntentNext = Intent{
		Name:     "next",
		Synonyms: []string{"continue to next step", "review your application", "next", "review", "continuar", "avançar", "próximo", "seguinte", "revisar"},
	}
	IntentDismiss = Intent{
		Name:     "dismiss",
		Synonyms: []string{"dismiss", "close", "fechar"},
	}
	IntentConfirmDiscard = Intent{
		Name:     "confirm-discard",
		Synonyms: []string{"discard", "descartar", "don't save", "não salvar"},
	}
	IntentDone = Intent{
		Name:     "done",
		Synonyms: []string{"done", "concluído", "concluir"},
	}
	IntentSuccessBanner = Intent{
		Name: "success-banner",
		Synonyms: []string{
			"application submitted", "application sent", "your application was sent",
			"candidatura enviada", "sua candidatura foi enviada",
		},
	}
	IntentAppliedLabel = Intent{
		Name:             "applied-label",
		Synonyms:         []string{"applied", "candidatou-se", "você se candidatou", "candidatura enviada"},
		Status:           true,
		SkipPostingLinks: true,
	}
	IntentSignIn = Intent{
		Name:     "sign-in",
		Synonyms: []string{"sign in", "entrar", "log in"},
		Exclude:  []string{"google", "apple", "microsoft"},
	}
)

// Matches reports whether c carries any synonym of in and none of its exclusions.
func (in Intent) Matches(c *Control) bool {
	return in.index(c) >= 0
}

// postingPath is the path segment of a posting page link.
const postingPath = "/jobs/view/"

// index returns the position of the first synonym c carries, or -1.
func (in Intent) index(c *Control) int {
	if in.SkipPostingLinks && strings.Contains(c.Href, postingPath) {
		return -1
	}
	if in.Status {
		return in.statusIndex(normalize(c.Text))
	}
	return in.synonymIndex(c.haystack())
}

func (in Intent) statusIndex(text string) int {
	for _, ex := range in.Exclude {
		if ex != "" && strings.Contains(text, strings.ToLower(ex)) {
			return -1
		}
	}
	for i, s := range in.Synonyms {
		if s == "" {
			continue
		}
		if text == s {
			return i
		}
		if rest, ok := strings.CutPrefix(text, s+" "); ok && isDateQualifier(rest) {
			return i
		}
	}
	return -1
}

var dateLeads = []string{"on ", "em ", "há ", "·", "just", "now", "agora", "today", "hoje", "yesterday", "ontem"}

// isDateQualifier reports whether rest reads like the date part of a status
// line: "3 days ago", "on 12/03", "há 2 dias".
func isDateQualifier(rest string) bool {
	for _, r := range rest {
		if unicode.IsDigit(r) {
			return true
		}
		break
	}
	for _, lead := range dateLeads {
		if strings.HasPrefix(rest, lead) {
			return true
		}
	}
	return false
}

func (in Intent) synonymIndex(h string) int {
	for _, ex := range in.Exclude {
		if ex != "" && strings.Contains(h, strings.ToLower(ex)) {
			return -1
		}
	}
	for i, s := range in.Synonyms {
		if s != "" && strings.Contains(h, strings.ToLower(s)) {
			return i
		}
	}
	return -1
}

// Match picks the control for in among controls (DOM order). When any control
// sits in an open modal the modal is searched first. Within a scope an earlier
// synonym beats a later one, and an actionable control beats a disabled or
// hidden one carrying the same synonym.
func Match(in Intent, controls []Control) *Control {
	modalOpen := false
	for i := range controls {
		if controls[i].InModal {
			modalOpen = true
			break
		}
	}

	scopes := []bool{false}
	if modalOpen {
		scopes = []bool{true, false}
	}

	for _, modalOnly := range scopes {
		var best *Control
		bestIdx := len(in.Synonyms)
		for i := range controls {
			c := &controls[i]
			if modalOnly && !c.InModal {
				continue
			}
			idx := in.index(c)
			if idx < 0 {
				continue
			}
			switch {
			case best == nil, idx < bestIdx:
				best, bestIdx = c, idx
			case idx == bestIdx && !best.Actionable() && c.Actionable():
				best = c
			}
		}
		if best != nil {
			return best
		}
	}
	return nil
}
