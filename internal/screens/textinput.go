package screens

import "secretpeek/internal/term"

// TextInput is a modal prompt for free-form names (filenames, namespaces,
// cluster secret names). While it is on top of the stack it consumes every
// printable key; Enter resolves through the validator, Escape cancels. Either
// way the screen pops itself before reporting the result, so the callback may
// immediately push a successor.
type TextInput struct {
	base
	prompt   string
	value    string
	validate func(string) error
	onResult func(value string, ok bool)
}

// NewTextInput builds a prompt. validate may be nil; onResult is required and
// is called exactly once.
func NewTextInput(app *App, crumbs []string, prompt, initial string, validate func(string) error, onResult func(string, bool)) *TextInput {
	s := &TextInput{
		base:     newBase(app, "text-input", crumbs),
		prompt:   prompt,
		value:    initial,
		validate: validate,
		onResult: onResult,
	}
	s.bind(s)
	s.events.AddHandler(s.onKey)
	return s
}

func (s *TextInput) onKey(k term.Key) bool {
	switch {
	case k.Kind == term.KeyEnter:
		if s.validate != nil {
			if err := s.validate(s.value); err != nil {
				s.errMsg = err.Error()
				s.render(true)
				return true
			}
		}
		value := s.value
		s.app.Term.PopScreen()
		s.onResult(value, true)

	case k.Kind == term.KeyEscape:
		s.app.Term.PopScreen()
		s.onResult("", false)

	case k.Kind == term.KeyBackspace:
		if s.value != "" {
			runes := []rune(s.value)
			s.value = string(runes[:len(runes)-1])
		}
		s.errMsg = ""
		s.render(false)

	case k.IsPrintable():
		s.value += string(k.Rune)
		s.errMsg = ""
		s.render(false)

	default:
		return false
	}
	return true
}

func (s *TextInput) View() (string, error) {
	out := header(s.crumbs)
	out += s.prompt + "\r\n\r\n"
	out += selectedStyle.Render("> ") + s.value + "_\r\n"
	out += statusLines("", s.errMsg)
	out += footer("enter confirm", "esc cancel")
	return out, nil
}
