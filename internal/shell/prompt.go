package shell

import (
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// Prompter asks the user for input. Input re-asks until check accepts the
// answer; check may be nil.
type Prompter interface {
	Select(message string, options []string) (int, error)
	Input(message string, check func(string) error) (string, error)
	Confirm(message string) (bool, error)
}

// SurveyPrompter is the terminal Prompter.
type SurveyPrompter struct {
	Opts []survey.AskOpt
}

func (p SurveyPrompter) Select(message string, options []string) (int, error) {
	var idx int
	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: len(options),
	}
	if err := survey.AskOne(prompt, &idx, p.Opts...); err != nil {
		return 0, err
	}
	return idx, nil
}

func (p SurveyPrompter) Input(message string, check func(string) error) (string, error) {
	opts := append([]survey.AskOpt{}, p.Opts...)
	if check != nil {
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)
			return check(strings.TrimSpace(s))
		}))
	}

	var answer string
	if err := survey.AskOne(&survey.Input{Message: message}, &answer, opts...); err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func (p SurveyPrompter) Confirm(message string) (bool, error) {
	var ok bool
	prompt := &survey.Confirm{Message: message, Default: false}
	if err := survey.AskOne(prompt, &ok, p.Opts...); err != nil {
		return false, err
	}
	return ok, nil
}
