// Package seed holds the built-in question bank.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
	"trivia-game-service/internal/domain"
)

//go:embed questions.yaml
var questionsYAML []byte

type bank struct {
	Questions []domain.QuestionInput `yaml:"questions"`
}

// Questions decodes the embedded bank. The inputs are not validated here;
// they go through the same registration path as client submissions.
func Questions() ([]domain.QuestionInput, error) {
	var b bank
	if err := yaml.Unmarshal(questionsYAML, &b); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	return b.Questions, nil
}
