package survey

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Layout describes where things live in the response sheet.
type Layout struct {
	TimestampColumn  string         `yaml:"timestamp_column"`
	SuggestionColumn string         `yaml:"suggestion_column"`
	QuestionStart    int            `yaml:"question_start"`
	QuestionEnd      int            `yaml:"question_end"` // exclusive
	Exclude          []string       `yaml:"exclude"`
	Areas            map[int]string `yaml:"areas"` // position within the question range -> display name
	ExpectedAnswers  []string       `yaml:"expected_answers"`
}

// DefaultLayout matches the patient satisfaction form.
func DefaultLayout() Layout {
	return Layout{
		TimestampColumn:  "Carimbo de data/hora",
		SuggestionColumn: "Deixe sua Sugestão:",
		QuestionStart:    2,
		QuestionEnd:      24,
		Exclude:          []string{"oficinas arte/vida"},
		Areas: map[int]string{
			0: "Serviço Social", 1: "Nutrição", 2: "Psicopedagogia", 3: "Psicologia",
			4: "Odontologia", 5: "Fonoaudiologia", 6: "Fisioterapia", 7: "Psiquiatria",
			8: "Farmácia", 9: "Enfermagem", 10: "Educativas/Educação em grupo",
			11: "Assistência Familiar", 12: "Copa", 13: "Recepção",
			14: "Ações Culturais e Festividades", 15: "Recreação", 16: "Atividades Interativas",
			18: "Apoio Jurídico", 19: "Limpeza do Local", 20: "Comunicação com as famílias",
			21: "Terapia Ocupacional",
		},
		ExpectedAnswers: []string{"Excelente", "Bom", "Regular", "Ruim", "Não se Aplica"},
	}
}

// LoadLayout reads a YAML layout. Fields left out of the file keep their
// defaults; an empty path returns DefaultLayout.
func LoadLayout(path string) (Layout, error) {
	l := DefaultLayout()
	if path == "" {
		return l, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout: %w", err)
	}
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("parse layout %s: %w", path, err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, fmt.Errorf("layout %s: %w", path, err)
	}
	return l, nil
}

func (l Layout) Validate() error {
	if l.TimestampColumn == "" {
		return fmt.Errorf("timestamp_column is required")
	}
	if l.QuestionStart < 0 || l.QuestionEnd <= l.QuestionStart {
		return fmt.Errorf("question range [%d, %d) is empty", l.QuestionStart, l.QuestionEnd)
	}
	if len(l.ExpectedAnswers) == 0 {
		return fmt.Errorf("expected_answers must not be empty")
	}
	return nil
}

// AreaName is the display name for the question at position pos of the
// range, falling back to the column header.
func (l Layout) AreaName(pos int, column string) string {
	if name, ok := l.Areas[pos]; ok && name != "" {
		return name
	}
	return column
}
