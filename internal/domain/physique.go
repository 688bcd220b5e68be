package domain

import "time"

// View identifica una de las tres fotografias del atleta.
type View string

const (
	ViewFront View = "front"
	ViewSide  View = "side"
	ViewBack  View = "back"
)

// Label devuelve el encabezado usado al incrustar la vista en un prompt.
func (v View) Label() string {
	switch v {
	case ViewFront:
		return "Front Photo"
	case ViewSide:
		return "Side Photo"
	case ViewBack:
		return "Back Photo"
	default:
		return string(v) + " Photo"
	}
}

// Valid indica si la vista es una de las soportadas.
func (v View) Valid() bool {
	return v == ViewFront || v == ViewSide || v == ViewBack
}

// PhotoSet contiene los bytes crudos de cada fotografia disponible.
type PhotoSet map[View][]byte

// Image devuelve la foto de una vista y si existe.
func (p PhotoSet) Image(v View) ([]byte, bool) {
	img, ok := p[v]
	if !ok || len(img) == 0 {
		return nil, false
	}
	return img, true
}

// ViewPrompt asocia una vista con el prompt que se le envia al agente de vision.
type ViewPrompt struct {
	View   View   `yaml:"view" json:"view"`
	Prompt string `yaml:"prompt" json:"prompt"`
}

// Category describe una region corporal evaluada en cada corrida.
// Views define a la vez el orden de evaluacion y el orden en el prompt de fusion.
type Category struct {
	ID           string       `yaml:"id" json:"id"`
	Label        string       `yaml:"label" json:"label"`
	Views        []ViewPrompt `yaml:"views" json:"views"`
	FusionPrompt string       `yaml:"fusion_prompt" json:"fusion_prompt"`
	// Unrated omite la compuerta numerica: una unica opinion por vista, sin reintentos.
	Unrated  bool `yaml:"unrated,omitempty" json:"unrated,omitempty"`
	Disabled bool `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

// ExerciseFamily agrupa ejercicios considerados intercambiables.
type ExerciseFamily struct {
	Name      string   `yaml:"name" json:"name"`
	Exercises []string `yaml:"exercises" json:"exercises"`
}

// Catalog es la configuracion estatica de una corrida.
type Catalog struct {
	Categories []Category       `yaml:"categories" json:"categories"`
	Families   []ExerciseFamily `yaml:"families" json:"families"`
}

// ActiveCategories devuelve las categorias habilitadas en su orden configurado.
func (c Catalog) ActiveCategories() []Category {
	out := make([]Category, 0, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.Disabled {
			continue
		}
		out = append(out, cat)
	}
	return out
}

// Report es el resultado completo de una corrida.
type Report struct {
	RunID              string            `json:"run_id"`
	Transcript         []TranscriptEntry `json:"transcript"`
	WeakAreas          string            `json:"weak_areas"`
	Affirmations       string            `json:"affirmations"`
	DraftPlan          string            `json:"draft_plan"`
	RedundantExercises []string          `json:"redundant_exercises"`
	FinalPlan          string            `json:"final_plan"`
	Rewritten          bool              `json:"rewritten"`
	StartedAt          time.Time         `json:"started_at"`
	FinishedAt         time.Time         `json:"finished_at"`
}
