package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"physique-coach/internal/domain"
)

const ratingScale = " on a scale from 0 to 10 for the person"

// rated arma una categoria numerica con el mismo prompt para todas sus vistas.
// article acompaña a measure solo en el prompt por foto ("the", "a").
func rated(id, label, article, measure string, views ...domain.View) domain.Category {
	prompt := "estimate " + article + " " + measure + ratingScale + " in the photo"
	cat := domain.Category{
		ID:           id,
		Label:        label,
		FusionPrompt: "integrate these descriptions to estimate an overall " + measure + ratingScale + ".",
	}
	for _, v := range views {
		cat.Views = append(cat.Views, domain.ViewPrompt{View: v, Prompt: prompt})
	}
	return cat
}

func muscle(id, region string, views ...domain.View) domain.Category {
	return rated(id, region, "the", "muscle quality number of the "+region, views...)
}

// DefaultCatalog devuelve la tabla de categorias y familias de ejercicios en orden de corrida.
func DefaultCatalog() domain.Catalog {
	const (
		front = domain.ViewFront
		side  = domain.ViewSide
		back  = domain.ViewBack
	)

	neck := muscle("neck_and_traps", "neck and trapezius", back, front, side)
	neck.Label = "neck"
	neck.Views[1].Prompt = "estimate the muscle quality number of the neck" + ratingScale + " in the photo"

	upperLower := rated("upper_lower_symmetry", "upper body versus lower body symmetry", "a",
		"quality number for symmetry of upper body versus lower body development", back, front, side)
	leftRight := rated("left_right_symmetry", "left versus right body symmetry", "a",
		"quality number for symmetry of left-side versus right-side body development", back, front)

	bodyfat := domain.Category{
		ID:           "bodyfat",
		Label:        "bodyfat",
		FusionPrompt: "integrate these descriptions to estimate an overall bodyfat percentage for the person.",
		Disabled:     true,
	}
	strengths := domain.Category{
		ID:           "strengths_and_weaknesses",
		Label:        "athletic strengths and weaknesses",
		FusionPrompt: "integrate these descriptions to generate an overall summary of athletic strengths and weaknesses for the person.",
		Unrated:      true,
		Disabled:     true,
	}
	for _, v := range []domain.View{back, front, side} {
		bodyfat.Views = append(bodyfat.Views, domain.ViewPrompt{View: v, Prompt: "estimate the bodyfat percentage for the person in the photo"})
		strengths.Views = append(strengths.Views, domain.ViewPrompt{View: v, Prompt: "analyze the physique of the person in the photo and summarize their athletic strengths and weaknesses"})
	}

	return domain.Catalog{
		Categories: []domain.Category{
			rated("cardiovascular_conditioning", "cardiovascular conditioning", "the", "cardiovascular conditioning number", back, front, side),
			neck,
			muscle("upper_chest", "upper chest", front, side),
			muscle("lower_chest", "lower chest", front, side),
			muscle("upper_abdominals", "upper abdominals", front, side),
			muscle("lower_abdominals", "lower abdominals", front, side),
			muscle("quadriceps", "quadriceps", front, side),
			muscle("calves", "calves", back, side),
			muscle("hamstrings", "hamstrings", back, side),
			muscle("latissimus", "latissimus", back, side),
			muscle("obliques", "obliques", back, front, side),
			rated("kinetic_chain", "kinetic chain", "the", "kinetic chain number", back, front, side),
			muscle("triceps", "triceps", back, side),
			muscle("biceps", "biceps", front, side),
			muscle("front_shoulders", "front shoulders", front, side),
			muscle("rear_shoulders", "rear shoulders", back, side),
			rated("posture", "posture", "a", "posture quality number", back, front, side),
			muscle("outer_chest", "outer chest", front, side),
			upperLower,
			leftRight,
			muscle("inner_chest", "inner chest", front),
			muscle("upper_back", "upper back", back),
			bodyfat,
			strengths,
		},
		Families: DefaultFamilies(),
	}
}

// DefaultFamilies son las progresiones calisténicas que no deben repetirse en el plan.
func DefaultFamilies() []domain.ExerciseFamily {
	return []domain.ExerciseFamily{
		{Name: "leg raises", Exercises: []string{"Hanging Leg Lifts", "Hanging Toes-To-Bar Leg Lifts"}},
		{Name: "push-ups", Exercises: []string{"Standard Push-Ups", "One-Arm Push-Ups"}},
		{Name: "pull-ups", Exercises: []string{"Pull-Ups", "Chin-Ups", "Assisted One-Arm Pull-Ups"}},
	}
}

// LoadCatalog lee un override YAML. Sin path devuelve el catálogo por defecto;
// las secciones ausentes del archivo se completan con las del catálogo por defecto.
func LoadCatalog(path string) (domain.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodifica y valida un catálogo YAML.
func ParseCatalog(raw []byte) (domain.Catalog, error) {
	var cat domain.Catalog
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return domain.Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	def := DefaultCatalog()
	if cat.Categories == nil {
		cat.Categories = def.Categories
	}
	if cat.Families == nil {
		cat.Families = def.Families
	}
	if err := ValidateCatalog(cat); err != nil {
		return domain.Catalog{}, err
	}
	return cat, nil
}

// ValidateCatalog verifica ids únicos, vistas válidas y prompts no vacíos.
func ValidateCatalog(cat domain.Catalog) error {
	if len(cat.ActiveCategories()) == 0 {
		return errors.New("catalog has no enabled categories")
	}
	ids := make(map[string]struct{}, len(cat.Categories))
	for i, c := range cat.Categories {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("category %d: missing id", i)
		}
		if _, dup := ids[c.ID]; dup {
			return fmt.Errorf("category %s: duplicate id", c.ID)
		}
		ids[c.ID] = struct{}{}
		if strings.TrimSpace(c.Label) == "" {
			return fmt.Errorf("category %s: missing label", c.ID)
		}
		if len(c.Views) == 0 {
			return fmt.Errorf("category %s: no views", c.ID)
		}
		if len(c.Views) > 1 && strings.TrimSpace(c.FusionPrompt) == "" {
			return fmt.Errorf("category %s: missing fusion_prompt", c.ID)
		}
		views := make(map[domain.View]struct{}, len(c.Views))
		for _, vp := range c.Views {
			if !vp.View.Valid() {
				return fmt.Errorf("category %s: invalid view %q", c.ID, vp.View)
			}
			if _, dup := views[vp.View]; dup {
				return fmt.Errorf("category %s: duplicate view %s", c.ID, vp.View)
			}
			views[vp.View] = struct{}{}
			if strings.TrimSpace(vp.Prompt) == "" {
				return fmt.Errorf("category %s: empty prompt for view %s", c.ID, vp.View)
			}
		}
	}
	for i, f := range cat.Families {
		if len(f.Exercises) == 0 {
			return fmt.Errorf("family %d (%s): no exercises", i, f.Name)
		}
		for _, e := range f.Exercises {
			if strings.TrimSpace(e) == "" {
				return fmt.Errorf("family %d (%s): empty exercise name", i, f.Name)
			}
		}
	}
	return nil
}
