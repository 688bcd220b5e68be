package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"physique-coach/internal/domain"
)

// Writer persiste los dos artefactos de texto de una corrida, sobrescribiendolos.
type Writer struct {
	AffirmationsPath string
	FinalWorkoutPath string
}

// Write solo debe llamarse con un reporte completo. Ambos archivos se preparan
// como temporales antes de renombrar; si falla la preparacion no se toca nada.
func (w Writer) Write(r domain.Report) error {
	aff, err := stage(w.AffirmationsPath, r.Affirmations)
	if err != nil {
		return fmt.Errorf("write affirmations: %w", err)
	}
	plan, err := stage(w.FinalWorkoutPath, r.FinalPlan)
	if err != nil {
		os.Remove(aff)
		return fmt.Errorf("write final workout: %w", err)
	}

	if err := os.Rename(plan, w.FinalWorkoutPath); err != nil {
		return errors.Join(fmt.Errorf("write final workout: %w", err), os.Remove(plan), os.Remove(aff))
	}
	if err := os.Rename(aff, w.AffirmationsPath); err != nil {
		return errors.Join(fmt.Errorf("write affirmations: %w", err), os.Remove(aff))
	}
	return nil
}

// stage escribe content en un temporal junto a path y devuelve su ruta.
func stage(path, content string) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
