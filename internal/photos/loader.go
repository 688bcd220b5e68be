package photos

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"physique-coach/internal/domain"
)

// ErrImageTooLarge indica que una foto supera la dimension maxima aceptada.
var ErrImageTooLarge = errors.New("image exceeds maximum dimension")

// Loader lee las tres fotografias del atleta.
type Loader struct {
	paths        map[domain.View]string
	maxDimension int
}

// NewLoader crea un loader. maxDimension <= 0 desactiva la validacion de tamaño.
func NewLoader(front, side, back string, maxDimension int) *Loader {
	return &Loader{
		paths: map[domain.View]string{
			domain.ViewFront: front,
			domain.ViewSide:  side,
			domain.ViewBack:  back,
		},
		maxDimension: maxDimension,
	}
}

// Load lee los archivos y valida cada uno.
func (l *Loader) Load() (domain.PhotoSet, error) {
	set := make(domain.PhotoSet, len(l.paths))
	for _, view := range []domain.View{domain.ViewFront, domain.ViewSide, domain.ViewBack} {
		path := l.paths[view]
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s photo %s: %w", view, path, err)
		}
		if err := Validate(raw, l.maxDimension); err != nil {
			return nil, fmt.Errorf("%s photo %s: %w", view, path, err)
		}
		set[view] = raw
	}
	return set, nil
}

// Validate rechaza fotos vacias y, con maxDimension > 0, fotos ilegibles o mas grandes.
func Validate(raw []byte, maxDimension int) error {
	if len(raw) == 0 {
		return errors.New("empty image")
	}
	if maxDimension <= 0 {
		return nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width > maxDimension || cfg.Height > maxDimension {
		return fmt.Errorf("%w: %dx%d (max %d)", ErrImageTooLarge, cfg.Width, cfg.Height, maxDimension)
	}
	return nil
}
