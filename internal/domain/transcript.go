package domain

import "strings"

// TranscriptEntry es el resumen fusionado de una categoria.
type TranscriptEntry struct {
	CategoryID string `json:"category_id"`
	Label      string `json:"label"`
	Summary    string `json:"summary"`
}

// Transcript acumula los resumenes por categoria en orden de evaluacion.
// Solo admite agregar; no es seguro para uso concurrente.
type Transcript struct {
	entries []TranscriptEntry
	seen    map[string]struct{}
}

func NewTranscript() *Transcript {
	return &Transcript{seen: make(map[string]struct{})}
}

// Append agrega una entrada. Devuelve false si la categoria ya estaba registrada.
func (t *Transcript) Append(entry TranscriptEntry) bool {
	if t.seen == nil {
		t.seen = make(map[string]struct{})
	}
	if _, ok := t.seen[entry.CategoryID]; ok {
		return false
	}
	t.seen[entry.CategoryID] = struct{}{}
	t.entries = append(t.entries, entry)
	return true
}

func (t *Transcript) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries devuelve una copia de las entradas.
func (t *Transcript) Entries() []TranscriptEntry {
	if t == nil {
		return nil
	}
	out := make([]TranscriptEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Text renderiza el transcript tal como se incrusta en el prompt de ranking.
func (t *Transcript) Text() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	for _, e := range t.entries {
		b.WriteString("\n\n")
		b.WriteString(e.Label)
		b.WriteString(" : \n\n")
		b.WriteString(e.Summary)
	}
	return b.String()
}
