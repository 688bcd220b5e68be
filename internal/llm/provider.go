package llm

import "fmt"

// Agent selecciona cual de los dos modelos atiende un pedido.
type Agent string

const (
	// AgentVision es el modelo chico con soporte de imagenes.
	AgentVision Agent = "vision"
	// AgentWriter es el modelo grande, solo texto, usado para redactar planes.
	AgentWriter Agent = "writer"
)

// ModelSet mapea cada agente al nombre de modelo del servidor.
type ModelSet struct {
	Vision string
	Writer string
}

// Resolve devuelve el modelo configurado para el agente.
func (m ModelSet) Resolve(agent Agent) (string, error) {
	switch agent {
	case AgentVision, "":
		if m.Vision == "" {
			return "", fmt.Errorf("no model configured for agent %q", AgentVision)
		}
		return m.Vision, nil
	case AgentWriter:
		if m.Writer == "" {
			return "", fmt.Errorf("no model configured for agent %q", AgentWriter)
		}
		return m.Writer, nil
	default:
		return "", fmt.Errorf("unknown agent %q", agent)
	}
}
