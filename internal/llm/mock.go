package llm

import (
	"context"
	"sync"
)

// MockClient permite tests sin llamar a un modelo real.
// Si Respond esta definido, recibe el numero de llamada (desde 1) y el pedido.
type MockClient struct {
	Response string
	Err      error
	Respond  func(call int, req Request) (string, error)

	mu    sync.Mutex
	calls []Request
}

func (m *MockClient) Generate(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	n := len(m.calls)
	m.mu.Unlock()

	if m.Respond != nil {
		return m.Respond(n, req)
	}
	return m.Response, m.Err
}

// Requests devuelve una copia de los pedidos recibidos.
func (m *MockClient) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
