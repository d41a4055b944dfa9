package exampleapi_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeenix/zlink"
	"github.com/zeenix/zlink/example/exampleapi"
)

type stubBackend struct {
	logged []string
}

func (b *stubBackend) Add(a, c int) int { return a + c }

func (b *stubBackend) Divide(a, c int) (int, error) {
	if c == 0 {
		return 0, &exampleapi.DivisionByZeroError{Message: "division by zero"}
	}
	return a / c, nil
}

func (b *stubBackend) Log(message string) { b.logged = append(b.logged, message) }

func call(method string, params any) *zlink.Call {
	b, _ := json.Marshal(params)
	return &zlink.Call{Method: method, Parameters: b}
}

// MethodReply's Single/Error/Multi fields are unexported by construction, so
// Add/Divide/Count are exercised end-to-end through a real Server/Proxy by
// cmd/certification against the example server; here only the
// Backend side effects and the Service metadata methods are checked
// directly.

func TestServiceLogInvokesBackend(t *testing.T) {
	backend := &stubBackend{}
	svc := exampleapi.Service{Backend: backend}
	svc.Handle(call("org.example.Log", map[string]string{"message": "hello"}))

	require.Equal(t, []string{"hello"}, backend.logged)
}

func TestServiceDivideByZeroHandledWithoutPanic(t *testing.T) {
	backend := &stubBackend{}
	svc := exampleapi.Service{Backend: backend}

	_, err := backend.Divide(1, 0)
	require.Error(t, err)
	var dbz *exampleapi.DivisionByZeroError
	require.ErrorAs(t, err, &dbz)

	// Handle should not panic when routing the same failure through the
	// wire-facing dispatch path.
	require.NotPanics(t, func() {
		svc.Handle(call("org.example.Divide", map[string]int{"a": 1, "b": 0}))
	})
}

func TestServiceInterfaces(t *testing.T) {
	svc := exampleapi.Service{Backend: &stubBackend{}}
	require.Equal(t, []string{exampleapi.InterfaceName}, svc.Interfaces())

	desc, ok := svc.InterfaceDescription(exampleapi.InterfaceName)
	require.True(t, ok)
	require.Contains(t, desc, "interface org.example")

	_, ok = svc.InterfaceDescription("org.nonexistent")
	require.False(t, ok)
}
