package varlinkdef_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeenix/zlink/varlinkdef"
)

func TestDescriptor(t *testing.T) {
	iface, err := varlinkdef.Read(strings.NewReader(exampleRaw))
	require.NoError(t, err)

	d := iface.Descriptor()
	require.Equal(t, "org.example.ftl", d.Name)
	require.ElementsMatch(t, []string{"NotEnoughEnergy", "ParameterOutOfRange"}, d.Errors)

	var jump *varlinkdef.MethodDescriptor
	for i := range d.Methods {
		if d.Methods[i].Name == "Jump" {
			jump = &d.Methods[i]
		}
	}
	require.NotNil(t, jump, "Jump method descriptor should be present")
	require.Len(t, jump.Params, 1)
	require.Equal(t, "configuration", jump.Params[0].Name)
	require.Empty(t, jump.Reply)
}
