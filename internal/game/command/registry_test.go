package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	require.NotNil(t, r)
	assert.Len(t, r.Commands(), len(BuiltinCommands()))
}

func TestDefaultRegistry_OrderMatchesBuiltins(t *testing.T) {
	cmds := DefaultRegistry().Commands()
	for i, want := range BuiltinCommands() {
		assert.Equal(t, want.Name, cmds[i].Name)
	}
}

func TestResolve_AllInputs(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		input   string
		handler string
	}{
		{"attack", HandlerAttack},
		{"a", HandlerAttack},
		{"special", HandlerSpecial},
		{"s", HandlerSpecial},
		{"heal", HandlerHeal},
		{"h", HandlerHeal},
		{"surrender", HandlerSurrender},
		{"give", HandlerSurrender},
		{"new", HandlerNew},
		{"reset", HandlerNew},
		{"restart", HandlerNew},
		{"status", HandlerStatus},
		{"look", HandlerStatus},
		{"log", HandlerLog},
		{"history", HandlerHistory},
		{"help", HandlerHelp},
		{"?", HandlerHelp},
		{"quit", HandlerQuit},
		{"exit", HandlerQuit},
	}

	for _, tt := range tests {
		cmd, ok := r.Resolve(tt.input)
		require.True(t, ok, "input %q not found", tt.input)
		assert.Equal(t, tt.handler, cmd.Handler, "input %q wrong handler", tt.input)
	}
}

func TestResolve_NotFound(t *testing.T) {
	_, ok := DefaultRegistry().Resolve("flee")
	assert.False(t, ok)
}

func TestNewRegistry_DuplicateName(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "test", Handler: "a"},
		{Name: "test", Handler: "b"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate command name")
}

func TestNewRegistry_DuplicateAlias(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "test1", Aliases: []string{"t"}, Handler: "a"},
		{Name: "test2", Aliases: []string{"t"}, Handler: "b"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate alias")
}

func TestNewRegistry_AliasShadowsName(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "a", Handler: "x"},
		{Name: "attack", Aliases: []string{"a"}, Handler: "y"},
	})
	assert.Error(t, err)
}

func TestNewRegistry_EmptyName(t *testing.T) {
	_, err := NewRegistry([]Command{{Handler: "x"}})
	assert.Error(t, err)
}

func TestCommands_ReturnsCopy(t *testing.T) {
	r := DefaultRegistry()
	cmds := r.Commands()
	cmds[0] = nil
	assert.NotNil(t, r.Commands()[0])
}

func TestPropertyAllAliasesResolveToCanonical(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := DefaultRegistry()
		cmds := r.Commands()
		cmd := cmds[rapid.IntRange(0, len(cmds)-1).Draw(t, "cmd_idx")]

		resolved, ok := r.Resolve(cmd.Name)
		if !ok || resolved.Name != cmd.Name {
			t.Fatalf("canonical name %q did not resolve to itself", cmd.Name)
		}
		for _, alias := range cmd.Aliases {
			aliasResolved, ok := r.Resolve(alias)
			if !ok || aliasResolved.Name != cmd.Name {
				t.Fatalf("alias %q did not resolve to %q", alias, cmd.Name)
			}
		}
	})
}
