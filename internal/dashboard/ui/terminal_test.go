package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var deleteIntent = Intent{
	Title:        "Eliminar Categoría",
	Prompt:       "¿Desea eliminar la categoría seleccionada?",
	ConfirmLabel: "Sí",
	CancelLabel:  "No",
	Danger:       true,
}

func TestTerminal_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"sí\n", true},
		{"S\n", true},
		{"yes\n", true},
		{"no\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			term := &Terminal{Out: &out, In: strings.NewReader(tt.input)}
			ok, err := term.Confirm(context.Background(), deleteIntent)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Contains(t, out.String(), "¿Desea eliminar la categoría seleccionada? [Sí/No]")
		})
	}
}

func TestTerminal_AssumeYesAndNoInput(t *testing.T) {
	var out bytes.Buffer
	ok, err := (&Terminal{Out: &out, AssumeYes: true}).Confirm(context.Background(), deleteIntent)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = (&Terminal{Out: &out}).Confirm(context.Background(), deleteIntent)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTerminal_DangerColor(t *testing.T) {
	var out bytes.Buffer
	term := &Terminal{Out: &out, In: strings.NewReader("no\n"), Color: true}
	_, err := term.Confirm(context.Background(), deleteIntent)
	require.NoError(t, err)
	assert.Contains(t, out.String(), ansiRed+"Sí"+ansiReset)
}

func TestTerminal_NotifyAndNavigate(t *testing.T) {
	var out bytes.Buffer
	term := &Terminal{Out: &out}
	term.Notify(LevelSuccess, "Categoría creada")
	term.Notify(LevelError, "Error al crear la categoría")
	term.Navigate(RouteLogin)

	assert.Equal(t, "✔ Categoría creada\n✖ Error al crear la categoría\n", out.String())
	assert.Equal(t, RouteLogin, term.Route())
}

func TestRecorder(t *testing.T) {
	rec := &Recorder{Answer: true}
	rec.Notify(LevelError, "a")
	rec.Notify(LevelSuccess, "b")
	ok, err := rec.Confirm(context.Background(), deleteIntent)
	require.NoError(t, err)
	assert.True(t, ok)
	rec.Navigate(RouteDashboard)

	assert.Equal(t, []string{"a"}, rec.Messages(LevelError))
	assert.Equal(t, []Intent{deleteIntent}, rec.Intents())
	assert.Equal(t, []Route{RouteDashboard}, rec.Routes())
}
