package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrsandeep/docscan/internal/models"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

const weighbridgeScript = `
var unit = "Tons";
exports.category = "Weighbridge";
exports.apiVersion = "^1.0";
exports.extract = function (text) {
	docscan.log("extracting " + unit);
	return {
		"Material": docscan.find("Material:\\s*(.+)", text),
		"Net Weight (Tons)": 12.5,
		"Vehicle No": null
	};
};
`

func TestLoadScript(t *testing.T) {
	dir := t.TempDir()

	t.Run("Valid script", func(t *testing.T) {
		s, err := LoadScript(writeScript(t, dir, "wb.js", weighbridgeScript))
		require.NoError(t, err)
		assert.Equal(t, "wb.js", s.Name())
		assert.Equal(t, models.CategoryWeighbridge, s.Category())

		got, err := s.Extract(context.Background(), Input{Text: "Material: HDPE\nNet Wt 12500"})
		require.NoError(t, err)
		assert.Equal(t, models.Fields{
			"Material":          "HDPE",
			"Net Weight (Tons)": "12.50",
			"Vehicle No":        "",
		}, got)
	})

	testCases := []struct {
		name   string
		script string
		errMsg string
	}{
		{"Missing category", `exports.extract = function (t) { return {}; };`, "missing required export: category"},
		{"Unknown category", `exports.category = "Menu"; exports.extract = function (t) { return {}; };`, `unknown category "Menu"`},
		{"Missing extract", `exports.category = "LR Copy";`, "missing required export: extract"},
		{"Syntax error", `exports.category = ;`, "failed to execute script"},
		{"Newer API", `exports.category = "LR Copy"; exports.apiVersion = "^2.0"; exports.extract = function (t) { return {}; };`, "script requires API ^2.0"},
		{"Bad API range", `exports.category = "LR Copy"; exports.apiVersion = "soon"; exports.extract = function (t) { return {}; };`, `invalid apiVersion "soon"`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadScript(writeScript(t, dir, "bad.js", tc.script))
			var scriptErr *ScriptError
			require.True(t, errors.As(err, &scriptErr))
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestScriptExtractErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("Thrown error", func(t *testing.T) {
		s, err := LoadScript(writeScript(t, dir, "throw.js", `
exports.category = "Tax Invoice";
exports.extract = function (text) { throw new Error("unreadable"); };`))
		require.NoError(t, err)

		_, err = s.Extract(context.Background(), Input{Text: "x"})
		var scriptErr *ScriptError
		require.True(t, errors.As(err, &scriptErr))
		assert.False(t, scriptErr.IsTimeout)
		assert.Contains(t, err.Error(), "unreadable")
	})

	t.Run("Runaway script is interrupted", func(t *testing.T) {
		s, err := LoadScript(writeScript(t, dir, "loop.js", `
exports.category = "Tax Invoice";
exports.extract = function (text) { while (true) {} };`))
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err = s.Extract(ctx, Input{Text: "x"})
		var scriptErr *ScriptError
		require.True(t, errors.As(err, &scriptErr))
		assert.True(t, scriptErr.IsTimeout)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Non object result", func(t *testing.T) {
		s, err := LoadScript(writeScript(t, dir, "str.js", `
exports.category = "LR Copy";
exports.extract = function (text) { return "nope"; };`))
		require.NoError(t, err)
		_, err = s.Extract(context.Background(), Input{Text: "x"})
		assert.ErrorContains(t, err, "extract must return an object")
	})
}

func TestLoadScriptsAndRegister(t *testing.T) {
	scripts, err := LoadScripts("")
	require.NoError(t, err)
	assert.Empty(t, scripts)

	dir := t.TempDir()
	writeScript(t, dir, "wb.js", weighbridgeScript)
	writeScript(t, dir, "notes.txt", "ignored")

	scripts, err = LoadScripts(dir)
	require.NoError(t, err)
	require.Len(t, scripts, 1)

	r := NewRegistry()
	RegisterRegex(r)
	RegisterScripts(r, scripts)

	for _, b := range r.Bindings() {
		switch b.Category {
		case models.CategoryWeighbridge:
			assert.Equal(t, "script:wb.js", b.Source)
		case models.CategoryUnknown:
			assert.Empty(t, b.Source)
		default:
			assert.Equal(t, SourceRegex, b.Source)
		}
	}
}
