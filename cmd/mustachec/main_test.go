package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/arashov/mustachec"
)

// TestRenderUnexecuteRoundTrip exercises the round-trip property
// described for the CLI: render piped through unexecute reproduces the
// scope document that produced it, with every recovered value as a
// string (age 30 comes back as "30"). Structural equality between the two
// decoded YAML documents is checked with go-cmp rather than
// reflect.DeepEqual, since the recovered tree nests plain Go maps and
// the comparison should ignore key order, which cmp.Diff does not
// care about for map types.
func TestRenderUnexecuteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "greeting.mustache")
	require.NoError(t, os.WriteFile(tmplPath, []byte("Hello {{name}}, you are {{age}}!"), 0o644))

	dataPath := filepath.Join(dir, "data.yaml")
	require.NoError(t, os.WriteFile(dataPath, []byte("name: world\nage: 30\n"), 0o644))

	tmpl, err := loadTemplate(tmplPath)
	require.NoError(t, err)

	scope, err := loadScope(dataPath)
	require.NoError(t, err)

	rendered, err := tmpl.RenderString(scope)
	require.NoError(t, err)
	require.Equal(t, "Hello world, you are 30!", rendered)

	recovered, ok := tmpl.Unexecute(rendered)
	require.True(t, ok)

	var want interface{}
	require.NoError(t, yaml.Unmarshal([]byte("name: world\nage: \"30\"\n"), &want))

	got := scopeToYAML(recovered)
	gotYAML, err := yaml.Marshal(got)
	require.NoError(t, err)
	var gotDecoded interface{}
	require.NoError(t, yaml.Unmarshal(gotYAML, &gotDecoded))

	if diff := cmp.Diff(want, gotDecoded); diff != "" {
		t.Fatalf("recovered scope mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadTemplateResolvesSiblingPartial(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "header.mustache"), []byte("<<{{title}}>>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.mustache"), []byte("{{>header}} body"), 0o644))

	tmpl, err := loadTemplate(filepath.Join(dir, "page.mustache"))
	require.NoError(t, err)

	scope := mustachec.NewScope()
	scope.Set("title", "Hi")
	out, err := tmpl.RenderString(scope)
	require.NoError(t, err)
	require.Equal(t, "<<Hi>> body", out)
}
