// Command mustachec renders, inspects, and unexecutes compiled
// mustachec templates from the command line.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/arashov/mustachec"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mustachec",
		Short: "Render, introspect, and unexecute mustachec templates",
	}
	root.AddCommand(newRenderCmd(), newIdentityCmd(), newUnexecuteCmd())
	return root
}

func newRenderCmd() *cobra.Command {
	var dataFile string
	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a template against a YAML scope document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := loadTemplate(args[0])
			if err != nil {
				return err
			}
			scope := mustachec.NewScope()
			if dataFile != "" {
				scope, err = loadScope(dataFile)
				if err != nil {
					return err
				}
			}
			out, err := tmpl.RenderString(scope)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataFile, "data", "", "YAML file supplying the render scope")
	return cmd
}

func newIdentityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "identity <template>",
		Short: "Print a template's own source-reproducing identity rendering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := loadTemplate(args[0])
			if err != nil {
				return err
			}
			out, err := tmpl.RenderIdentity()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newUnexecuteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unexecute <template> <rendered-file>",
		Short: "Recover a YAML scope document from a rendered file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := loadTemplate(args[0])
			if err != nil {
				return err
			}
			rendered, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			scope, ok := tmpl.Unexecute(string(rendered))
			if !ok {
				return fmt.Errorf("%s: rendered text does not match template", args[1])
			}
			out, err := yaml.Marshal(scopeToYAML(scope))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

var partialRefRe = regexp.MustCompile(`\{\{[<>]\s*([^\s}]+)\s*\}\}`)

// loadTemplate parses path, resolving any {{>name}}/{{<name}} references
// by convention against sibling "name.mustache" files in the same
// directory (the CLI's own ambient convenience; the core package has
// no file-resolution protocol of its own).
func loadTemplate(path string) (*mustachec.Template, error) {
	visited := make(map[string]*mustachec.Template)
	return loadTemplateFile(path, visited)
}

func loadTemplateFile(path string, visited map[string]*mustachec.Template) (*mustachec.Template, error) {
	if t, ok := visited[path]; ok {
		return t, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	opts := []mustachec.Option{mustachec.Name(partialKey(path))}
	dir := filepath.Dir(path)
	for _, m := range partialRefRe.FindAllStringSubmatch(string(b), -1) {
		refName := m[1]
		refPath := filepath.Join(dir, refName+".mustache")
		if _, err := os.Stat(refPath); err != nil {
			continue
		}
		ref, err := loadTemplateFile(refPath, visited)
		if err != nil {
			return nil, err
		}
		opts = append(opts, mustachec.WithPartial(ref))
	}

	tmpl := mustachec.New(opts...)
	if err := tmpl.ParseBytes(b); err != nil {
		return nil, err
	}
	visited[path] = tmpl
	return tmpl, nil
}

// partialKey is the name other templates reference this one by:
// its filename without the .mustache extension.
func partialKey(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func loadScope(path string) (*mustachec.Scope, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw interface{}
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	return scopeFromYAML(raw), nil
}

// scopeFromYAML converts a yaml.v2-decoded value (map[interface{}]interface{}
// for mappings, []interface{} for sequences) into a *Scope tree.
func scopeFromYAML(v interface{}) *mustachec.Scope {
	scope := mustachec.NewScope()
	populateScope(scope, v)
	return scope
}

func populateScope(scope *mustachec.Scope, v interface{}) {
	m, ok := v.(map[interface{}]interface{})
	if !ok {
		return
	}
	for k, val := range m {
		key := fmt.Sprintf("%v", k)
		scope.Set(key, yamlValue(val))
	}
}

func yamlValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		child := mustachec.NewScope()
		populateScope(child, t)
		return child
	case []interface{}:
		out := make([]*mustachec.Scope, len(t))
		for i, item := range t {
			if m, ok := item.(map[interface{}]interface{}); ok {
				child := mustachec.NewScope()
				populateScope(child, m)
				out[i] = child
				continue
			}
			child := mustachec.NewScope()
			child.Set(".", item)
			out[i] = child
		}
		return out
	default:
		return t
	}
}

// scopeToYAML is the inverse of scopeFromYAML, converting a recovered
// *Scope back into plain values yaml.Marshal can encode.
func scopeToYAML(scope *mustachec.Scope) interface{} {
	if scope == nil {
		return nil
	}
	out := make(map[string]interface{})
	for _, key := range scope.Keys() {
		v, _ := scope.Get(key)
		out[key] = valueToYAML(v)
	}
	return out
}

func valueToYAML(v interface{}) interface{} {
	switch t := v.(type) {
	case *mustachec.Scope:
		return scopeToYAML(t)
	case []*mustachec.Scope:
		out := make([]interface{}, len(t))
		for i, s := range t {
			out[i] = scopeToYAML(s)
		}
		return out
	default:
		return t
	}
}
