package registryfile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/releasebot/cascade/internal/domain/entities"
)

// decodeHCL parses a registry written as HCL module blocks:
//
//	module "module-platform-io" {
//	  version      = "1.2.0"
//	  dependencies = ["module-platform-lang"]
//	  release      = true
//	}
func decodeHCL(data []byte, path string) ([]entities.Module, error) {
	parser := hclparse.NewParser()

	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid HCL: %s", diags.Error())
	}

	bodyContent, _, diags := file.Body.PartialContent(&hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "module", LabelNames: []string{"name"}},
		},
	})
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid HCL structure: %s", diags.Error())
	}

	var modules []entities.Module
	for _, block := range bodyContent.Blocks {
		if block.Type != "module" || len(block.Labels) == 0 {
			continue
		}

		module, err := decodeModuleBlock(block)
		if err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}

	return modules, nil
}

func decodeModuleBlock(block *hcl.Block) (entities.Module, error) {
	module := entities.Module{
		Name:    block.Labels[0],
		Release: true,
	}

	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return module, fmt.Errorf("module %q: %s", module.Name, diags.Error())
	}

	if attr, ok := attrs["version"]; ok {
		val, err := attrString(attr)
		if err != nil {
			return module, fmt.Errorf("module %q version: %w", module.Name, err)
		}
		module.Version = val
	}

	if attr, ok := attrs["dependencies"]; ok {
		deps, err := attrStringList(attr)
		if err != nil {
			return module, fmt.Errorf("module %q dependencies: %w", module.Name, err)
		}
		module.Dependencies = deps
	}

	if attr, ok := attrs["release"]; ok {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() || val.Type() != cty.Bool {
			return module, fmt.Errorf("module %q: release must be a bool", module.Name)
		}
		module.Release = val.True()
	}

	return module, nil
}

func attrString(attr *hcl.Attribute) (string, error) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return "", fmt.Errorf("%s", diags.Error())
	}
	if val.Type() != cty.String {
		return "", fmt.Errorf("expected a string")
	}
	return val.AsString(), nil
}

func attrStringList(attr *hcl.Attribute) ([]string, error) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s", diags.Error())
	}
	if !val.CanIterateElements() {
		return nil, fmt.Errorf("expected a list of strings")
	}

	var out []string
	for it := val.ElementIterator(); it.Next(); {
		_, element := it.Element()
		if element.Type() != cty.String {
			return nil, fmt.Errorf("expected a list of strings")
		}
		out = append(out, element.AsString())
	}
	return out, nil
}

// encodeHCL renders the registry back to module blocks. Computed fields
// (level, dependents) stay out of the HCL form, which records only what
// a maintainer declares.
func encodeHCL(registry *entities.Registry) []byte {
	modules := registry.Modules()

	var b strings.Builder
	for i, m := range modules {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "module %q {\n", m.Name)
		fmt.Fprintf(&b, "  version      = %q\n", m.Version)

		deps := append([]string(nil), m.Dependencies...)
		sort.Strings(deps)
		quoted := make([]string, 0, len(deps))
		for _, dep := range deps {
			quoted = append(quoted, fmt.Sprintf("%q", dep))
		}
		fmt.Fprintf(&b, "  dependencies = [%s]\n", strings.Join(quoted, ", "))

		if !m.Release {
			b.WriteString("  release      = false\n")
		}
		b.WriteString("}\n")
	}
	return []byte(b.String())
}
