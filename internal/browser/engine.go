package browser

import (
	"encoding/json"
	"fmt"
)

// engineReadyExpr reports whether the injected engine is usable.
const engineReadyExpr = `typeof window.axe === "object" && typeof window.axe.run === "function"`

// runExpression builds the script that runs one engine pass and resolves to
// the JSON encoded result. Selectors and tags are embedded as JSON literals,
// never concatenated as raw text.
func runExpression(opts RunOptions) (string, error) {
	target := "document"
	if len(opts.ExcludeSelectors) > 0 {
		exclude := make([][]string, 0, len(opts.ExcludeSelectors))
		for _, sel := range opts.ExcludeSelectors {
			exclude = append(exclude, []string{sel})
		}
		data, err := json.Marshal(map[string]any{"exclude": exclude})
		if err != nil {
			return "", fmt.Errorf("failed to encode exclude selectors: %w", err)
		}
		target = string(data)
	}

	runOpts, err := json.Marshal(map[string]any{
		"runOnly": map[string]any{
			"type":   "tag",
			"values": opts.tags(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode engine options: %w", err)
	}

	return fmt.Sprintf(`(async () => {
  const r = await window.axe.run(%s, %s);
  return JSON.stringify({
    violations: r.violations,
    passes: r.passes,
    incomplete: r.incomplete,
    inapplicable: r.inapplicable
  });
})()`, target, runOpts), nil
}
