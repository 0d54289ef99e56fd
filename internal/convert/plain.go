package convert

import (
	"github.com/yuin/goldmark/ast"
)

// setPlainRules removes the last Obsidian extensions from the Markdown rules.
func setPlainRules(t *Tokenizer) {
	t.SetRule(KindHighlight, func(r *Renderer, n ast.Node) string {
		return r.Children(n)
	})
}
