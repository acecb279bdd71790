package scanner

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"go.uber.org/zap"

	"github.com/richinex/harmonize/model"
)

// openaiResources maps the legacy module-level API resources to call kinds.
var openaiResources = map[string]model.CallKind{
	"ChatCompletion": model.CallChatCompletion,
	"Completion":     model.CallCompletion,
	"Embedding":      model.CallEmbedding,
	"FineTune":       model.CallFineTune,
}

var pythonPatterns = []linePattern{
	{regexp.MustCompile(`openai\.ChatCompletion\.create\s*\(`), model.CallChatCompletion},
	{regexp.MustCompile(`openai\.Completion\.create\s*\(`), model.CallCompletion},
	{regexp.MustCompile(`openai\.Embedding\.create\s*\(`), model.CallEmbedding},
	{regexp.MustCompile(`openai\.FineTune\.create\s*\(`), model.CallFineTune},
	{regexp.MustCompile(`\.chat\.completions\.create\s*\(`), model.CallChatCompletion},
}

// PythonDetector extracts call records from Python source using a full
// tree-sitter parse, falling back to line patterns on broken syntax.
type PythonDetector struct {
	logger *zap.Logger
}

// NewPythonDetector creates a Python detector.
func NewPythonDetector(logger *zap.Logger) *PythonDetector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PythonDetector{logger: logger}
}

// Detect parses source and walks the tree for recognized call sites.
// Syntax errors switch the whole file to the pattern strategy rather
// than surfacing a failure.
func (d *PythonDetector) Detect(source []byte, path string) []model.CallRecord {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		d.logger.Warn("python parse failed, using pattern fallback",
			zap.String("file", path), zap.Error(err))
		return scanLines(source, path, pythonPatterns)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		d.logger.Debug("python source has syntax errors, using pattern fallback",
			zap.String("file", path))
		return scanLines(source, path, pythonPatterns)
	}

	var calls []model.CallRecord
	walk(root, func(node *sitter.Node) {
		if node.Type() != "call" {
			return
		}
		kind, ok := resolveCallee(node.ChildByFieldName("function"), source)
		if !ok {
			return
		}
		calls = append(calls, recordsForCall(node, kind, source, path)...)
	})
	return calls
}

// walk visits every node in the tree, parents before children.
func walk(node *sitter.Node, visit func(*sitter.Node)) {
	visit(node)
	for i := 0; i < int(node.NamedChildCount()); i++ {
		walk(node.NamedChild(i), visit)
	}
}

// resolveCallee matches a callee expression against the recognized access
// paths: openai.<Resource>.create and <expr>.chat.completions.create.
func resolveCallee(fn *sitter.Node, source []byte) (model.CallKind, bool) {
	path := attributePath(fn, source)
	if len(path) == 3 && path[0] == "openai" && path[2] == "create" {
		if kind, ok := openaiResources[path[1]]; ok {
			return kind, true
		}
	}
	// Client-style chat completions: client.chat.completions.create(...).
	n := len(path)
	if n >= 4 && path[n-3] == "chat" && path[n-2] == "completions" && path[n-1] == "create" {
		return model.CallChatCompletion, true
	}
	return "", false
}

// attributePath flattens a dotted attribute chain into its components.
// Returns nil when the expression is not a plain identifier chain.
func attributePath(node *sitter.Node, source []byte) []string {
	switch {
	case node == nil:
		return nil
	case node.Type() == "identifier":
		return []string{nodeText(node, source)}
	case node.Type() == "attribute":
		left := attributePath(node.ChildByFieldName("object"), source)
		if left == nil {
			return nil
		}
		attr := node.ChildByFieldName("attribute")
		if attr == nil {
			return nil
		}
		return append(left, nodeText(attr, source))
	default:
		return nil
	}
}

// recordsForCall builds the call records for one matched call expression.
// Tool-bearing calls split into one record per tool schema so cost is
// attributed per tool surface.
func recordsForCall(node *sitter.Node, kind model.CallKind, source []byte, path string) []model.CallRecord {
	params := extractKeywords(node.ChildByFieldName("arguments"), source)

	var tools []model.ToolSchema
	if v, ok := params["functions"]; ok {
		tools = toolSchemasFromValue(v)
	} else if v, ok := params["tools"]; ok {
		tools = toolSchemasFromValue(v)
	}

	base := model.CallRecord{
		File:            path,
		Line:            int(node.StartPoint().Row) + 1,
		Kind:            kind,
		Complexity:      classifyCall(params, len(tools) > 0),
		EstimatedTokens: estimateTokens(params),
		Snippet:         snippet(node, source),
		Params:          params,
	}

	if len(tools) == 0 {
		return []model.CallRecord{base}
	}
	records := make([]model.CallRecord, 0, len(tools))
	for _, tool := range tools {
		rec := base
		rec.Kind = model.CallFunction
		rec.Tools = []model.ToolSchema{tool}
		records = append(records, rec)
	}
	return records
}

// extractKeywords collects keyword arguments into the parameter mapping.
// Positional arguments carry no name and are ignored, matching the shape
// of every recognized API.
func extractKeywords(args *sitter.Node, source []byte) map[string]Value {
	params := map[string]Value{}
	if args == nil {
		return params
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)
		if child.Type() != "keyword_argument" {
			continue
		}
		name := child.ChildByFieldName("name")
		value := child.ChildByFieldName("value")
		if name == nil || value == nil {
			continue
		}
		params[nodeText(name, source)] = extractValue(value, source)
	}
	return params
}

// extractValue converts a literal expression into a tagged Value.
// Non-literal expressions become placeholders and are never evaluated.
func extractValue(node *sitter.Node, source []byte) Value {
	switch node.Type() {
	case "string":
		return model.StringValue(stringLiteral(nodeText(node, source)))
	case "integer", "float":
		if f, err := strconv.ParseFloat(nodeText(node, source), 64); err == nil {
			return model.NumberValue(f)
		}
		return model.OpaqueValue()
	case "true":
		return model.BoolValue(true)
	case "false":
		return model.BoolValue(false)
	case "list", "tuple":
		items := make([]Value, 0, node.NamedChildCount())
		for i := 0; i < int(node.NamedChildCount()); i++ {
			items = append(items, extractValue(node.NamedChild(i), source))
		}
		return model.SequenceValue(items...)
	case "dictionary":
		m := map[string]Value{}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			pair := node.NamedChild(i)
			if pair.Type() != "pair" {
				continue
			}
			key := pair.ChildByFieldName("key")
			value := pair.ChildByFieldName("value")
			if key == nil || value == nil {
				continue
			}
			m[extractValue(key, source).Text()] = extractValue(value, source)
		}
		return model.MappingValue(m)
	case "identifier":
		return model.PlaceholderValue(nodeText(node, source))
	case "unary_operator":
		// Negative number literals parse as unary operators.
		if f, err := strconv.ParseFloat(nodeText(node, source), 64); err == nil {
			return model.NumberValue(f)
		}
		return model.OpaqueValue()
	default:
		return model.OpaqueValue()
	}
}

// stringLiteral strips quote characters and string prefixes from a
// Python string literal's source text.
func stringLiteral(text string) string {
	// Drop prefixes like f, r, b, u in any casing or combination.
	for len(text) > 0 {
		c := text[0]
		if c == '"' || c == '\'' {
			break
		}
		text = text[1:]
	}
	for _, q := range []string{`"""`, "'''", `"`, `'`} {
		if strings.HasPrefix(text, q) && strings.HasSuffix(text, q) && len(text) >= 2*len(q) {
			return text[len(q) : len(text)-len(q)]
		}
	}
	return text
}

// snippet returns the call's source text collapsed to a single line.
func snippet(node *sitter.Node, source []byte) string {
	text := collapseWhitespace(nodeText(node, source))
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
