package pipeline

import (
	"errors"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// ExtractStages parses text and returns its stage declarations in document
// order. It never fails: unparsable text, a missing or non-mapping stages key,
// and an empty document all yield an empty slice. A stream holding more than
// one document and a mapping with a repeated key are parse errors too. Entries
// whose key is not a scalar or whose body is not a mapping are skipped.
func ExtractStages(text string) (stages []Stage) {
	stages = []Stage{}
	defer func() {
		if r := recover(); r != nil {
			stages = []Stage{}
		}
	}()

	doc, ok := parseDocument(text)
	if !ok {
		return stages
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return stages
	}

	stagesNode := lookup(doc.Content[0], "stages")
	if stagesNode == nil || stagesNode.Kind != yaml.MappingNode {
		return stages
	}

	for i := 0; i+1 < len(stagesNode.Content); i += 2 {
		stage, ok := parseStage(stagesNode.Content[i], stagesNode.Content[i+1])
		if !ok {
			continue
		}
		stages = append(stages, stage)
	}
	return stages
}

// parseDocument decodes the single document in text. The node tree keeps
// repeated mapping keys, so they are rejected here.
func parseDocument(text string) (yaml.Node, bool) {
	dec := yaml.NewDecoder(strings.NewReader(text))

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		return yaml.Node{}, false
	}
	var next yaml.Node
	if err := dec.Decode(&next); !errors.Is(err, io.EOF) {
		return yaml.Node{}, false
	}

	if !uniqueKeys(&doc) {
		return yaml.Node{}, false
	}
	return doc, true
}

// uniqueKeys reports whether no mapping under n repeats a scalar key. Keys
// compare by their text, so 1 and "1" collide, as stage names would. Aliases
// are checked where their anchor is defined.
func uniqueKeys(n *yaml.Node) bool {
	if n == nil {
		return true
	}
	if n.Kind == yaml.MappingNode {
		seen := make(map[string]struct{}, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if key.Kind != yaml.ScalarNode {
				continue
			}
			if _, dup := seen[key.Value]; dup {
				return false
			}
			seen[key.Value] = struct{}{}
		}
	}
	for _, child := range n.Content {
		if !uniqueKeys(child) {
			return false
		}
	}
	return true
}

func parseStage(key, body *yaml.Node) (Stage, bool) {
	if key.Kind != yaml.ScalarNode || body.Kind != yaml.MappingNode {
		return Stage{}, false
	}
	if key.Line < 1 {
		return Stage{}, false
	}

	stage := Stage{Name: key.Value, Line: key.Line}

	// foreach wins over matrix when both are declared.
	if foreachNode := lookup(body, "foreach"); foreachNode != nil {
		stage.Type = TypeForeach
		stage.Foreach = foreachItems(decodeValue(foreachNode))
		if doNode := resolveAlias(lookup(body, "do")); doNode != nil && doNode.Kind == yaml.MappingNode {
			stage.Cmd = commandText(decodeValue(lookup(doNode, "cmd")))
		}
		return stage, true
	}

	if matrixNode := lookup(body, "matrix"); matrixNode != nil {
		stage.Type = TypeMatrix
		stage.Matrix = matrixAxes(decodeValue(matrixNode))
		stage.Cmd = commandText(decodeValue(lookup(body, "cmd")))
		return stage, true
	}

	stage.Type = TypeSimple
	stage.Cmd = commandText(decodeValue(lookup(body, "cmd")))
	return stage, true
}
