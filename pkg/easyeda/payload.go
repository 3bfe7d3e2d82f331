package easyeda

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrPayload is returned when a record is not a JSON object (or a JSON
// string holding one).
var ErrPayload = errors.New("easyeda: malformed payload")

// maxNesting bounds dataStr recursion
const maxNesting = 8

// Payload is the decoded shape content of a symbol or footprint record
type Payload struct {
	Shapes []string
	// Model is the 3D package referenced by an SVGNODE, if any.
	Model *ModelRef
}

// ModelRef identifies the 3D package attached to a footprint
type ModelRef struct {
	UUID  string
	Title string
}

// DecodePayload decodes a raw record. The record may be a JSON object or a
// JSON string containing one. Shapes come from "shape" or "shapes", either a
// list of strings or one joined string; a nested "dataStr" object (or JSON
// string) is decoded recursively and its shapes appended.
func DecodePayload(data []byte) (*Payload, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayload, err)
	}
	return DecodePayloadValue(v)
}

// DecodePayloadValue is DecodePayload for an already unmarshalled value.
func DecodePayloadValue(v any) (*Payload, error) {
	if s, ok := v.(string); ok {
		var inner any
		if err := json.Unmarshal([]byte(s), &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPayload, err)
		}
		v = inner
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected object, got %T", ErrPayload, v)
	}

	p := &Payload{}
	p.collect(obj, 0)
	p.Model = findModel(p.Shapes)
	return p, nil
}

func (p *Payload) collect(obj map[string]any, depth int) {
	raw, ok := obj["shape"]
	if !ok || raw == nil {
		raw = obj["shapes"]
	}
	switch shapes := raw.(type) {
	case string:
		p.Shapes = append(p.Shapes, SplitShapes(shapes)...)
	case []any:
		for _, item := range shapes {
			if s, ok := item.(string); ok {
				p.Shapes = append(p.Shapes, s)
			}
		}
	}

	if depth >= maxNesting {
		return
	}
	nested, ok := obj["dataStr"]
	if !ok {
		return
	}
	if s, ok := nested.(string); ok {
		var inner any
		if err := json.Unmarshal([]byte(s), &inner); err != nil {
			return
		}
		nested = inner
	}
	if m, ok := nested.(map[string]any); ok {
		p.collect(m, depth+1)
	}
}

// svgNode is the JSON body of an SVGNODE shape
type svgNode struct {
	Attrs struct {
		UUID  string `json:"uuid"`
		Title string `json:"title"`
	} `json:"attrs"`
}

func findModel(shapes []string) *ModelRef {
	for _, raw := range shapes {
		tag, body, ok := strings.Cut(raw, FieldSeparator)
		if !ok || !strings.EqualFold(strings.TrimSpace(tag), "SVGNODE") {
			continue
		}
		var node svgNode
		if err := json.Unmarshal([]byte(body), &node); err != nil {
			continue
		}
		if node.Attrs.UUID != "" {
			return &ModelRef{UUID: node.Attrs.UUID, Title: node.Attrs.Title}
		}
	}
	return nil
}
