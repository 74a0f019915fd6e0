// Package inspect renders interpreter state for people: values, scope chains
// and call stacks. Nothing here runs script code, so inspecting a paused
// context never changes it.
package inspect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/timewinder-dev/ecmastep/env"
	"github.com/timewinder-dev/ecmastep/ops"
	"github.com/timewinder-dev/ecmastep/value"
)

const (
	maxItems = 5
	maxDepth = 2
)

// Format renders v the way a console would. Long arrays and objects are
// truncated and nesting is cut off after a couple of levels.
func Format(store env.Store, v value.Value) string {
	return format(store, v, 0)
}

func format(store env.Store, v value.Value, depth int) string {
	switch v := v.(type) {
	case nil:
		return "<empty>"
	case value.String:
		return strconv.Quote(string(v))
	case value.Object:
		return formatObject(store, v, depth)
	}
	return value.StringOf(v)
}

func formatObject(store env.Store, o value.Object, depth int) string {
	obj, ok := store.Object(o)
	if !ok {
		return fmt.Sprintf("<dangling object %d>", o)
	}
	switch {
	case obj.Call != nil:
		name := obj.Call.FunctionName()
		if name == "" {
			return "[Function (anonymous)]"
		}
		return "[Function: " + name + "]"
	case obj.Class == "Error":
		return "[" + ops.Describe(store, o) + "]"
	case obj.Primitive != nil:
		return fmt.Sprintf("[%s: %s]", obj.Class, format(store, obj.Primitive, depth))
	case obj.Class == "Array":
		if depth >= maxDepth {
			return "[Array]"
		}
		return formatArray(store, o, depth)
	}
	if depth >= maxDepth {
		return "[Object]"
	}
	keys := ops.OwnKeys(store, o, true)
	if len(keys) == 0 {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		if i >= maxItems {
			fmt.Fprintf(&sb, "... (%d more)", len(keys)-i)
			break
		}
		p, _ := obj.Own(k)
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(formatProperty(store, p, depth+1))
	}
	sb.WriteString("}")
	return sb.String()
}

func formatArray(store env.Store, o value.Object, depth int) string {
	n := int(ops.Length(store, o))
	if n == 0 {
		return "[]"
	}
	obj, _ := store.Object(o)
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		if i >= maxItems {
			fmt.Fprintf(&sb, "... (%d more)", n-i)
			break
		}
		p, ok := obj.Own(strconv.Itoa(i))
		if !ok {
			sb.WriteString("<hole>")
			continue
		}
		sb.WriteString(formatProperty(store, p, depth+1))
	}
	sb.WriteString("]")
	return sb.String()
}

func formatProperty(store env.Store, p env.Property, depth int) string {
	if !p.Accessor {
		return format(store, p.Value, depth)
	}
	_, get := p.Getter.(value.Object)
	_, set := p.Setter.(value.Object)
	switch {
	case get && set:
		return "[Getter/Setter]"
	case get:
		return "[Getter]"
	}
	return "[Setter]"
}
