package syntax

import (
	"encoding/json"
	"io"
	"iter"
	"strconv"

	"github.com/vito/luafmt/pkg/indent"
)

// Inspect traverses the tree rooted at n in depth-first order, calling f for
// every element. If f returns false for a node, its children are skipped.
func Inspect(n *Node, f func(Element) bool) {
	inspect(nd(n), f)
}

func inspect(e Element, f func(Element) bool) {
	if !f(e) || e.Node == nil {
		return
	}
	for _, c := range e.Node.Children {
		inspect(c, f)
	}
}

// All yields n and every element below it in pre-order.
func All(n *Node) iter.Seq[Element] {
	return func(yield func(Element) bool) {
		stopped := false
		Inspect(n, func(e Element) bool {
			if stopped {
				return false
			}
			if !yield(e) {
				stopped = true
				return false
			}
			return true
		})
	}
}

// Dump writes an outline of the tree: one line per element with its kind,
// and each node's children between braces one level deeper.
//
//	Chunk
//	{
//	    Block
//	    {
//	        ...
//	    }
//	    EndOfFile ""
//	}
func Dump(w io.Writer, n *Node) error {
	iw := indent.New(w, "    ")
	dumpElement(iw, nd(n))
	return iw.Err()
}

func dumpElement(w *indent.Writer, e Element) {
	if e.Token != nil {
		switch {
		case e.Token.Missing:
			w.WriteLinef("%s <missing>", e.Token.Kind)
		case e.Token.Kind == Empty:
			w.WriteLine(e.Token.Kind.String())
		default:
			w.WriteLinef("%s %s", e.Token.Kind, strconv.Quote(e.Token.Text))
		}
		return
	}
	w.WriteLine(e.Node.Kind.String())
	w.WriteLine("{")
	_ = w.Indented(func() error {
		for _, c := range e.Node.Children {
			dumpElement(w, c)
		}
		return nil
	})
	w.WriteLine("}")
}

type jsonElement struct {
	Kind     string        `json:"kind"`
	Text     string        `json:"text,omitempty"`
	Missing  bool          `json:"missing,omitempty"`
	Children []jsonElement `json:"children,omitempty"`
}

// DumpJSON writes the tree as nested JSON objects with snake_case kinds.
func DumpJSON(w io.Writer, n *Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(nd(n)))
}

func toJSON(e Element) jsonElement {
	if e.Token != nil {
		return jsonElement{Kind: e.Token.Kind.SnakeName(), Text: e.Token.Text, Missing: e.Token.Missing}
	}
	je := jsonElement{Kind: e.Node.Kind.SnakeName()}
	for _, c := range e.Node.Children {
		je.Children = append(je.Children, toJSON(c))
	}
	return je
}
