/*
 * Copyright 2022 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package block

import (
    `gonum.org/v1/gonum/graph`
    `gonum.org/v1/gonum/graph/encoding`
    `gonum.org/v1/gonum/graph/encoding/dot`
    `gonum.org/v1/gonum/graph/flow`
    `gonum.org/v1/gonum/graph/simple`
)

type _Node struct {
    bb *Block
}

func (self _Node) ID() int64 {
    return int64(self.bb.Id)
}

func (self _Node) DOTID() string {
    return self.bb.String()
}

func (self _Node) Attributes() []encoding.Attribute {
    label := self.bb.String() + " [" + self.bb.Kind.String() + "]"
    if self.bb.Elem != nil {
        label += "\n" + self.bb.Elem.String()
    }
    return []encoding.Attribute {
        { Key: "shape", Value: "box" },
        { Key: "label", Value: label },
    }
}

type _Edge struct {
    f, t  _Node
    label string
}

func (self _Edge) From() graph.Node {
    return self.f
}

func (self _Edge) To() graph.Node {
    return self.t
}

func (self _Edge) ReversedEdge() graph.Edge {
    return _Edge{f: self.t, t: self.f, label: self.label}
}

func (self _Edge) Attributes() []encoding.Attribute {
    if self.label == "" {
        return nil
    } else {
        return []encoding.Attribute{{ Key: "label", Value: self.label }}
    }
}

func edgeLabel(bb *Block, i int) string {
    if bb.Kind != BCiftrue {
        return ""
    } else if i == 0 {
        return "T"
    } else {
        return "F"
    }
}

// Graph returns a directed graph view of the flow graph, node IDs are block
// IDs. Self loops are left out since they never affect dominance.
func (self *Func) Graph() *simple.DirectedGraph {
    g := simple.NewDirectedGraph()
    for _, bb := range self.Blocks {
        g.AddNode(_Node{bb})
    }

    /* add every edge */
    for _, bb := range self.Blocks {
        for i, s := range bb.Succ {
            if s != bb {
                g.SetEdge(_Edge{f: _Node{bb}, t: _Node{s}, label: edgeLabel(bb, i)})
            }
        }
    }
    return g
}

// Dominators maps every block ID to the ID of its immediate dominator, the
// entry block maps to -1.
func (self *Func) Dominators() map[int]int {
    if len(self.Blocks) == 0 {
        return nil
    }

    /* compute the dominator tree */
    ret := make(map[int]int, len(self.Blocks))
    dom := flow.Dominators(_Node{self.Blocks[0]}, self.Graph())

    /* map the immediate dominators */
    for _, bb := range self.Blocks {
        if p := dom.DominatorOf(int64(bb.Id)); p == nil {
            ret[bb.Id] = -1
        } else {
            ret[bb.Id] = int(p.ID())
        }
    }
    return ret
}

// Dot renders the flow graph in the DOT language.
func (self *Func) Dot() (string, error) {
    if buf, err := dot.Marshal(self.Graph(), self.Name, "", "    "); err != nil {
        return "", err
    } else {
        return string(buf), nil
    }
}
