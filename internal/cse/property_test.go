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

package cse

import (
    `testing`

    `github.com/brianvoe/gofakeit/v6`
    `github.com/cloudwego/cgcs/internal/block`
    `github.com/cloudwego/cgcs/internal/el`
    `github.com/cloudwego/cgcs/internal/opts`
    `github.com/davecgh/go-spew/spew`
    `github.com/stretchr/testify/require`
)

type _Event struct {
    src    string
    symbol bool    // kills reads of s
    star   bool    // kills reads through p
    use    int     // 0 = none, 1 = reads s, 2 = reads through p
}

var testEvents = []_Event {
    { src: "(= t (- a b))" },
    { src: "(= (ind q) 7)" , symbol: true, star: true },
    { src: "(= s 5)"       , symbol: true, star: true },
    { src: "(ucall &f)"    , symbol: true, star: true },
    { src: "(= a 1)" },
    { src: "(= t (+ s 1))" , use: 1 },
    { src: "(= t (ind p))" , use: 2 },
}

func TestComsubs_RandomInterleavings(t *testing.T) {
    for _, n := range []int { 0, 3, 16001 } {
        for seed := int64(1); seed <= 50; seed++ {
            testRandomInterleaving(t, gofakeit.New(seed), &opts.Options{FilterSize: n})
        }
    }
}

func testRandomInterleaving(t *testing.T, fk *gofakeit.Faker, o *opts.Options) {
    var evs []_Event
    for i := fk.Number(1, 40); i > 0; i-- {
        evs = append(evs, testEvents[fk.Number(0, len(testEvents) - 1)])
    }

    /* build a straight-line function */
    srcs := make([]string, len(evs))
    for i, ev := range evs {
        srcs[i] = ev.src
    }
    fn := straight(t, srcs...)
    Comsubs(fn, o)

    /* replay the events, tracking which value is still valid */
    var live [3]*el.Elem
    for i, ev := range evs {
        if ev.use != 0 {
            got := fn.Blocks[i].Elem.E[1]
            if live[ev.use] != nil {
                require.Same(t, live[ev.use], got, "event %d of %s", i, spew.Sdump(srcs))
            } else {
                for j := 0; j < i; j++ {
                    if evs[j].use == ev.use {
                        require.NotSame(t, fn.Blocks[j].Elem.E[1], got, "event %d of %s", i, spew.Sdump(srcs))
                    }
                }
                live[ev.use] = got
            }
        }
        if ev.symbol { live[1] = nil }
        if ev.star   { live[2] = nil }
    }
    requireCounted(t, fn)
}

// requireCounted verifies that every shared node has exactly Count extra
// references across the function.
func requireCounted(t *testing.T, fn *block.Func) {
    refs := map[*el.Elem]int{}
    for _, bb := range fn.Blocks {
        walkRefs(bb.Elem, refs)
    }
    for e, n := range refs {
        require.Equal(t, n - 1, int(e.Count), "%s", e)
    }
}

func walkRefs(e *el.Elem, refs map[*el.Elem]int) {
    if e != nil {
        if refs[e]++; refs[e] == 1 {
            for _, v := range e.Kids() {
                walkRefs(v, refs)
            }
        }
    }
}
