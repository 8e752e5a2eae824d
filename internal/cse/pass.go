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
    `fmt`
    `sync/atomic`

    `github.com/cloudwego/cgcs/internal/block`
    `github.com/cloudwego/cgcs/internal/el`
    `github.com/cloudwego/cgcs/internal/opts`
)

var (
    FuncCount  uint64
    EBBCount   uint64
    MergeCount uint64
    KillCount  uint64
)

// Stats summarizes one run of the pass.
type Stats struct {
    EBBs      int   // extended basic blocks processed
    Visited   int   // tree nodes visited
    Inserted  int   // candidates registered
    Merged    int   // subexpressions replaced with a shared candidate
    Killed    int   // candidates invalidated
    Saturated int   // matches rejected because the candidate counter was full
}

// Add accumulates other into the stats.
func (self *Stats) Add(other Stats) {
    self.EBBs      += other.EBBs
    self.Visited   += other.Visited
    self.Inserted  += other.Inserted
    self.Merged    += other.Merged
    self.Killed    += other.Killed
    self.Saturated += other.Saturated
}

type _State struct {
    tab  []_Hcs
    star int
    fn   [2]int
    vec  _Filter
    stat Stats
    opts *opts.Options
    path map[*el.Elem]struct{}
}

func newState(o *opts.Options) *_State {
    return &_State {
        vec  : newFilter(o.FilterSize),
        opts : o,
        path : make(map[*el.Elem]struct{}),
    }
}

func (self *_State) tracef(format string, args ...interface{}) {
    if self.opts.Trace != nil {
        _, _ = fmt.Fprintf(self.opts.Trace, format, args...)
    }
}

func (self *_State) reset() {
    for i := range self.tab {
        self.tab[i] = _Hcs{}
    }

    /* start with an empty table */
    self.vec.clear()
    self.tab  = self.tab[:0]
    self.star = 0
    self.fn   = [2]int{}
}

// run eliminates common subexpressions within each extended basic block of the
// given blocks. The blocks must be in layout order with their predecessor lists
// up to date.
func (self *_State) run(ebbs []EBB) {
    for _, ebb := range ebbs {
        self.reset()
        self.stat.EBBs++
        self.tracef("cses for block %s\n", ebb[0])

        /* walk every tree of the EBB in layout order */
        for _, bb := range ebb {
            if bb.Elem != nil {
                self.ecom(&bb.Elem)
            }
        }
    }
}

// Comsubs runs common subexpression elimination over fn. Unreachable blocks
// are removed first.
func Comsubs(fn *block.Func, o *opts.Options) Stats {
    fn.Prune()
    ebbs := BuildEBBs(fn)

    /* process all the EBBs */
    st := newState(o)
    st.tracef("comsubs(%s)\n", fn.Name)
    st.run(ebbs)

    /* update the process-wide counters */
    atomic.AddUint64(&FuncCount, 1)
    atomic.AddUint64(&EBBCount, uint64(st.stat.EBBs))
    atomic.AddUint64(&MergeCount, uint64(st.stat.Merged))
    atomic.AddUint64(&KillCount, uint64(st.stat.Killed))
    return st.stat
}
