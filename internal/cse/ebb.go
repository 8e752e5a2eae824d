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
    `github.com/cloudwego/cgcs/internal/block`
)

// EBB is an extended basic block: a run of blocks in layout order where every
// block but the first has the previous one as its only predecessor.
type EBB []*block.Block

/* no CSEs extending across ASM blocks */
func extends(cur *block.Block, next *block.Block) bool {
    if len(next.Pred) != 1 || cur.Kind == block.BCasm || next.Kind == block.BCasm {
        return false
    }

    /* the edge must be the one that falls through */
    switch cur.Kind {
        case block.BCgoto   : return len(cur.Succ) == 1 && cur.Succ[0] == next
        case block.BCiftrue : return len(cur.Succ) == 2 && cur.Succ[1] == next
        default             : return false
    }
}

// BuildEBBs partitions the blocks of fn into extended basic blocks. The
// predecessor lists must be up to date.
func BuildEBBs(fn *block.Func) []EBB {
    var ret []EBB
    bbs := fn.Blocks

    /* string together as many blocks as we can */
    for len(bbs) != 0 {
        n := 1
        for n < len(bbs) && extends(bbs[n - 1], bbs[n]) {
            n++
        }
        ret = append(ret, EBB(bbs[:n:n]))
        bbs = bbs[n:]
    }
    return ret
}
