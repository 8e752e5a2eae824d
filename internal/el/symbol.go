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

package el

import (
    `fmt`
)

// SClass is the storage class of a symbol.
type SClass uint8

const (
    SCunde SClass = iota
    SCregister      // register variable
    SCregpar        // register parameter
    SCpseudo        // pseudo register variable
    SCauto          // automatic (stack) variable
    SCparameter     // function parameter
    SCfastpar       // parameter passed in a register, spilled to the stack
    SCshadowreg     // parameter shadowing a register argument
    SCbprel         // frame-relative variable
    SCstatic        // static with file scope
    SCextern        // external reference
    SCglobal        // globally visible definition
    SClocstat       // static with function scope
    SCcomdat        // COMDAT definition
    SCcomdef        // uninitialized common block
    SCinline        // inline function
    SCsinline       // static inline function
    SCeinline       // extern inline function
    _SCmax
)

var _SClassNames = [...]string {
    SCunde      : "unde",
    SCregister  : "register",
    SCregpar    : "regpar",
    SCpseudo    : "pseudo",
    SCauto      : "auto",
    SCparameter : "parameter",
    SCfastpar   : "fastpar",
    SCshadowreg : "shadowreg",
    SCbprel     : "bprel",
    SCstatic    : "static",
    SCextern    : "extern",
    SCglobal    : "global",
    SClocstat   : "locstat",
    SCcomdat    : "comdat",
    SCcomdef    : "comdef",
    SCinline    : "inline",
    SCsinline   : "sinline",
    SCeinline   : "einline",
}

func (self SClass) String() string {
    if self < _SCmax {
        return _SClassNames[self]
    } else {
        return fmt.Sprintf("SClass(%d)", uint8(self))
    }
}

// ParseSClass looks up a storage class by name.
func ParseSClass(s string) (SClass, bool) {
    for i, v := range _SClassNames {
        if i != int(SCunde) && v == s {
            return SClass(i), true
        }
    }
    return SCunde, false
}

// A Symbol is a named storage location referenced by OPvar and OPrelconst leaves.
type Symbol struct {
    Name    string
    Class   SClass
    Type    Tym
    Unambig bool    // address is never taken, so no pointer can alias it
}

func (self *Symbol) String() string {
    return self.Name
}
