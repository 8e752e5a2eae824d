/*
 * Copyright 2022 CloudWeGo Authors
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


package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloudwego/cgcs"
	"github.com/cloudwego/cgcs/debug"
	"github.com/cloudwego/cgcs/internal/cgen"
	"github.com/cloudwego/cgcs/internal/cse"
)

var version = "0.1.0"

// Dump flags
var (
	dCSE   bool
	dCFG   bool
	dEBB   bool
	dAsm   bool
	dStats bool
)

// Pass options
var (
	filterSize int
	noFilter   bool
	swapDouble bool
	noPOPCNT   bool
	trace      bool
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cgcs: %v\n", err)
		return 1
	}
	return 0
}

// dumpFlagNames lists the dump flags that also accept the single-dash style.
var dumpFlagNames = []string{"dcse", "dcfg", "debb", "dasm", "dstats"}

// normalizeFlags converts single-dash dump flags like -dcse to --dcse
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		result[i] = arg
		for _, name := range dumpFlagNames {
			if arg == "-"+name {
				result[i] = "--" + name
				break
			}
		}
	}
	return result
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cgcs [file]",
		Short: "cgcs eliminates common subexpressions in a program description",
		Long: `cgcs loads a YAML description of functions made of basic blocks and
expression trees, runs common subexpression elimination over the extended
basic blocks of every function and dumps the result. Use "-" to read the
program from standard input.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			return compile(src, out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	// Add dump flags
	rootCmd.Flags().BoolVar(&dCSE, "dcse", false, "Dump the trees after CSE (default when no other dump is requested)")
	rootCmd.Flags().BoolVar(&dCFG, "dcfg", false, "Dump the control flow graph in DOT format")
	rootCmd.Flags().BoolVar(&dEBB, "debb", false, "Dump the extended basic blocks")
	rootCmd.Flags().BoolVar(&dAsm, "dasm", false, "Generate and dump x86-64 code")
	rootCmd.Flags().BoolVar(&dStats, "dstats", false, "Dump pass statistics")

	// Add pass flags
	rootCmd.Flags().IntVar(&filterSize, "filter-size", -1, "Size of the candidate filter (default from CGCS_FILTER_SIZE or 16001)")
	rootCmd.Flags().BoolVar(&noFilter, "no-filter", false, "Disable the candidate filter")
	rootCmd.Flags().BoolVar(&swapDouble, "swap-double-opassign", false, "Visit the address of double compound assignments first")
	rootCmd.Flags().BoolVar(&noPOPCNT, "no-popcnt", false, "Do not emit the POPCNT instruction")
	rootCmd.Flags().BoolVar(&trace, "trace", false, "Trace the CSE pass to standard error")

	return rootCmd
}

func readSource(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}

// passOptions creates the compile options from CLI flags
func passOptions(errOut io.Writer) []cgcs.Option {
	var ret []cgcs.Option
	if filterSize >= 0 {
		ret = append(ret, cgcs.WithFilterSize(filterSize))
	}
	if noFilter {
		ret = append(ret, cgcs.WithoutFilter())
	}
	if swapDouble {
		ret = append(ret, cgcs.WithSwapDoubleOpAssign(true))
	}
	if noPOPCNT {
		ret = append(ret, cgcs.WithPOPCNT(false))
	}
	if trace {
		ret = append(ret, cgcs.WithTrace(errOut))
	}
	if dAsm {
		ret = append(ret, cgcs.WithCodegen(true))
	}
	return ret
}

func compile(src []byte, out, errOut io.Writer) error {
	res, err := cgcs.Compile(src, passOptions(errOut)...)
	if err != nil {
		return err
	}

	// Dump every function
	showCSE := dCSE || !(dCFG || dEBB || dAsm || dStats)
	for _, fr := range res.Funcs {
		fmt.Fprintf(out, "func %s:\n", fr.Func.Name)
		if showCSE {
			fmt.Fprint(out, cgcs.Dump(fr.Func))
		}
		if dEBB {
			dumpEBBs(out, fr.Func)
		}
		if dCFG {
			dot, err := fr.Func.Dot()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, dot)
		}
		if dAsm && fr.Code != nil {
			if err := dumpCode(out, fr.Code); err != nil {
				return err
			}
		}
		if dStats {
			dumpStats(out, fr.Stats)
		}
	}

	// Process-wide counters
	if dStats {
		st := debug.GetStats()
		fmt.Fprintf(out, "total: %d funcs, %d ebbs, %d merged, %d killed\n", st.CSE.Funcs, st.CSE.EBBs, st.CSE.Merged, st.CSE.Killed)
		fmt.Fprintf(out, "nodes: %d allocated, %d freed\n", st.Memory.Alloc, st.Memory.Free)
	}
	return nil
}

func dumpEBBs(w io.Writer, fn *cgcs.Func) {
	for i, ebb := range cse.BuildEBBs(fn) {
		names := make([]string, len(ebb))
		for j, bb := range ebb {
			names[j] = bb.String()
		}
		fmt.Fprintf(w, "ebb %d: %s\n", i, strings.Join(names, " "))
	}
}

func dumpCode(w io.Writer, code *cgcs.Code) error {
	lines, err := cgen.Disassemble(code.Text)
	for _, line := range lines {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  ; %d bytes, %d slots, %d cses, %d loads\n", len(code.Text), code.Slots, code.CSEs, code.Loads)
	return nil
}

func dumpStats(w io.Writer, st cgcs.Stats) {
	fmt.Fprintf(w, "  ebbs=%d visited=%d inserted=%d merged=%d killed=%d saturated=%d\n",
		st.EBBs, st.Visited, st.Inserted, st.Merged, st.Killed, st.Saturated)
}
