// Local harness for poking the engine without a queue: run a source file
// ad hoc, syntax-check it, or score it against inline test cases.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/ThiagoFantino/2025-simuladores-back/internal/engine"
	"github.com/ThiagoFantino/2025-simuladores-back/internal/model"
)

func panicErr(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	var (
		language  = flag.String("lang", "python", "language: python or javascript")
		file      = flag.String("file", "", "path to the source file")
		stdin     = flag.String("stdin", "", "stdin fed to the program")
		timeoutMs = flag.Int("timeout", 0, "timeout in milliseconds (0 = default)")
		maxMemory = flag.String("memory", "", "memory budget, e.g. 64m (empty = default)")
		check     = flag.Bool("check", false, "only validate syntax, do not run")
		tests     = flag.String("tests", "", "path to a JSON array of test cases; runs a scored batch")
	)
	flag.Parse()

	code, err := os.ReadFile(*file)
	panicErr(err)

	eng := engine.New(engine.Config{})
	ctx := context.Background()

	switch {
	case *check:
		res, err := eng.ValidateSyntax(ctx, string(code), *language)
		panicErr(err)
		printJSON(res)
	case *tests != "":
		data, err := os.ReadFile(*tests)
		panicErr(err)
		var cases []model.TestCase
		panicErr(json.Unmarshal(data, &cases))
		res, err := eng.RunTests(ctx, string(code), *language, cases, engine.TestOptions{
			TimeoutMs: *timeoutMs,
			MaxMemory: *maxMemory,
		})
		panicErr(err)
		printJSON(res)
	default:
		res, err := eng.ExecuteCode(ctx, engine.ExecuteParams{
			Code:      string(code),
			Language:  *language,
			Input:     *stdin,
			TimeoutMs: *timeoutMs,
			MaxMemory: *maxMemory,
		})
		panicErr(err)
		printJSON(res)
	}
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	panicErr(err)
	fmt.Println(string(out))
}
