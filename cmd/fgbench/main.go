// The fgbench program loads a G2O pose-graph file, runs one of the two
// optimizer drivers to convergence, and reports iteration count, final
// cost, and wall time.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rkleinman/factorgraph/g2o"
	"github.com/rkleinman/factorgraph/optimizer"
)

func main() {
	method := flag.String("method", "lm", "optimizer method: gn (Gauss-Newton) or lm (Levenberg-Marquardt)")
	maxIters := flag.Int("max-iters", 100, "maximum iterations")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: fgbench [flags] <file.g2o>")
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	vs, g, err := g2o.LoadFile(path)
	if err != nil {
		log.Fatal(err)
	}

	settings := optimizer.DefaultSettings()
	settings.MaxIters = *maxIters

	start := time.Now()
	var result *optimizer.Result
	switch *method {
	case "gn":
		result, err = optimizer.GaussNewton(vs, g.Factors(), &settings)
	case "lm":
		result, err = optimizer.LevenbergMarquardt(vs, g.Factors(), &settings)
	default:
		fmt.Fprintf(os.Stderr, "unknown method %q (want gn or lm)\n", *method)
		os.Exit(2)
	}
	elapsed := time.Since(start)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("method=%s status=%s iterations=%d cost=%.6g elapsed=%s variables=%d factors=%d\n",
		*method, result.Status, result.Iterations, result.Cost, elapsed, vs.Len(), g.Len())
}
