// Command flexcv compares regression models of increasing flexibility by
// repeated train/test cross-validation.
//
//	flexcv run --data lidar --repetitions 100 --models linear,smooth,wiggly
//	flexcv run --config flexcv.yaml --format csv --out rmse.csv --plot rmse.png
//	flexcv models
package main

import (
	"os"
)

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
