// Package main provides the minima CLI.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/m0saan/minima/backend/cpu"
	"github.com/m0saan/minima/ndarray"
	"github.com/m0saan/minima/nn"
	"github.com/m0saan/minima/optim"
	"github.com/m0saan/minima/tensor"
)

const version = "v0.0.1-dev"

// demoOptions holds the flags of the demo command.
type demoOptions struct {
	steps    int
	lazy     bool
	savePath string
}

// newDemoFlags returns the demo command's flag set bound to opts.
func newDemoFlags(opts *demoOptions) *flag.FlagSet {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	fs.IntVar(&opts.steps, "steps", 200, "training steps")
	fs.BoolVar(&opts.lazy, "lazy", false, "defer computation until values are read")
	fs.StringVar(&opts.savePath, "save", "", "write the trained parameters to this SafeTensors file")
	return fs
}

// parseDemoFlags parses the arguments that follow "demo".
func parseDemoFlags(args []string) (demoOptions, error) {
	var opts demoOptions
	fs := newDemoFlags(&opts)
	if err := fs.Parse(args); err != nil {
		return demoOptions{}, err
	}
	if fs.NArg() > 0 {
		return demoOptions{}, errors.Errorf("demo: unexpected arguments %v", fs.Args())
	}
	if opts.steps < 1 {
		return demoOptions{}, errors.Errorf("demo: -steps must be positive, got %d", opts.steps)
	}
	return opts, nil
}

func main() {
	klog.InitFlags(nil)
	flag.Usage = usage
	flag.Parse()
	defer klog.Flush()

	switch flag.Arg(0) {
	case "version":
		fmt.Printf("minima %s\n", version)
	case "devices":
		for _, name := range ndarray.AllDevices() {
			fmt.Println(name)
		}
	case "demo":
		opts, err := parseDemoFlags(flag.Args()[1:])
		if err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return
			}
			klog.Errorf("%v", err)
			klog.Flush()
			os.Exit(2)
		}
		if err := demo(opts.steps, opts.lazy, opts.savePath); err != nil {
			klog.Errorf("demo: %+v", err)
			klog.Flush()
			os.Exit(1)
		}
	default:
		usage()
	}
}

func usage() {
	fmt.Println("minima - strided arrays and reverse-mode autodiff")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Usage: minima [logging flags] <command> [command flags]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  devices    List registered devices")
	fmt.Println("  demo       Fit a small network to a linear target")
	fmt.Println("")
	fmt.Println("Demo flags:")
	var opts demoOptions
	demoFlags := newDemoFlags(&opts)
	demoFlags.SetOutput(os.Stdout)
	demoFlags.PrintDefaults()
	fmt.Println("")
	fmt.Println("Logging flags:")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

// demo fits a two-layer network to y = 3*x0 - 2*x1 + 1 with Adam.
// The trained parameters are written to savePath unless it is empty.
func demo(steps int, lazy bool, savePath string) error {
	ctx, err := tensor.NewContext(tensor.WithDeviceName(cpu.Name), tensor.WithLazy(lazy))
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(0))

	const n = 64
	xs := make([]float32, n*2)
	ys := make([]float32, n)
	for i := 0; i < n; i++ {
		xs[i*2] = float32(rng.Float64()*2 - 1)
		xs[i*2+1] = float32(rng.Float64()*2 - 1)
		ys[i] = 3*xs[i*2] - 2*xs[i*2+1] + 1
	}
	input, err := ctx.FromSlice(xs, tensor.Shape{n, 2}, tensor.WithRequiresGrad(false))
	if err != nil {
		return err
	}
	target, err := ctx.FromSlice(ys, tensor.Shape{n, 1}, tensor.WithRequiresGrad(false))
	if err != nil {
		return err
	}

	hidden, err := nn.NewLinear(ctx, 2, 16, rng)
	if err != nil {
		return err
	}
	output, err := nn.NewLinear(ctx, 16, 1, rng)
	if err != nil {
		return err
	}
	model := nn.NewSequential(hidden, nn.NewReLU(), output)
	criterion := nn.NewMSELoss()
	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 0.01})

	for step := 0; step < steps; step++ {
		pred, err := model.Forward(input)
		if err != nil {
			return err
		}
		loss, err := criterion.Forward(pred, target)
		if err != nil {
			return err
		}
		optimizer.ZeroGrad()
		if err := loss.Backward(nil); err != nil {
			return errors.WithMessagef(err, "step %d", step)
		}
		if err := optimizer.Step(); err != nil {
			return errors.WithMessagef(err, "step %d", step)
		}
		if step%20 == 0 || step == steps-1 {
			value, err := loss.Item()
			if err != nil {
				return err
			}
			fmt.Printf("step %4d  loss %.6f\n", step, value)
		}
	}
	if savePath == "" {
		return nil
	}

	f, err := os.Create(savePath)
	if err != nil {
		return errors.Wrap(err, "create checkpoint")
	}
	if err := nn.SaveStateDict(f, model); err != nil {
		_ = f.Close()
		return err
	}
	klog.V(1).Infof("saved %d parameters to %s", len(model.Parameters()), savePath)
	return f.Close()
}
