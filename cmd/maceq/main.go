package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rubenlee11/maceq"
)

var (
	configFile  string
	dumpCharges bool
	debug       bool
)

func main() {
	root := &cobra.Command{
		Use:           "maceq",
		Short:         "maceq evaluates MACE-style energies with a long-range charge-equilibration correction",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "maceq.toml",
		"model configuration file")
	root.PersistentFlags().BoolVar(&debug, "debug", false,
		"toggle debugging information")
	eval := &cobra.Command{
		Use:   "eval structures.xyz",
		Short: "evaluate per-structure energies for every frame of an XYZ file",
		Args:  cobra.ExactArgs(1),
		RunE:  runEval,
	}
	eval.Flags().BoolVar(&dumpCharges, "charges", false,
		"print the solved atomic charges per frame")
	root.AddCommand(eval)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runEval(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	conf, err := maceq.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("load config %s: %w", configFile, err)
	}
	logger.Info("loaded configuration",
		zap.String("file", configFile),
		zap.Strings("elements", conf.Elements),
		zap.Bool("long_range", conf.Model.LongRange),
		zap.Float64("r_max", conf.Model.RMax))

	var model *maceq.Model
	if conf.ScaleShift {
		model, err = maceq.NewScaleShiftModel(conf.Model, conf.Scale, conf.Shift)
	} else {
		model, err = maceq.NewModel(conf.Model)
	}
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}

	frames, err := maceq.LoadXYZ(args[0])
	if err != nil {
		return fmt.Errorf("load %s: %w", args[0], err)
	}
	logger.Info("loaded frames", zap.String("file", args[0]), zap.Int("count", len(frames)))

	structures := make([]*maceq.Structure, len(frames))
	for i, fr := range frames {
		structures[i], err = fr.ToStructure(conf)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	batch, err := maceq.NewBatch(len(conf.Elements), structures...)
	if err != nil {
		return err
	}

	start := time.Now()
	out, err := model.Forward(batch)
	if err != nil {
		return err
	}
	logger.Info("evaluated batch",
		zap.Int("structures", batch.NumStructures()),
		zap.Int("atoms", batch.NumAtoms()),
		zap.Duration("elapsed", time.Since(start)))

	if out.Electrostatic != nil {
		fmt.Printf("%5s%18s%18s%18s\n", "Frame", "Energy", "Electro", "TwoBody")
		for s, e := range out.Energy {
			fmt.Printf("%5d%18.10f%18.10f%18.10f\n",
				s, e, out.Electrostatic[s], out.TwoBodyEnergy[s])
		}
	} else {
		fmt.Printf("%5s%18s\n", "Frame", "Energy")
		for s, e := range out.Energy {
			fmt.Printf("%5d%18.10f\n", s, e)
		}
	}
	if dumpCharges && out.Charges != nil {
		fmt.Println("atomic charges")
		maceq.WriteVec(os.Stdout, out.Charges)
		fmt.Println("dipoles (Debye)")
		maceq.WriteMat(os.Stdout, out.Dipole)
	}
	return nil
}

func newLogger() (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
