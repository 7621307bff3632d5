/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/fnknot/InputParameters"
	"github.com/notargets/fnknot/model_problems/FitzHughNagumo3D"
)

type Model3D struct {
	ICFile    string
	OutputDir string
	Procs     int
	Profile   bool
	Verbose   bool
}

// ThreeDCmd represents the 3D command
var ThreeDCmd = &cobra.Command{
	Use:   "3D",
	Short: "Three dimensional FitzHugh-Nagumo knot evolution",
	Long: `
Evolves a knotted scroll wave from a surface, phase, uv restart or built-in ring
initialization and writes field snapshots, filament snapshots and writhe.txt.

fnknot 3D -I input.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			rp  *InputParameters.RunParameters
		)
		m3d := &Model3D{
			OutputDir: viper.GetString("outputDir"),
			Procs:     viper.GetInt("procs"),
			Verbose:   viper.GetBool("verbose"),
		}
		if m3d.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		m3d.Profile, _ = cmd.Flags().GetBool("profile")
		if rp, err = processInput(m3d); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		if err = Run3D(m3d, rp); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

const exampleFile = `
########################################
Title: "Trefoil"
Nx: 100
Ny: 100
Nz: 100
GridSpacing: 0.5
TimeStep: 0.02
TotalTime: 400
UVPrintTime: 100
KnotPrintTime: 1
InitialSkipTime: 50
Boundary: reflecting # Can be "periodic"
Scheme: rk4 # Can be "euler"
InitType: surface # Can be "phi", "uv" or "function"
SurfaceFile: trefoil.stl
########################################
`

func processInput(m3d *Model3D) (rp *InputParameters.RunParameters, err error) {
	var data []byte
	if len(m3d.ICFile) == 0 {
		fmt.Printf("Example File:%s\n", exampleFile)
		err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) in YAML format")
		return
	}
	if data, err = os.ReadFile(m3d.ICFile); err != nil {
		return
	}
	rp = InputParameters.Defaults()
	if err = rp.Parse(data); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", m3d.ICFile, err)
	}
	return
}

func init() {
	rootCmd.AddCommand(ThreeDCmd)
	ThreeDCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Grid size and spacing\n\t- Initialization type and file")
	ThreeDCmd.Flags().Bool("profile", false, "write a CPU profile of the run to the output directory")
}

func Run3D(m3d *Model3D, rp *InputParameters.RunParameters) (err error) {
	var c *FitzHughNagumo3D.Simulation
	if m3d.Verbose {
		rp.Print()
	}
	if c, err = FitzHughNagumo3D.NewSimulation(rp, m3d.OutputDir, m3d.Procs, m3d.Verbose); err != nil {
		return
	}
	if m3d.Profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(c.OutputDir), profile.NoShutdownHook).Stop()
	}
	return c.Run()
}
