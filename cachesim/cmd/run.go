package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/engine"
	"github.com/sarchlab/cachesim/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a cache simulation.",
	Long: `run drives the access generator against the configured cache. ` +
		`With --interval the simulation performs one access per interval ` +
		`until interrupted; otherwise it performs --accesses accesses back ` +
		`to back and exits.`,
	RunE: runSimulation,
}

func init() {
	runCmd.Flags().Int("slots", 4, "number of cache slots")
	runCmd.Flags().String("mapping", "direct",
		"mapping scheme: direct or two-way")
	runCmd.Flags().String("policy", "lru", "eviction policy: lru or fifo")
	runCmd.Flags().Int("accesses", 100, "number of accesses to simulate")
	runCmd.Flags().Duration("interval", 0,
		"cadence of the interval driver; 0 runs all accesses immediately")
	runCmd.Flags().Int64("seed", 0, "seed of the access generator")
	runCmd.Flags().Uint64("max-address", 0,
		"exclusive upper bound of generated addresses; 0 keeps the default")
	runCmd.Flags().Int("port", 0, "port of the monitoring server")
	runCmd.Flags().String("output", "",
		"trace file name, without the .sqlite3 suffix")
	runCmd.Flags().Bool("open-browser", false,
		"open the monitoring server in the default browser")
	runCmd.Flags().Bool("no-monitor", false,
		"disable the monitoring server")

	rootCmd.AddCommand(runCmd)
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	builder, err := builderFromFlags(cmd)
	if err != nil {
		return err
	}

	sim, err := builder.Build()
	if err != nil {
		return err
	}
	defer sim.Terminate()

	accesses, _ := cmd.Flags().GetInt("accesses")
	interval, _ := cmd.Flags().GetDuration("interval")

	if interval > 0 {
		driveAtInterval(sim, accesses)
	} else if err := sim.RunAccesses(accesses); err != nil {
		return err
	}

	printSummary(sim)

	return nil
}

func builderFromFlags(cmd *cobra.Command) (simulation.Builder, error) {
	b := simulation.MakeBuilder()

	mappingName, _ := cmd.Flags().GetString("mapping")
	scheme, err := engine.ParseMappingScheme(mappingName)
	if err != nil {
		return b, err
	}

	policyName, _ := cmd.Flags().GetString("policy")
	policy, err := engine.ParseEvictionPolicy(policyName)
	if err != nil {
		return b, err
	}

	slots, _ := cmd.Flags().GetInt("slots")
	seed, _ := cmd.Flags().GetInt64("seed")
	interval, _ := cmd.Flags().GetDuration("interval")
	output, _ := cmd.Flags().GetString("output")

	b = b.WithSlotCount(slots).
		WithMappingScheme(scheme).
		WithEvictionPolicy(policy).
		WithSeed(seed).
		WithOutputFileName(output)

	if maxAddress, _ := cmd.Flags().GetUint64("max-address"); maxAddress > 0 {
		b = b.WithMaxAddress(maxAddress)
	}

	if interval > 0 {
		b = b.WithInterval(interval)
	}

	if noMonitor, _ := cmd.Flags().GetBool("no-monitor"); noMonitor {
		return b.WithoutMonitoring(), nil
	}

	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		b = b.WithMonitorPort(port)
	}

	if openBrowser, _ := cmd.Flags().GetBool("open-browser"); openBrowser {
		b = b.WithBrowser()
	}

	return b, nil
}

// driveAtInterval runs the interval driver until the access budget is
// reached or the process is interrupted. A non-positive budget runs forever.
func driveAtInterval(sim *simulation.Simulation, accesses int) {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	sim.Start()
	defer sim.Pause()

	poll := time.NewTicker(100 * time.Millisecond)
	defer poll.Stop()

	for {
		select {
		case <-interrupt:
			return
		case <-poll.C:
			if accesses > 0 &&
				sim.Metrics().TotalAccesses >= uint64(accesses) {
				return
			}
		}
	}
}

func printSummary(sim *simulation.Simulation) {
	summary := sim.Metrics()

	fmt.Printf("Accesses:          %d\n", summary.TotalAccesses)
	fmt.Printf("Hit ratio:         %.2f%%\n", summary.HitRatioPercent)
	fmt.Printf("Avg. access time:  %.2f\n", summary.AvgAccessTime)
}
