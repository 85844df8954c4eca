package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"

	"smart-route-planner/internal/adapters/repositories"
	"smart-route-planner/internal/domain"
	"smart-route-planner/internal/services"
)

// routebench compares strict ordering against the solvers on seed batches
// or on a random instance.
func main() {
	var algorithms algorithmFlags
	flag.Var(&algorithms, "algorithm", "Algorithm to benchmark; repeat for several. dp, heuristic or auto (default)")
	inputF := flag.String("in", "data/seeds/stops.json", "Path to a JSON seed file of stops")
	batch := flag.String("batch", "", "Only benchmark this batch. By default every batch in the file is used")
	random := flag.Int("random", 0, "Benchmark a random instance of this many stops instead of -in")
	seed := flag.Uint64("seed", 1, "Seed for -random")
	dpLimit := flag.Int("dp-limit", domain.DefaultDPLimit, "Largest tier solved exactly by auto")
	workers := flag.Int("workers", 0, "Heuristic workers; 0 means GOMAXPROCS")
	flag.Parse()

	if len(algorithms) == 0 {
		algorithms = algorithmFlags{domain.AlgorithmAuto}
	}
	if *dpLimit < domain.MinDPLimit || *dpLimit > domain.MaxDPLimit {
		log.Fatalf("-dp-limit must be between %d and %d", domain.MinDPLimit, domain.MaxDPLimit)
	}

	batches, err := loadBatches(*inputF, *batch, *random, *seed)
	if err != nil {
		log.Fatal(err)
	}

	printSystem(os.Stdout)

	opt := services.Optimizer{Workers: *workers}
	for _, b := range batches {
		report(os.Stdout, opt, b, algorithms, *dpLimit)
	}
}

type namedBatch struct {
	name  string
	stops []domain.Stop
}

func loadBatches(path, only string, random int, seed uint64) ([]namedBatch, error) {
	if random > 0 {
		return []namedBatch{{name: fmt.Sprintf("random-%d", random), stops: randomStops(random, seed)}}, nil
	}

	seeds, err := repositories.LoadSeedFile(path)
	if err != nil {
		return nil, err
	}

	var out []namedBatch
	index := map[string]int{}
	for _, s := range seeds {
		if only != "" && s.Batch != only {
			continue
		}
		i, ok := index[s.Batch]
		if !ok {
			i = len(out)
			index[s.Batch] = i
			out = append(out, namedBatch{name: s.Batch})
		}
		out[i].stops = append(out[i].stops, domain.Stop{
			ID: s.ID, Lat: s.Lat, Lon: s.Lon, Priority: domain.Priority(s.Priority),
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no stops found in %s (batch=%q)", path, only)
	}
	return out, nil
}

// randomStops scatters n stops over central Amsterdam with a 1:2:3 high:medium:low mix.
func randomStops(n int, seed uint64) []domain.Stop {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	mix := []domain.Priority{
		domain.PriorityHigh,
		domain.PriorityMedium, domain.PriorityMedium,
		domain.PriorityLow, domain.PriorityLow, domain.PriorityLow,
	}

	stops := make([]domain.Stop, n)
	for i := range stops {
		stops[i] = domain.Stop{
			ID:       i + 1,
			Lat:      52.33 + r.Float64()*0.08,
			Lon:      4.84 + r.Float64()*0.12,
			Priority: mix[r.IntN(len(mix))],
		}
	}
	return stops
}

func printSystem(w io.Writer) {
	hostStat, err := host.Info()
	if err != nil {
		log.Printf("host info: %v", err)
		return
	}
	cpuStat, _ := cpu.Info()
	vmStat, _ := mem.VirtualMemory()

	model := "unknown"
	if len(cpuStat) > 0 {
		model = cpuStat[0].ModelName
	}
	var memGB uint64
	if vmStat != nil {
		memGB = vmStat.Total / 1024 / 1024 / 1024
	}
	fmt.Fprintf(w, "# platform=%s cpu=%q mem=%dGB\n", hostStat.Platform, model, memGB)
}

func report(w io.Writer, opt services.Optimizer, b namedBatch, algorithms []domain.Algorithm, dpLimit int) {
	strict := opt.Optimize(b.stops, domain.Options{Mode: domain.ModeStrict, Algorithm: domain.AlgorithmAuto, DPLimit: dpLimit})

	fmt.Fprintf(w, "\nbatch=%s stops=%d high=%d medium=%d low=%d\n", b.name, len(b.stops),
		strict.GroupStats[domain.PriorityHigh].Count,
		strict.GroupStats[domain.PriorityMedium].Count,
		strict.GroupStats[domain.PriorityLow].Count)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "algorithm\tdistance_km\tgain_%\truntime\t")
	fmt.Fprintf(tw, "strict\t%.3f\t-\t%s\t\n", strict.TotalDistanceKm, strict.Elapsed.Round(time.Microsecond))

	for _, algo := range uniqueAlgorithms(algorithms) {
		opts := domain.Options{Mode: domain.ModeOptimized, Algorithm: algo, DPLimit: dpLimit}
		if err := services.CheckTierSizes(b.stops, opts); err != nil {
			fmt.Fprintf(tw, "%s\tskipped\t-\t-\t\n", algo)
			log.Printf("batch=%s algorithm=%s: %v", b.name, algo, err)
			continue
		}
		res := opt.Optimize(b.stops, opts)
		fmt.Fprintf(tw, "%s\t%.3f\t%.2f\t%s\t\n", algo, res.TotalDistanceKm,
			gainPercent(strict.TotalDistanceKm, res.TotalDistanceKm), res.Elapsed.Round(time.Microsecond))
	}
	_ = tw.Flush()
}

// uniqueAlgorithms drops repeated algorithms, keeping first-seen order.
func uniqueAlgorithms(algorithms []domain.Algorithm) []domain.Algorithm {
	out := make([]domain.Algorithm, 0, len(algorithms))
	for _, a := range algorithms {
		if !slices.Contains(out, a) {
			out = append(out, a)
		}
	}
	return out
}

// gainPercent is the distance saved relative to the baseline; zero for an empty baseline.
func gainPercent(baseline, got float64) float64 {
	if baseline == 0 {
		return 0
	}
	return (baseline - got) / baseline * 100
}
