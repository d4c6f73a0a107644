package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/cdbfoster/takkerus-sub000/internal/ann"
	"github.com/cdbfoster/takkerus-sub000/internal/cache"
	"github.com/cdbfoster/takkerus-sub000/internal/search"
	"github.com/cdbfoster/takkerus-sub000/internal/tei"
)

const defaultWeightsFile = "weights.dat"

// slotSize mirrors internal/tt.Table's per-entry footprint (two
// uint64 words), so -hash can be given in MB the way the teacher's
// own NewTranspositionTable does.
const slotSize = 16

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	boardSize  = flag.Int("size", 5, "board size to initialize the engine with")
	hashMB     = flag.Int("hash", 64, "transposition table size in MB")
	threads    = flag.Int("threads", 1, "number of Lazy-SMP search workers")
	noCache    = flag.Bool("no-cache", false, "disable the on-disk position cache")
)

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("TAKKERUS_CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	evaluator := loadEvaluator(*boardSize)

	var c *cache.Cache
	if !*noCache {
		c = openCache()
		if c != nil {
			defer c.Close()
		}
	}

	tableCapacity := int(uint64(*hashMB) * 1024 * 1024 / slotSize)

	engine := tei.New(os.Stdout, c, evaluator, tableCapacity, *threads)
	engine.Run(os.Stdin)
}

// loadEvaluator tries to load trained network weights from the data
// directory's weights file, falling back to the handcrafted evaluator
// if none is found or it doesn't fit the board size.
func loadEvaluator(size int) search.Evaluator {
	dir, err := cache.DefaultDir()
	if err != nil {
		log.Printf("Warning: could not resolve data directory: %v (using handcrafted evaluation)", err)
		return search.HandcraftedEvaluator{}
	}

	weightsPath := filepath.Join(filepath.Dir(dir), "weights", defaultWeightsFile)
	if _, err := os.Stat(weightsPath); err != nil {
		return search.HandcraftedEvaluator{}
	}

	evaluator, err := ann.NewEvaluator(size, weightsPath)
	if err != nil {
		log.Printf("Warning: weights not loaded: %v (using handcrafted evaluation)", err)
		return search.HandcraftedEvaluator{}
	}

	log.Printf("Loaded trained network weights from %s", weightsPath)
	return evaluator
}

func openCache() *cache.Cache {
	dir, err := cache.DefaultDir()
	if err != nil {
		log.Printf("Warning: position cache disabled: %v", err)
		return nil
	}

	c, err := cache.Open(dir)
	if err != nil {
		log.Printf("Warning: position cache disabled: %v", err)
		return nil
	}

	return c
}
