// Command astar solves a single maze file in place: it reads the maze
// named on the command line, runs the bidirectional HDA* search, stamps
// the shortest path back into the file, and prints the path's cell count.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"github.com/joeycumines/go-hdastar/internal/grid"
	"github.com/joeycumines/go-hdastar/internal/search"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog"
	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	code, err := run(os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "astar:", err)
	}
	os.Exit(code)
}

// run is the testable core of the command: argument parsing, runtime
// tuning, and the search itself, with the result line written to stdout
// rather than directly to os.Stdout, so tests can run it in-process. Log
// output goes to os.Stderr.
func run(args []string, stdout io.Writer) (exitCode int, err error) {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if len(args) != 1 {
		return 1, fmt.Errorf("usage: astar <maze-file>")
	}

	if _, err := maxprocs.Set(maxprocs.Logger(log.Printf)); err != nil {
		log.Warn().Err(err).Msg("leaving GOMAXPROCS unchanged")
	}
	if limit, err := memlimit.SetGoMemLimitWithOpts(memlimit.WithRatio(0.9)); err != nil {
		log.Warn().Err(err).Msg("leaving GOMEMLIMIT unchanged")
	} else {
		log.Debug().Int64("gomemlimit", limit).Msg("memory limit set from cgroup")
	}
	log.Debug().Uint64("total_system_memory", memory.TotalMemory()).Msg("runtime environment")

	workers := workersPerDirection()
	chunkBytes := arenaChunkBytes()
	log.Debug().Int("workers_per_direction", workers).Int("arena_chunk_bytes", chunkBytes).Msg("search configuration")

	g, err := grid.Open(args[0])
	if err != nil {
		return 1, err
	}
	defer func() {
		if cerr := g.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	c := search.NewController(g, workers, chunkBytes, log)
	res, err := c.Run()
	if err != nil {
		return 1, fmt.Errorf("search: %w", err)
	}
	if !res.Found {
		log.Error().Msg("maze has no solution")
		return 1, nil
	}

	cells := search.ReconstructPath(g, c.Forward.Table, c.Backward.Table, res.MeetX, res.MeetY)
	fmt.Fprintln(stdout, cells)
	return 0, nil
}

// workersPerDirection defaults to half the available processors (each
// direction gets its own pool, and the two run concurrently), with a
// floor of one and an escape hatch for experimentation or constrained CI
// environments.
func workersPerDirection() int {
	if v := os.Getenv("ASTAR_WORKERS_PER_DIRECTION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	n := runtime.GOMAXPROCS(0) / 2
	if n < 1 {
		n = 1
	}
	return n
}

// arenaChunkBytes defaults to the arena package's own default, with the
// same environment override for experimentation.
func arenaChunkBytes() int {
	if v := os.Getenv("ASTAR_ARENA_CHUNK_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
