package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ckb-open-tx/sighashlock"
	"github.com/ckb-open-tx/sighashlock/simhost"
	"github.com/urfave/cli"
)

// loadSim reads a fixture transaction and assembles a simhost.Sim for the
// script group named by groupOverride, falling back to a top-level
// "group" array in the fixture's own JSON when groupOverride is empty
// (the shape batch-verify's fixtures use, since each one is processed
// without any per-file command-line arguments).
func loadSim(path string, groupOverride []int) (*simhost.Sim, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	tx, err := simhost.ParseTransaction(data)
	if err != nil {
		return nil, err
	}

	group := groupOverride
	if len(group) == 0 {
		var meta struct {
			Group []int `json:"group"`
		}
		if err := json.Unmarshal(data, &meta); err != nil {
			return nil, fmt.Errorf("%s: group: %w", path, err)
		}
		group = meta.Group
	}
	if len(group) == 0 {
		return nil, fmt.Errorf("%s: no script group indices given or present", path)
	}
	if group[0] < 0 || group[0] >= len(tx.InputCells) {
		return nil, fmt.Errorf("%s: group index %d out of range", path, group[0])
	}

	script := tx.InputCells[group[0]].Lock
	return simhost.New(tx, script, group), nil
}

func parseIndices(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("group index %q: %w", a, err)
		}
		out[i] = n
	}
	return out, nil
}

var verifyCommand = cli.Command{
	Name:      "verify",
	Usage:     "verify a fixture transaction's open-transaction signature",
	ArgsUsage: "tx.json group-index [group-index...]",
	Action:    runVerify,
}

func runVerify(ctx *cli.Context) error {
	args := []string(ctx.Args())
	if len(args) < 2 {
		return cli.NewExitError("need tx.json and at least one group index", 1)
	}

	group, err := parseIndices(args[1:])
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	sim, err := loadSim(args[0], group)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	code, err := sighashlock.Verify(sim)
	if err != nil {
		sighashverifyLog.Debugf("verify %s: %s: %v", args[0], code, err)
		fmt.Printf("FAIL %s: %v\n", code, err)
		return cli.NewExitError("", 1)
	}
	fmt.Println("OK")
	return nil
}

var digestCommand = cli.Command{
	Name:      "digest",
	Usage:     "print the signing digest a fixture's group witness commits to",
	ArgsUsage: "tx.json group-index [group-index...]",
	Action:    runDigest,
}

func runDigest(ctx *cli.Context) error {
	args := []string(ctx.Args())
	if len(args) < 2 {
		return cli.NewExitError("need tx.json and at least one group index", 1)
	}

	group, err := parseIndices(args[1:])
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	sim, err := loadSim(args[0], group)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	digest, err := sighashlock.Digest(sim)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	fmt.Println(hex.EncodeToString(digest[:]))
	return nil
}

var batchVerifyCommand = cli.Command{
	Name:      "batch-verify",
	Usage:     "verify every *.json fixture in a directory concurrently, serving Prometheus counters on --metricsport",
	ArgsUsage: "dir",
	Flags: []cli.Flag{
		cli.IntFlag{Name: "workers", Usage: "worker pool size; 0 picks GOMAXPROCS"},
	},
	Action: runBatchVerify,
}

func runBatchVerify(ctx *cli.Context) error {
	dir := ctx.Args().First()
	if dir == "" {
		return cli.NewExitError("need a fixture directory", 1)
	}

	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}

	workers := ctx.Int("workers")
	if workers <= 0 {
		workers = cfg.Workers
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	stopMetrics := serveMetrics(cfg.MetricsPort)
	defer stopMetrics()

	var verified, failed, errored int64

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				switch verifyFixtureFile(path) {
				case fixtureVerified:
					atomic.AddInt64(&verified, 1)
				case fixtureFailed:
					atomic.AddInt64(&failed, 1)
				case fixtureErrored:
					atomic.AddInt64(&errored, 1)
				}
			}
		}()
	}
	for _, p := range paths {
		jobs <- p
	}
	close(jobs)
	wg.Wait()

	fmt.Printf("verified=%d failed=%d errored=%d\n", verified, failed, errored)
	return nil
}

type fixtureOutcome int

const (
	fixtureVerified fixtureOutcome = iota
	fixtureFailed
	fixtureErrored
)

// verifyFixtureFile loads and verifies one fixture, updating Prometheus
// counters and logging the result, without ever panicking the worker
// goroutine on a malformed fixture.
func verifyFixtureFile(path string) (outcome fixtureOutcome) {
	defer func() {
		if r := recover(); r != nil {
			sighashverifyLog.Errorf("%s: %v", path, r)
			batchMetrics.Errored.Inc()
			outcome = fixtureErrored
		}
	}()

	sim, err := loadSim(path, nil)
	if err != nil {
		sighashverifyLog.Errorf("%s: %v", path, err)
		batchMetrics.Errored.Inc()
		return fixtureErrored
	}

	code, err := sighashlock.Verify(sim)
	if err != nil {
		sighashverifyLog.Debugf("%s: %s: %v", path, code, err)
		batchMetrics.Failed.Inc()
		return fixtureFailed
	}

	batchMetrics.Verified.Inc()
	return fixtureVerified
}
