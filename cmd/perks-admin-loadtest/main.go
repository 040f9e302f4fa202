// Command perks-admin-loadtest measures session persistence against Redis:
// many operators signing in and consoles rehydrating concurrently.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/perksAdmin/session"
	"github.com/MrEthical07/perksAdmin/storage"
)

type operator struct {
	id     string
	prefix string
	store  *session.Store
}

func main() {
	var (
		operators   = flag.Int("operators", 10000, "number of operator sessions to seed")
		concurrency = flag.Int("concurrency", 128, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "operations per phase (rehydrate + sign-in)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "pa-load", "storage key prefix")
	)
	flag.Parse()

	if *operators <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "operators, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	fleet := make([]operator, *operators)
	fmt.Printf("seeding %d operator sessions...\n", *operators)
	startSeed := time.Now()
	for i := range fleet {
		id := fmt.Sprintf("admin-%d", i)
		p := fmt.Sprintf("%s:%d", *prefix, i)
		fleet[i] = operator{id: id, prefix: p, store: session.NewStore(storage.NewRedis(client, p, 24*time.Hour))}
		if _, err := fleet[i].store.SignInSuccess(ctx, userFor(id), tokenFor(id, 0)); err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	rehydrate := runPhase(fleet, *ops, *concurrency, func(op operator, _ int) error {
		// A fresh store per call models a new console process.
		snap := session.NewStore(storage.NewRedis(client, op.prefix, 24*time.Hour)).Rehydrate(ctx)
		if !snap.IsAuthenticated {
			return fmt.Errorf("operator %s not rehydrated", op.id)
		}
		return nil
	})
	signIn := runPhase(fleet, *ops, *concurrency, func(op operator, i int) error {
		_, err := op.store.SignInSuccess(ctx, userFor(op.id), tokenFor(op.id, i))
		return err
	})

	fmt.Println("---- results ----")
	printStats("rehydrate", rehydrate)
	printStats("sign-in", signIn)
}

func runPhase(fleet []operator, ops, concurrency int, op func(operator, int) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				target := fleet[r.Intn(len(fleet))]
				t0 := time.Now()
				err := op(target, i)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

func userFor(id string) session.UserRecord {
	return session.UserRecord{"_id": id, "name": "Operator " + id, "role": "admin"}
}

func tokenFor(id string, gen int) string {
	return fmt.Sprintf("load.%s.%d", id, gen)
}
