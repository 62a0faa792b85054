package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:8080"
	numWorkers   = 20
	testDuration = 10 * time.Second
	numIdentities = 300
)

var comments = []string{"vetted", "spam", "good engagement", "bot followers", "pending review"}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

// sessionHashes collects upload hashes from phase 1 so later phases can hit
// /session and /export with real sessions.
var sessionHashes struct {
	mu     sync.Mutex
	hashes []string
}

func recordHash(h string) {
	sessionHashes.mu.Lock()
	sessionHashes.hashes = append(sessionHashes.hashes, h)
	sessionHashes.mu.Unlock()
}

func randomHash(rng *rand.Rand) string {
	sessionHashes.mu.Lock()
	defer sessionHashes.mu.Unlock()
	if len(sessionHashes.hashes) == 0 {
		return "deadbeef"
	}
	return sessionHashes.hashes[rng.Intn(len(sessionHashes.hashes))]
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	fmt.Println("=== InfluencerChecker Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Identities: %d\n\n", numWorkers, testDuration, numIdentities)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Seeding upload sessions (POST /upload) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doUpload(rng)
	})

	fmt.Println("\n--- Phase 2: Mixed load (uploads, edits, reads) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.15:
			return doUpload(rng)
		case r < 0.35:
			return doGetSession(rng)
		case r < 0.55:
			return doGetRoster(rng)
		case r < 0.75:
			return doEditRoster(rng)
		case r < 0.90:
			return doAddRoster(rng)
		default:
			return doGetHistory(rng)
		}
	})

	fmt.Println("\n--- Phase 3: Read-heavy load (cache exercise) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.05:
			return doUpload(rng)
		case r < 0.40:
			return doGetRoster(rng)
		case r < 0.70:
			return doGetSession(rng)
		default:
			return doGetHistory(rng)
		}
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-24s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + repeat("-", 90))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-24s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 90))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func identity(rng *rand.Rand) string {
	return fmt.Sprintf("creator_%d", rng.Intn(numIdentities)+1)
}

func buildCSV(rng *rand.Rand) []byte {
	var buf bytes.Buffer
	buf.WriteString("ID,Followers,Post price,ER,Avg view\n")
	n := rng.Intn(20) + 5
	for i := 0; i < n; i++ {
		fmt.Fprintf(&buf, "@%s,%d,%d,%.2f,%d\n",
			identity(rng), rng.Intn(500000), rng.Intn(2000), rng.Float64()*10, rng.Intn(100000))
	}
	return buf.Bytes()
}

func doUpload(rng *rand.Rand) result {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "batch.csv")
	if err != nil {
		return result{"POST /upload", 0, 0, true}
	}
	part.Write(buildCSV(rng))
	writer.Close()

	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/upload", writer.FormDataContentType(), &body)
	lat := time.Since(start)
	if err != nil {
		return result{"POST /upload", 0, lat, true}
	}
	defer resp.Body.Close()

	if resp.StatusCode == 201 {
		var parsed struct {
			Hash string `json:"hash"`
		}
		if json.NewDecoder(resp.Body).Decode(&parsed) == nil && parsed.Hash != "" {
			recordHash(parsed.Hash)
		}
	} else {
		io.Copy(io.Discard, resp.Body)
	}
	return result{"POST /upload", resp.StatusCode, lat, resp.StatusCode != 201}
}

func doGetSession(rng *rand.Rand) result {
	url := fmt.Sprintf("%s/session?h=%s", baseURL, randomHash(rng))
	start := time.Now()
	resp, err := httpClient.Get(url)
	lat := time.Since(start)
	if err != nil {
		return result{"GET /session", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	// Evicted sessions come back 404, which is expected under churn.
	ok := resp.StatusCode == 200 || resp.StatusCode == 404
	return result{"GET /session", resp.StatusCode, lat, !ok}
}

func doGetRoster(rng *rand.Rand) result {
	url := baseURL + "/roster"
	if rng.Float64() < 0.5 {
		if rng.Float64() < 0.5 {
			url += "?cred=true"
		} else {
			url += "?cred=false"
		}
	}
	start := time.Now()
	resp, err := httpClient.Get(url)
	lat := time.Since(start)
	if err != nil {
		return result{"GET /roster", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /roster", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doEditRoster(rng *rand.Rand) result {
	body := map[string]interface{}{
		"origin":      rng.Intn(numIdentities),
		"credibility": rng.Float64() < 0.5,
		"comment":     comments[rng.Intn(len(comments))],
	}
	data, _ := json.Marshal(body)
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/roster/edit", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /roster/edit", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /roster/edit", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doAddRoster(rng *rand.Rand) result {
	body := map[string]interface{}{
		"id":          "@" + identity(rng),
		"credibility": rng.Float64() < 0.7,
		"comment":     comments[rng.Intn(len(comments))],
	}
	data, _ := json.Marshal(body)
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/roster/add", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /roster/add", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /roster/add", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doGetHistory(rng *rand.Rand) result {
	url := fmt.Sprintf("%s/history?id=%s", baseURL, identity(rng))
	start := time.Now()
	resp, err := httpClient.Get(url)
	lat := time.Since(start)
	if err != nil {
		return result{"GET /history", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /history", resp.StatusCode, lat, resp.StatusCode != 200}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
