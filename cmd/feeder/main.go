package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/feedclient"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/logger"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/util"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/wire"
)

// generateTicks creates a random walk per instrument around the base price.
func generateTicks(count int, instruments []string, basePrice, priceSpread float64) []wire.Record {
	ticks := make([]wire.Record, count)
	last := make(map[string]float64, len(instruments))

	for i := 0; i < count; i++ {
		instrument := instruments[rand.Intn(len(instruments))]

		price, ok := last[instrument]
		if !ok {
			price = basePrice
		}
		// bounded random step, at most 1% per tick
		price = price * (1 + (rand.Float64()-0.5)*0.02)
		if price <= 0 {
			price = basePrice
		}
		price = float64(int(price*100)) / 100
		last[instrument] = price

		tick := wire.Record{
			Instrument:       instrument,
			Price:            price,
			EventTimestampMS: time.Now().UnixMilli(),
		}

		// roughly 70% of ticks carry a volume
		if rand.Float64() < 0.7 {
			tick.Volume = util.Float64Pointer(float64(rand.Intn(1_000_000) + 1))
		}

		// roughly 60% carry a quote around the trade price
		if rand.Float64() < 0.6 {
			half := priceSpread * rand.Float64() / 2
			tick.Bid = util.Float64Pointer(float64(int((price-half)*100)) / 100)
			tick.Ask = util.Float64Pointer(float64(int((price+half)*100)) / 100)
		}

		ticks[i] = tick
	}

	return ticks
}

// loadTicks reads wire-format lines from a replay file.
func loadTicks(path string) ([]wire.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ticks []wire.Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		record, err := wire.Decode(line)
		if err != nil {
			log.Printf("Skipping malformed line %q: %v", line, err)
			continue
		}
		ticks = append(ticks, *record)
	}

	return ticks, scanner.Err()
}

func main() {
	var (
		target      = flag.String("target", "localhost:9000", "Ingestor listen address")
		file        = flag.String("file", "", "Replay file with wire-format lines (optional, generates ticks if not provided)")
		delay       = flag.Duration("delay", 10*time.Millisecond, "Delay between ticks")
		count       = flag.Int("count", 1000, "Number of ticks to generate")
		basePrice   = flag.Float64("base-price", 150.0, "Base price for generated ticks")
		priceSpread = flag.Float64("price-spread", 0.5, "Bid/ask spread range")
		instruments = flag.String("instruments", "AAPL.O,MSFT.O,EUR=,BTCUSDT", "Instrument codes (comma-separated)")
		reconnects  = flag.Int("max-reconnects", 10, "Reconnect attempts before giving up")
	)
	flag.Parse()

	zlog, err := logger.NewLogger()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	var ticks []wire.Record
	if *file != "" {
		ticks, err = loadTicks(*file)
		if err != nil {
			log.Fatalf("Failed to load replay file %s: %v", *file, err)
		}
		log.Printf("Loaded %d ticks from file: %s", len(ticks), *file)
	} else {
		codes := strings.Split(*instruments, ",")
		log.Printf("Generating %d ticks for %d instruments...", *count, len(codes))
		ticks = generateTicks(*count, codes, *basePrice, *priceSpread)
	}

	client, err := feedclient.New(feedclient.Config{
		Target:               *target,
		DialTimeout:          5 * time.Second,
		WriteTimeout:         5 * time.Second,
		ReconnectInterval:    time.Second,
		MaxReconnectAttempts: *reconnects,
	}, zlog)
	if err != nil {
		log.Fatalf("Failed to create feed client: %v", err)
	}

	ctx := context.Background()
	if err := client.Start(ctx); err != nil {
		log.Fatalf("Failed to start feed client: %v", err)
	}

	log.Printf("Sending ticks to %s with %v between ticks", *target, *delay)

	for i, tick := range ticks {
		if err := client.Send(tick); err != nil {
			log.Fatalf("Feed client failed after %d ticks: %v", i, err)
		}

		if (i+1)%100 == 0 || i == len(ticks)-1 {
			log.Printf("Queued tick %d/%d: %s @ %.2f (queue depth %d)",
				i+1, len(ticks), tick.Instrument, tick.Price, client.QueueDepth())
		}

		if i < len(ticks)-1 {
			time.Sleep(*delay)
		}
	}

	stopCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := client.Stop(stopCtx); err != nil {
		log.Fatalf("Feed drain incomplete: %v", err)
	}

	log.Printf("Successfully sent all %d ticks!", len(ticks))

	// Print summary
	perInstrument := make(map[string]int)
	quoted := 0
	for _, tick := range ticks {
		perInstrument[tick.Instrument]++
		if tick.Bid != nil || tick.Ask != nil {
			quoted++
		}
	}

	log.Printf("--- Summary ---")
	log.Printf("Total Ticks: %d", len(ticks))
	log.Printf("With Quotes: %d", quoted)
	for instrument, n := range perInstrument {
		log.Printf("%s: %d", instrument, n)
	}
}
