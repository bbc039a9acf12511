// Command salesgen writes a synthetic retail sales CSV for demos: two
// products with opposite seasonal peaks, one row per product per day.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"time"
)

func main() {
	days := flag.Int("days", 180, "number of days to generate")
	start := flag.String("start", "2025-07-01", "first sale date (YYYY-MM-DD)")
	out := flag.String("out", "sales_data.csv", "output CSV path")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	startDate, err := time.Parse("2006-01-02", *start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -start: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := generate(f, *days, startDate, rand.New(rand.NewSource(*seed))); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *out, err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d days of sales to %s\n", *days, *out)
}

func generate(out io.Writer, days int, start time.Time, rng *rand.Rand) error {
	w := csv.NewWriter(out)

	if err := w.Write([]string{"sale_date", "product_name", "quantity", "total_price"}); err != nil {
		return err
	}

	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)

		// Soft drinks peak in the hot season (Dec-Apr)
		softDrinkQty := randRange(rng, 20, 40)
		if isHotSeason(date.Month()) {
			softDrinkQty = randRange(rng, 50, 80)
		}

		// Umbrellas peak in the rainy season (Jul-Oct)
		umbrellaQty := randRange(rng, 5, 15)
		if isRainySeason(date.Month()) {
			umbrellaQty = randRange(rng, 30, 60)
		}

		rows := [][]string{
			{date.Format("2006-01-02"), "SoftDrink", strconv.Itoa(softDrinkQty), strconv.Itoa(softDrinkQty * 30)},
			{date.Format("2006-01-02"), "Umbrella", strconv.Itoa(umbrellaQty), strconv.Itoa(umbrellaQty * 50)},
		}
		for _, row := range rows {
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

// randRange returns a value in the half-open interval [lo, hi).
func randRange(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo)
}

func isHotSeason(m time.Month) bool {
	return m == time.December || m <= time.April
}

func isRainySeason(m time.Month) bool {
	return m >= time.July && m <= time.October
}
