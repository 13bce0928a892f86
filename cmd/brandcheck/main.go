package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/loopline-labs/sovscope/internal/core/domain"
)

// brandcheck scans a text file of content lines (one record per line) against
// the brand registry and prints the mention and engagement tally. Useful for
// checking ad copy or scraped dumps offline, without a database.
func main() {
	targetFile := flag.String("file", "content.txt", "Path to the text file to scan")
	focusBrand := flag.String("brand", "", "Focus brand (defaults to the configured focus brand)")
	flag.Parse()

	cfg := domain.DefaultConfig()
	if *focusBrand != "" {
		cfg.FocusBrand = strings.ToLower(*focusBrand)
	}

	registry, err := domain.NewBrandRegistry(cfg.BrandPatterns)
	if err != nil {
		log.Fatalf("❌ invalid brand patterns: %v", err)
	}

	file, err := os.Open(*targetFile)
	if err != nil {
		log.Fatalf("❌ error reading file: %v", err)
	}
	defer file.Close()

	fmt.Printf("🔍 scanning %s against the brand registry...\n\n", *targetFile)

	var records []domain.EvidenceRecord
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		lineNo++
		records = append(records, domain.NormalizeSearchResult(
			fmt.Sprintf("line_%d", lineNo), "", line, "", lineNo, "brandcheck",
		))
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("❌ error scanning file: %v", err)
	}

	agg := domain.AggregateEvidence(records, registry, cfg)
	sov := domain.CalculateSoV(agg, cfg.SoV, cfg.FocusBrand)

	if !sov.Stage.OK() {
		fmt.Printf("⚠️ %s: no tracked brands detected in %d lines\n", sov.Stage.Reason, agg.Records)
		os.Exit(0)
	}

	fmt.Printf("%-10s %8s %8s %10s %8s\n", "BRAND", "MENTIONS", "RAW", "ENGAGEMENT", "SOV")
	fmt.Println("------------------------------------------------")
	for _, rank := range sov.Landscape.BrandRankings {
		m := sov.Metrics[rank.Brand]
		marker := "  "
		if rank.Brand == cfg.FocusBrand {
			marker = "👉"
		}
		fmt.Printf("%s %-8s %8d %8d %10.1f %7.1f%%\n",
			marker, rank.Brand, m.TotalMentions, agg.RawMentions[rank.Brand], m.TotalEngagement, m.OverallSoV)
	}

	fmt.Println("------------------------------------------------")
	fmt.Printf("✅ %d lines scanned, %d brands detected. Market leader: %s\n",
		agg.Records, len(agg.Mentions), sov.Landscape.MarketLeader)
}
