package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	since := fs.Duration("since", 24*time.Hour, "Window to summarize (e.g. 1h, 7d expressed as 168h)")
	engineEvents := fs.Bool("engine", false, "Include recent engine lifecycle transitions")
	fs.Parse(os.Args[1:])

	st := openHistory()
	defer st.Close()

	sum, err := st.Summarize(time.Now().Add(-*since))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Window:                %s\n", *since)
	fmt.Printf("Passes:                %d\n", sum.Passes)
	fmt.Printf("  stale (discarded):   %d\n", sum.StalePasses)
	fmt.Printf("  avg duration:        %.*fms\n", durPrecision(sum.AvgPassMs), sum.AvgPassMs)
	fmt.Printf("Findings:\n")
	fmt.Printf("  spelling:            %d\n", sum.SpellingTotal)
	fmt.Printf("  grammar:             %d\n", sum.GrammarTotal)
	fmt.Printf("  unplaced on screen:  %d\n", sum.DroppedTotal)
	fmt.Printf("Corrections:           %d (%d applied)\n", sum.Corrections, sum.CorrectionsOK)

	if len(sum.StrategyCounts) > 0 {
		names := map[int]string{
			0: "gave up",
			1: "range write",
			2: "whole-text",
			3: "clipboard",
		}
		fmt.Println("  by strategy:")
		for i := 0; i <= 3; i++ {
			if n, ok := sum.StrategyCounts[i]; ok {
				fmt.Printf("    %-12s %d\n", names[i], n)
			}
		}
	}

	if !*engineEvents {
		return
	}

	events, err := st.RecentEngineEvents(20)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("\nEngine transitions (newest first):")
	for _, e := range events {
		fmt.Printf("  %s  %s\n", e.Time.Format("2006-01-02 15:04:05"), e.State)
	}
}
