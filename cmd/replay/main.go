// Command replay rebuilds beliefs from a slice journal and prints them.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/seurimas/topper-public-sub002/engine"
	"github.com/seurimas/topper-public-sub002/engine/agent"
	"github.com/seurimas/topper-public-sub002/internal/classdb"
	"github.com/seurimas/topper-public-sub002/internal/config"
	"github.com/seurimas/topper-public-sub002/internal/journal"
	"github.com/seurimas/topper-public-sub002/internal/session"
)

func main() {
	var (
		in      = flag.String("in", "", "journal file (.jsonl.zst or .jsonl) or directory of journal files")
		only    = flag.String("agent", "", "print only this agent")
		envFile = flag.String("env", ".env", "optional dotenv file")
	)
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "missing -in")
		os.Exit(2)
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	log := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, log, *in, *only); err != nil {
		log.WithError(err).Error("replay failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *logrus.Logger, in, only string) error {
	rules := engine.DefaultRules()
	if cfg.RulesPath != "" {
		r, err := engine.LoadRules(cfg.RulesPath)
		if err != nil {
			return err
		}
		rules = r
	}
	if cfg.PruneCap > 0 {
		rules = rules.WithPruneCap(cfg.PruneCap)
	}

	store, err := classdb.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("class store: %w", err)
	}
	defer store.Close()

	files, err := inputs(in)
	if err != nil {
		return err
	}

	sess := session.New(session.Options{Rules: rules, Store: store, Logger: log})
	defer sess.Close()

	applied, failed := 0, 0
	for _, f := range files {
		slices, err := journal.ReadAll(f)
		if err != nil {
			return err
		}
		for _, slice := range slices {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := sess.Push(ctx, slice); err != nil {
				failed++
				log.WithError(err).WithField("slice", slice.ID).Debug("slice had errors")
			}
			applied++
		}
	}
	log.WithFields(logrus.Fields{
		"files":  len(files),
		"slices": applied,
		"errors": failed,
		"digest": fmt.Sprintf("%016x", sess.Digest()),
	}).Info("replay done")

	report := make(map[string][]branchReport)
	for _, name := range sess.Agents() {
		if only != "" && name != only {
			continue
		}
		for _, b := range sess.Snapshot(name) {
			report[name] = append(report[name], describe(&b))
		}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// inputs expands a directory into its journal files.
func inputs(in string) ([]string, error) {
	info, err := os.Stat(in)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{in}, nil
	}
	files, err := journal.Files(in)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no journal files in %s", in)
	}
	return files, nil
}

type branchReport struct {
	Strikes     uint32             `json:"strikes"`
	Afflictions []string           `json:"afflictions"`
	Balances    map[string]float64 `json:"balances,omitempty"` // seconds until back
}

func describe(a *agent.AgentState) branchReport {
	r := branchReport{Strikes: a.Branch.Strikes(), Afflictions: []string{}}
	for _, f := range a.Afflictions() {
		r.Afflictions = append(r.Afflictions, f.String())
	}
	for b := agent.Balance(0); b < agent.BalanceCount; b++ {
		if !a.Balanced(b) {
			if r.Balances == nil {
				r.Balances = make(map[string]float64)
			}
			r.Balances[b.String()] = a.BalanceSeconds(b)
		}
	}
	return r
}
