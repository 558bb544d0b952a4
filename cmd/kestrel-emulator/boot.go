// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kestrel-os/kestrel/lib/appcheck"
	"github.com/kestrel-os/kestrel/lib/bootreport"
	"github.com/kestrel-os/kestrel/lib/digest"
	"github.com/kestrel-os/kestrel/lib/digest/selftest"
	"github.com/kestrel-os/kestrel/lib/emuconfig"
)

// bootSequence runs the self-tests one after another, then the
// application check. Every step starts from the previous step's
// completion callback, so the whole sequence runs on the kernel loop.
type bootSequence struct {
	logger *slog.Logger

	tests   []*selftest.Test
	next    int
	checker *appcheck.Checker
	apps    []string

	report           bootreport.Report
	selfTestFailures int
	appFailures      int
	finished         bool
	onFinished       func()
}

func newBootSequence(engine digest.Engine, board emuconfig.Board, apps []string, logger, appLogger *slog.Logger) *bootSequence {
	sequence := &bootSequence{
		logger:  logger,
		checker: appcheck.New(engine, appLogger),
		apps:    apps,
		report:  bootreport.Report{Engine: string(board)},
	}
	for _, fixture := range selftest.Fixtures() {
		sequence.tests = append(sequence.tests, selftest.New(engine, fixture, logger, sequence.selfTestDone))
	}
	return sequence
}

func (s *bootSequence) start() { s.runNextTest() }

func (s *bootSequence) runNextTest() {
	for s.next < len(s.tests) {
		test := s.tests[s.next]
		s.next++
		if err := test.Run(); err != nil {
			s.logger.Error("self-test could not start", "error", err)
			s.selfTestFailures++
			continue
		}
		return
	}

	if s.selfTestFailures > 0 {
		s.logger.Error("digest self-tests failed, not loading applications", "failed", s.selfTestFailures)
		s.finish()
		return
	}
	s.logger.Info("digest self-tests passed", "count", len(s.tests))
	if err := s.checker.Start(s.apps, s.appsChecked); err != nil {
		s.logger.Error("application check could not start", "error", err)
		s.appFailures = len(s.apps)
		s.finish()
	}
}

func (s *bootSequence) selfTestDone(result selftest.Result) {
	s.report.AddSelfTest(result)
	if !result.Passed() {
		s.selfTestFailures++
	}
	s.runNextTest()
}

func (s *bootSequence) appsChecked(results []appcheck.Result) {
	s.report.AddApps(results)
	s.appFailures = appcheck.Failed(results)
	loaded := len(results) - s.appFailures
	if s.appFailures > 0 {
		s.logger.Warn("applications failed the integrity check", "failed", s.appFailures, "loaded", loaded)
	} else {
		s.logger.Info("applications ready", "loaded", loaded)
	}
	s.finish()
}

func (s *bootSequence) finish() {
	s.finished = true
	if s.onFinished != nil {
		s.onFinished()
	}
}

// boot runs the boot sequence on the kernel loop and keeps the loop
// running until ctx is done. With --self_test it stops once the
// sequence finishes. A failed self-test always stops the loop.
func boot(ctx context.Context, b *board, holder *emuconfig.Holder, logger, appLogger *slog.Logger) error {
	config := holder.Get()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sequence := newBootSequence(b.engine, config.Board, config.AppPaths(), logger, appLogger)
	sequence.onFinished = func() {
		if directory := config.RuntimeDir(); directory != "" {
			sequence.report.Timestamp = b.clock.Now().UTC()
			path := bootreport.Path(directory)
			if err := bootreport.Write(path, &sequence.report); err != nil {
				logger.Error("writing boot report", "error", err)
			} else if diagnostic, err := sequence.report.Diagnose(); err == nil {
				logger.Debug("boot report written", "path", path, "report", diagnostic)
			}
		}
		if config.SelfTestsOnly || sequence.selfTestFailures > 0 {
			cancel()
		}
	}
	sequence.start()

	// Run only returns the context's error.
	_ = b.kernel.Run(ctx)

	switch {
	case !sequence.finished:
		return errors.New("interrupted during boot")
	case sequence.selfTestFailures > 0:
		return fmt.Errorf("%d digest self-tests failed", sequence.selfTestFailures)
	case config.SelfTestsOnly && sequence.appFailures > 0:
		return fmt.Errorf("%d applications failed the integrity check", sequence.appFailures)
	}
	return nil
}
