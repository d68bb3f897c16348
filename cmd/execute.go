// Package cmd implements the command-line interface and orchestration logic for recat.
// It wires loading, classification, output writing and reporting into one run.
package cmd

import (
	"context"
	"time"

	"go.uber.org/zap"

	"recat/internal/backup"
	"recat/internal/classify"
	"recat/internal/concurrent"
	"recat/internal/log"
	"recat/internal/parser"
	"recat/internal/rules"
)

func executeRecat(ctx context.Context, a *app) error {
	startTime := time.Now()
	cfg := a.cfg

	report := log.NewLogger(cfg, a.stdout, a.runID)
	report.LogStart()

	records, err := parser.LoadExercises(cfg.InputFile)
	if err != nil {
		return err
	}
	a.logger.Info("Loaded exercises",
		zap.String("input", cfg.InputFile),
		zap.Int("records", len(records)))

	report.LogOriginal(records)

	rs, err := rules.Default()
	if err != nil {
		return err
	}
	a.logger.Debug("Loaded rule set", zap.Strings("categories", rs.Categories()))

	processor := concurrent.NewProcessor(classify.NewEngine(rs), cfg.Workers, a.logger)
	updated, changes, err := processor.ClassifyAll(ctx, records)
	if err != nil {
		return err
	}
	a.logger.Info("Classified exercises",
		zap.Int("changes", len(changes)),
		zap.Int("workers", processor.WorkerCount()))

	report.LogResult(updated, changes)

	report.SetProcessingTime(time.Since(startTime))
	if err := commitOutputs(a, parser.EncodeExercises(updated), report); err != nil {
		return err
	}

	report.LogSaved()
	return nil
}

// commitOutputs stages the output file and the change log before replacing
// anything. The output is committed first; if the change log then fails the
// output is rolled back, so a failed run leaves no file changed.
func commitOutputs(a *app, output []byte, report *log.Logger) error {
	cfg := a.cfg

	logData, err := report.ChangeLog()
	if err != nil {
		return err
	}

	var changeLog *backup.Pending
	if cfg.LogFile != "" {
		changeLog, err = backup.Prepare(cfg.LogFile, logData)
		if err != nil {
			return err
		}
		defer changeLog.Discard()
	}

	if cfg.DryRun {
		if changeLog != nil {
			return changeLog.Commit()
		}
		return nil
	}

	staged, err := backup.Prepare(cfg.OutputFile, output)
	if err != nil {
		return err
	}
	defer staged.Discard()

	manager := backup.NewBackupManager(cfg.ShouldCreateBackup())
	backupPath, err := manager.Commit(staged)
	if err != nil {
		return err
	}

	if changeLog != nil {
		if err := changeLog.Commit(); err != nil {
			if rbErr := manager.Rollback(staged.Target(), backupPath); rbErr != nil {
				a.logger.Error("Failed to roll back output",
					zap.String("output", staged.Target()),
					zap.Error(rbErr))
			}
			return err
		}
	}

	kept, err := manager.Finish(backupPath)
	if err != nil {
		return err
	}
	if kept != "" {
		a.logger.Info("Backed up previous output", zap.String("backup", kept))
	}
	return nil
}
