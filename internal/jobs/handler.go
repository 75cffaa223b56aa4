package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/logger"
	"github.com/dvloznov/finsight/internal/pipeline"
)

// SessionUpdater receives the outcome of an analysis job.
type SessionUpdater interface {
	Complete(id, jobID string, result *domain.AnalysisResult) error
	Fail(id, jobID, message string) error
}

// NewAnalyzeStatementHandler runs p for every AnalyzeStatementJob and reports
// the outcome to sessions. Any failure is shown to the user as
// domain.UserFacingAnalysisError. A result for a session that was reset or
// reanalysed while the job ran is dropped.
func NewAnalyzeStatementHandler(p *pipeline.Pipeline, sessions SessionUpdater) JobHandler {
	return func(ctx context.Context, job Job) error {
		j, ok := job.(*AnalyzeStatementJob)
		if !ok {
			return fmt.Errorf("AnalyzeStatementHandler: unexpected job type %s", job.GetType())
		}

		log := logger.WithFields(logger.FromContext(ctx), map[string]interface{}{
			"job_id":     j.JobID,
			"session_id": j.SessionID,
		})
		ctx = logger.WithContext(ctx, log)

		result, _, err := pipeline.AnalyzeStatement(ctx, p, j.SessionID, j.JobID, j.Input)
		if err != nil {
			log.Error().Err(err).Msg("Statement analysis failed")
			if failErr := sessions.Fail(j.SessionID, j.JobID, domain.UserFacingAnalysisError); failErr != nil {
				log.Warn().Err(failErr).Msg("Failed to mark session as failed")
			}
			return err
		}

		if err := sessions.Complete(j.SessionID, j.JobID, result); err != nil {
			if errors.Is(err, domain.ErrStaleAnalysis) {
				log.Info().Err(err).Msg("Discarding result of superseded analysis")
				return nil
			}
			return fmt.Errorf("AnalyzeStatementHandler: complete session: %w", err)
		}
		return nil
	}
}
