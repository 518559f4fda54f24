package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/johnquangdev/meeting-thoughts/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-thoughts/internal/app"
	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
	meetingUsecase "github.com/johnquangdev/meeting-thoughts/internal/usecase/meeting"
)

var (
	ingestTitle    string
	preserveManual bool
	preserveMerged bool
)

// runResult is what process-style commands print once the run has drained
type runResult struct {
	Job      interface{} `json:"job"`
	Meeting  interface{} `json:"meeting"`
	Thoughts interface{} `json:"thoughts"`
}

func init() {
	ingest := &cobra.Command{
		Use:   "ingest <transcript-file>",
		Short: "Create a meeting from a transcript file and process it",
		Args:  cobra.ExactArgs(1),
		RunE:  runIngest,
	}
	ingest.Flags().StringVar(&ingestTitle, "title", "", "Meeting title")

	process := &cobra.Command{
		Use:   "process <meeting-id>",
		Short: "Run strict extraction on a pending or failed meeting and wait for it",
		Args:  cobra.ExactArgs(1),
		RunE:  runProcess,
	}

	reprocess := &cobra.Command{
		Use:   "reprocess <meeting-id>",
		Short: "Re-extract a meeting with the tolerant v2 pipeline and wait for it",
		Args:  cobra.ExactArgs(1),
		RunE:  runReprocess,
	}
	reprocess.Flags().BoolVar(&preserveManual, "preserve-manual", false, "Keep thoughts with extraction version 1 or lower")
	reprocess.Flags().BoolVar(&preserveMerged, "preserve-merged", false, "Keep thoughts that were merged away")

	RootCmd.AddCommand(ingest, process, reprocess)
}

func runIngest(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	m, err := a.MeetingService.CreateMeeting(cmd.Context(), meetingUsecase.CreateMeetingInput{
		Title:   ingestTitle,
		Content: string(content),
	})
	if err != nil {
		return err
	}
	return runAndWait(cmd, a, m.ID, func(ctx context.Context) (*entities.ProcessingJob, error) {
		return a.Pipeline.StartProcessing(ctx, m.ID)
	})
}

func runProcess(cmd *cobra.Command, args []string) error {
	meetingID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid meeting id %q: %w", args[0], err)
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	return runAndWait(cmd, a, meetingID, func(ctx context.Context) (*entities.ProcessingJob, error) {
		return a.Pipeline.StartProcessing(ctx, meetingID)
	})
}

func runReprocess(cmd *cobra.Command, args []string) error {
	meetingID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid meeting id %q: %w", args[0], err)
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	opts := entities.ReprocessOptions{PreserveManual: preserveManual, PreserveMerged: preserveMerged}
	return runAndWait(cmd, a, meetingID, func(ctx context.Context) (*entities.ProcessingJob, error) {
		return a.Pipeline.Reprocess(ctx, meetingID, opts)
	})
}

// runAndWait triggers a run, drains the pipeline and prints the outcome.
// A failed run is reported as an error after the result is printed.
func runAndWait(cmd *cobra.Command, a *app.App, meetingID uuid.UUID, trigger func(context.Context) (*entities.ProcessingJob, error)) error {
	ctx := cmd.Context()

	job, err := trigger(ctx)
	if err != nil {
		return err
	}
	if err := a.Pipeline.Shutdown(ctx); err != nil {
		return err
	}

	job, err = a.Pipeline.GetJob(ctx, job.ID)
	if err != nil {
		return err
	}
	m, err := a.MeetingService.GetMeeting(ctx, meetingID)
	if err != nil {
		return err
	}
	thoughts, err := a.ThoughtService.ListByMeeting(ctx, meetingID)
	if err != nil {
		return err
	}

	if err := printJSON(cmd.OutOrStdout(), runResult{
		Job:      presenter.ToJobResponse(job),
		Meeting:  presenter.ToMeetingResponse(m, false),
		Thoughts: presenter.ToThoughtListResponse(thoughts),
	}); err != nil {
		return err
	}

	if job.Status == entities.JobStatusFailed {
		msg := ""
		if job.LastError != nil {
			msg = *job.LastError
		}
		return fmt.Errorf("processing run failed: %s", msg)
	}
	return nil
}
