package presenter

import (
	"github.com/johnquangdev/meeting-thoughts/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-thoughts/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
)

// ToMeetingResponse converts a Meeting entity to MeetingResponse DTO
func ToMeetingResponse(m *entities.Meeting, withContent bool) *meeting.MeetingResponse {
	if m == nil {
		return nil
	}

	response := &meeting.MeetingResponse{
		ID:            m.ID.String(),
		Title:         m.Title,
		TranscriptKey: m.TranscriptKey,
		ProcessStatus: string(m.ProcessStatus),
		ProcessError:  m.ProcessError,
		ThoughtCount:  m.ThoughtCount,
		ProcessedAt:   m.ProcessedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if withContent {
		response.Content = m.Content
	}
	return response
}

// ToMeetingListResponse converts a page of meetings; content is omitted
func ToMeetingListResponse(meetings []*entities.Meeting, page, pageSize int) *meeting.MeetingListResponse {
	items := make([]*meeting.MeetingResponse, len(meetings))
	for i, m := range meetings {
		items[i] = ToMeetingResponse(m, false)
	}
	return &meeting.MeetingListResponse{
		Meetings: items,
		Pagination: &common.PaginationResponse{
			Page:     page,
			PageSize: pageSize,
			Count:    len(items),
		},
	}
}

// ToJobResponse converts a ProcessingJob entity to JobResponse DTO
func ToJobResponse(j *entities.ProcessingJob) *meeting.JobResponse {
	if j == nil {
		return nil
	}

	unresolved := make([]string, len(j.UnresolvedTags))
	copy(unresolved, j.UnresolvedTags)

	return &meeting.JobResponse{
		ID:             j.ID.String(),
		MeetingID:      j.MeetingID.String(),
		Kind:           string(j.Kind),
		Status:         string(j.Status),
		PreserveManual: j.Options.PreserveManual,
		PreserveMerged: j.Options.PreserveMerged,
		Stats: meeting.JobStatsResponse{
			Chunks:            j.Stats.Chunks,
			FailedChunks:      j.Stats.FailedChunks,
			Candidates:        j.Stats.Candidates,
			UniqueCandidates:  j.Stats.UniqueCandidates,
			Persisted:         j.Stats.Persisted,
			Preserved:         j.Stats.Preserved,
			Deleted:           j.Stats.Deleted,
			Embedded:          j.Stats.Embedded,
			EmbeddingFailures: j.Stats.EmbeddingFailures,
			SimilarEdges:      j.Stats.SimilarEdges,
			SimilarFailures:   j.Stats.SimilarFailures,
		},
		UnresolvedTags: unresolved,
		LastError:      j.LastError,
		StartedAt:      j.StartedAt,
		CompletedAt:    j.CompletedAt,
	}
}

// ToJobListResponse converts a slice of jobs
func ToJobListResponse(jobs []*entities.ProcessingJob) []*meeting.JobResponse {
	out := make([]*meeting.JobResponse, len(jobs))
	for i, j := range jobs {
		out[i] = ToJobResponse(j)
	}
	return out
}
