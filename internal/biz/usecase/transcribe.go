package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/telegpt/telegram-gpt-bridge/internal/biz/domain"
	"github.com/telegpt/telegram-gpt-bridge/internal/biz/repo"
)

// TranscribeUsecase stages a media payload, optionally transcodes it,
// and runs it through the AI transcription capability.
type TranscribeUsecase struct {
	staging    repo.StagingRepo
	transcoder repo.Transcoder
	ai         repo.AIRepo
	logger     *slog.Logger
}

// NewTranscribeUsecase creates a transcription usecase
func NewTranscribeUsecase(staging repo.StagingRepo, transcoder repo.Transcoder, ai repo.AIRepo, logger *slog.Logger) *TranscribeUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &TranscribeUsecase{
		staging:    staging,
		transcoder: transcoder,
		ai:         ai,
		logger:     logger.With("component", "transcribe"),
	}
}

// TranscribeFile transcribes an uploaded audio/video file. The
// extension must be one the transcription capability accepts and the
// size ceiling is enforced before any download happens.
func (uc *TranscribeUsecase) TranscribeFile(ctx context.Context, ext string, sizeHint int64, fetch repo.FetchFunc) (string, error) {
	if !domain.IsAllowedAudioExtension(ext) {
		return "", domain.ErrExtensionNotAllowed
	}
	if sizeHint >= 0 && sizeHint > domain.MaxAudioFileSize {
		return "", domain.ErrFileTooLarge
	}

	var transcript string
	err := uc.staging.WithFile(ctx, ext, sizeHint, fetch, func(ctx context.Context, path string) error {
		text, err := uc.ai.TranscribeAudio(ctx, path)
		if err != nil {
			return fmt.Errorf("transcribe audio: %w", err)
		}
		transcript = text
		return nil
	})
	if err != nil {
		return "", err
	}
	return transcript, nil
}

// TranscribeVoice transcribes a voice-note recording. Voice notes
// arrive in an ogg container the transcription capability does not
// accept, so the staged file is always transcoded to mp3 first. A
// transcoding failure surfaces as a transcription failure.
func (uc *TranscribeUsecase) TranscribeVoice(ctx context.Context, sizeHint int64, fetch repo.FetchFunc) (string, error) {
	if sizeHint >= 0 && sizeHint > domain.MaxAudioFileSize {
		return "", domain.ErrFileTooLarge
	}

	var transcript string
	err := uc.staging.WithFile(ctx, "ogg", sizeHint, fetch, func(ctx context.Context, path string) error {
		converted, err := uc.transcoder.Transcode(ctx, path, "mp3")
		if err != nil {
			return fmt.Errorf("transcode voice note: %w", err)
		}
		text, err := uc.ai.TranscribeAudio(ctx, converted)
		if err != nil {
			return fmt.Errorf("transcribe audio: %w", err)
		}
		transcript = text
		return nil
	})
	if err != nil {
		return "", err
	}
	return transcript, nil
}
