package data

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/telegpt/telegram-gpt-bridge/internal/biz/domain"
	"github.com/telegpt/telegram-gpt-bridge/internal/biz/repo"
)

const (
	defaultChatModel = openai.GPT3Dot5Turbo
	chatTemperature  = 0.7
	imageCount       = 2
)

// openAIRepo implements the AI provider repository on the OpenAI API
type openAIRepo struct {
	client *openai.Client
	model  string
}

// NewOpenAIRepo creates an OpenAI repository
func NewOpenAIRepo(apiKey, model string) repo.AIRepo {
	if model == "" {
		model = defaultChatModel
	}
	return &openAIRepo{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// ChatCompletionStream starts a streamed chat completion. The provider
// emits deltas; the returned stream accumulates them into cumulative
// snapshots so consumers always see the full answer so far.
func (r *openAIRepo) ChatCompletionStream(ctx context.Context, history []domain.Message) (repo.ChatStream, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	stream, err := r.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Messages:    messages,
		Temperature: chatTemperature,
		Stream:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat completion stream: %w", err)
	}

	return &chatStream{
		recv: func() (string, error) {
			resp, err := stream.Recv()
			if err != nil {
				return "", err
			}
			if len(resp.Choices) == 0 {
				return "", nil
			}
			return resp.Choices[0].Delta.Content, nil
		},
		close: stream.Close,
	}, nil
}

// GenerateImages generates two 1024x1024 images and returns their URLs
func (r *openAIRepo) GenerateImages(ctx context.Context, prompt string) ([]string, error) {
	resp, err := r.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		N:              imageCount,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create image: %w", err)
	}

	urls := make([]string, 0, len(resp.Data))
	for _, img := range resp.Data {
		urls = append(urls, img.URL)
	}
	return urls, nil
}

// TranscribeAudio transcribes the audio file at path with Whisper
func (r *openAIRepo) TranscribeAudio(ctx context.Context, path string) (string, error) {
	resp, err := r.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:       openai.Whisper1,
		FilePath:    path,
		Format:      openai.AudioResponseFormatText,
		Temperature: chatTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("create transcription: %w", err)
	}
	return resp.Text, nil
}

// chatStream adapts a delta sequence into cumulative snapshots
type chatStream struct {
	recv  func() (string, error)
	close func() error
	text  string
	done  bool
}

// Recv returns the next cumulative snapshot. The provider's final delta
// is followed by one Done snapshot carrying the full answer, then io.EOF.
func (s *chatStream) Recv() (repo.Snapshot, error) {
	if s.done {
		return repo.Snapshot{}, io.EOF
	}

	delta, err := s.recv()
	if errors.Is(err, io.EOF) {
		s.done = true
		if s.text != "" {
			return repo.Snapshot{Done: true, Text: s.text}, nil
		}
		return repo.Snapshot{}, io.EOF
	}
	if err != nil {
		return repo.Snapshot{}, err
	}

	s.text += delta
	return repo.Snapshot{Done: false, Text: s.text}, nil
}

// Close releases the underlying network stream
func (s *chatStream) Close() error {
	if s.close != nil {
		return s.close()
	}
	return nil
}
