package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/telegpt/telegram-gpt-bridge/internal/biz/domain"
	"github.com/telegpt/telegram-gpt-bridge/internal/biz/repo"
	"github.com/telegpt/telegram-gpt-bridge/internal/biz/usecase"
	"github.com/telegpt/telegram-gpt-bridge/internal/conf"
	"github.com/telegpt/telegram-gpt-bridge/internal/service"
)

const removeCallbackPrefix = "rm:"
const cancelCallback = "cancel"

// TelegramServer routes Telegram updates to the bot's capabilities
type TelegramServer struct {
	bot        *tgbotapi.BotAPI
	policy     *usecase.AccessPolicy
	allowList  *usecase.AllowListUsecase
	store      *usecase.ConversationStore
	chatSvc    *service.ChatService
	transcribe *usecase.TranscribeUsecase
	ai         repo.AIRepo
	msgs       *conf.Messages
	logger     *slog.Logger
	httpClient *http.Client
}

// NewTelegramServer creates a Telegram server
func NewTelegramServer(
	bot *tgbotapi.BotAPI,
	policy *usecase.AccessPolicy,
	allowList *usecase.AllowListUsecase,
	store *usecase.ConversationStore,
	chatSvc *service.ChatService,
	transcribe *usecase.TranscribeUsecase,
	ai repo.AIRepo,
	msgs *conf.Messages,
	logger *slog.Logger,
) *TelegramServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &TelegramServer{
		bot:        bot,
		policy:     policy,
		allowList:  allowList,
		store:      store,
		chatSvc:    chatSvc,
		transcribe: transcribe,
		ai:         ai,
		msgs:       msgs,
		logger:     logger.With("component", "server"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Start runs the long-polling update loop until Stop is called
func (s *TelegramServer) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := s.bot.GetUpdatesChan(u)
	s.logger.Info("bot started", "username", s.bot.Self.UserName)

	for update := range updates {
		go s.handleUpdate(update)
	}
	return nil
}

// Stop stops receiving updates
func (s *TelegramServer) Stop() {
	s.bot.StopReceivingUpdates()
}

// handleUpdate dispatches one update. Failures are logged and isolated
// so one user's error never takes down the loop.
func (s *TelegramServer) handleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panic", "panic", r)
		}
	}()

	ctx := context.Background()

	var err error
	switch {
	case update.CallbackQuery != nil:
		err = s.handleRemoveCallback(update.CallbackQuery)
	case update.Message == nil:
		return
	case update.Message.Voice != nil:
		err = s.handleVoice(ctx, update.Message)
	case update.Message.IsCommand():
		err = s.handleCommand(ctx, update.Message)
	case update.Message.Text != "":
		err = s.handleChat(ctx, update.Message)
	}

	if err != nil {
		s.logger.Error("handle update failed", "error", err)
	}
}

func (s *TelegramServer) handleCommand(ctx context.Context, m *tgbotapi.Message) error {
	switch m.Command() {
	case "start":
		return s.handleStart(m)
	case "help":
		return s.handleHelp(m)
	case "reset":
		return s.handleReset(m)
	case "image":
		return s.handleImage(ctx, m)
	case "transcribe":
		return s.handleTranscribe(ctx, m)
	case "adduser":
		return s.handleAddUser(m)
	case "removeuser":
		return s.handleRemoveUser(m)
	}
	return nil
}

func (s *TelegramServer) handleStart(m *tgbotapi.Message) error {
	s.store.Reset(m.From.ID)
	return s.send(m.Chat.ID, 0, s.msgs.Greeting, true)
}

func (s *TelegramServer) handleHelp(m *tgbotapi.Message) error {
	s.sendTyping(m.Chat.ID)
	return s.send(m.Chat.ID, 0, s.msgs.Help, true)
}

func (s *TelegramServer) handleChat(ctx context.Context, m *tgbotapi.Message) error {
	s.sendTyping(m.Chat.ID)

	if !s.policy.IsAuthorized(m.From.ID, m.From.UserName) {
		return s.send(m.Chat.ID, 0, s.msgs.NotAllowed, false)
	}

	sink := &telegramSink{bot: s.bot, chatID: m.Chat.ID}
	answer, err := s.chatSvc.HandleMessage(ctx, m.From.ID, m.Text, time.Now(), sink)
	if err != nil {
		return err
	}
	if strings.TrimSpace(answer) == "" {
		// The provider produced nothing, so no message was streamed out
		return s.send(m.Chat.ID, m.MessageID, s.msgs.EmptyAnswer, false)
	}
	return nil
}

func (s *TelegramServer) handleReset(m *tgbotapi.Message) error {
	if !s.policy.IsAuthorized(m.From.ID, m.From.UserName) {
		return s.send(m.Chat.ID, 0, s.msgs.NotAllowed, false)
	}

	if !s.store.Reset(m.From.ID) {
		return s.send(m.Chat.ID, 0, s.msgs.ResetNothing, false)
	}
	if err := s.send(m.Chat.ID, 0, s.msgs.ResetDone, false); err != nil {
		return err
	}
	return s.send(m.Chat.ID, 0, s.msgs.ResetHello, false)
}

func (s *TelegramServer) handleImage(ctx context.Context, m *tgbotapi.Message) error {
	s.sendTyping(m.Chat.ID)

	if !s.policy.IsAuthorized(m.From.ID, m.From.UserName) {
		return s.send(m.Chat.ID, 0, s.msgs.NotAllowed, true)
	}

	prompt := strings.TrimSpace(m.CommandArguments())
	if prompt == "" {
		return s.send(m.Chat.ID, m.MessageID, s.msgs.ImageUsage, true)
	}

	urls, err := s.ai.GenerateImages(ctx, prompt)
	if err != nil {
		return fmt.Errorf("generate images: %w", err)
	}

	media := make([]interface{}, 0, len(urls))
	for i, url := range urls {
		photo := tgbotapi.NewInputMediaPhoto(tgbotapi.FileURL(url))
		photo.Caption = fmt.Sprintf(s.msgs.ImageCaption, i+1, prompt)
		media = append(media, photo)
	}

	group := tgbotapi.NewMediaGroup(m.Chat.ID, media)
	group.ReplyToMessageID = m.MessageID
	if _, err := s.bot.SendMediaGroup(group); err != nil {
		return fmt.Errorf("send media group: %w", err)
	}
	return nil
}

func (s *TelegramServer) handleTranscribe(ctx context.Context, m *tgbotapi.Message) error {
	s.sendTyping(m.Chat.ID)

	if !s.policy.IsAuthorized(m.From.ID, m.From.UserName) {
		return s.send(m.Chat.ID, 0, s.msgs.NotAllowed, false)
	}

	reply := m.ReplyToMessage
	if reply == nil {
		return s.send(m.Chat.ID, m.MessageID, s.msgs.TranscribeHint, false)
	}

	fileID, fileSize := quotedMedia(reply)
	if fileID == "" {
		return s.send(m.Chat.ID, reply.MessageID, s.msgs.InvalidQuoted, false)
	}
	// Ceiling check before any download is attempted
	if fileSize > domain.MaxAudioFileSize {
		return s.send(m.Chat.ID, reply.MessageID, s.msgs.FileTooLarge, false)
	}

	file, err := s.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return fmt.Errorf("get file: %w", err)
	}
	ext := strings.TrimPrefix(path.Ext(file.FilePath), ".")

	transcript, err := s.transcribe.TranscribeFile(ctx, ext, fileSize, s.urlFetch(file.Link(s.bot.Token)))
	switch {
	case errors.Is(err, domain.ErrExtensionNotAllowed):
		return s.send(m.Chat.ID, reply.MessageID, s.msgs.FileNotAllowed, false)
	case errors.Is(err, domain.ErrFileTooLarge):
		return s.send(m.Chat.ID, reply.MessageID, s.msgs.FileTooLarge, false)
	case err != nil:
		return err
	}

	if strings.TrimSpace(transcript) == "" {
		return s.send(m.Chat.ID, reply.MessageID, s.msgs.NothingHeard, false)
	}
	return s.send(m.Chat.ID, reply.MessageID, transcript, false)
}

func (s *TelegramServer) handleVoice(ctx context.Context, m *tgbotapi.Message) error {
	s.sendTyping(m.Chat.ID)

	if !s.policy.IsAuthorized(m.From.ID, m.From.UserName) {
		return s.send(m.Chat.ID, 0, s.msgs.NotAllowed, false)
	}

	size := int64(m.Voice.FileSize)
	if size > domain.MaxAudioFileSize {
		return s.send(m.Chat.ID, m.MessageID, s.msgs.FileTooLarge, false)
	}

	file, err := s.bot.GetFile(tgbotapi.FileConfig{FileID: m.Voice.FileID})
	if err != nil {
		return fmt.Errorf("get file: %w", err)
	}

	transcript, err := s.transcribe.TranscribeVoice(ctx, size, s.urlFetch(file.Link(s.bot.Token)))
	if errors.Is(err, domain.ErrFileTooLarge) {
		return s.send(m.Chat.ID, m.MessageID, s.msgs.FileTooLarge, false)
	}
	if err != nil {
		return err
	}

	if strings.TrimSpace(transcript) == "" {
		return s.send(m.Chat.ID, m.MessageID, s.msgs.NothingHeard, false)
	}
	return s.send(m.Chat.ID, m.MessageID, transcript, false)
}

func (s *TelegramServer) handleAddUser(m *tgbotapi.Message) error {
	if !s.policy.IsAuthorized(m.From.ID, m.From.UserName) {
		return s.send(m.Chat.ID, 0, s.msgs.NotAllowed, true)
	}
	if !s.policy.IsOwner(m.From.ID) {
		return s.send(m.Chat.ID, 0, s.msgs.NotOwner, true)
	}

	args := strings.Fields(m.CommandArguments())
	switch {
	case len(args) > 1:
		return s.send(m.Chat.ID, 0, s.msgs.AddUserOne, true)
	case len(args) == 0:
		return s.send(m.Chat.ID, 0, s.msgs.AddUserUsage, true)
	}

	name := args[0]
	if err := s.allowList.Add(name); err != nil {
		if errors.Is(err, domain.ErrAlreadyListed) {
			return s.send(m.Chat.ID, 0, fmt.Sprintf(s.msgs.AddUserExists, name), true)
		}
		return err
	}
	return s.send(m.Chat.ID, 0, fmt.Sprintf(s.msgs.AddUserDone, name), true)
}

func (s *TelegramServer) handleRemoveUser(m *tgbotapi.Message) error {
	if !s.policy.IsAuthorized(m.From.ID, m.From.UserName) {
		return s.send(m.Chat.ID, 0, s.msgs.NotAllowed, false)
	}
	if !s.policy.IsOwner(m.From.ID) {
		return s.send(m.Chat.ID, 0, s.msgs.NotOwner, false)
	}

	names := s.allowList.Names()
	if len(names) == 0 {
		return s.send(m.Chat.ID, 0, s.msgs.RemoveOnlyYou, false)
	}

	// The callback payload is the username itself, so a list mutation
	// between keyboard creation and button press can never remove the
	// wrong user.
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(names)+1)
	for _, name := range names {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(name, removeCallbackPrefix+name),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Cancel", cancelCallback),
	))

	msg := tgbotapi.NewMessage(m.Chat.ID, s.msgs.RemovePrompt)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("send keyboard: %w", err)
	}
	return nil
}

func (s *TelegramServer) handleRemoveCallback(cb *tgbotapi.CallbackQuery) error {
	if cb.Message == nil || !s.policy.IsOwner(cb.From.ID) {
		return nil
	}

	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	if cb.Data == cancelCallback {
		if err := s.editText(chatID, messageID, s.msgs.RemoveAborted); err != nil {
			return err
		}
		_, err := s.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
		return err
	}

	if !strings.HasPrefix(cb.Data, removeCallbackPrefix) {
		return nil
	}
	name := strings.TrimPrefix(cb.Data, removeCallbackPrefix)

	if _, err := s.bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		s.logger.Warn("answer callback failed", "error", err)
	}

	if err := s.allowList.Remove(name); err != nil {
		if errors.Is(err, domain.ErrNotListed) {
			// Stale keyboard: the user was already removed
			return s.editText(chatID, messageID, fmt.Sprintf(s.msgs.RemoveGone, name))
		}
		return err
	}
	return s.editText(chatID, messageID, fmt.Sprintf(s.msgs.RemoveDone, name))
}

// send delivers a text message, optionally replying to another message.
// A markdown parse rejection is retried as plain text.
func (s *TelegramServer) send(chatID int64, replyTo int, text string, markdown bool) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if replyTo != 0 {
		msg.ReplyToMessageID = replyTo
	}
	if markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}

	_, err := s.bot.Send(msg)
	if err != nil && markdown {
		s.logger.Warn("markdown send failed, retrying as plain text", "error", err)
		msg.ParseMode = ""
		_, err = s.bot.Send(msg)
	}
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (s *TelegramServer) editText(chatID int64, messageID int, text string) error {
	if _, err := s.bot.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

func (s *TelegramServer) sendTyping(chatID int64) {
	if _, err := s.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		s.logger.Warn("send typing action failed", "error", err)
	}
}

// urlFetch downloads a platform file URL into the staging writer
func (s *TelegramServer) urlFetch(url string) repo.FetchFunc {
	return func(ctx context.Context, w io.Writer) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("build download request: %w", err)
		}
		resp, err := s.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("download file: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("download file: unexpected status %s", resp.Status)
		}
		if _, err := io.Copy(w, resp.Body); err != nil {
			return fmt.Errorf("write staged file: %w", err)
		}
		return nil
	}
}

// quotedMedia extracts the downloadable payload of a quoted message
func quotedMedia(m *tgbotapi.Message) (fileID string, fileSize int64) {
	switch {
	case m.Video != nil:
		return m.Video.FileID, int64(m.Video.FileSize)
	case m.Audio != nil:
		return m.Audio.FileID, int64(m.Audio.FileSize)
	case m.Document != nil:
		return m.Document.FileID, int64(m.Document.FileSize)
	}
	return "", 0
}

// telegramSink adapts the bot API to the streaming sink interface
type telegramSink struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// Send creates the streamed answer's outbound message
func (s *telegramSink) Send(ctx context.Context, text string, markdown bool) (int, error) {
	msg := tgbotapi.NewMessage(s.chatID, text)
	if markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	sent, err := s.bot.Send(msg)
	if err != nil && markdown {
		// Mid-stream text routinely holds unbalanced markdown; fall
		// back to plain so the first chunk still gets out.
		msg.ParseMode = ""
		sent, err = s.bot.Send(msg)
	}
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// Edit replaces the streamed answer in place
func (s *telegramSink) Edit(ctx context.Context, messageID int, text string, markdown bool) error {
	edit := tgbotapi.NewEditMessageText(s.chatID, messageID, text)
	if markdown {
		edit.ParseMode = tgbotapi.ModeMarkdown
	}
	if _, err := s.bot.Send(edit); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return repo.ErrMessageNotModified
		}
		return err
	}
	return nil
}
