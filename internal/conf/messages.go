package conf

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Messages contains all user-facing strings and the system persona.
// Every field can be overridden from a YAML file; unset fields keep
// their defaults.
type Messages struct {
	Persona string `yaml:"persona"`

	Greeting       string `yaml:"greeting"`
	Help           string `yaml:"help"`
	NotAllowed     string `yaml:"not_allowed"`
	NotOwner       string `yaml:"not_owner"`
	EmptyAnswer    string `yaml:"empty_answer"`
	ResetDone      string `yaml:"reset_done"`
	ResetHello     string `yaml:"reset_hello"`
	ResetNothing   string `yaml:"reset_nothing"`
	ImageUsage     string `yaml:"image_usage"`
	ImageCaption   string `yaml:"image_caption"`
	TranscribeHint string `yaml:"transcribe_hint"`
	InvalidQuoted  string `yaml:"invalid_quoted"`
	FileNotAllowed string `yaml:"file_not_allowed"`
	FileTooLarge   string `yaml:"file_too_large"`
	AddUserUsage   string `yaml:"add_user_usage"`
	AddUserOne     string `yaml:"add_user_one"`
	AddUserExists  string `yaml:"add_user_exists"`
	AddUserDone    string `yaml:"add_user_done"`
	RemovePrompt   string `yaml:"remove_prompt"`
	RemoveOnlyYou  string `yaml:"remove_only_you"`
	RemoveDone     string `yaml:"remove_done"`
	RemoveGone     string `yaml:"remove_gone"`
	RemoveAborted  string `yaml:"remove_aborted"`
	NothingHeard   string `yaml:"nothing_heard"`
}

// DefaultMessages returns the built-in strings
func DefaultMessages() *Messages {
	return &Messages{
		Persona: "You are ChatGPT, a large language model trained by OpenAI. Respond conversationally",

		Greeting:       "🤖 This bot is connected to OpenAI's API. To get an idea of what this bot is capable of, type /help.",
		Help:           defaultHelp,
		NotAllowed:     "😡 You're not allowed to use this bot!",
		NotOwner:       "🚫 You're not allowed to use this command.",
		EmptyAnswer:    "🤐 The AI had nothing to say. Please try again.",
		ResetDone:      "🤓 Our conversation has been reset, and now it's like we're two people who have just met and don't know each other yet.",
		ResetHello:     "🤖 Hi, I'm ChatGPT. What can I do to help you?",
		ResetNothing:   "😡 This is our first conversation, what do you want to reset you stoopid?",
		ImageUsage:     "🥺 Please enter the prompt (`/image <your-prompt-here>`)",
		ImageCaption:   "🧑🏽‍🎨 image no %d of %s",
		TranscribeHint: "📎 To use this command, you need to reply/quote a file.",
		InvalidQuoted:  "😔 Invalid quoted message",
		FileNotAllowed: "😔 File not allowed",
		FileTooLarge:   "⚠️ File size can't be more than 25 MB.",
		AddUserUsage:   "🥺 Please specify who to add (`/adduser <username>`)",
		AddUserOne:     "🚫 Can only add 1 user at a time.",
		AddUserExists:  "🚫 %s is already on the list.",
		AddUserDone:    "👌🏽 %s has been added to list.",
		RemovePrompt:   "Please select a user to remove:",
		RemoveOnlyYou:  "You're the only user of this bot.",
		RemoveDone:     "🗑️ %s has been removed and can no longer use this bot.",
		RemoveGone:     "🤷 %s is no longer on the list.",
		RemoveAborted:  "❌ Aborting request.",
		NothingHeard:   "🤷 Couldn't make out anything intelligible in that audio.",
	}
}

// LoadMessages loads message overrides from a YAML file. A missing
// path or file yields the defaults.
func LoadMessages(path string) (*Messages, error) {
	msgs := DefaultMessages()
	if path == "" {
		return msgs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return msgs, nil
		}
		return msgs, fmt.Errorf("read messages config: %w", err)
	}

	var overrides Messages
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return msgs, fmt.Errorf("parse messages config: %w", err)
	}
	msgs.merge(&overrides)
	return msgs, nil
}

func (m *Messages) merge(o *Messages) {
	merge := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	merge(&m.Persona, o.Persona)
	merge(&m.Greeting, o.Greeting)
	merge(&m.Help, o.Help)
	merge(&m.NotAllowed, o.NotAllowed)
	merge(&m.NotOwner, o.NotOwner)
	merge(&m.EmptyAnswer, o.EmptyAnswer)
	merge(&m.ResetDone, o.ResetDone)
	merge(&m.ResetHello, o.ResetHello)
	merge(&m.ResetNothing, o.ResetNothing)
	merge(&m.ImageUsage, o.ImageUsage)
	merge(&m.ImageCaption, o.ImageCaption)
	merge(&m.TranscribeHint, o.TranscribeHint)
	merge(&m.InvalidQuoted, o.InvalidQuoted)
	merge(&m.FileNotAllowed, o.FileNotAllowed)
	merge(&m.FileTooLarge, o.FileTooLarge)
	merge(&m.AddUserUsage, o.AddUserUsage)
	merge(&m.AddUserOne, o.AddUserOne)
	merge(&m.AddUserExists, o.AddUserExists)
	merge(&m.AddUserDone, o.AddUserDone)
	merge(&m.RemovePrompt, o.RemovePrompt)
	merge(&m.RemoveOnlyYou, o.RemoveOnlyYou)
	merge(&m.RemoveDone, o.RemoveDone)
	merge(&m.RemoveGone, o.RemoveGone)
	merge(&m.RemoveAborted, o.RemoveAborted)
	merge(&m.NothingHeard, o.NothingHeard)
}

const defaultHelp = `
*What this bot can do*:

✅ Answer your questions (*ChatGPT*) - Simply type your question and send it, and the AI will provide an answer within a few seconds.

✅ Make you 2 really cool AI-generated images (*DALL-E*) - Just type ` + "`/image <your-prompt-here>`" + ` and the AI will generate two images for you.

✅ Get a transcript of a given audio/video (*Whisper*) - There are two ways to transcribe audio. *The first one* is by recording an audio message and sending it to the bot, and *the second one* is by uploading an audio/video file and quoting the uploaded file then type ` + "`/transcribe`" + `.


*Commands*:

⌨️ /image - Generate 2 AI-generated images based on a given prompt (usage: ` + "`/image <your-prompt-here>`" + `).

⌨️ /transcribe - Transcribe a quoted message.

⌨️ /reset - Reset your conversation with ChatGPT.

⌨️ /help - Show help (this menu).

*Notes*:

⚠️ The longer your conversation, the more tokens are used in each new message. So, make sure to ` + "`/reset`" + ` your conversation if you feel that your new message is not related to the previous conversation.

⚠️ For the ` + "`/transcribe`" + ` command, supported file extensions are: *mp3, mp4, mpeg, mpga, m4a, wav, and webm* with a maximum file size of *25MB*.

⚠️ For the list of languages supported by Whisper can be seen [here](https://github.com/openai/whisper#available-models-and-languages).
`
