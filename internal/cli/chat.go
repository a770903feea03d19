package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/faycal55/respira/internal/chat"
	"github.com/faycal55/respira/internal/client"
	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/pkg/pagination"
)

func newChatCmd(opts Options) *cobra.Command {
	c := &cobra.Command{Use: "chat", Short: "Talk with the AI companion"}
	c.AddCommand(newChatSendCmd(opts), newChatListCmd(opts), newChatShowCmd(opts))
	return c
}

func newChatSendCmd(opts Options) *cobra.Command {
	var (
		conversationID string
		theme          string
		audioOut       string
		audioIn        string
		fresh          bool
	)
	cmd := &cobra.Command{
		Use:   "send <text>",
		Short: "Send a message and print the reply",
		Long:  "Send a message to the most recent conversation, or to a new one with --new, and print the assistant's reply. With --audio-in the message is transcribed from a recording instead.",
		Args:  func(cmd *cobra.Command, args []string) error {
			if audioIn != "" && len(args) > 0 {
				return errors.New("pass either a message or --audio-in, not both")
			}
			if audioIn == "" && len(args) == 0 {
				return errors.New("nothing to send")
			}
			return nil
		},
		RunE: runE(opts, func(cmd *cobra.Command, e *env, args []string) error {
			if err := e.requireSignIn(); err != nil {
				return err
			}
			ctx := cmd.Context()

			text := strings.Join(args, " ")
			if audioIn != "" {
				heard, err := transcribe(cmd, e, audioIn)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "vous: %s\n", heard)
				text = heard
			}

			senderOpts := []chat.Option{chat.WithLogger(e.logger), chat.WithCatalog(e.catalog)}
			if audioOut != "" {
				senderOpts = append(senderOpts, chat.WithSpeaker(&fileSpeaker{client: e.client, path: audioOut}))
			}
			alert := chat.AlertFunc(func(title, message string) {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", title, message)
			})
			sender := chat.NewSender(e.client, e.client, alert, e.stores.Chat, e.stores.Settings, senderOpts...)

			if theme != "" {
				if err := sender.SetTheme(theme); err != nil {
					return err
				}
			}

			switch {
			case fresh:
				sender.StartNew()
			case conversationID != "":
				if err := sender.Select(ctx, conversationID); err != nil {
					return err
				}
			default:
				if _, err := sender.LoadConversations(ctx); err != nil {
					return err
				}
			}

			reply, err := sender.Send(ctx, text)
			switch {
			case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrSendInFlight):
				return err
			case err != nil:
				return &reportedError{err: err}
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
			return nil
		}),
	}
	cmd.Flags().StringVar(&conversationID, "conversation", "", "conversation id to continue")
	cmd.Flags().BoolVar(&fresh, "new", false, "start a new conversation")
	cmd.Flags().StringVar(&theme, "theme", "", "conversation theme id, e.g. anxiety or sleep")
	cmd.Flags().StringVar(&audioOut, "audio-out", "", "write the spoken reply to this file when voice is enabled")
	cmd.Flags().StringVar(&audioIn, "audio-in", "", "transcribe this recording and send it as the message")
	return cmd
}

func transcribe(cmd *cobra.Command, e *env, path string) (string, error) {
	audio, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read recording: %w", err)
	}
	resp, err := e.client.SpeechToText(cmd.Context(), domain.STTRequest{
		Audio:    base64.StdEncoding.EncodeToString(audio),
		Language: e.stores.Settings.Current().Language,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", errors.New("nothing was recognised in the recording")
	}
	return resp.Text, nil
}

func newChatListCmd(opts Options) *cobra.Command {
	p := pagination.DefaultParams()
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your conversations, most recent first",
		RunE: runE(opts, func(cmd *cobra.Command, e *env, _ []string) error {
			if err := e.requireSignIn(); err != nil {
				return err
			}
			res, err := e.client.ConversationsPage(cmd.Context(), p)
			if err != nil {
				return err
			}
			if len(res.Data) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no conversations")
				return nil
			}
			for _, c := range res.Data {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", c.ID, c.UpdatedAt.Local().Format("2006-01-02 15:04"), c.Title)
			}
			printPageFooter(cmd, res.Page, res.TotalPages, res.TotalCount)
			return nil
		}),
	}
	cmd.Flags().IntVar(&p.Page, "page", p.Page, "page number")
	cmd.Flags().IntVar(&p.PerPage, "per-page", p.PerPage, "conversations per page")
	return cmd
}

func newChatShowCmd(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <conversation-id>",
		Short: "Print a conversation transcript",
		Args:  cobra.ExactArgs(1),
		RunE: runE(opts, func(cmd *cobra.Command, e *env, args []string) error {
			if err := e.requireSignIn(); err != nil {
				return err
			}
			msgs, err := e.client.ListMessages(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, m := range msgs {
				who := "vous"
				if m.Role == domain.RoleAssistant {
					who = "respira"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n", m.CreatedAt.Local().Format("15:04"), who, m.Content)
			}
			return nil
		}),
	}
}

// fileSpeaker synthesises replies through the API and writes the audio to a file.
type fileSpeaker struct {
	client *client.Client
	path   string
}

func (s *fileSpeaker) Speak(ctx context.Context, text, voiceID string) error {
	resp, err := s.client.TextToSpeech(ctx, domain.TTSRequest{Text: text, VoiceID: voiceID})
	if err != nil {
		return err
	}
	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return fmt.Errorf("decode audio: %w", err)
	}
	return os.WriteFile(s.path, audio, 0o600)
}
