package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"agent-dispatch/internal/config"
	"agent-dispatch/internal/models"
)

type chatOptions struct {
	agent  string
	prompt string
	files  []string
	inline string
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	chat := &chatOptions{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send one prompt to an agent and print the reply",
		Example: `  agent-dispatch chat --agent market_intelligence --prompt "Acme Corp" --file profile.pdf
  agent-dispatch chat --agent jd_agenet --file files=role.docx --file files=notes.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			rt, err := newRuntime(cfg, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			payload := models.Payload{Prompt: chat.prompt}

			if chat.inline != "" {
				content, err := os.ReadFile(chat.inline)
				if err != nil {
					return fmt.Errorf("read inline file: %w", err)
				}
				payload.FileName = filepath.Base(chat.inline)
				payload.FileContent = string(content)
			}

			if len(chat.files) > 0 {
				defaultSlot := ""
				if desc, err := rt.router.Describe(chat.agent); err == nil {
					defaultSlot = desc.AttachmentSlot
				}
				for _, arg := range chat.files {
					slot, file, err := readAttachment(arg, defaultSlot)
					if err != nil {
						return err
					}
					payload.Attach(slot, file)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), rt.router.Chat(cmd.Context(), chat.agent, payload))
			return nil
		},
	}

	cmd.Flags().StringVar(&chat.agent, "agent", "", "agent name")
	cmd.Flags().StringVar(&chat.prompt, "prompt", "", "prompt text")
	cmd.Flags().StringArrayVar(&chat.files, "file", nil, "attachment as [slot=]path, repeatable")
	cmd.Flags().StringVar(&chat.inline, "inline", "", "text file sent as inline file name and content")
	_ = cmd.MarkFlagRequired("agent")
	return cmd
}

// readAttachment loads a [slot=]path argument. Without a slot the file goes to
// defaultSlot.
func readAttachment(arg, defaultSlot string) (string, models.File, error) {
	slot, path := defaultSlot, arg
	if before, after, ok := strings.Cut(arg, "="); ok {
		slot, path = before, after
	}
	if slot == "" {
		return "", models.File{}, fmt.Errorf("attachment %q needs a slot (slot=path)", arg)
	}
	if path == "" {
		return "", models.File{}, errors.New("attachment path must not be empty")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", models.File{}, fmt.Errorf("read attachment: %w", err)
	}
	return slot, models.File{Name: filepath.Base(path), Content: content}, nil
}
