package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codeWithUali/laradoc/internal/ai"
	"github.com/codeWithUali/laradoc/internal/chat"
)

const chatHelp = `Commands:
  /load <module>  load a documentation module as context
  /modules        list the documented modules
  /history        show the conversation
  /clear          forget the conversation and the loaded module
  /exit           leave the chat`

// ChatCmd returns the chat command
func ChatCmd() *cobra.Command {
	var module string

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask questions about the project documentation",
		Long: `Start an interactive conversation with the AI assistant. With a message
argument a single question is answered and the command exits.

` + chatHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			ctx := cmd.Context()
			store := app.Store()
			session := chat.NewSession(app.AI(), store, app.Config.Chatbot)

			if module != "" {
				if err := loadModule(app, session, module); err != nil {
					return err
				}
			}

			if len(args) > 0 {
				return ask(cmd, app, session, strings.Join(args, " "))
			}

			prompt := color.New(color.FgGreen, color.Bold).Sprint("you> ")
			app.println(color.New(color.FgCyan).Sprint(chat.Greeting))
			app.println(chatHelp)
			app.println()

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				app.printf("%s", prompt)
				if !scanner.Scan() {
					app.println()
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())

				switch {
				case line == "":
					continue
				case line == "/exit" || line == "/quit":
					app.println("Bye!")
					return nil
				case line == "/clear":
					app.println(session.Clear())
				case line == "/history":
					app.printf("%s", session.Transcript())
				case line == "/modules":
					modules, err := store.List()
					if err != nil {
						app.Log.Error("❌ %v", err)
						continue
					}
					app.println(strings.Join(modules, ", "))
				case strings.HasPrefix(line, "/load"):
					name := strings.TrimSpace(strings.TrimPrefix(line, "/load"))
					if name == "" {
						app.println("Usage: /load <module>")
						continue
					}
					if err := loadModule(app, session, name); err != nil {
						app.Log.Error("❌ %v", err)
					}
				case strings.HasPrefix(line, "/"):
					app.println(chatHelp)
				default:
					if err := ask(cmd, app, session, line); err != nil {
						app.Log.Error("❌ %v", err)
					}
				}

				if ctx.Err() != nil {
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVarP(&module, "module", "m", "", "Load a documentation module before the first question")

	return cmd
}

func loadModule(app *App, session *chat.Session, module string) error {
	loaded, err := session.LoadModule(module)
	if err != nil {
		return fmt.Errorf("failed to load module %s: %w", module, err)
	}
	app.printf("📚 Loaded %s (%d characters)\n", loaded.Title, len([]rune(loaded.Content)))
	return nil
}

// ask sends one message. A provider failure prints the apology reply and
// is not an error for the command.
func ask(cmd *cobra.Command, app *App, session *chat.Session, message string) error {
	resp, err := session.Send(cmd.Context(), message)
	if err != nil {
		var fallback *ai.FallbackError
		if !errors.As(err, &fallback) {
			return err
		}
		app.Log.Warn("⚠️  %v", err)
	}

	label := color.New(color.FgCyan, color.Bold).Sprintf("%s> ", resp.Provider)
	app.printf("%s%s\n\n", label, resp.Response)
	return nil
}
