package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"examprep/internal/framework"
	"examprep/internal/output"
	"examprep/internal/services"
	"examprep/internal/version"
	"examprep/pkg/preptypes"
)

// Output formats for generate and ask.
const (
	formatMarkdown = "markdown"
	formatText     = "text"
	formatJSON     = "json"
)

func validateFormat(format string) error {
	switch format {
	case formatMarkdown, formatText, formatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported format %q (supported: markdown, text, json)", format)
	}
}

func newGenerateCommand(opts *rootOptions, load appLoader) *cobra.Command {
	var format string
	var copyText bool

	cmd := &cobra.Command{
		Use:   "generate <topic>",
		Short: "Generate a study framework for a topic",
		Long: `Generate a web-grounded study framework for a syllabus topic.
Requires a logged-in account; the topic is added to that account's history.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			return withApp(opts, load, func(a *app) error {
				result, err := a.workspace.Generate(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				if err := a.printFramework(result, format); err != nil {
					return err
				}
				if copyText {
					a.copyFramework(result)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", formatMarkdown, "Output format (markdown|text|json)")
	cmd.Flags().BoolVar(&copyText, "copy", false, "Copy the plain-text framework to the clipboard")
	return cmd
}

// outputFormat makes --json win over the per-command format.
func (a *app) outputFormat(format string) string {
	if a.printer.Mode() == output.ModeJSON {
		return formatJSON
	}
	return format
}

func (a *app) printFramework(result *preptypes.FrameworkResult, format string) error {
	switch a.outputFormat(format) {
	case formatJSON:
		return a.printer.WriteJSON(result)
	case formatText:
		a.printer.WriteRaw(framework.PlainText(result.Topic, result.Data))
		return nil
	default:
		rendered, err := a.markdown.RenderFramework(result)
		if err != nil {
			return err
		}
		a.printer.WriteRaw(rendered)
		return nil
	}
}

func (a *app) copyFramework(result *preptypes.FrameworkResult) {
	if err := output.CopyToClipboard(framework.PlainText(result.Topic, result.Data)); err != nil {
		a.printer.Warning("Could not copy to clipboard: " + err.Error())
		return
	}
	a.printer.Success("Framework copied to clipboard.")
}

func newAskCommand(opts *rootOptions, load appLoader) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "ask <topic> <question>",
		Short: "Ask a follow-up question about a topic",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			return withApp(opts, load, func(a *app) error {
				result, err := a.workspace.AskFollowUp(cmd.Context(), args[0], strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				switch a.outputFormat(format) {
				case formatJSON:
					return a.printer.WriteJSON(result)
				case formatText:
					a.printer.WriteRaw(result.Answer + "\n")
					for i, source := range result.Sources {
						a.printer.Printf("[%d] %s %s\n", i+1, source.Title, source.URI)
					}
					return nil
				default:
					rendered, err := a.markdown.RenderFollowUp(result)
					if err != nil {
						return err
					}
					a.printer.WriteRaw(rendered)
					return nil
				}
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", formatMarkdown, "Output format (markdown|text|json)")
	return cmd
}

func newSignUpCommand(opts *rootOptions, load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "signup <email> <password>",
		Short: "Create an account and receive a verification code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, load, func(a *app) error {
				code, err := a.workspace.Auth.SignUp(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				email := services.NormalizeEmail(args[0])
				a.printer.Success("Account created for " + email + ".")
				a.printer.Inbox(output.InboxMessage{Email: email, Code: code, Expires: a.cfg.CodeTTL})
				a.printer.Info("Confirm it with: examprep confirm " + email + " <code>")
				return nil
			})
		},
	}
}

func newConfirmCommand(opts *rootOptions, load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <email> <code>",
		Short: "Verify a new account and log in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, load, func(a *app) error {
				session, err := a.workspace.Auth.ConfirmSignUp(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				a.printer.Success("Email verified. Logged in as " + session.Email + ".")
				return nil
			})
		},
	}
}

func newLogInCommand(opts *rootOptions, load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Log in to a verified account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, load, func(a *app) error {
				session, err := a.workspace.Auth.LogIn(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				a.printer.Success("Logged in as " + session.Email + ".")
				return nil
			})
		},
	}
}

func newLogOutCommand(opts *rootOptions, load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, load, func(a *app) error {
				a.workspace.Auth.LogOut(cmd.Context())
				a.printer.Success("Logged out.")
				return nil
			})
		},
	}
}

func newWhoAmICommand(opts *rootOptions, load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, load, func(a *app) error {
				session := a.workspace.Auth.GetCurrentUser(cmd.Context())
				if session == nil {
					a.printer.Muted("Not logged in.")
					return nil
				}
				a.printer.Highlight(session.Email)
				return nil
			})
		},
	}
}

func newHistoryCommand(opts *rootOptions, load appLoader) *cobra.Command {
	list := func(cmd *cobra.Command, _ []string) error {
		return withApp(opts, load, func(a *app) error {
			topics, err := a.workspace.CurrentHistory(cmd.Context())
			if err != nil {
				return err
			}
			a.printer.History(topics)
			return nil
		})
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear recent topics",
		Args:  cobra.NoArgs,
		RunE:  list,
	}
	historyCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List recent topics, most recent first",
			Args:  cobra.NoArgs,
			RunE:  list,
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Forget every recent topic",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(opts, load, func(a *app) error {
					if err := a.workspace.ClearCurrentHistory(cmd.Context()); err != nil {
						return err
					}
					a.printer.Success("History cleared.")
					return nil
				})
			},
		},
	)
	return historyCmd
}

func newVersionCommand() *cobra.Command {
	var detailed bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if detailed {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetDetailedVersion())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.GetFormattedVersion())
		},
	}
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Show build and runtime details")
	return cmd
}

func newConfigCommand(opts *rootOptions, load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration and where it came from",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(opts, load, func(a *app) error {
				model := a.cfg.Model
				if model == "" {
					model = "(provider default)"
				}
				configFile := a.paths.ConfigFile
				if configFile == "" {
					configFile = "(none)"
				}

				a.printer.Bold("Configuration")
				a.printer.Println("Provider:       " + a.cfg.Provider)
				a.printer.Println("Model:          " + model)
				a.printer.Println("Storage:        " + a.cfg.Storage.Backend)
				a.printer.Println("Server address: " + a.cfg.ServerAddr)
				a.printer.Println("Config file:    " + configFile)
				a.printer.Println("Config .env:    " + envSource(a.paths.ConfigEnvPath, a.paths.ConfigEnvLoaded))
				a.printer.Println("Local .env:     " + envSource(a.paths.LocalEnvPath, a.paths.LocalEnvLoaded))
				return nil
			})
		},
	}
}

func envSource(path string, loaded bool) string {
	if !loaded {
		return "(not loaded)"
	}
	return path
}

func newProvidersCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List supported LLM providers and their default models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog := services.NewCatalogService()
			if err := catalog.Initialize(); err != nil {
				return err
			}
			providers, err := catalog.GetProviders()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(providers)
			}
			for _, p := range providers {
				fmt.Fprintf(out, "%-10s %-28s %s\n", p.ID, p.DefaultModel, p.DisplayName)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the catalog as JSON")
	return cmd
}
