package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/parley-ai/parley/pkg/chat"
	"github.com/parley-ai/parley/pkg/engine"
	toolmcp "github.com/parley-ai/parley/pkg/tools/mcp"
)

// --- chat ---

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Talk to the model, resolving tool calls along the way",
	Long: `Talk to the model, resolving tool calls along the way.

With a message argument, runs a single turn and exits. Without one,
starts an interactive session that ends on EOF or "exit".

Examples:
  parley chat "What is the weather in Berlin?"
  parley chat --model qwen3-32b`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if model, _ := cmd.Flags().GetString("model"); model != "" {
			cfg.Conversation.Model = model
		}
		if prompt, _ := cmd.Flags().GetString("prompt"); prompt != "" {
			cfg.Conversation.Prompt = prompt
		}
		return runChat(strings.Join(args, " "))
	},
}

func init() {
	chatCmd.Flags().String("model", "", "override the configured model")
	chatCmd.Flags().String("prompt", "", "override the configured system prompt")
}

func runChat(message string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := newBackend(cfg.Backend)
	if err != nil {
		return err
	}
	defer b.Close()

	sessionID := uuid.NewString()
	logger := slog.With("session_id", sessionID)

	// Without a configured model, take the first one the server reports.
	// Probe failures are not fatal; most servers accept an empty model id
	// and use whatever is loaded.
	if cfg.Conversation.Model == "" {
		if models, err := b.ListModels(ctx); err != nil {
			logger.Warn("could not list models", "error", err)
		} else if len(models) > 0 {
			cfg.Conversation.Model = models[0].ID
		}
	}

	executor := connectMCPServers(ctx)

	opts := []engine.Option{engine.WithAttachmentStore(&chat.FileStore{Root: "."})}
	if executor != nil {
		defer executor.Close()
		opts = append(opts, engine.WithExecutor(executor))
	}

	eng, err := engine.New(b, opts...)
	if err != nil {
		return err
	}

	var specs []chat.ToolSpec
	if executor != nil {
		specs = executor.DiscoveredTools()
		if len(specs) > 0 {
			logger.Info("tools available", "count", len(specs))
		}
	}

	turnOpts := engine.Options{
		Model:             cfg.Conversation.Model,
		Temperature:       cfg.Conversation.Temperature,
		ContextLength:     cfg.Conversation.ContextLength,
		MaxHistory:        cfg.Conversation.MaxHistory,
		ParallelToolCalls: cfg.Conversation.ParallelToolCalls,
		StripEmojis:       cfg.Conversation.StripEmojis,
		MCPServers:        cfg.Integrations,
	}

	log := &chat.Log{}
	if cfg.Conversation.Prompt != "" {
		log.Append(chat.Message{Role: chat.RoleSystem, Content: cfg.Conversation.Prompt})
	}

	logger.Info("session started", "backend", b.Name(), "model", cfg.Conversation.Model)

	if message != "" {
		return runTurn(ctx, eng, log, specs, turnOpts, message)
	}

	fmt.Println("parley interactive session (exit with \"exit\" or Ctrl-D)")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		if err := runTurn(ctx, eng, log, specs, turnOpts, line); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			printError("%v", err)
		}
	}
	return scanner.Err()
}

// runTurn appends the user message, drives the turn to completion, and
// prints the assistant's final reply.
func runTurn(ctx context.Context, eng *engine.Engine, log *chat.Log, specs []chat.ToolSpec, opts engine.Options, message string) error {
	log.Append(chat.Message{Role: chat.RoleUser, Content: message})
	if err := eng.DriveTurn(ctx, log, specs, opts); err != nil {
		return err
	}
	if last := log.Last(); last != nil && last.Role == chat.RoleAssistant && last.Content != "" {
		fmt.Println(last.Content)
	}
	return nil
}

// connectMCPServers connects the configured MCP servers. Servers that
// fail to connect are skipped with a warning so one bad endpoint does
// not take the session down. Returns nil when no server is usable.
func connectMCPServers(ctx context.Context) *toolmcp.Executor {
	if len(cfg.MCPServers) == 0 {
		return nil
	}

	clients := make(map[string]*toolmcp.Client)
	for _, sc := range cfg.MCPServers {
		client := toolmcp.NewClient(sc)
		if err := client.Connect(ctx); err != nil {
			slog.Warn("skipping MCP server", "server", sc.Name, "error", err)
			continue
		}
		clients[sc.Name] = client
		slog.Info("connected to MCP server", "server", sc.Name)
	}
	if len(clients) == 0 {
		return nil
	}
	return toolmcp.NewExecutor(clients)
}

// --- models ---

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models served by the configured backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		b, err := newBackend(cfg.Backend)
		if err != nil {
			return err
		}
		defer b.Close()

		models, err := b.ListModels(ctx)
		if err != nil {
			return fmt.Errorf("listing models: %w", err)
		}
		if len(models) == 0 {
			fmt.Println("no models available")
			return nil
		}
		for _, m := range models {
			if m.OwnedBy != "" {
				fmt.Printf("%s\t(%s)\n", m.ID, m.OwnedBy)
			} else {
				fmt.Println(m.ID)
			}
		}
		return nil
	},
}

func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
