package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/debate-hub/internal/backend"
	"github.com/wuwenbin0122/debate-hub/internal/compose"
	"github.com/wuwenbin0122/debate-hub/internal/models"
	"github.com/wuwenbin0122/debate-hub/internal/screens"
	"github.com/wuwenbin0122/debate-hub/internal/utils"
)

var (
	backendURL = flag.String("backend", "", "Debate backend base URL (defaults to BACKEND_BASE_URL)")
	timeout    = flag.Duration("timeout", 0, "Per-request timeout, 0 for none (defaults to BACKEND_TIMEOUT)")
	verbose    = flag.Bool("v", false, "Log backend calls")
)

const usage = `usage: debatecli [flags] <command>

commands:
  list                    list conversations
  show <id>               print a conversation
  send <id> <text>        post a message and print the conversation
  new <pro|con> <topic>   start a debate
`

var errUsage = errors.New("invalid arguments")

func main() {
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := godotenv.Load(); err != nil && *verbose {
		log.Printf("config: no .env file loaded: %v", err)
	}

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: failed to load: %v", err)
	}
	if *backendURL != "" {
		cfg.Backend.BaseURL = strings.TrimRight(*backendURL, "/")
	}
	if *timeout > 0 {
		cfg.Backend.Timeout = *timeout
	}

	cfg.Logging.Level = "error"
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	logger, err := utils.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("logger: failed to initialise: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := backend.NewClient(cfg.Backend, backend.WithLogger(logger))
	if err := run(ctx, client, logger, flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, errorText(err))
		os.Exit(1)
	}
}

// cliBackend is everything the commands need from the backend client.
type cliBackend interface {
	screens.ConversationSource
	screens.MessageBackend
	CreateConversation(ctx context.Context, topic string, side models.Side) (*models.Conversation, error)
}

func run(ctx context.Context, client cliBackend, logger *zap.Logger, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "list":
		return runList(ctx, client, logger)
	case "show":
		if len(args) != 2 {
			return errUsage
		}
		return runShow(ctx, client, logger, models.ConversationID(args[1]))
	case "send":
		if len(args) < 3 {
			return errUsage
		}
		return runSend(ctx, client, logger, models.ConversationID(args[1]), strings.Join(args[2:], " "))
	case "new":
		if len(args) < 3 {
			return errUsage
		}
		return runNew(ctx, client, models.ParseSide(args[1]), strings.Join(args[2:], " "))
	default:
		return errUsage
	}
}

func runList(ctx context.Context, client cliBackend, logger *zap.Logger) error {
	list := screens.NewConversationList(client, logger)
	list.Load(ctx)
	printList(os.Stdout, list.Conversations())
	return nil
}

func openDetail(ctx context.Context, client cliBackend, logger *zap.Logger, id models.ConversationID) *screens.ConversationDetail {
	list := screens.NewConversationList(client, logger)
	list.Load(ctx)

	conversation, ok := list.Select(id)
	if !ok {
		conversation = models.Conversation{ID: id}
	}

	detail := screens.NewConversationDetail(conversation, client, logger)
	detail.Load(ctx)
	return detail
}

func runShow(ctx context.Context, client cliBackend, logger *zap.Logger, id models.ConversationID) error {
	detail := openDetail(ctx, client, logger, id)
	printDetail(os.Stdout, detail.Conversation(), detail.Messages())
	return nil
}

func runSend(ctx context.Context, client cliBackend, logger *zap.Logger, id models.ConversationID, text string) error {
	detail := openDetail(ctx, client, logger, id)

	form := compose.NewForm(compose.MessageReply)
	form.SetContent(text)

	err := form.Submit(ctx, func(ctx context.Context, content string, _ models.Side) error {
		return detail.SubmitMessage(ctx, content)
	})
	if err != nil {
		return err
	}

	// Pick up the bot's reply, if the backend produced one.
	reloadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	detail.Load(reloadCtx)

	printDetail(os.Stdout, detail.Conversation(), detail.Messages())
	return nil
}

func runNew(ctx context.Context, client cliBackend, side models.Side, topic string) error {
	form := compose.NewForm(compose.NewDebate)
	form.SetSide(side)
	form.SetContent(topic)

	var created *models.Conversation
	err := form.Submit(ctx, func(ctx context.Context, content string, side models.Side) error {
		conversation, err := client.CreateConversation(ctx, content, side)
		if err != nil {
			return err
		}
		created = conversation
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Started debate %s: %s\n", created.ID, created.Topic)
	return nil
}
