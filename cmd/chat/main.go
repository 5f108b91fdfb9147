// Command chat is a terminal client for the lobby chat service: log
// in, watch the lobby and direct messages scroll by, and send lines
// back.
//
//	chat -user alice -pass secret
//	/open 2          focus the conversation with user 2
//	/dm 2 hello      one-off direct message
//	/lobby           back to the lobby
//	/unread          show unread counters
//	/history         load an older page of the focused conversation
//	/quit
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"lobbychat/internal/api"
	"lobbychat/internal/auth"
	"lobbychat/internal/config"
	"lobbychat/internal/session"
)

func main() {
	username := flag.String("user", "", "username")
	password := flag.String("pass", "", "password")
	register := flag.Bool("register", false, "create the account first")
	flag.Parse()

	cfg := config.LoadClient()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
	if !cfg.IsDevelopment() {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: chat -user NAME -pass PASSWORD [-register]")
		os.Exit(2)
	}

	ctx := context.Background()
	authClient := auth.NewClient(cfg.ServerURL)
	if *register {
		if err := authClient.Register(ctx, *username, *password); err != nil {
			logger.Warn().Err(err).Msg("register failed, trying login anyway")
		}
	}
	ident, err := authClient.Login(ctx, *username, *password)
	if err != nil {
		logger.Fatal().Err(err).Msg("login failed")
	}
	logger.Info().Int("id", ident.ID).Str("user", ident.Username).Msg("logged in")

	rest := api.NewClient(cfg.ServerURL, authClient)
	sess := session.New(session.Config{
		WSURL:  cfg.WSURL,
		Logger: logger,
	}, ident.ID, authClient, rest, rest)
	defer sess.Close()

	// Seed the lobby with the latest page before going live.
	if err := sess.LoadOlderLobby(ctx, 0, 50); err == nil {
		for _, m := range sess.Lobby() {
			printMessage(session.Envelope{Msg: m, Kind: session.ConvLobby}, ident.ID)
		}
	}
	sess.Connect()

	go func() {
		for env := range sess.Inbound() {
			printMessage(env, ident.ID)
		}
	}()

	focused := 0 // counterpart on screen, 0 = lobby
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/quit":
			sess.Disconnect()
			return

		case line == "/lobby":
			focused = 0
			sess.SetActive(0)
			fmt.Println("-- lobby --")

		case line == "/unread":
			for id, n := range sess.UnreadCounts() {
				fmt.Printf("  user %d: %d unread\n", id, n)
			}
			fmt.Printf("  total: %d\n", sess.TotalUnread())

		case line == "/history":
			loadHistory(ctx, sess, focused)

		case strings.HasPrefix(line, "/open "):
			id, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "/open ")))
			if err != nil || id <= 0 {
				fmt.Println("usage: /open <user-id>")
				continue
			}
			focused = id
			sess.SetActive(id)
			for _, m := range sess.Private(id) {
				printMessage(session.Envelope{Msg: m, Kind: session.ConvPrivate, Counterpart: id}, ident.ID)
			}
			fmt.Printf("-- direct with user %d --\n", id)

		case strings.HasPrefix(line, "/dm "):
			parts := strings.SplitN(strings.TrimPrefix(line, "/dm "), " ", 2)
			if len(parts) != 2 {
				fmt.Println("usage: /dm <user-id> <text>")
				continue
			}
			id, err := strconv.Atoi(parts[0])
			if err != nil || id <= 0 {
				fmt.Println("usage: /dm <user-id> <text>")
				continue
			}
			if err := sess.SendTo(id, parts[1]); err != nil {
				fmt.Println("!", err)
			}

		default:
			var err error
			if focused == 0 {
				err = sess.Send(line)
			} else {
				err = sess.SendTo(focused, line)
			}
			if err != nil {
				fmt.Println("!", err)
			}
		}
	}
}

func loadHistory(ctx context.Context, sess *session.Session, focused int) {
	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	var err error
	if focused == 0 {
		err = sess.LoadOlderLobby(fetchCtx, len(sess.Lobby()), 50)
	} else {
		err = sess.LoadOlderPrivate(fetchCtx, focused, len(sess.Private(focused)), 50)
	}
	if err != nil {
		fmt.Println("!", err)
		return
	}
	fmt.Println("-- older messages loaded --")
}

func printMessage(env session.Envelope, selfID int) {
	name := fmt.Sprintf("user %d", env.Msg.UserID)
	if env.Msg.Sender != nil {
		name = env.Msg.Sender.Username
	}
	if env.Msg.UserID == selfID {
		name = "me"
	}
	prefix := ""
	if env.Kind == session.ConvPrivate {
		prefix = fmt.Sprintf("[dm %d] ", env.Counterpart)
	}
	stamp := env.Msg.CreatedAt.Local().Format("15:04")
	fmt.Printf("%s%s %s: %s\n", prefix, stamp, name, env.Msg.Content)
}
