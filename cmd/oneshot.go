package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/lectern0/lectern/internal/backend"
	"github.com/lectern0/lectern/internal/notes"
)

// One-shot commands run a single stage of the workflow and print the
// identifiers needed to continue: upload prints a session id, generate
// and chat consume one.

var (
	labelStyle = color.New(color.FgCyan, color.Bold)
	okStyle    = color.New(color.FgGreen)
	warnStyle  = color.New(color.FgYellow)
)

// runUpload uploads a file, opens a session for it, and prints both ids.
func runUpload(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: lectern upload <file> [username]")
	}
	path := args[0]

	cfg, _, svc, err := bootstrap(false)
	if err != nil {
		return err
	}

	username := cfg.Username
	if len(args) > 1 {
		username = args[1]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	up, err := svc.Upload(ctx, username, path)
	if err != nil {
		return fmt.Errorf("%s", backend.Notice(err))
	}
	labelStyle.Print("document: ")
	fmt.Printf("%s (%s of text)\n", up.DocumentID, notes.FormatFileSize(int64(up.TextLength)))

	sess, err := svc.CreateSession(ctx)
	if err != nil {
		return fmt.Errorf("%s", backend.Notice(err))
	}
	labelStyle.Print("session:  ")
	fmt.Println(sess.SessionID)

	okStyle.Println("Ready. Generate notes with: lectern generate " + sess.SessionID)
	return nil
}

// runGenerate generates notes in an existing session and saves the
// markdown artifact.
func runGenerate(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: lectern generate <session> [format] [custom prompt]")
	}
	sessionID := args[0]

	formatKey := backend.DefaultFormatKey
	if len(args) > 1 {
		formatKey = args[1]
	}
	customPrompt := ""
	if len(args) > 2 {
		customPrompt = strings.Join(args[2:], " ")
	}

	_, _, svc, err := bootstrap(false)
	if err != nil {
		return err
	}
	if err := svc.UseExistingSession(sessionID); err != nil {
		return fmt.Errorf("%s", backend.Notice(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	text, err := svc.Generate(ctx, formatKey, customPrompt)
	if err != nil {
		return fmt.Errorf("%s", backend.Notice(err))
	}
	fmt.Println(text)

	path, err := svc.Download(ctx, notes.ArtifactMarkdown)
	if err != nil {
		warnStyle.Println("Notes were generated but not saved: " + backend.Notice(err))
		return nil
	}
	okStyle.Println("Saved " + path)
	return nil
}

// runChat asks a single question in an existing session.
func runChat(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: lectern chat <session> <question>")
	}
	sessionID := args[0]
	question := strings.Join(args[1:], " ")

	_, _, svc, err := bootstrap(false)
	if err != nil {
		return err
	}
	if err := svc.UseExistingSession(sessionID); err != nil {
		return fmt.Errorf("%s", backend.Notice(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	answer, err := svc.Chat(ctx, question)
	if err != nil {
		return fmt.Errorf("%s", backend.Notice(err))
	}
	fmt.Println(answer)
	return nil
}
