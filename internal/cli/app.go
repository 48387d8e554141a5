package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
)

type App struct {
	client *Client
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(serverAddr string) *App {
	return &App{
		client: NewClient(serverAddr),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// Run dispatches one subcommand: register, login, bootstrap or ls.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: codepad-cli [-s addr] register|login|bootstrap|ls")
	}

	switch args[0] {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "bootstrap":
		return a.Bootstrap(ctx)
	case "ls":
		return a.List(ctx)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *App) Register(ctx context.Context) error {
	email, err := a.promptLine("Enter email")
	if err != nil {
		return err
	}
	name, err := a.promptLine("Enter display name")
	if err != nil {
		return err
	}
	password, err := a.promptPassword()
	if err != nil {
		return err
	}

	if err := a.client.Register(ctx, email, name, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	if err := a.login(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Success!")
	return nil
}

func (a *App) login(ctx context.Context) error {
	email, err := a.promptLine("Enter email")
	if err != nil {
		return err
	}
	password, err := a.promptPassword()
	if err != nil {
		return err
	}
	return a.client.Login(ctx, email, password)
}

// Bootstrap provisions the storage area after signing in.
func (a *App) Bootstrap(ctx context.Context) error {
	if err := a.login(ctx); err != nil {
		return err
	}

	created, err := a.client.Bootstrap(ctx)
	if err != nil {
		return err
	}

	if created {
		fmt.Fprintln(a.out, "Storage area created")
	} else {
		fmt.Fprintln(a.out, "Storage area already exists")
	}
	return nil
}

// List prints the signed-in user's files.
func (a *App) List(ctx context.Context) error {
	if err := a.login(ctx); err != nil {
		return err
	}

	files, err := a.client.ListFiles(ctx)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		fmt.Fprintln(a.out, "No files")
		return nil
	}

	for _, f := range files {
		fmt.Fprintf(a.out, "%s\t%s\t%s\t%s\n",
			f.ID, f.Name, f.Language, f.LastModified.Format("2006-01-02 15:04:05"))
	}
	return nil
}
