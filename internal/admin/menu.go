package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompt печатает вопрос и читает строку. EOF без данных — io.EOF.
func (a *Admin) prompt(question string) (string, error) {
	fmt.Fprint(a.d.Out, question)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword не показывает ввод, если In — терминал.
func (a *Admin) promptPassword(question string) (string, error) {
	f, ok := a.d.In.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return a.prompt(question)
	}
	fmt.Fprint(a.d.Out, question)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(a.d.Out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

const menuText = `
Admin menu:
1. List users
2. User details
3. Register user and issue API token
4. Create test user
5. Delete user
6. Check server status
0. Exit`

// Menu — интерактивный цикл до "0" или конца ввода. Ошибки операций
// печатаются и не прерывают цикл.
func (a *Admin) Menu(ctx context.Context) error {
	fmt.Fprintln(a.d.Out, "RAGFlow user admin")
	fmt.Fprintln(a.d.Out, strings.Repeat("=", 60))
	if !a.hasDB() {
		fmt.Fprintln(a.d.Out, "database is not configured: only registration and status are available")
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintln(a.d.Out, menuText)
		choice, err := a.prompt("\nChoose (0-6): ")
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(a.d.Out)
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case "0":
			fmt.Fprintln(a.d.Out, "bye")
			return nil
		case "1":
			_, _ = a.ListUsers(ctx)
		case "2":
			if id, _ := a.prompt("User id: "); id != "" {
				_, _ = a.UserDetails(ctx, id)
			}
		case "3":
			a.menuRegister(ctx)
		case "4":
			suffix, _ := a.prompt("Suffix (empty to generate): ")
			_, _ = a.CreateTestUser(ctx, suffix)
		case "5":
			if id, _ := a.prompt("User id to delete: "); id != "" {
				_, _ = a.DeleteUser(ctx, id, true)
			}
		case "6":
			_ = a.CheckServer(ctx)
		default:
			fmt.Fprintln(a.d.Out, "invalid choice")
		}
	}
}

func (a *Admin) menuRegister(ctx context.Context) {
	nickname, _ := a.prompt("Nickname: ")
	email, _ := a.prompt("Email: ")
	password, _ := a.promptPassword("Password: ")
	if nickname == "" || email == "" || password == "" {
		fmt.Fprintln(a.d.Out, "nickname, email and password are required")
		return
	}
	_, _ = a.Register(ctx, nickname, email, password)
}
