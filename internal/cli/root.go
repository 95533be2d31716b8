package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus(ctx context.Context) string {
	if name := a.auth.CurrentUsername(ctx); name != "" {
		return fmt.Sprintf("(%s)", name)
	}
	return ""
}

func (a *App) Root(ctx context.Context) {

	fmt.Println("Lotus admin console (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("lotus %s> ", a.getStatus(ctx))
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch cmd := parts[0]; cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				fmt.Println("Available commands: status, passwd, rename, logout, exit")
			} else {
				fmt.Println("Available commands: login, status, exit")
			}

		case "login":
			a.Login(ctx)
		case "logout":
			a.Logout(ctx)
		case "status":
			a.Status(ctx)
		case "passwd":
			a.ChangePassword(ctx)
		case "rename":
			a.ChangeUsername(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return

		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}
