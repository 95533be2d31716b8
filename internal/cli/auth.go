package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/FalconEthics/lotus-auth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and attempts to authenticate.
// The password buffer is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password: ", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.auth.Login(ctx, username, string(password))
	if err != nil {
		return err
	}

	fmt.Println(res.Message)
	if !res.Success && res.AttemptsLeft > 0 {
		fmt.Printf("%d attempts left before the account is locked\n", res.AttemptsLeft)
	}
	return nil
}

// Logout destroys the session and the cached key material unconditionally.
func (a *App) Logout(ctx context.Context) error {
	res, err := a.auth.Logout(ctx)
	if err != nil {
		return err
	}
	fmt.Println(res.Message)
	return nil
}

// Status prints the current authentication state.
func (a *App) Status(ctx context.Context) {
	if name := a.auth.CurrentUsername(ctx); name != "" {
		fmt.Printf("logged in as %s\n", name)
		return
	}
	fmt.Println("not logged in")
}

// ChangePassword prompts for the current and new passwords and rotates the
// credential. Both buffers are wiped before returning.
func (a *App) ChangePassword(ctx context.Context) error {
	current, err := getPassword("Current password: ", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	next, err := getPassword("New password: ", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)

	res, err := a.auth.ChangePassword(ctx, string(current), string(next))
	if err != nil {
		return err
	}
	fmt.Println(res.Message)
	return nil
}

// ChangeUsername prompts for the password and the new username and renames
// the administrator identity.
func (a *App) ChangeUsername(ctx context.Context) error {
	newUsername, err := getSimpleText(a.reader, "Enter new username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password: ", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.auth.ChangeUsername(ctx, string(password), newUsername)
	if err != nil {
		return err
	}
	fmt.Println(res.Message)
	return nil
}
