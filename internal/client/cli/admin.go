package cli

import (
	"context"
	"fmt"
	"strings"
)

// Users refreshes and prints the admin user list with any unsaved limits.
func (a *App) Users(ctx context.Context) error {
	if err := a.admin.Refresh(ctx); err != nil {
		return err
	}
	a.printUsers()
	return nil
}

func (a *App) printUsers() {
	u := a.store.User()
	if u.ActionError != "" {
		fmt.Fprintln(a.out, "Last action failed:", u.ActionError)
	}
	if len(u.UserList) == 0 {
		fmt.Fprintln(a.out, "No users.")
		return
	}
	for _, r := range u.UserList {
		v, _ := a.admin.Row(r.ID)
		line := fmt.Sprintf("  #%d %-20s %-30s %d/%d", r.ID, r.Username, r.Email, r.DocumentsUploaded, r.TotalDocumentsAllowed)
		if v.Edit != nil && v.Edit.Changed {
			if v.Edit.Value != nil {
				line += fmt.Sprintf("  -> %d (unsaved)", *v.Edit.Value)
			} else {
				line += "  -> blank (unsaved)"
			}
		}
		if v.Pending {
			line += "  ..."
		}
		fmt.Fprintln(a.out, line)
	}
}

// EditLimit records a new document limit for a user. Nothing is sent until
// setlimit.
func (a *App) EditLimit(ctx context.Context, args []string) error {
	const usage = "limit <user id> [limit]"
	if len(args) == 0 {
		return errUsage(usage)
	}
	id, err := parseID(args[:1], usage)
	if err != nil {
		return err
	}

	e, err := a.admin.EditLimit(id, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	switch {
	case e.Value == nil:
		fmt.Fprintln(a.out, "Limit cleared; enter a number before saving.")
	case !e.Changed:
		fmt.Fprintln(a.out, "Limit unchanged.")
	default:
		fmt.Fprintf(a.out, "Limit for #%d will be %d. Run 'setlimit %d' to save.\n", id, *e.Value, id)
	}
	return nil
}

// SaveLimit sends the edited limit of a user.
func (a *App) SaveLimit(ctx context.Context, args []string) error {
	id, err := parseID(args, "setlimit <user id>")
	if err != nil {
		return err
	}
	if err := a.admin.UpdateLimit(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Limit for #%d updated.\n", id)
	return nil
}

// DeleteUser deletes a user after confirmation.
func (a *App) DeleteUser(ctx context.Context, args []string) error {
	id, err := parseID(args, "deluser <user id>")
	if err != nil {
		return err
	}

	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete user #%d? (y/N)", id), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	if err := a.admin.DeleteUser(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "User #%d deleted.\n", id)
	return nil
}
