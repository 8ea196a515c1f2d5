package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/docchat/internal/client/auth"
	"github.com/dmitrijs2005/docchat/internal/client/services"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login runs the interactive device sign-in, then loads the profile and the
// chat history.
func (a *App) Login(ctx context.Context) error {
	if err := a.session.Login(ctx, a.showDeviceCode); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed in as", a.displayName())
	return nil
}

func (a *App) showDeviceCode(dc auth.DeviceCode) {
	if dc.VerificationURIComplete != "" {
		fmt.Fprintf(a.out, "To sign in, open %s\n", dc.VerificationURIComplete)
		return
	}
	fmt.Fprintf(a.out, "To sign in, open %s and enter the code %s\n", dc.VerificationURI, dc.UserCode)
}

// Logout clears the session store, which also deletes the persisted state,
// and forgets the cached account.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	*a.composer = services.Composer{}
	for _, f := range a.docs.Staged() {
		a.docs.Unstage(f.Name)
	}

	fmt.Fprintln(a.out, "Signed out.")
	if a.config != nil {
		fmt.Fprintln(a.out, "To end the browser session as well, open", a.config.LogoutURL())
	}
	return nil
}

// WhoAmI prints the signed-in identity and the server profile.
func (a *App) WhoAmI(ctx context.Context) error {
	st := a.store.Snapshot()
	fmt.Fprintln(a.out, "Signed in as", a.displayName())

	p := st.User.Profile
	if p == nil {
		if st.User.Error != "" {
			fmt.Fprintln(a.out, "Profile:", st.User.Error)
		}
		return nil
	}
	fmt.Fprintf(a.out, "User #%d %s <%s>", p.ID, p.Username, p.Email)
	if p.Role != "" {
		fmt.Fprintf(a.out, " role=%s", p.Role)
	}
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "Documents: %d of %d\n", len(st.User.Documents), p.DocumentLimit())
	return nil
}

func (a *App) displayName() string {
	id := a.store.Auth()
	if id.User == nil {
		return "unknown user"
	}
	switch {
	case id.User.Name != "" && id.User.Email != "":
		return fmt.Sprintf("%s <%s>", id.User.Name, id.User.Email)
	case id.User.Name != "":
		return id.User.Name
	case id.User.Email != "":
		return id.User.Email
	default:
		return "unknown user"
	}
}
