package internal

import "errors"

// RequireAuth gates protected commands. It returns the stored profile, or an
// *AuthFailureError wrapping ErrNotAuthenticated or a *StorageCorruptionError
// (the store has been cleared in that case).
func RequireAuth(store *CredentialStore) (Profile, error) {
	if err := store.Check(); err != nil {
		return Profile{}, &AuthFailureError{Op: "guard", Err: err}
	}
	_, profile, ok := store.Get()
	if !ok {
		// cleared between the check and the read
		return Profile{}, &AuthFailureError{Op: "guard", Err: ErrNotAuthenticated}
	}
	return profile, nil
}

// LoginHint returns the user-facing reason a protected command was refused
func LoginHint(err error) string {
	var corrupt *StorageCorruptionError
	switch {
	case errors.As(err, &corrupt):
		return "Stored login data was unreadable and has been cleared. Run 'devchat login' to sign in again."
	case errors.Is(err, ErrNotAuthenticated):
		return "You are not logged in. Run 'devchat login' first."
	case IsAuthFailure(err):
		return "Your login has expired or was rejected. Run 'devchat login' to sign in again."
	default:
		return ""
	}
}
