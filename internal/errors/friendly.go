package errors

import stderrors "errors"

// Identity-provider error codes with dedicated user-facing messages. Any
// other code passes its message through verbatim.
const (
	CodeEmailInUse        = "email-already-in-use"
	CodeInvalidCredential = "invalid-credential"
	CodeWeakPassword      = "weak-password"
	CodeInvalidEmail      = "invalid-email"
	CodeSignInCancelled   = "popup-closed-by-user"
)

var friendlyAuthMessages = map[string]string{
	CodeEmailInUse:        "This email is already registered. Please sign in instead.",
	CodeInvalidCredential: "Invalid email or password. Please try again.",
	CodeWeakPassword:      "Password should be at least 6 characters.",
	CodeInvalidEmail:      "Please enter a valid email address.",
	CodeSignInCancelled:   "Sign-in was cancelled. Please try again.",
}

// FriendlyAuthMessage maps an authentication error to the message shown to
// the user. Non-auth errors and unknown codes pass through.
func FriendlyAuthMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *AuthError
	if stderrors.As(err, &ae) {
		if msg, ok := friendlyAuthMessages[ae.Code]; ok {
			return msg
		}
		if ae.Message != "" {
			return ae.Message
		}
		return "An error occurred during authentication."
	}
	return err.Error()
}
