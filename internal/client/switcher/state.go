package switcher

// State is a step of the account switch flow
type State int

const (
	StateIdle State = iota
	StateAccountListShown
	StateRestoringSession
	StatePromptingPassword
	StateActive
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccountListShown:
		return "account_list_shown"
	case StateRestoringSession:
		return "restoring_session"
	case StatePromptingPassword:
		return "prompting_password"
	case StateActive:
		return "active"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Prompt describes the password form shown after a failed silent restore
type Prompt struct {
	Email string
	Error string

	// EmailReadOnly: email подставлен из сохраненного аккаунта и не редактируется
	EmailReadOnly bool
	// FocusPassword: курсор сразу в поле пароля
	FocusPassword bool
}

// Title is the heading of the password form
func (p Prompt) Title() string {
	if p.EmailReadOnly {
		return "Sign in to switch to " + p.Email
	}
	return "Sign in to LOSTLIBRARY"
}

// SubmitLabel is the caption of the submit action
func (p Prompt) SubmitLabel() string {
	if p.EmailReadOnly {
		return "Switch Account"
	}
	return "Sign In"
}
