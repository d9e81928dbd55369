package storefront

// Messages dispatched through Store.Run with a Machine as the handler.

type LoadSessionMessage struct{}

func (LoadSessionMessage) Type() string { return "session.load" }

type LoginMessage struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (LoginMessage) Type() string { return "session.login" }

type SignupMessage struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (SignupMessage) Type() string { return "session.signup" }

type LogoutMessage struct{}

func (LogoutMessage) Type() string { return "session.logout" }

type PasswordResetMessage struct {
	Email string `json:"email"`
}

func (PasswordResetMessage) Type() string { return "session.password_reset" }

type SaveProfileMessage struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (SaveProfileMessage) Type() string { return "session.save_profile" }
