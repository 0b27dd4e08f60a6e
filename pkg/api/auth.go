package api

// SignUpRequest представляет запрос на регистрацию нового пользователя
type SignUpRequest struct {
	Email    string `json:"email"`    // email пользователя
	Password string `json:"password"` // пароль в открытом виде (только по TLS)
}

// SignUpResponse представляет ответ на успешную регистрацию
type SignUpResponse struct {
	UserID  string `json:"user_id"` // UUID пользователя
	Message string `json:"message"` // сообщение об успешной регистрации
}

// PasswordGrantRequest представляет запрос на вход по email и паролю
type PasswordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LogoutScopeGlobal отзывает все сессии пользователя на всех устройствах
const LogoutScopeGlobal = "global"

// LogoutRequest указывает, какую именно сессию нужно отозвать.
// При Scope == LogoutScopeGlobal RefreshToken не нужен.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// User представляет идентичность пользователя, выданную backend
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SessionResponse представляет ответ с токенами доступа
type SessionResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`  // JWT access token
	RefreshToken string `json:"refresh_token"` // opaque refresh token
	ExpiresIn    int64  `json:"expires_in"`    // время жизни access token в секундах
	ExpiresAt    int64  `json:"expires_at"`    // unix-время истечения access token
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
