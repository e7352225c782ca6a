package dto

// LoginRequest body para POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse token emitido tras autenticar.
type LoginResponse struct {
	Token   string `json:"token"`
	UserID  string `json:"user_id"`
	StoreID string `json:"store_id,omitempty"`
}
