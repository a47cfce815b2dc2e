package dto

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserInfo struct {
	Username string `json:"username"`
	Sector   string `json:"sector"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	User        UserInfo `json:"user"`
}

type LogoutResponse struct {
	Status string `json:"status"`
}
