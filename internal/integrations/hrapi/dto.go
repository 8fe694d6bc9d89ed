package hrapi

// AuthResponse - ответ эндпоинта /token.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type EmployeeDTO struct {
	ID         uint64  `json:"ID"`
	LastName   string  `json:"LastName"`
	FirstName  string  `json:"FirstName"`
	MiddleName string  `json:"MiddleName"`
	Department string  `json:"Department"`
	FireDate   *string `json:"FireDate"`
}
