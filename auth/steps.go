package auth

// Step is a stage of the authentication flow.
type Step string

const (
	StepLogin     Step = "LOGIN"
	StepSetup2FA  Step = "SETUP_2FA"
	StepVerify2FA Step = "VERIFY_2FA"
	StepComplete  Step = "COMPLETE"
)

func (s Step) String() string {
	return string(s)
}

// Result is the outcome of one step. Error carries the client-safe message;
// Err keeps the typed error for errors.Is.
type Result struct {
	Success  bool   `json:"success"`
	NextStep Step   `json:"nextStep,omitempty"`
	Data     any    `json:"data,omitempty"`
	Error    string `json:"error,omitempty"`
	Err      error  `json:"-"`
}

// LoginInput is the payload for StepLogin.
type LoginInput struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RemoteAddr string `json:"-"`
}

// Setup2FAInput is the payload for StepSetup2FA.
type Setup2FAInput struct {
	UserID string `json:"userId"`
}

// Verify2FAInput is the payload for StepVerify2FA.
type Verify2FAInput struct {
	UserID string `json:"userId"`
	Code   string `json:"code"`
}

// LoginData is returned in Result.Data after a successful login.
type LoginData struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// SetupData is returned in Result.Data after a new secret was generated.
type SetupData struct {
	QRCode string `json:"qrCode"`
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

func success(next Step, data any) Result {
	return Result{Success: true, NextStep: next, Data: data}
}
