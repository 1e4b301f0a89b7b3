package constants

// Base Routes
const (
	APIBasePath = "/api"
	HealthPath  = "/health"
)

// Authentication Routes, relative to AuthBasePath
const (
	AuthBasePath          = "/api/auth"
	AuthRegisterPath      = "/register"
	AuthLoginPath         = "/login"
	AuthLogoutPath        = "/logout"
	AuthMePath            = "/me"
	AuthRefreshPath       = "/refresh"
	AuthForgotPath        = "/forgotpassword"
	AuthResetPath         = "/resetpassword/{resettoken}"
	AuthUpdatePasswordPath = "/updatepassword"
)

// User Administration Routes, relative to UsersBasePath
const (
	UsersBasePath  = "/api/users"
	UserDetailPath = "/{id}"
)

// URL Parameters
const (
	ParamResetToken = "resettoken"
	ParamID         = "id"
)
